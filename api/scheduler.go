/*
scheduler.go - Vest event monitor

PURPOSE:
  Periodically recomputes the schedule of every stored grant and reports
  the tranches that vested since the previous check. Schedules are never
  stored, so the monitor keeps only a date watermark in memory.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The first check only sets the watermark (no backlog flood on restart)
  - Each later check reports tranches with watermark < date <= today
  - Grants that no longer compute are logged and skipped

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the monitor is active (default: true)

USAGE:
  monitor := NewVestingMonitor(store, handler)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: GetGrantVested endpoint (on-demand vested-to-date)
  - vesting/schedule.go: TranchesBetween
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/vesting-engine/vesting"
)

// VestEvent is one tranche that vested between two checks.
type VestEvent struct {
	GrantID vesting.GrantID
	Holder  string
	Policy  vesting.RoundingPolicy
	Tranche vesting.Tranche
}

// VestingMonitor reports vest events for stored grants.
type VestingMonitor struct {
	Store         vesting.GrantStore
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	// OnVest is called for every event, after it is logged. Optional.
	OnVest func(VestEvent)

	today     func() vesting.Date
	checkMu   sync.Mutex // guards watermark
	watermark vesting.Date

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewVestingMonitor creates a new monitor.
func NewVestingMonitor(store vesting.GrantStore, handler *Handler) *VestingMonitor {
	return &VestingMonitor{
		Store:         store,
		Handler:       handler,
		CheckInterval: time.Hour,
		Enabled:       true,
		today:         func() vesting.Date { return vesting.DateOf(time.Now().UTC()) },
		stop:          make(chan struct{}),
	}
}

// Start begins the monitor.
func (vm *VestingMonitor) Start() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if !vm.Enabled || vm.CheckInterval <= 0 {
		vm.Handler.Logger.Info("vest monitor disabled")
		return
	}

	vm.ticker = time.NewTicker(vm.CheckInterval)
	vm.wg.Add(1)

	go vm.run()

	vm.Handler.Logger.Info("vest monitor started", zap.Duration("interval", vm.CheckInterval))
}

// Stop stops the monitor and waits for an in-flight check.
func (vm *VestingMonitor) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.ticker != nil {
		vm.ticker.Stop()
		close(vm.stop)
		vm.wg.Wait()
		vm.ticker = nil
		vm.Handler.Logger.Info("vest monitor stopped")
	}
}

func (vm *VestingMonitor) run() {
	defer vm.wg.Done()

	// Run immediately on start
	vm.Check(context.Background())

	for {
		select {
		case <-vm.ticker.C:
			vm.Check(context.Background())
		case <-vm.stop:
			return
		}
	}
}

// Check reports tranches that vested since the previous call and advances
// the watermark to today. It returns the number of events.
func (vm *VestingMonitor) Check(ctx context.Context) int {
	vm.checkMu.Lock()
	defer vm.checkMu.Unlock()

	today := vm.today()
	if vm.watermark.IsZero() {
		vm.watermark = today
		return 0
	}
	if !today.After(vm.watermark) {
		return 0
	}

	grants, err := vm.Store.ListGrants(ctx)
	if err != nil {
		vm.Handler.Logger.Error("vest monitor: listing grants", zap.Error(err))
		return 0
	}

	events := 0
	for _, g := range grants {
		schedule, err := g.Schedule()
		if err != nil {
			vm.Handler.Logger.Warn("vest monitor: grant does not compute",
				zap.String("grant_id", string(g.ID)),
				zap.Error(err),
			)
			continue
		}

		for _, t := range schedule.TranchesBetween(vm.watermark, today) {
			vm.report(VestEvent{GrantID: g.ID, Holder: g.Holder, Policy: g.Request.Policy, Tranche: t})
			events++
		}
	}

	vm.watermark = today
	if events > 0 {
		vm.Handler.Logger.Info("vest monitor: check complete", zap.Int("vested", events))
	}
	return events
}

func (vm *VestingMonitor) report(e VestEvent) {
	vm.Handler.Logger.Info("tranche vested",
		zap.String("grant_id", string(e.GrantID)),
		zap.String("holder", e.Holder),
		zap.String("date", e.Tranche.Date.String()),
		zap.String("shares", e.Tranche.Shares.String()),
		zap.Bool("cliff", e.Tranche.Cliff),
	)
	if m := vm.Handler.Metrics; m != nil {
		m.TranchesVested.WithLabelValues(e.Policy.String()).Inc()
	}
	if vm.OnVest != nil {
		vm.OnVest(e)
	}
}
