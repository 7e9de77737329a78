/*
Package vesting provides the share-vesting schedule engine.

PURPOSE:
  Turns an equity grant (total shares, vesting horizon, cliff, periodicity,
  start date) into a dated disbursement schedule. The engine is pure: no I/O,
  no shared state, safe to call from any goroutine.

KEY CONCEPTS IN THIS FILE (types.go):
  - RoundingPolicy: One of seven rules for splitting shares into whole units
  - Request: The immutable input of a schedule computation
  - Geometry: How many periods exist and how many the cliff absorbs
  - Tranche / Schedule: The computed output

DESIGN PRINCIPLES:
  1. Conservation: Every policy reproduces the grant total exactly
  2. Precision: Shares are decimal.Decimal, never float64
  3. Closed set: Rounding policies are an enumeration, not an interface

USAGE:
  schedule, err := vesting.Compute(vesting.Request{
      TotalShares:   4800,
      VestingMonths: 48,
      CliffMonths:   12,
      PeriodMonths:  1,
      StartDate:     vesting.NewDate(2025, time.January, 1),
      Policy:        vesting.CumulativeRounding,
  })

SEE ALSO:
  - geometry.go: Tranche geometry derivation
  - sequencer.go: Disbursement dates
  - allocation.go: The seven rounding policies
  - schedule.go: Orchestration
*/
package vesting

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROUNDING POLICY - Closed enumeration of share distribution rules
// =============================================================================

// RoundingPolicy selects how a total that does not divide evenly is spread
// across periods. Identifiers 1-7 are stable on the wire.
type RoundingPolicy int

const (
	CumulativeRounding  RoundingPolicy = 1 // 5 - 4 - 5 - 4
	CumulativeRoundDown RoundingPolicy = 2 // 4 - 5 - 4 - 5
	FrontLoaded         RoundingPolicy = 3 // 5 - 5 - 4 - 4
	BackLoaded          RoundingPolicy = 4 // 4 - 4 - 5 - 5
	FrontLoadedSingle   RoundingPolicy = 5 // 6 - 4 - 4 - 4
	BackLoadedSingle    RoundingPolicy = 6 // 4 - 4 - 4 - 6
	Fractional          RoundingPolicy = 7 // 4.5 - 4.5 - 4.5 - 4.5
)

// PolicyInfo describes a rounding policy for catalogues and help output.
type PolicyInfo struct {
	Policy      RoundingPolicy
	Name        string
	Title       string
	Description string
	Example     string
}

var policyCatalog = []PolicyInfo{
	{CumulativeRounding, "cumulative_rounding", "Cumulative Rounding",
		"Rounds the running total up; each tranche is the difference between consecutive rounded totals.", "5 - 4 - 5 - 4"},
	{CumulativeRoundDown, "cumulative_round_down", "Cumulative Round Down",
		"Rounds the running total down; each tranche is the difference between consecutive rounded totals.", "4 - 5 - 4 - 5"},
	{FrontLoaded, "front_loaded", "Front Loaded",
		"Every tranche gets the floor; leftover shares go one at a time to the earliest tranches.", "5 - 5 - 4 - 4"},
	{BackLoaded, "back_loaded", "Back Loaded",
		"Every tranche gets the floor; leftover shares go one at a time to the latest tranches.", "4 - 4 - 5 - 5"},
	{FrontLoadedSingle, "front_loaded_single_tranche", "Front Loaded to Single Tranche",
		"Every tranche gets the floor; all leftover shares go to the first tranche.", "6 - 4 - 4 - 4"},
	{BackLoadedSingle, "back_loaded_single_tranche", "Back Loaded to Single Tranche",
		"Every tranche gets the floor; all leftover shares go to the last tranche.", "4 - 4 - 4 - 6"},
	{Fractional, "fractional", "Fractional",
		"Every tranche gets the exact share rounded to 4 decimal places; the residual lands on the cliff.", "4.5 - 4.5 - 4.5 - 4.5"},
}

// Policies returns the catalogue of rounding policies in identifier order.
func Policies() []PolicyInfo {
	out := make([]PolicyInfo, len(policyCatalog))
	copy(out, policyCatalog)
	return out
}

// Info returns the catalogue entry for p.
func (p RoundingPolicy) Info() (PolicyInfo, bool) {
	if !p.Valid() {
		return PolicyInfo{}, false
	}
	return policyCatalog[p-1], true
}

// Valid reports whether p is one of the seven known policies.
func (p RoundingPolicy) Valid() bool { return p >= CumulativeRounding && p <= Fractional }

// IsIntegral reports whether the policy only ever yields whole shares.
func (p RoundingPolicy) IsIntegral() bool { return p.Valid() && p != Fractional }

func (p RoundingPolicy) String() string {
	if info, ok := p.Info(); ok {
		return info.Name
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

// ParseRoundingPolicy accepts either the numeric identifier ("1".."7") or the
// wire name ("front_loaded"). Dashes and case are ignored.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		p := RoundingPolicy(n)
		if !p.Valid() {
			return 0, invalidPolicy(p)
		}
		return p, nil
	}

	name := strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	for _, info := range policyCatalog {
		if info.Name == name {
			return info.Policy, nil
		}
	}
	return 0, &InvalidInputError{Field: "rounding_policy", Reason: "choose a valid policy, got " + strconv.Quote(s)}
}

// =============================================================================
// REQUEST - Input of a schedule computation
// =============================================================================

// Request is the input of a schedule computation.
type Request struct {
	TotalShares   int64
	VestingMonths int
	CliffMonths   int
	PeriodMonths  int
	StartDate     Date
	Policy        RoundingPolicy
}

// Validate checks the request without computing anything.
func (r Request) Validate() error {
	_, err := r.geometry()
	return err
}

// geometry validates the request and returns its tranche layout.
func (r Request) geometry() (Geometry, error) {
	switch {
	case r.TotalShares <= 0:
		return Geometry{}, &InvalidInputError{Field: "total_shares", Reason: "must be positive"}
	case r.StartDate.IsZero():
		return Geometry{}, &InvalidInputError{Field: "start_date", Reason: "is required"}
	case r.CliffMonths > r.VestingMonths && r.VestingMonths > 0:
		return Geometry{}, &InvalidInputError{Field: "cliff_months", Reason: "cannot exceed vesting_months"}
	case !r.Policy.Valid():
		return Geometry{}, invalidPolicy(r.Policy)
	}
	return DeriveGeometry(r.VestingMonths, r.CliffMonths, r.PeriodMonths)
}

// =============================================================================
// GEOMETRY - Derived tranche layout
// =============================================================================

// Geometry is the tranche layout derived from a Request's month counts.
type Geometry struct {
	PeriodsTotal   int // periods the full horizon is divided into
	PeriodsInCliff int // periods collapsed into the cliff lump sum
	TrancheCount   int // 1 cliff entry + remaining periods
}

// =============================================================================
// SCHEDULE - Computed output
// =============================================================================

// Tranche is a single disbursement event.
type Tranche struct {
	Date   Date
	Shares decimal.Decimal
	Cliff  bool // the leading lump sum covering the cliff periods
}

// Schedule is a computed disbursement calendar, cliff tranche first.
type Schedule struct {
	Request  Request
	Geometry Geometry
	Tranches []Tranche
}

// Total sums the shares of every tranche.
func (s *Schedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range s.Tranches {
		total = total.Add(t.Shares)
	}
	return total
}

// Shares returns the share counts in tranche order.
func (s *Schedule) Shares() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Tranches))
	for i, t := range s.Tranches {
		out[i] = t.Shares
	}
	return out
}

// MarshalJSON encodes the schedule as an ordered {"date": shares} object.
// encoding/json would sort map keys, which happens to match date order, but
// shares must be emitted as numbers rather than decimal's quoted strings.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range s.Tranches {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(t.Date.String()))
		b.WriteByte(':')
		b.WriteString(t.Shares.String())
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
