// Package store provides GrantStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	grants map[vesting.GrantID]vesting.Grant
	now    func() time.Time
}

var _ vesting.GrantStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		grants: make(map[vesting.GrantID]vesting.Grant),
		now:    time.Now,
	}
}

func (m *Memory) SaveGrant(_ context.Context, g vesting.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.grants[g.ID]; ok {
		return vesting.ErrDuplicateGrant
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = m.now().UTC()
	}
	m.grants[g.ID] = g
	return nil
}

func (m *Memory) GetGrant(_ context.Context, id vesting.GrantID) (*vesting.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grants[id]
	if !ok {
		return nil, vesting.ErrGrantNotFound
	}
	return &g, nil
}

func (m *Memory) ListGrants(_ context.Context) ([]vesting.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]vesting.Grant, 0, len(m.grants))
	for _, g := range m.grants {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteGrant(_ context.Context, id vesting.GrantID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.grants[id]; !ok {
		return vesting.ErrGrantNotFound
	}
	delete(m.grants, id)
	return nil
}

// Len returns the number of stored grants.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.grants)
}

// Reset clears all grants.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.grants)
	return nil
}
