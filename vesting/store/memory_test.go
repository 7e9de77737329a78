package store

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vesting-engine/vesting"
)

func testGrant(id string) vesting.Grant {
	return vesting.Grant{
		ID:   vesting.GrantID(id),
		Name: id,
		Request: vesting.Request{
			TotalShares:   48,
			VestingMonths: 48,
			CliffMonths:   12,
			PeriodMonths:  12,
			StartDate:     vesting.NewDate(2025, time.January, 1),
			Policy:        vesting.CumulativeRounding,
		},
	}
}

func TestMemory_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveGrant(ctx, testGrant("g1")))
	assert.ErrorIs(t, m.SaveGrant(ctx, testGrant("g1")), vesting.ErrDuplicateGrant)

	got, err := m.GetGrant(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, m.DeleteGrant(ctx, "g1"))
	assert.ErrorIs(t, m.DeleteGrant(ctx, "g1"), vesting.ErrGrantNotFound)

	_, err = m.GetGrant(ctx, "g1")
	assert.ErrorIs(t, err, vesting.ErrGrantNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ListGrants_Ordered(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return tick }

	require.NoError(t, m.SaveGrant(ctx, testGrant("b")))
	require.NoError(t, m.SaveGrant(ctx, testGrant("a")))
	tick = tick.Add(time.Hour)
	require.NoError(t, m.SaveGrant(ctx, testGrant("0")))

	grants, err := m.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 3)

	// Same timestamp breaks ties by ID
	assert.Equal(t, vesting.GrantID("a"), grants[0].ID)
	assert.Equal(t, vesting.GrantID("b"), grants[1].ID)
	assert.Equal(t, vesting.GrantID("0"), grants[2].ID)
}

func TestMemory_ReturnedGrantIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveGrant(ctx, testGrant("g1")))

	got, err := m.GetGrant(ctx, "g1")
	require.NoError(t, err)
	got.Name = "changed"

	again, err := m.GetGrant(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", again.Name)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := vesting.GrantID("g" + strconv.Itoa(i))
			g := testGrant(string(id))
			assert.NoError(t, m.SaveGrant(ctx, g))
			_, err := m.GetGrant(ctx, id)
			assert.NoError(t, err)
			_, err = m.ListGrants(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, m.Len())
}
