package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vesting-engine/store/sqlite"
	"github.com/warp/vesting-engine/vesting"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func grant(id, holder string, created time.Time) vesting.Grant {
	return vesting.Grant{
		ID:     vesting.GrantID(id),
		Name:   "Grant " + id,
		Holder: holder,
		Request: vesting.Request{
			TotalShares:   100,
			VestingMonths: 36,
			CliffMonths:   12,
			PeriodMonths:  12,
			StartDate:     vesting.NewDate(2025, time.January, 31),
			Policy:        vesting.FrontLoaded,
		},
		CreatedAt: created,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	created := time.Date(2025, 6, 1, 10, 30, 0, 123, time.UTC)
	want := grant("g1", "alice", created)
	require.NoError(t, store.SaveGrant(ctx, want))

	got, err := store.GetGrant(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, "alice", got.Holder)
	assert.Equal(t, want.Request.TotalShares, got.Request.TotalShares)
	assert.Equal(t, vesting.FrontLoaded, got.Request.Policy)
	assert.True(t, want.Request.StartDate.Equal(got.Request.StartDate))
	assert.True(t, created.Equal(got.CreatedAt))

	// Stored grants recompute the same schedule
	s, err := got.Schedule()
	require.NoError(t, err)
	assert.Len(t, s.Tranches, 3)
}

func TestStore_SaveGrant_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveGrant(ctx, grant("g1", "", time.Time{})))
	err := store.SaveGrant(ctx, grant("g1", "", time.Time{}))
	assert.ErrorIs(t, err, vesting.ErrDuplicateGrant)
}

func TestStore_GetGrant_NotFound(t *testing.T) {
	_, err := newStore(t).GetGrant(context.Background(), "missing")
	assert.ErrorIs(t, err, vesting.ErrGrantNotFound)
	assert.True(t, vesting.IsNotFound(err))
}

func TestStore_EmptyHolderRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveGrant(ctx, grant("g1", "", time.Time{})))
	got, err := store.GetGrant(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, got.Holder)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_ListGrants_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Sub-second ordering must survive the text column.
	require.NoError(t, store.SaveGrant(ctx, grant("c", "bob", base.Add(time.Second))))
	require.NoError(t, store.SaveGrant(ctx, grant("a", "alice", base.Add(500*time.Millisecond))))
	require.NoError(t, store.SaveGrant(ctx, grant("b", "alice", base)))

	grants, err := store.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 3)
	assert.Equal(t, vesting.GrantID("b"), grants[0].ID)
	assert.Equal(t, vesting.GrantID("a"), grants[1].ID)
	assert.Equal(t, vesting.GrantID("c"), grants[2].ID)

	byHolder, err := store.ListGrantsByHolder(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byHolder, 2)
	assert.Equal(t, vesting.GrantID("b"), byHolder[0].ID)

	n, err := store.CountGrants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_DeleteGrant(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveGrant(ctx, grant("g1", "", time.Time{})))
	require.NoError(t, store.DeleteGrant(ctx, "g1"))

	_, err := store.GetGrant(ctx, "g1")
	assert.ErrorIs(t, err, vesting.ErrGrantNotFound)

	assert.ErrorIs(t, store.DeleteGrant(ctx, "g1"), vesting.ErrGrantNotFound)
}

func TestStore_RejectsInvalidRows(t *testing.T) {
	// The schema refuses requests the engine could never compute
	g := grant("g1", "", time.Time{})
	g.Request.Policy = vesting.RoundingPolicy(8)
	assert.Error(t, newStore(t).SaveGrant(context.Background(), g))
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveGrant(ctx, grant("g1", "", time.Time{})))
	require.NoError(t, store.Reset(ctx))

	grants, err := store.ListGrants(ctx)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestStore_FilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vesting.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveGrant(ctx, grant("g1", "alice", time.Time{})))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetGrant(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Holder)
	require.NoError(t, reopened.Ping(ctx))
}

func TestStore_CorruptCreatedAtIsAnError(t *testing.T) {
	// GIVEN: a stored grant whose created_at was overwritten outside the store
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vesting.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveGrant(ctx, grant("g1", "alice", time.Time{})))
	require.NoError(t, store.Close())

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec("UPDATE grants SET created_at = 'yesterday' WHERE id = 'g1'")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: reading it back
	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	// THEN: the row is reported instead of decoding to a zero time
	_, err = reopened.GetGrant(ctx, "g1")
	assert.ErrorContains(t, err, "corrupt created_at")

	_, err = reopened.ListGrants(ctx)
	assert.ErrorContains(t, err, "corrupt created_at")
}
