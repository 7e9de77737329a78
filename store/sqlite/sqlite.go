/*
Package sqlite provides a SQLite-backed implementation of vesting.GrantStore.

PURPOSE:
  Persists grant definitions (the inputs of a schedule). Computed schedules
  are never written; they are derived from the stored grant on every read.

KEY TABLES:
  grants: One row per grant, request fields stored as columns so that
          grants can be queried by holder or policy without decoding JSON.

INDEXES:
  - idx_grants_holder: Listing a holder's grants
  - idx_grants_created_at: Stable listing order

CONCURRENCY:
  Uses sync.RWMutex around the pool. An in-memory database is pinned to a
  single connection, otherwise every pooled connection would see its own
  empty database.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/vesting.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - vesting/store.go: Interface definition
  - vesting/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/vesting-engine/vesting"
)

const memoryPath = ":memory:"

// timestampLayout is fixed-width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements vesting.GrantStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ vesting.GrantStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == memoryPath {
		dsn = dbPath + "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		holder TEXT,
		total_shares INTEGER NOT NULL CHECK (total_shares > 0),
		vesting_months INTEGER NOT NULL CHECK (vesting_months > 0),
		cliff_months INTEGER NOT NULL DEFAULT 0 CHECK (cliff_months >= 0),
		period_months INTEGER NOT NULL CHECK (period_months > 0),
		start_date TEXT NOT NULL,
		rounding_policy INTEGER NOT NULL CHECK (rounding_policy BETWEEN 1 AND 7),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_grants_holder
		ON grants(holder) WHERE holder IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_grants_created_at
		ON grants(created_at, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// GRANT STORE (vesting.GrantStore interface)
// =============================================================================

const grantColumns = `id, name, holder, total_shares, vesting_months, cliff_months,
	period_months, start_date, rounding_policy, created_at`

// SaveGrant inserts a grant. Grants are immutable; re-saving an ID fails.
func (s *Store) SaveGrant(ctx context.Context, g vesting.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	r := g.Request
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO grants ("+grantColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		string(g.ID), g.Name, nullString(g.Holder), r.TotalShares, r.VestingMonths, r.CliffMonths,
		r.PeriodMonths, r.StartDate.String(), int(r.Policy), createdAt.UTC().Format(timestampLayout),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("grant %s: %w", g.ID, vesting.ErrDuplicateGrant)
	}
	return err
}

// GetGrant retrieves a grant by ID.
func (s *Store) GetGrant(ctx context.Context, id vesting.GrantID) (*vesting.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+grantColumns+" FROM grants WHERE id = ?", string(id))
	g, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grant %s: %w", id, vesting.ErrGrantNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGrants returns all grants, oldest first.
func (s *Store) ListGrants(ctx context.Context) ([]vesting.Grant, error) {
	return s.queryGrants(ctx, "SELECT "+grantColumns+" FROM grants ORDER BY created_at, id")
}

// ListGrantsByHolder returns a holder's grants, oldest first.
func (s *Store) ListGrantsByHolder(ctx context.Context, holder string) ([]vesting.Grant, error) {
	return s.queryGrants(ctx, "SELECT "+grantColumns+" FROM grants WHERE holder = ? ORDER BY created_at, id", holder)
}

// DeleteGrant removes a grant.
func (s *Store) DeleteGrant(ctx context.Context, id vesting.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM grants WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("grant %s: %w", id, vesting.ErrGrantNotFound)
	}
	return nil
}

// CountGrants returns the number of stored grants.
func (s *Store) CountGrants(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM grants").Scan(&n)
	return n, err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM grants")
	return err
}

func (s *Store) queryGrants(ctx context.Context, query string, args ...any) ([]vesting.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []vesting.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanGrant(row scanner) (vesting.Grant, error) {
	var (
		g         vesting.Grant
		id        string
		holder    sql.NullString
		startDate string
		policy    int
		createdAt string
	)
	err := row.Scan(&id, &g.Name, &holder, &g.Request.TotalShares, &g.Request.VestingMonths,
		&g.Request.CliffMonths, &g.Request.PeriodMonths, &startDate, &policy, &createdAt)
	if err != nil {
		return vesting.Grant{}, err
	}

	g.ID = vesting.GrantID(id)
	g.Holder = holder.String
	g.Request.Policy = vesting.RoundingPolicy(policy)
	if g.Request.StartDate, err = vesting.ParseDate(startDate); err != nil {
		return vesting.Grant{}, fmt.Errorf("grant %s: corrupt start_date: %w", id, err)
	}
	if g.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return vesting.Grant{}, fmt.Errorf("grant %s: corrupt created_at: %w", id, err)
	}
	return g, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
