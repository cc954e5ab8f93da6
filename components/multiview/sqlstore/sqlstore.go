// Package sqlstore persists multiview state in a SQL table keyed by storage
// key. SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-multiview/components/multiview"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultTable holds the key/value rows.
const DefaultTable = "multiview_state"

// Store implements multiview.Storage on database/sql.
type Store struct {
	db     *sql.DB
	driver string
	table  string
}

var _ multiview.Storage = (*Store)(nil)

// Open connects to dsn with driver and creates the state table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	store, err := New(ctx, db, driver, DefaultTable)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection and runs the table migration.
func New(ctx context.Context, db *sql.DB, driver, table string) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is required")
	}
	if table == "" {
		table = DefaultTable
	}
	s := &Store{db: db, driver: driver, table: table}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		state_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// Load returns the payload stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	query := s.rebind(fmt.Sprintf("SELECT payload FROM %s WHERE state_key = ?", s.table))
	var payload string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, multiview.ErrStorageKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Save upserts the payload for key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	query := s.rebind(fmt.Sprintf(`INSERT INTO %s (state_key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (state_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`, s.table))
	if _, err := s.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("sqlstore: save %s: %w", key, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
