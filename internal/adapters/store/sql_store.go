package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"traveltime-tiles/internal/platform/obs"
)

// SQLStore is a Postgres-backed KeyValueStore. Expired rows are ignored on
// read and overwritten on write; PruneExpired removes them for good.
type SQLStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, now: time.Now}
}

// InitSchema creates the kv_cache table and its expiry index.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCacheQuery := `
	CREATE TABLE IF NOT EXISTS kv_cache (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_kv_cache_expires_at
	ON kv_cache(expires_at);
	`

	statements := []string{
		createCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "store.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("sql store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get sql store: key must not be empty")
	}

	q := `
	SELECT value
    FROM kv_cache
    WHERE key = $1
        AND expires_at > $2;
	`

	var value []byte
	err = s.DB.QueryRowContext(ctx, q, key, s.now().UTC()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get sql store: query kv_cache table: %w", err)
	}

	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("sql store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert sql store: key must not be empty")
	}

	q := `
	INSERT INTO kv_cache (key, value, expires_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		expires_at = EXCLUDED.expires_at;
	`

	expiresAt := s.now().UTC().Add(ttl)
	if _, err := s.DB.ExecContext(ctx, q, key, value, expiresAt); err != nil {
		return fmt.Errorf("insert sql store key=%q: %w", key, err)
	}

	return nil
}

// PruneExpired deletes expired rows and reports how many were removed.
func (s *SQLStore) PruneExpired(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("sql store: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM kv_cache WHERE expires_at <= $1;`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("prune sql store: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sql store: rows affected: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
