// Package store keeps a history of exported environments in SQLite so runs
// can be listed and compared.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/envx/internal/logging"
)

var log = logging.Get("store")

// ErrNoSnapshot is returned when an environment has no recorded snapshots.
var ErrNoSnapshot = errors.New("no snapshot recorded")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		env TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS snapshots_env_created ON snapshots (env, created_at)`,
}

// Snapshot is one recorded environment.
type Snapshot struct {
	ID        string
	Env       string
	Source    string
	CreatedAt time.Time
	Values    map[string]interface{}
}

// Store is a snapshot database. It is not safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string

	// keep is the number of snapshots retained per env; 0 keeps all.
	keep int
	now  func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string, keep int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	log.Debugf("opened %s (keep %d)", path, keep)
	return &Store{db: db, path: path, keep: keep, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores values as the newest snapshot of env and prunes old ones.
func (s *Store) Record(ctx context.Context, env, source string, values map[string]interface{}) (*Snapshot, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Env:       env,
		Source:    source,
		CreatedAt: s.now().UTC(),
		Values:    values,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, env, source, created_at, payload) VALUES (?, ?, ?, ?, ?)",
		snap.ID, env, source, snap.CreatedAt.UnixNano(), string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	log.Debugf("recorded %s for %s", snap.ID, env)

	if err := s.prune(ctx, env); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) prune(ctx context.Context, env string) error {
	if s.keep <= 0 {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE env = ? AND id NOT IN (
		SELECT id FROM snapshots WHERE env = ? ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
		env, env, s.keep,
	)
	if err != nil {
		return fmt.Errorf("pruning snapshots: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Debugf("pruned %d snapshots of %s", n, env)
	}
	return nil
}

// List returns up to limit snapshots of env, newest first. A limit <= 0
// returns all of them.
func (s *Store) List(ctx context.Context, env string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, env, source, created_at, payload FROM snapshots WHERE env = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		env, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	return out, nil
}

// Latest returns the newest snapshot of env, or ErrNoSnapshot.
func (s *Store) Latest(ctx context.Context, env string) (*Snapshot, error) {
	snaps, err := s.List(ctx, env, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%s: %w", env, ErrNoSnapshot)
	}
	return snaps[0], nil
}

func scanSnapshot(rows *sql.Rows) (*Snapshot, error) {
	var (
		snap    Snapshot
		created int64
		payload string
	)
	if err := rows.Scan(&snap.ID, &snap.Env, &snap.Source, &created, &payload); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	snap.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(payload), &snap.Values); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}
