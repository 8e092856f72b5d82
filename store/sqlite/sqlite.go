/*
Package sqlite provides a SQLite-backed workshop.SnapshotStore.

PURPOSE:
  Persists the whole workshop State as one JSON payload per collection,
  plus a history of manual backups. The in-memory store stays the source
  of truth while the process runs; this is where it lands between runs.

INTERFACES IMPLEMENTED:
  workshop.SnapshotStore: Load and overwrite the current snapshot

KEY TABLES:
  collections: One row per collection name, overwritten on every save
  backups:     Append-only list of full snapshots taken on request

OVERWRITE SEMANTICS:
  SaveSnapshot writes every collection inside one SQL transaction. A
  crash mid-save leaves the previous snapshot intact, never a mix.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The autosaver and the backup
  endpoint can call in concurrently.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the autosaver
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./workshop.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := store.LoadSnapshot(ctx)

MIGRATION:
  Schema is auto-migrated on New(). NewWithDB skips migration so tests
  can hand in a mocked *sql.DB.

SEE ALSO:
  - workshop/store.go: Interface definitions
  - workshop/snapshot.go: Snapshot shape
  - engine/autosave.go: Periodic saves
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/workshop-engine/workshop"
)

// Store implements workshop.SnapshotStore using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	store := NewWithDB(db)
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewWithDB wraps an open database without migrating it.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	-- Current snapshot, one row per collection
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Manual backups (full snapshot per row)
	CREATE TABLE IF NOT EXISTS backups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_backups_created_at
		ON backups(created_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// =============================================================================
// SNAPSHOT STORE (workshop.SnapshotStore interface)
// =============================================================================

// LoadSnapshot returns every saved collection. An empty database yields an
// empty snapshot, which decodes to an empty State.
func (s *Store) LoadSnapshot(ctx context.Context) (workshop.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name, payload_json FROM collections`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	snap := workshop.Snapshot{}
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		snap[name] = json.RawMessage(payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}
	return snap, nil
}

// SaveSnapshot overwrites every collection in the snapshot atomically.
func (s *Store) SaveSnapshot(ctx context.Context, snap workshop.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for _, name := range orderedKeys(snap) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, payload_json, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				payload_json = excluded.payload_json,
				updated_at = excluded.updated_at
		`, name, string(snap[name]), updatedAt)
		if err != nil {
			return fmt.Errorf("failed to save collection %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// orderedKeys lists known collections first, in save order, then any
// other keys alphabetically.
func orderedKeys(snap workshop.Snapshot) []string {
	keys := make([]string, 0, len(snap))
	known := map[string]bool{}
	for _, name := range workshop.Collections {
		known[name] = true
		if _, ok := snap[name]; ok {
			keys = append(keys, name)
		}
	}
	var extra []string
	for name := range snap {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// =============================================================================
// BACKUPS
// =============================================================================

// Backup describes a stored backup without its payload.
type Backup struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int       `json:"size"`
}

// SaveBackup stores a full snapshot as a new backup row.
func (s *Store) SaveBackup(ctx context.Context, snap workshop.Snapshot) (Backup, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO backups (created_at, payload_json) VALUES (?, ?)`,
		createdAt.Format(time.RFC3339), string(payload))
	if err != nil {
		return Backup{}, fmt.Errorf("failed to save backup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Backup{}, fmt.Errorf("failed to read backup id: %w", err)
	}
	return Backup{ID: id, CreatedAt: createdAt, Size: len(payload)}, nil
}

// ListBackups returns backups newest first.
func (s *Store) ListBackups(ctx context.Context) ([]Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, LENGTH(payload_json)
		FROM backups
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query backups: %w", err)
	}
	defer rows.Close()

	backups := []Backup{}
	for rows.Next() {
		var b Backup
		var createdAt string
		if err := rows.Scan(&b.ID, &createdAt, &b.Size); err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// LoadBackup returns the snapshot stored in one backup.
func (s *Store) LoadBackup(ctx context.Context, id int64) (workshop.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload_json FROM backups WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workshop.NewNotFound("backup", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup: %w", err)
	}

	var snap workshop.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode backup %d: %w", id, err)
	}
	return snap, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears the current snapshot. Backups are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM collections")
	return err
}

var _ workshop.SnapshotStore = (*Store)(nil)
