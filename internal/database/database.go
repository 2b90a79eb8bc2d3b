package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rentmimi/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Top-level collection names. Each is persisted wholesale as one JSON
// document per mutation.
const (
	CollectionUsers        = "users"
	CollectionBookings     = "bookings"
	CollectionApplications = "partner_applications"
	CollectionStories      = "mimi_stories"
)

// DB keeps the four collections in memory and mirrors every mutation into
// sqlite as a whole-collection JSON write. The mutex is the single
// serialized-write boundary: every mutating operation runs read-modify-
// persist under it, so the stored snapshot always matches memory.
type DB struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zerolog.Logger

	users        []models.User
	bookings     []models.Booking
	applications []models.PartnerApplication
	stories      []models.MimiStory
}

func Open(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	store := &DB{db: db, logger: logger}
	if err := store.loadCollections(context.Background()); err != nil {
		return nil, err
	}

	logger.Info().Str("path", path).
		Int("users", len(store.users)).
		Int("bookings", len(store.bookings)).
		Int("applications", len(store.applications)).
		Msg("database initialized")
	return store, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS collections (
            name TEXT PRIMARY KEY,
            payload TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id TEXT NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("executing %q: %w", query, err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) loadCollections(ctx context.Context) error {
	if err := d.loadCollection(ctx, CollectionUsers, &d.users); err != nil {
		return err
	}
	if err := d.loadCollection(ctx, CollectionBookings, &d.bookings); err != nil {
		return err
	}
	if err := d.loadCollection(ctx, CollectionApplications, &d.applications); err != nil {
		return err
	}
	return d.loadCollection(ctx, CollectionStories, &d.stories)
}

func (d *DB) loadCollection(ctx context.Context, name string, dest interface{}) error {
	var payload string
	err := d.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load collection %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("decode collection %s: %w", name, err)
	}
	return nil
}

// saveCollectionLocked serializes the whole collection and overwrites its
// row. Caller holds the mutex. Writing the same state twice yields a
// byte-identical row: no counters or timestamps are added here.
func (d *DB) saveCollectionLocked(ctx context.Context, name string, src interface{}) error {
	payload, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO collections (name, payload) VALUES (?, ?)
         ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		name, string(payload))
	if err != nil {
		return fmt.Errorf("save collection %s: %w", name, err)
	}
	return nil
}

// SaveAll rewrites every collection. Replaying it against unchanged state
// is a no-op on the stored bytes.
func (d *DB) SaveAll(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.saveCollectionLocked(ctx, CollectionUsers, d.users); err != nil {
		return err
	}
	if err := d.saveCollectionLocked(ctx, CollectionBookings, d.bookings); err != nil {
		return err
	}
	if err := d.saveCollectionLocked(ctx, CollectionApplications, d.applications); err != nil {
		return err
	}
	return d.saveCollectionLocked(ctx, CollectionStories, d.stories)
}

// QueryRowContext exposes the underlying connection for ad-hoc reads.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// RawCollection returns the stored JSON document for a collection, mostly
// for tests and debugging.
func (d *DB) RawCollection(ctx context.Context, name string) (string, error) {
	var payload string
	err := d.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		return "", fmt.Errorf("read collection %s: %w", name, err)
	}
	return payload, nil
}
