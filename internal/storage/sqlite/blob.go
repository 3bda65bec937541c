package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skywatch/metarboard/pkg/logger"

	_ "modernc.org/sqlite"
)

// BlobStore is a key-value blob store backed by SQLite. It persists the
// outage ledger as a single blob under a fixed key.
type BlobStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewBlobStore opens (or creates) the database at dbPath and ensures
// the blobs table exists
func NewBlobStore(dbPath string, log *logger.Logger) (*BlobStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &BlobStore{
		db:     db,
		logger: log.Named("sqlite-blobs"),
	}

	if err := store.initDB(); err != nil {
		return nil, err
	}

	return store, nil
}

// initDB initializes the database tables
func (s *BlobStore) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create blobs table: %w", err)
	}
	return nil
}

// Get returns the blob stored under key; found is false when the key is absent
func (s *BlobStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the blob under key, replacing any previous value
func (s *BlobStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write blob %q: %w", key, err)
	}
	return nil
}

// Delete removes the key if present
func (s *BlobStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database
func (s *BlobStore) Close() error {
	return s.db.Close()
}
