// Package store implements the SQLite-backed data layer for MyWarehouse:
// customers, materials, serial numbers, assignments, learned category
// aliases and user accounts.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"mywarehouse/internal/logging"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// Store is the SQLite backed data layer. All methods are safe for
// concurrent use; writes serialize on an internal mutex and the database
// runs in WAL mode.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path, creating the
// file and schema when missing and applying any pending migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening store at %s", path)

	if dir := filepath.Dir(path); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.ensureDefaultAdmin(); err != nil {
		logging.Get(logging.CategoryAuth).Error("failed to ensure default admin user: %v", err)
	}

	logging.Store("Store ready (schema version %d)", currentSchemaVersion)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	logging.Store("Closing store")
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Stats returns row counts per table.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{
		"customers", "materials", "serial_numbers",
		"assignments", "category_aliases", "users",
	} {
		var count int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

// LastChange returns the newest last_modified timestamp (unix seconds)
// across all tracked tables, or 0 when the database is empty. The UI uses
// this to detect writes from other processes.
func (s *Store) LastChange() (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT MAX(last_modified) FROM (
			SELECT last_modified FROM customers
			UNION ALL SELECT last_modified FROM materials
			UNION ALL SELECT last_modified FROM serial_numbers
			UNION ALL SELECT last_modified FROM assignments
		)`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("last change: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return last.Float64, nil
}
