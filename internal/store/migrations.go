// Versioned schema migrations. The current version lives in the
// schema_version table; migrations are applied sequentially and each one
// commits before the version is bumped. New migrations must be appended,
// never reordered.
package store

import (
	"database/sql"
	"fmt"

	"mywarehouse/internal/logging"
)

// Schema versions:
// v1: customers, materials, serial_numbers, assignments, category_aliases
// v2: indexes on hot columns
// v3: users table for authentication and roles
const currentSchemaVersion = 3

type migration func(*sql.Tx) error

var migrations = []migration{
	migrateInitialSchema,
	migrateIndexes,
	migrateUsers,
}

// migrate brings the schema up to currentSchemaVersion.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}
	if count == 0 {
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
			return fmt.Errorf("seed schema_version: %w", err)
		}
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for target := version + 1; target <= len(migrations); target++ {
		logging.Boot("Applying migration %d", target)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", target, err)
		}
		if err := migrations[target-1](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", target, err)
		}
		if _, err := tx.Exec("UPDATE schema_version SET version = ?", target); err != nil {
			tx.Rollback()
			return fmt.Errorf("bump schema version to %d: %w", target, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", target, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func migrateInitialSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		pin4 TEXT,
		last_modified REAL DEFAULT (strftime('%s','now'))
	);

	CREATE TABLE IF NOT EXISTS materials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		model TEXT NOT NULL,
		producer TEXT,
		description TEXT,
		image_path TEXT,
		retail_price REAL,
		is_used INTEGER DEFAULT 0,
		warranty_months INTEGER,
		category TEXT,
		auto_category TEXT,
		auto_confidence REAL DEFAULT 0.0,
		model_family TEXT,
		last_modified REAL DEFAULT (strftime('%s','now'))
	);

	CREATE TABLE IF NOT EXISTS serial_numbers (
		serial TEXT PRIMARY KEY,
		material_id INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
		production_date TEXT,
		acquisition_date TEXT,
		warranty_expiration TEXT,
		assigned_to TEXT REFERENCES customers(id) ON DELETE SET NULL,
		last_modified REAL DEFAULT (strftime('%s','now')),
		extra_json TEXT,
		retail_price REAL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		serial TEXT NOT NULL REFERENCES serial_numbers(serial) ON DELETE CASCADE,
		assigned_date TEXT NOT NULL,
		material_id INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
		material_name TEXT NOT NULL,
		material_model TEXT NOT NULL,
		warranty_expiration TEXT,
		last_modified REAL DEFAULT (strftime('%s','now')),
		deleted INTEGER DEFAULT 0,
		extra_json TEXT
	);

	CREATE TABLE IF NOT EXISTS category_aliases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token TEXT UNIQUE,
		category TEXT
	);
	`)
	return err
}

func migrateIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name);
	CREATE INDEX IF NOT EXISTS idx_materials_name ON materials(name);
	CREATE INDEX IF NOT EXISTS idx_materials_model ON materials(model);
	CREATE INDEX IF NOT EXISTS idx_materials_auto_category ON materials(auto_category);
	CREATE INDEX IF NOT EXISTS idx_serial_numbers_material_id ON serial_numbers(material_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_customer_id ON assignments(customer_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_serial ON assignments(serial);
	`)
	return err
}

func migrateUsers(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL,
		role TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	`)
	return err
}
