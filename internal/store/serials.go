package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"mywarehouse/internal/logging"
)

// SerialNumber is one physical unit of a material. Dates are ISO 8601
// (YYYY-MM-DD) strings; empty means unknown.
type SerialNumber struct {
	Serial             string
	MaterialID         int64
	ProductionDate     string
	AcquisitionDate    string
	WarrantyExpiration string
	AssignedTo         string // customer id, empty when in stock
	RetailPrice        decimal.NullDecimal
	LastModified       float64
}

// SerialOptions carries the optional attributes for a batch insert.
type SerialOptions struct {
	ProductionDate  string
	AcquisitionDate string
	RetailPrice     decimal.NullDecimal
}

// AddSerials bulk-inserts serial numbers for a material. Serials that
// already exist are skipped and reported back, not treated as fatal.
func (s *Store) AddSerials(materialID int64, serials []string, opts SerialOptions) (added int, skipped []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("begin add serials: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO serial_numbers
		 (serial, material_id, production_date, acquisition_date, retail_price, last_modified)
		 VALUES (?, ?, ?, ?, ?, strftime('%s','now'))`)
	if err != nil {
		return 0, nil, fmt.Errorf("prepare serial insert: %w", err)
	}
	defer stmt.Close()

	for _, serial := range serials {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			continue
		}
		_, err := stmt.Exec(serial, materialID,
			nullable(opts.ProductionDate), nullable(opts.AcquisitionDate), opts.RetailPrice)
		if err != nil {
			if isConstraintErr(err) {
				logging.Get(logging.CategoryStore).Warn("serial %s already exists; skipping", serial)
				skipped = append(skipped, serial)
				continue
			}
			return 0, nil, fmt.Errorf("insert serial %s: %w", serial, err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit add serials: %w", err)
	}

	logging.Store("added %d serials to material %d (%d skipped)", added, materialID, len(skipped))
	return added, skipped, nil
}

// DeleteSerials removes the given serials.
func (s *Store) DeleteSerials(serials []string) error {
	if len(serials) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	params := make([]interface{}, len(serials))
	for i, serial := range serials {
		params[i] = serial
	}
	_, err := s.db.Exec(
		fmt.Sprintf("DELETE FROM serial_numbers WHERE serial IN (%s)", placeholders(len(serials))),
		params...,
	)
	if err != nil {
		return fmt.Errorf("delete serials: %w", err)
	}
	return nil
}

// SerialsByMaterial returns a material's serials ordered by production
// date, optionally including ones assigned to a customer.
func (s *Store) SerialsByMaterial(materialID int64, includeAssigned bool) ([]SerialNumber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT serial, material_id, production_date, acquisition_date,
	          warranty_expiration, assigned_to, retail_price, last_modified
	          FROM serial_numbers WHERE material_id = ?`
	if !includeAssigned {
		query += " AND assigned_to IS NULL"
	}
	query += " ORDER BY production_date"

	rows, err := s.db.Query(query, materialID)
	if err != nil {
		return nil, fmt.Errorf("serials by material %d: %w", materialID, err)
	}
	defer rows.Close()

	var out []SerialNumber
	for rows.Next() {
		var sn SerialNumber
		var prod, acq, warranty, assigned sql.NullString
		if err := rows.Scan(&sn.Serial, &sn.MaterialID, &prod, &acq, &warranty,
			&assigned, &sn.RetailPrice, &sn.LastModified); err != nil {
			return nil, fmt.Errorf("scan serial: %w", err)
		}
		sn.ProductionDate = prod.String
		sn.AcquisitionDate = acq.String
		sn.WarrantyExpiration = warranty.String
		sn.AssignedTo = assigned.String
		out = append(out, sn)
	}
	return out, rows.Err()
}

// ResolveSerials splits the input into serials that exist and are
// currently unassigned (valid) and everything else (invalid).
func (s *Store) ResolveSerials(serials []string) (valid, invalid []string, err error) {
	if len(serials) == 0 {
		return nil, nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	params := make([]interface{}, len(serials))
	for i, serial := range serials {
		params[i] = serial
	}
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT serial, assigned_to FROM serial_numbers WHERE serial IN (%s)",
			placeholders(len(serials))),
		params...,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve serials: %w", err)
	}
	defer rows.Close()

	assigned := make(map[string]bool)
	for rows.Next() {
		var serial string
		var to sql.NullString
		if err := rows.Scan(&serial, &to); err != nil {
			return nil, nil, fmt.Errorf("scan serial: %w", err)
		}
		assigned[serial] = to.Valid
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, serial := range serials {
		taken, exists := assigned[serial]
		if exists && !taken {
			valid = append(valid, serial)
		} else {
			invalid = append(invalid, serial)
		}
	}
	return valid, invalid, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
