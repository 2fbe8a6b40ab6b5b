package store

import (
	"database/sql"
	"fmt"

	"mywarehouse/internal/logging"
)

// Assignment records a serial handed to a customer. Material name/model
// and warranty are snapshotted so history survives later edits to the
// material row.
type Assignment struct {
	ID                 int64
	CustomerID         string
	Serial             string
	AssignedDate       string
	MaterialID         int64
	MaterialName       string
	MaterialModel      string
	WarrantyExpiration string
	Deleted            bool
}

// AssignSerial assigns an unassigned serial to a customer, creating an
// assignment record and marking the serial taken.
func (s *Store) AssignSerial(customerID, serial string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer tx.Rollback()

	var materialID int64
	var warranty sql.NullString
	err = tx.QueryRow(
		"SELECT material_id, warranty_expiration FROM serial_numbers WHERE serial = ? AND assigned_to IS NULL",
		serial,
	).Scan(&materialID, &warranty)
	if err == sql.ErrNoRows {
		return fmt.Errorf("serial %s not available or does not exist", serial)
	}
	if err != nil {
		return fmt.Errorf("look up serial %s: %w", serial, err)
	}

	var name, model string
	err = tx.QueryRow("SELECT name, model FROM materials WHERE id = ?", materialID).
		Scan(&name, &model)
	if err == sql.ErrNoRows {
		return fmt.Errorf("material for serial %s: %w", serial, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("look up material %d: %w", materialID, err)
	}

	if _, err := tx.Exec(
		`INSERT INTO assignments
		 (customer_id, serial, assigned_date, material_id, material_name, material_model, warranty_expiration, last_modified)
		 VALUES (?, ?, date('now'), ?, ?, ?, ?, strftime('%s','now'))`,
		customerID, serial, materialID, name, model, warranty,
	); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	if _, err := tx.Exec(
		"UPDATE serial_numbers SET assigned_to = ?, last_modified = strftime('%s','now') WHERE serial = ?",
		customerID, serial,
	); err != nil {
		return fmt.Errorf("mark serial assigned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assign: %w", err)
	}

	logging.Store("assigned serial %s to customer %s", serial, customerID)
	return nil
}

// UnassignSerial releases a serial from whoever holds it. The newest
// active assignment record is soft-deleted, or removed entirely when
// force is true. A serial with no active assignment is still cleared.
func (s *Store) UnassignSerial(serial string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unassignLocked(serial, force)
}

func (s *Store) unassignLocked(serial string, force bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin unassign: %w", err)
	}
	defer tx.Rollback()

	var assignmentID int64
	err = tx.QueryRow(
		"SELECT id FROM assignments WHERE serial = ? AND deleted = 0 ORDER BY assigned_date DESC, id DESC LIMIT 1",
		serial,
	).Scan(&assignmentID)
	switch {
	case err == sql.ErrNoRows:
		// No active assignment; still clear the serial below.
	case err != nil:
		return fmt.Errorf("look up assignment for %s: %w", serial, err)
	case force:
		if _, err := tx.Exec("DELETE FROM assignments WHERE id = ?", assignmentID); err != nil {
			return fmt.Errorf("delete assignment %d: %w", assignmentID, err)
		}
	default:
		if _, err := tx.Exec("UPDATE assignments SET deleted = 1 WHERE id = ?", assignmentID); err != nil {
			return fmt.Errorf("soft-delete assignment %d: %w", assignmentID, err)
		}
	}

	if _, err := tx.Exec(
		"UPDATE serial_numbers SET assigned_to = NULL, last_modified = strftime('%s','now') WHERE serial = ?",
		serial,
	); err != nil {
		return fmt.Errorf("clear serial %s: %w", serial, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unassign: %w", err)
	}

	logging.Store("unassigned serial %s (force=%v)", serial, force)
	return nil
}

// TransferToUsed moves serials to used stock: each is unassigned (when
// held, optionally only when held by fromCustomer) and its material's
// is_used flag is set. Unknown serials are skipped.
func (s *Store) TransferToUsed(serials []string, fromCustomer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, serial := range serials {
		var assigned sql.NullString
		var materialID int64
		err := s.db.QueryRow(
			"SELECT assigned_to, material_id FROM serial_numbers WHERE serial = ?", serial,
		).Scan(&assigned, &materialID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("look up serial %s: %w", serial, err)
		}

		if assigned.Valid && (fromCustomer == "" || assigned.String == fromCustomer) {
			if err := s.unassignLocked(serial, false); err != nil {
				return err
			}
		}

		if _, err := s.db.Exec(
			"UPDATE materials SET is_used = 1, last_modified = strftime('%s','now') WHERE id = ?",
			materialID,
		); err != nil {
			return fmt.Errorf("mark material %d used: %w", materialID, err)
		}
		if _, err := s.db.Exec(
			"UPDATE serial_numbers SET last_modified = strftime('%s','now') WHERE serial = ?",
			serial,
		); err != nil {
			return fmt.Errorf("touch serial %s: %w", serial, err)
		}
	}

	logging.Store("transferred %d serials to used stock", len(serials))
	return nil
}
