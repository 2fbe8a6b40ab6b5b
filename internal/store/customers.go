package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mywarehouse/internal/logging"
)

// Customer is a warehouse customer. PIN4 is the short code technicians
// quote on the phone to identify themselves.
type Customer struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PIN4         string
	LastModified float64
}

// customerUpdatable lists the columns UpdateCustomer may touch.
var customerUpdatable = map[string]bool{
	"name":  true,
	"phone": true,
	"email": true,
	"pin4":  true,
}

// AddCustomer inserts a new customer. An empty ID gets a generated UUID.
// Returns the stored customer. Duplicate IDs surface as a constraint error.
func (s *Store) AddCustomer(c Customer) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Name == "" {
		return Customer{}, fmt.Errorf("customer name is required")
	}

	_, err := s.db.Exec(
		`INSERT INTO customers (id, name, phone, email, pin4, last_modified)
		 VALUES (?, ?, ?, ?, ?, strftime('%s','now'))`,
		c.ID, c.Name, nullable(c.Phone), nullable(c.Email), nullable(c.PIN4),
	)
	if err != nil {
		return Customer{}, fmt.Errorf("add customer %s: %w", c.ID, err)
	}

	logging.Store("added customer %s (%s)", c.ID, c.Name)
	return c, nil
}

// UpdateCustomer updates the given fields of a customer. Unknown columns
// are rejected; an empty field set is a no-op.
func (s *Store) UpdateCustomer(id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fields) == 0 {
		return nil
	}

	var sets []string
	var params []interface{}
	for col, val := range fields {
		if !customerUpdatable[col] {
			return fmt.Errorf("customer column %q is not updatable", col)
		}
		sets = append(sets, col+" = ?")
		params = append(params, nullable(val))
	}
	params = append(params, id)

	res, err := s.db.Exec(
		fmt.Sprintf("UPDATE customers SET %s, last_modified = strftime('%%s','now') WHERE id = ?",
			strings.Join(sets, ", ")),
		params...,
	)
	if err != nil {
		return fmt.Errorf("update customer %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return nil
}

// CustomerByID returns a customer, or ErrNotFound.
func (s *Store) CustomerByID(id string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT id, name, phone, email, pin4, last_modified FROM customers WHERE id = ?", id)

	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return c, nil
}

// SearchCustomers returns customers whose id, name, phone or email
// contains the query, case-insensitively, ordered by name. An empty
// query returns everyone.
func (s *Store) SearchCustomers(query string) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	like := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(
		`SELECT id, name, phone, email, pin4, last_modified FROM customers
		 WHERE lower(name) LIKE ? OR lower(id) LIKE ?
		    OR lower(ifnull(phone, '')) LIKE ? OR lower(ifnull(email, '')) LIKE ?
		 ORDER BY name ASC`,
		like, like, like, like,
	)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// HistoryEntry is one assignment in a customer's history, enriched with
// the serial's production and acquisition dates.
type HistoryEntry struct {
	Assignment
	ProductionDate  string
	AcquisitionDate string
}

// CustomerHistory returns the customer's assignments, newest first,
// including soft-deleted ones.
func (s *Store) CustomerHistory(customerID string) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT a.id, a.customer_id, a.serial, a.assigned_date, a.material_id,
		        a.material_name, a.material_model, a.warranty_expiration, a.deleted,
		        s.production_date, s.acquisition_date
		 FROM assignments AS a
		 LEFT JOIN serial_numbers AS s ON s.serial = a.serial
		 WHERE a.customer_id = ?
		 ORDER BY a.assigned_date DESC, a.id DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("customer history %s: %w", customerID, err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var warranty, prod, acq sql.NullString
		var deleted int
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Serial, &e.AssignedDate,
			&e.MaterialID, &e.MaterialName, &e.MaterialModel, &warranty,
			&deleted, &prod, &acq); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.WarrantyExpiration = warranty.String
		e.Deleted = deleted != 0
		e.ProductionDate = prod.String
		e.AcquisitionDate = acq.String
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(r rowScanner) (*Customer, error) {
	var c Customer
	var phone, email, pin sql.NullString
	if err := r.Scan(&c.ID, &c.Name, &phone, &email, &pin, &c.LastModified); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Email = email.String
	c.PIN4 = pin.String
	return &c, nil
}

// nullable maps the empty string to NULL so optional text columns stay
// NULL instead of collecting empty strings.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
