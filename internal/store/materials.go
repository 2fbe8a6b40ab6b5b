package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"mywarehouse/internal/categorizer"
	"mywarehouse/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Material is a warehouse stock item. A material row describes a product;
// individual units live in serial_numbers.
type Material struct {
	ID             int64
	Name           string
	Model          string
	Producer       string
	Description    string
	ImagePath      string
	RetailPrice    decimal.NullDecimal
	IsUsed         bool
	WarrantyMonths sql.NullInt64

	// Manual category set by an operator; wins over AutoCategory.
	Category string
	// Categorizer output.
	AutoCategory   string
	AutoConfidence float64
	ModelFamily    string

	LastModified float64

	// Filled by ListMaterials.
	AvailableSerials int
	TotalSerials     int
}

// EffectiveCategory returns the manual category when set, otherwise the
// auto category.
func (m Material) EffectiveCategory() string {
	if m.Category != "" {
		return m.Category
	}
	return m.AutoCategory
}

// materialUpdatable lists the columns SetMaterialFields may touch.
var materialUpdatable = map[string]bool{
	"name":            true,
	"model":           true,
	"producer":        true,
	"description":     true,
	"image_path":      true,
	"retail_price":    true,
	"is_used":         true,
	"warranty_months": true,
}

// AddMaterial inserts a new material and returns its id.
func (s *Store) AddMaterial(m Material) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Name == "" || m.Model == "" {
		return 0, fmt.Errorf("material name and model are required")
	}

	res, err := s.db.Exec(
		`INSERT INTO materials
		 (name, model, producer, description, image_path, retail_price, is_used, warranty_months, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))`,
		m.Name, m.Model, nullable(m.Producer), nullable(m.Description),
		nullable(m.ImagePath), m.RetailPrice, boolToInt(m.IsUsed), m.WarrantyMonths,
	)
	if err != nil {
		return 0, fmt.Errorf("add material %s %s: %w", m.Name, m.Model, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("material insert id: %w", err)
	}

	logging.Store("added material %d (%s %s)", id, m.Name, m.Model)
	return id, nil
}

// SetMaterialFields updates arbitrary (whitelisted) columns of a material.
func (s *Store) SetMaterialFields(id int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fields) == 0 {
		return nil
	}

	var sets []string
	var params []interface{}
	for col, val := range fields {
		if !materialUpdatable[col] {
			return fmt.Errorf("material column %q is not updatable", col)
		}
		sets = append(sets, col+" = ?")
		params = append(params, val)
	}
	params = append(params, id)

	res, err := s.db.Exec(
		fmt.Sprintf("UPDATE materials SET %s, last_modified = strftime('%%s','now') WHERE id = ?",
			strings.Join(sets, ", ")),
		params...,
	)
	if err != nil {
		return fmt.Errorf("update material %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, ErrNotFound)
	}
	return nil
}

// MaterialFilter narrows ListMaterials.
type MaterialFilter struct {
	Used     bool   // list used stock instead of new
	Query    string // case-insensitive substring on name, model, producer or description
	Category string // matches manual or auto category
}

const materialColumns = `id, name, model, producer, description, image_path,
	retail_price, is_used, warranty_months, category, auto_category,
	auto_confidence, model_family, last_modified`

// ListMaterials returns materials matching the filter, ordered by name
// then model, with per-material serial availability counts.
func (s *Store) ListMaterials(f MaterialFilter) ([]Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clauses := []string{"is_used = ?"}
	params := []interface{}{boolToInt(f.Used)}
	if f.Query != "" {
		clauses = append(clauses,
			`(lower(name) LIKE ? OR lower(model) LIKE ?
			  OR lower(ifnull(producer, '')) LIKE ? OR lower(ifnull(description, '')) LIKE ?)`)
		like := "%" + strings.ToLower(f.Query) + "%"
		params = append(params, like, like, like, like)
	}
	if f.Category != "" {
		clauses = append(clauses, "(category = ? OR auto_category = ?)")
		params = append(params, f.Category, f.Category)
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT %s,
		   (SELECT COUNT(*) FROM serial_numbers WHERE material_id = materials.id AND assigned_to IS NULL) AS available_serials,
		   (SELECT COUNT(*) FROM serial_numbers WHERE material_id = materials.id) AS total_serials
		 FROM materials WHERE %s ORDER BY name, model`,
		materialColumns, strings.Join(clauses, " AND ")),
		params...,
	)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MaterialByID returns a material, or ErrNotFound.
func (s *Store) MaterialByID(id int64) (*Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM materials WHERE id = ?", materialColumns), id)

	m, err := scanMaterial(row, false)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("material %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get material %d: %w", id, err)
	}
	return m, nil
}

// SetMaterialCategory sets the manual category; empty clears it so the
// auto category applies again.
func (s *Store) SetMaterialCategory(id int64, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE materials SET category = ?, last_modified = strftime('%s','now') WHERE id = ?",
		nullable(category), id,
	)
	if err != nil {
		return fmt.Errorf("set category for material %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, ErrNotFound)
	}
	return nil
}

// AllCategories returns the distinct non-empty categories in use, manual
// and auto combined, sorted.
func (s *Store) AllCategories() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT category FROM (
			SELECT category FROM materials WHERE category IS NOT NULL
			UNION ALL
			SELECT auto_category FROM materials WHERE auto_category IS NOT NULL
		) GROUP BY category HAVING COUNT(*) > 0
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("all categories: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// DynamicCategories returns auto categories that appear at least minCount
// times, sorted.
func (s *Store) DynamicCategories(minCount int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT auto_category FROM materials
		WHERE auto_category IS NOT NULL
		GROUP BY auto_category
		HAVING COUNT(*) >= ?
		ORDER BY auto_category`, minCount)
	if err != nil {
		return nil, fmt.Errorf("dynamic categories: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Autocategorize runs the categorizer on one material and persists the
// auto category, confidence and model family. Returns the updated material.
func (s *Store) Autocategorize(id int64) (*Material, error) {
	m, err := s.MaterialByID(id)
	if err != nil {
		return nil, err
	}

	// Guess reads the alias table through the store, so it runs outside
	// the write lock.
	result := categorizer.Guess(categorizer.Fields{
		Name:        m.Name,
		Model:       m.Model,
		Producer:    m.Producer,
		Description: m.Description,
	}, s)

	s.mu.Lock()
	_, err = s.db.Exec(
		`UPDATE materials SET auto_category = ?, auto_confidence = ?, model_family = ?,
		 last_modified = strftime('%s','now') WHERE id = ?`,
		nullable(result.Category), result.Confidence, nullable(result.Family), id,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("autocategorize material %d: %w", id, err)
	}

	m.AutoCategory = result.Category
	m.AutoConfidence = result.Confidence
	m.ModelFamily = result.Family
	logging.Categorizer("material %d -> %q (%.2f)", id, result.Category, result.Confidence)
	return m, nil
}

// BatchAutocategorize categorizes all materials (or only those without a
// manual category) using up to workers goroutines. Per-material failures
// are logged, not fatal. Returns the updated materials.
func (s *Store) BatchAutocategorize(onlyUncategorized bool, workers int) ([]Material, error) {
	timer := logging.StartTimer(logging.CategoryCategorizer, "BatchAutocategorize")
	defer timer.Stop()

	s.mu.RLock()
	query := "SELECT id FROM materials"
	if onlyUncategorized {
		query += " WHERE category IS NULL"
	}
	rows, err := s.db.Query(query)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("list material ids: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			s.mu.RUnlock()
			return nil, fmt.Errorf("scan material id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	s.mu.RUnlock()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if workers < 1 {
		workers = 1
	}

	var (
		g       errgroup.Group
		resMu   sync.Mutex
		results []Material
	)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			m, err := s.Autocategorize(id)
			if err != nil {
				logging.Get(logging.CategoryCategorizer).Error(
					"auto categorisation failed for material %d: %v", id, err)
				return nil
			}
			resMu.Lock()
			results = append(results, *m)
			resMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logging.Categorizer("batch categorized %d/%d materials", len(results), len(ids))
	return results, nil
}

func scanMaterial(r rowScanner, withCounts bool) (*Material, error) {
	var m Material
	var producer, description, imagePath, category, autoCategory, family sql.NullString
	var autoConf sql.NullFloat64
	var isUsed int

	dest := []interface{}{
		&m.ID, &m.Name, &m.Model, &producer, &description, &imagePath,
		&m.RetailPrice, &isUsed, &m.WarrantyMonths, &category, &autoCategory,
		&autoConf, &family, &m.LastModified,
	}
	if withCounts {
		dest = append(dest, &m.AvailableSerials, &m.TotalSerials)
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}

	m.Producer = producer.String
	m.Description = description.String
	m.ImagePath = imagePath.String
	m.IsUsed = isUsed != 0
	m.Category = category.String
	m.AutoCategory = autoCategory.String
	m.AutoConfidence = autoConf.Float64
	m.ModelFamily = family.String
	return &m, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
