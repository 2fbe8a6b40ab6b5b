// Package exchange converts between tabular files (CSV, Excel) and
// warehouse records.
package exchange

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"mywarehouse/internal/logging"
	"mywarehouse/internal/store"
)

// Warehouse is the slice of the store the exchange layer needs.
type Warehouse interface {
	AddMaterial(store.Material) (int64, error)
	AddSerials(materialID int64, serials []string, opts store.SerialOptions) (int, []string, error)
	Autocategorize(materialID int64) (*store.Material, error)
	ListMaterials(store.MaterialFilter) ([]store.Material, error)
}

// ImportMaterials imports materials from a CSV or Excel file, chosen by
// extension. Expected columns: name, model, producer, description,
// retail_price (or price), warranty_months (or warranty), serials (or
// serial; comma or newline separated). Rows missing name or model are
// skipped; per-row failures are logged and do not abort the run. Each
// imported material is auto-categorized. Returns the number of materials
// created.
func ImportMaterials(w Warehouse, path string, used bool) (int, error) {
	timer := logging.StartTimer(logging.CategoryExchange, "ImportMaterials")
	defer timer.Stop()

	rows, err := readRows(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for i, row := range rows {
		name := row["name"]
		model := row["model"]
		if name == "" || model == "" {
			logging.ExchangeWarn("row %d: missing name or model; skipping", i+2)
			continue
		}

		m := store.Material{
			Name:        name,
			Model:       model,
			Producer:    row["producer"],
			Description: row["description"],
			IsUsed:      used,
		}
		if raw := firstOf(row, "retail_price", "price"); raw != "" {
			if price, err := decimal.NewFromString(raw); err == nil {
				m.RetailPrice = decimal.NewNullDecimal(price)
			} else {
				logging.ExchangeWarn("row %d: bad price %q; importing without", i+2, raw)
			}
		}
		if raw := firstOf(row, "warranty_months", "warranty"); raw != "" {
			if months, err := strconv.ParseInt(raw, 10, 64); err == nil {
				m.WarrantyMonths.Int64 = months
				m.WarrantyMonths.Valid = true
			} else {
				logging.ExchangeWarn("row %d: bad warranty %q; importing without", i+2, raw)
			}
		}

		id, err := w.AddMaterial(m)
		if err != nil {
			logging.Get(logging.CategoryExchange).Error("row %d: failed to import: %v", i+2, err)
			continue
		}

		if raw := firstOf(row, "serials", "serial"); raw != "" {
			serials := splitSerials(raw)
			if _, skipped, err := w.AddSerials(id, serials, store.SerialOptions{}); err != nil {
				logging.Get(logging.CategoryExchange).Error("row %d: failed to add serials: %v", i+2, err)
			} else if len(skipped) > 0 {
				logging.ExchangeWarn("row %d: %d serials already existed", i+2, len(skipped))
			}
		}

		if _, err := w.Autocategorize(id); err != nil {
			logging.ExchangeWarn("row %d: autocategorize failed: %v", i+2, err)
		}
		count++
	}

	logging.Exchange("imported %d materials from %s", count, path)
	return count, nil
}

// readRows loads a tabular file into maps keyed by lowercased header.
func readRows(path string) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return readExcelRows(path)
	default:
		return readCSVRows(path)
	}
}

func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recordsToRows(records), nil
}

func readExcelRows(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return recordsToRows(records), nil
}

func recordsToRows(records [][]string) []map[string]string {
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, cell := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// splitSerials accepts comma or newline separated serial lists.
func splitSerials(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}
