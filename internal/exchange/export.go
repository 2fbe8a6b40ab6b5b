package exchange

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mywarehouse/internal/logging"
	"mywarehouse/internal/store"
)

// exportHeader is the column set written by ExportMaterials.
var exportHeader = []string{
	"id", "name", "model", "producer", "description", "retail_price",
	"is_used", "warranty_months", "category", "auto_category",
	"auto_confidence", "model_family", "available_serials", "total_serials",
}

// ExportMaterials writes the (new or used) material list to a CSV or
// Excel file, chosen by extension. Returns the number of rows exported.
func ExportMaterials(w Warehouse, path string, used bool) (int, error) {
	timer := logging.StartTimer(logging.CategoryExchange, "ExportMaterials")
	defer timer.Stop()

	materials, err := w.ListMaterials(store.MaterialFilter{Used: used})
	if err != nil {
		return 0, err
	}

	records := make([][]string, 0, len(materials)+1)
	records = append(records, exportHeader)
	for _, m := range materials {
		records = append(records, materialRecord(m))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		err = writeExcel(path, records)
	default:
		err = writeCSV(path, records)
	}
	if err != nil {
		return 0, err
	}

	logging.Exchange("exported %d materials to %s", len(materials), path)
	return len(materials), nil
}

func materialRecord(m store.Material) []string {
	price := ""
	if m.RetailPrice.Valid {
		price = m.RetailPrice.Decimal.String()
	}
	warranty := ""
	if m.WarrantyMonths.Valid {
		warranty = strconv.FormatInt(m.WarrantyMonths.Int64, 10)
	}
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.Name,
		m.Model,
		m.Producer,
		m.Description,
		price,
		strconv.Itoa(boolToInt(m.IsUsed)),
		warranty,
		m.Category,
		m.AutoCategory,
		strconv.FormatFloat(m.AutoConfidence, 'f', 2, 64),
		m.ModelFamily,
		strconv.Itoa(m.AvailableSerials),
		strconv.Itoa(m.TotalSerials),
	}
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeExcel(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
