package exchange

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mywarehouse/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "materials.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportMaterialsCSV(t *testing.T) {
	s := newTestStore(t)

	path := writeTempCSV(t, `name,model,producer,description,retail_price,warranty_months,serials
IP Camera,DS-2CD2343G2-I,Hikvision,Dome camera,95.50,24,"CAM1,CAM2"
Switch,TL-SG1005P,TP-LINK,PoE Switch,50,12,SW1
,MISSING-NAME,,,,,
Panel,DS-PK1,,keypad,not-a-price,junk,
`)

	count, err := ImportMaterials(s, path, false)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "row without name is skipped")

	materials, err := s.ListMaterials(store.MaterialFilter{})
	require.NoError(t, err)
	require.Len(t, materials, 3)

	// Ordered by name: IP Camera, Panel, Switch.
	cam := materials[0]
	assert.Equal(t, "IP Camera", cam.Name)
	assert.Equal(t, "Hikvision", cam.Producer)
	assert.True(t, cam.RetailPrice.Valid)
	assert.True(t, cam.RetailPrice.Decimal.Equal(decimal.RequireFromString("95.50")))
	assert.EqualValues(t, 24, cam.WarrantyMonths.Int64)
	assert.Equal(t, 2, cam.TotalSerials)
	assert.Equal(t, "Camera", cam.AutoCategory, "import should auto-categorize")

	panel := materials[1]
	assert.False(t, panel.RetailPrice.Valid, "bad price imports as NULL")
	assert.False(t, panel.WarrantyMonths.Valid, "bad warranty imports as NULL")

	sw := materials[2]
	assert.Equal(t, 1, sw.TotalSerials)
}

func TestImportMaterialsAltColumnNames(t *testing.T) {
	s := newTestStore(t)

	path := writeTempCSV(t, "name,model,price,warranty,serial\nThing,T-1,10,6,S1\n")

	count, err := ImportMaterials(s, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	materials, _ := s.ListMaterials(store.MaterialFilter{})
	require.Len(t, materials, 1)
	assert.True(t, materials[0].RetailPrice.Valid)
	assert.EqualValues(t, 6, materials[0].WarrantyMonths.Int64)
	assert.Equal(t, 1, materials[0].TotalSerials)
}

func TestImportMaterialsUsedFlag(t *testing.T) {
	s := newTestStore(t)

	path := writeTempCSV(t, "name,model\nOld DVR,XVR-8\n")

	count, err := ImportMaterials(s, path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	used, _ := s.ListMaterials(store.MaterialFilter{Used: true})
	assert.Len(t, used, 1)
}

func TestImportMissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := ImportMaterials(s, filepath.Join(t.TempDir(), "nope.csv"), false)
	assert.Error(t, err)
}

func TestExportImportCSVRoundTrip(t *testing.T) {
	src := newTestStore(t)

	id, err := src.AddMaterial(store.Material{
		Name: "IP Camera", Model: "DS-2CD2343G2-I", Producer: "Hikvision",
	})
	require.NoError(t, err)
	_, _, err = src.AddSerials(id, []string{"CAM1"}, store.SerialOptions{})
	require.NoError(t, err)
	_, err = src.Autocategorize(id)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.csv")
	count, err := ExportMaterials(src, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	dst := newTestStore(t)
	imported, err := ImportMaterials(dst, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	want, _ := src.ListMaterials(store.MaterialFilter{})
	got, _ := dst.ListMaterials(store.MaterialFilter{})
	require.Len(t, got, 1)

	// Serial lists are not exported, so only the descriptive fields
	// survive the round trip.
	type key struct{ Name, Model, Producer, AutoCategory string }
	diff := cmp.Diff(
		key{want[0].Name, want[0].Model, want[0].Producer, want[0].AutoCategory},
		key{got[0].Name, got[0].Model, got[0].Producer, got[0].AutoCategory},
	)
	assert.Empty(t, diff)
}

func TestExportExcelReadBack(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMaterial(store.Material{Name: "Switch", Model: "TL-SG1005P"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	count, err := ExportMaterials(s, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0][1])
	assert.Equal(t, "Switch", rows[1][1])
}

func TestImportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "model", "serials"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"IP Camera", "DS-2CD2343G2-I", "CAM1\nCAM2"}))
	require.NoError(t, f.SaveAs(path))
	f.Close()

	s := newTestStore(t)
	count, err := ImportMaterials(s, path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	materials, _ := s.ListMaterials(store.MaterialFilter{})
	require.Len(t, materials, 1)
	assert.Equal(t, 2, materials[0].TotalSerials)
}

func TestSplitSerials(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, splitSerials("A, B\nC"))
	assert.Nil(t, splitSerials("  ,\n"))
}
