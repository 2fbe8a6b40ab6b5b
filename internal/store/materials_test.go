package store

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddMaterialRequiresNameAndModel(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddMaterial(Material{Name: "only name"}); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := s.AddMaterial(Material{Model: "only model"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestListMaterialsFilters(t *testing.T) {
	s := newTestStore(t)

	camID, _ := s.AddMaterial(Material{Name: "IP Camera", Model: "DS-2CD2343G2-I", Producer: "Hikvision"})
	swID, _ := s.AddMaterial(Material{Name: "Switch", Model: "TL-SG1005P", Description: "5-port PoE"})
	usedID, _ := s.AddMaterial(Material{Name: "Old DVR", Model: "XVR-8", IsUsed: true})

	s.AddSerials(camID, []string{"CAM1", "CAM2"}, SerialOptions{})
	s.AddSerials(swID, []string{"SW1"}, SerialOptions{})

	c, _ := s.AddCustomer(Customer{ID: "C-1", Name: "X"})
	s.AssignSerial(c.ID, "CAM1")

	newStock, err := s.ListMaterials(MaterialFilter{})
	if err != nil {
		t.Fatalf("ListMaterials failed: %v", err)
	}
	if len(newStock) != 2 {
		t.Fatalf("expected 2 new materials, got %d", len(newStock))
	}
	// Ordered by name: IP Camera before Switch.
	if newStock[0].ID != camID {
		t.Errorf("expected camera first, got %d", newStock[0].ID)
	}
	if newStock[0].TotalSerials != 2 || newStock[0].AvailableSerials != 1 {
		t.Errorf("camera counts wrong: total=%d available=%d",
			newStock[0].TotalSerials, newStock[0].AvailableSerials)
	}

	used, err := s.ListMaterials(MaterialFilter{Used: true})
	if err != nil {
		t.Fatalf("ListMaterials(used) failed: %v", err)
	}
	if len(used) != 1 || used[0].ID != usedID {
		t.Errorf("used filter wrong: %+v", used)
	}

	byQuery, err := s.ListMaterials(MaterialFilter{Query: "sg1005"})
	if err != nil {
		t.Fatalf("ListMaterials(query) failed: %v", err)
	}
	if len(byQuery) != 1 || byQuery[0].ID != swID {
		t.Errorf("query filter wrong: %+v", byQuery)
	}

	byProducer, err := s.ListMaterials(MaterialFilter{Query: "hikvis"})
	if err != nil {
		t.Fatalf("ListMaterials(producer query) failed: %v", err)
	}
	if len(byProducer) != 1 || byProducer[0].ID != camID {
		t.Errorf("producer query wrong: %+v", byProducer)
	}

	byDescription, err := s.ListMaterials(MaterialFilter{Query: "poe"})
	if err != nil {
		t.Fatalf("ListMaterials(description query) failed: %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].ID != swID {
		t.Errorf("description query wrong: %+v", byDescription)
	}
}

func TestListMaterialsByCategory(t *testing.T) {
	s := newTestStore(t)

	id1, _ := s.AddMaterial(Material{Name: "A", Model: "M1"})
	id2, _ := s.AddMaterial(Material{Name: "B", Model: "M2"})
	s.SetMaterialCategory(id1, "Camera")
	// id2 gets an auto category only.
	s.db.Exec("UPDATE materials SET auto_category = 'Camera' WHERE id = ?", id2)

	matches, err := s.ListMaterials(MaterialFilter{Category: "Camera"})
	if err != nil {
		t.Fatalf("ListMaterials failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("category filter should match manual and auto, got %d", len(matches))
	}
}

func TestSetMaterialFields(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.AddMaterial(Material{Name: "A", Model: "M1"})

	price := decimal.NewNullDecimal(decimal.NewFromFloat(19.90))
	err := s.SetMaterialFields(id, map[string]interface{}{
		"producer":     "TP-LINK",
		"retail_price": price,
	})
	if err != nil {
		t.Fatalf("SetMaterialFields failed: %v", err)
	}

	m, err := s.MaterialByID(id)
	if err != nil {
		t.Fatalf("MaterialByID failed: %v", err)
	}
	if m.Producer != "TP-LINK" {
		t.Errorf("producer not updated: %q", m.Producer)
	}
	if !m.RetailPrice.Valid || !m.RetailPrice.Decimal.Equal(decimal.NewFromFloat(19.90)) {
		t.Errorf("price not updated: %v", m.RetailPrice)
	}

	if err := s.SetMaterialFields(id, map[string]interface{}{"category": "x"}); err == nil {
		t.Error("category must go through SetMaterialCategory, not SetMaterialFields")
	}
}

func TestSetMaterialCategoryClear(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.AddMaterial(Material{Name: "A", Model: "M1"})

	if err := s.SetMaterialCategory(id, "Panel"); err != nil {
		t.Fatalf("SetMaterialCategory failed: %v", err)
	}
	m, _ := s.MaterialByID(id)
	if m.Category != "Panel" {
		t.Errorf("category not set: %q", m.Category)
	}

	if err := s.SetMaterialCategory(id, ""); err != nil {
		t.Fatalf("clearing category failed: %v", err)
	}
	m, _ = s.MaterialByID(id)
	if m.Category != "" {
		t.Errorf("category not cleared: %q", m.Category)
	}
}

func TestAutocategorize(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.AddMaterial(Material{Name: "IP Camera", Model: "DS-2CD2343G2-I"})

	m, err := s.Autocategorize(id)
	if err != nil {
		t.Fatalf("Autocategorize failed: %v", err)
	}
	if m.AutoCategory != "Camera" {
		t.Errorf("expected Camera, got %q", m.AutoCategory)
	}
	if m.ModelFamily != "DS-2CD" {
		t.Errorf("expected family DS-2CD, got %q", m.ModelFamily)
	}

	// Persisted, not just returned.
	got, _ := s.MaterialByID(id)
	if got.AutoCategory != "Camera" || got.AutoConfidence <= 0 {
		t.Errorf("auto category not persisted: %+v", got)
	}
}

func TestAutocategorizeUsesLearnedAliases(t *testing.T) {
	s := newTestStore(t)

	if err := s.LearnAlias("FooScan", "Sensor"); err != nil {
		t.Fatalf("LearnAlias failed: %v", err)
	}

	id, _ := s.AddMaterial(Material{Name: "FooScan unit", Model: "FS-1"})
	m, err := s.Autocategorize(id)
	if err != nil {
		t.Fatalf("Autocategorize failed: %v", err)
	}
	if m.AutoCategory != "Sensor" {
		t.Errorf("expected Sensor via alias, got %q", m.AutoCategory)
	}
}

func TestBatchAutocategorizeOnlyUncategorized(t *testing.T) {
	s := newTestStore(t)

	manualID, _ := s.AddMaterial(Material{Name: "IP Camera", Model: "DS-2CD2343G2-I"})
	s.SetMaterialCategory(manualID, "Special")
	autoID, _ := s.AddMaterial(Material{Name: "PoE Switch", Model: "TL-SG1005P"})

	results, err := s.BatchAutocategorize(true, 4)
	if err != nil {
		t.Fatalf("BatchAutocategorize failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != autoID {
		t.Fatalf("expected only the uncategorized material, got %+v", results)
	}

	all, err := s.BatchAutocategorize(false, 2)
	if err != nil {
		t.Fatalf("BatchAutocategorize(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both materials, got %d", len(all))
	}
}

func TestCategoryListings(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		id, _ := s.AddMaterial(Material{Name: "Cam", Model: "DS-2CD2343G2-I"})
		s.Autocategorize(id)
	}
	onceID, _ := s.AddMaterial(Material{Name: "DVR", Model: "XVR-8", Description: "XVR recorder"})
	s.Autocategorize(onceID)
	manualID, _ := s.AddMaterial(Material{Name: "Thing", Model: "T-1"})
	s.SetMaterialCategory(manualID, "Misc")

	all, err := s.AllCategories()
	if err != nil {
		t.Fatalf("AllCategories failed: %v", err)
	}
	want := map[string]bool{"Camera": true, "DVR": true, "Misc": true}
	if len(all) != len(want) {
		t.Fatalf("expected %d categories, got %v", len(want), all)
	}
	for _, c := range all {
		if !want[c] {
			t.Errorf("unexpected category %q", c)
		}
	}

	dynamic, err := s.DynamicCategories(3)
	if err != nil {
		t.Fatalf("DynamicCategories failed: %v", err)
	}
	if len(dynamic) != 1 || dynamic[0] != "Camera" {
		t.Errorf("expected only Camera with >=3 hits, got %v", dynamic)
	}
}

func TestEffectiveCategory(t *testing.T) {
	m := Material{AutoCategory: "Camera"}
	if m.EffectiveCategory() != "Camera" {
		t.Error("auto category should apply when no manual category")
	}
	m.Category = "Special"
	if m.EffectiveCategory() != "Special" {
		t.Error("manual category should win")
	}
}
