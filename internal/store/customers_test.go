package store

import (
	"errors"
	"testing"
)

func TestAddCustomerGeneratesID(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddCustomer(Customer{Name: "No ID"})
	if err != nil {
		t.Fatalf("AddCustomer failed: %v", err)
	}
	if c.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestAddCustomerRequiresName(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddCustomer(Customer{ID: "X"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestAddCustomerDuplicateID(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddCustomer(Customer{ID: "DUP", Name: "One"}); err != nil {
		t.Fatalf("AddCustomer failed: %v", err)
	}
	if _, err := s.AddCustomer(Customer{ID: "DUP", Name: "Two"}); err == nil {
		t.Error("expected constraint error for duplicate id")
	}
}

func TestUpdateCustomer(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddCustomer(Customer{ID: "C-1", Name: "Before", Phone: "111"})
	if err != nil {
		t.Fatalf("AddCustomer failed: %v", err)
	}

	err = s.UpdateCustomer(c.ID, map[string]string{"name": "After", "email": "a@b.gr"})
	if err != nil {
		t.Fatalf("UpdateCustomer failed: %v", err)
	}

	got, err := s.CustomerByID(c.ID)
	if err != nil {
		t.Fatalf("CustomerByID failed: %v", err)
	}
	if got.Name != "After" || got.Email != "a@b.gr" || got.Phone != "111" {
		t.Errorf("unexpected customer after update: %+v", got)
	}
}

func TestUpdateCustomerRejectsUnknownColumn(t *testing.T) {
	s := newTestStore(t)

	c, _ := s.AddCustomer(Customer{ID: "C-1", Name: "X"})
	if err := s.UpdateCustomer(c.ID, map[string]string{"id": "evil"}); err == nil {
		t.Error("expected error for non-updatable column")
	}
}

func TestCustomerByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CustomerByID("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchCustomers(t *testing.T) {
	s := newTestStore(t)

	s.AddCustomer(Customer{ID: "GR-01", Name: "Papadopoulos"})
	s.AddCustomer(Customer{ID: "GR-02", Name: "Antoniou"})
	s.AddCustomer(Customer{ID: "DE-01", Name: "Schmidt"})

	byName, err := s.SearchCustomers("PAPA")
	if err != nil {
		t.Fatalf("SearchCustomers failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "GR-01" {
		t.Errorf("name search wrong: %+v", byName)
	}

	byID, err := s.SearchCustomers("gr-")
	if err != nil {
		t.Fatalf("SearchCustomers failed: %v", err)
	}
	if len(byID) != 2 {
		t.Errorf("expected 2 matches on id, got %d", len(byID))
	}
	// Ordered by name: Antoniou before Papadopoulos.
	if byID[0].Name != "Antoniou" {
		t.Errorf("expected name ordering, got %s first", byID[0].Name)
	}

	all, err := s.SearchCustomers("")
	if err != nil {
		t.Fatalf("SearchCustomers failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("empty query should return everyone, got %d", len(all))
	}
}

func TestCustomerHistoryIncludesSoftDeleted(t *testing.T) {
	s := newTestStore(t)

	c, _ := s.AddCustomer(Customer{ID: "C-1", Name: "X"})
	mid, _ := s.AddMaterial(Material{Name: "Camera", Model: "DS-2CD2343G2-I"})
	s.AddSerials(mid, []string{"CAM1"}, SerialOptions{})

	if err := s.AssignSerial(c.ID, "CAM1"); err != nil {
		t.Fatalf("AssignSerial failed: %v", err)
	}
	if err := s.UnassignSerial("CAM1", false); err != nil {
		t.Fatalf("UnassignSerial failed: %v", err)
	}

	history, err := s.CustomerHistory(c.ID)
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected soft-deleted entry in history, got %d entries", len(history))
	}
	if !history[0].Deleted {
		t.Error("entry should be marked deleted")
	}
}
