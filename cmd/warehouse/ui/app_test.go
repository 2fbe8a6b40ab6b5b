package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mywarehouse/internal/config"
	"mywarehouse/internal/store"
)

func newTestApp(t *testing.T) (AppModel, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return NewAppModel(st, config.DefaultConfig(), nil), st
}

// drain runs a command tree to completion and feeds every produced
// message back into the model, the way the bubbletea runtime would.
func drain(t *testing.T, m AppModel, cmd tea.Cmd) AppModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
		return m
	case errMsg:
		t.Fatalf("command failed: %v", msg.err)
		return m
	default:
		next, nextCmd := m.Update(msg)
		return drain(t, next.(AppModel), nextCmd)
	}
}

func TestAppLoadsContentOnInit(t *testing.T) {
	app, st := newTestApp(t)

	id, err := st.AddMaterial(store.Material{Name: "IP Camera", Model: "DS-2CD2343G2-I"})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.AddSerials(id, []string{"CAM1"}, store.SerialOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddCustomer(store.Customer{ID: "TEST-0001", Name: "Acme Security"}); err != nil {
		t.Fatal(err)
	}

	app = drain(t, app, app.Init())

	if !strings.Contains(app.View(), "IP Camera") {
		t.Fatalf("expected materials page after init:\n%s", app.View())
	}

	// Tab to customers, then to stats.
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = next.(AppModel)
	if !strings.Contains(app.View(), "Acme Security") {
		t.Fatalf("expected customers page:\n%s", app.View())
	}

	next, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = next.(AppModel)
	view := app.View()
	if !strings.Contains(view, "serial_numbers") {
		t.Fatalf("expected stats page:\n%s", view)
	}
}

func TestAppReloadsOnDBChange(t *testing.T) {
	app, st := newTestApp(t)
	app = drain(t, app, app.Init())

	if _, err := st.AddMaterial(store.Material{Name: "Switch", Model: "TL-SG1005P"}); err != nil {
		t.Fatal(err)
	}

	// The watcher is nil in tests, so inject the change signal directly.
	next, cmd := app.Update(dbChangedMsg{})
	app = drain(t, next.(AppModel), cmd)

	if !strings.Contains(app.View(), "Switch") {
		t.Fatalf("expected reloaded materials:\n%s", app.View())
	}
}

func TestMatchesDatabaseIncludesWALSidecar(t *testing.T) {
	if !matchesDatabase("warehouse.db", "/data/warehouse.db") {
		t.Error("main database file should match")
	}
	if !matchesDatabase("warehouse.db", "/data/warehouse.db-wal") {
		t.Error("WAL sidecar should match: commits land there until checkpoint")
	}
	if matchesDatabase("warehouse.db", "/data/warehouse.db-shm") {
		t.Error("shared-memory index should not trigger reloads")
	}
	if matchesDatabase("warehouse.db", "/data/other.db") {
		t.Error("unrelated files should not match")
	}
}

func TestAppQuitsOnQ(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
