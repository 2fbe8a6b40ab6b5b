package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mywarehouse/internal/store"
)

// searchCustomersMsg asks the app to run a customer search.
type searchCustomersMsg struct {
	Query string
}

// loadHistoryMsg asks the app to load a customer's assignment history.
type loadHistoryMsg struct {
	CustomerID string
}

// CustomersPageModel shows customer search results. Enter on a row
// loads that customer's assignment history; esc goes back to the list.
type CustomersPageModel struct {
	width  int
	height int
	table  table.Model

	customers []store.Customer

	// History of the selected customer, nil when showing the list.
	historyFor *store.Customer
	history    []store.HistoryEntry

	searchInput   textinput.Model
	searchFocused bool

	styles Styles
}

// NewCustomersPageModel creates the customers page.
func NewCustomersPageModel(styles Styles) CustomersPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 20},
			{Title: "Name", Width: 26},
			{Title: "Phone", Width: 14},
			{Title: "Email", Width: 24},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	si := textinput.New()
	si.Placeholder = "Search by id, name, phone or email..."
	si.CharLimit = 50
	si.Width = 40

	return CustomersPageModel{
		table:       t,
		searchInput: si,
		styles:      styles,
	}
}

// Init initializes the model.
func (m CustomersPageModel) Init() tea.Cmd {
	return nil
}

// SetSize resizes the page.
func (m *CustomersPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if h := height - 6; h > 3 {
		m.table.SetHeight(h)
	}
}

// UpdateContent replaces the customer list and leaves history view.
func (m *CustomersPageModel) UpdateContent(customers []store.Customer) {
	m.customers = customers
	m.historyFor = nil
	m.history = nil

	rows := make([]table.Row, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, table.Row{c.ID, c.Name, c.Phone, c.Email})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// ShowHistory switches to the history view for a customer.
func (m *CustomersPageModel) ShowHistory(c store.Customer, entries []store.HistoryEntry) {
	m.historyFor = &c
	m.history = entries
}

// Update handles messages.
func (m CustomersPageModel) Update(msg tea.Msg) (CustomersPageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchFocused {
			switch msg.String() {
			case "esc":
				m.searchFocused = false
				m.searchInput.Blur()
				return m, nil
			case "enter":
				m.searchFocused = false
				m.searchInput.Blur()
				query := m.searchInput.Value()
				return m, func() tea.Msg { return searchCustomersMsg{Query: query} }
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searchFocused = true
			m.searchInput.Focus()
			return m, nil
		case "esc":
			if m.historyFor != nil {
				m.historyFor = nil
				m.history = nil
				return m, nil
			}
		case "enter":
			if m.historyFor == nil {
				idx := m.table.Cursor()
				if idx >= 0 && idx < len(m.customers) {
					id := m.customers[idx].ID
					return m, func() tea.Msg { return loadHistoryMsg{CustomerID: id} }
				}
			}
		}
	}

	if m.historyFor == nil {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// View renders the page.
func (m CustomersPageModel) View() string {
	if m.historyFor != nil {
		return m.viewHistory()
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Customers") + "\n")

	if m.searchFocused || m.searchInput.Value() != "" {
		sb.WriteString(m.searchInput.View() + "\n")
	}

	if len(m.customers) == 0 {
		sb.WriteString(m.styles.Muted.Render("No customers found.") + "\n")
	} else {
		sb.WriteString(m.table.View() + "\n")
	}

	sb.WriteString(m.styles.Footer.Render(
		fmt.Sprintf("%d customers  •  / search  enter history", len(m.customers))))
	return sb.String()
}

func (m CustomersPageModel) viewHistory() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("History: "+m.historyFor.Name) + "\n")

	if len(m.history) == 0 {
		sb.WriteString(m.styles.Muted.Render("No assignments.") + "\n")
	} else {
		t := NewSimpleTable("", []string{"Date", "Material", "Serial", "Warranty", "Status"})
		for _, e := range m.history {
			status := "active"
			if e.Deleted {
				status = "returned"
			}
			t.AddRow(e.AssignedDate, e.MaterialName, e.Serial, e.WarrantyExpiration, status)
		}
		sb.WriteString(t.View(m.styles))
	}

	sb.WriteString(m.styles.Footer.Render("esc back"))
	return sb.String()
}
