package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mywarehouse/internal/store"
)

// reloadMaterialsMsg asks the app to reload the material list.
type reloadMaterialsMsg struct {
	Used bool
}

// MaterialsPageModel shows the material list with stock counts. "/"
// filters by text, "u" toggles between the new and used lists, "c"
// cycles through category filters.
type MaterialsPageModel struct {
	width  int
	height int
	table  table.Model

	materials []store.Material
	filtered  []store.Material

	categories  []string
	categoryIdx int // 0 means no category filter

	used bool

	filterInput   textinput.Model
	filterFocused bool

	styles Styles
}

// NewMaterialsPageModel creates the materials page.
func NewMaterialsPageModel(styles Styles) MaterialsPageModel {
	t := table.New(
		table.WithColumns(materialColumns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	fi := textinput.New()
	fi.Placeholder = "Filter by name, model or producer..."
	fi.CharLimit = 50
	fi.Width = 40

	return MaterialsPageModel{
		table:       t,
		filterInput: fi,
		styles:      styles,
	}
}

func materialColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 24},
		{Title: "Model", Width: 20},
		{Title: "Category", Width: 14},
		{Title: "Price", Width: 9},
		{Title: "Stock", Width: 7},
	}
}

// Init initializes the model.
func (m MaterialsPageModel) Init() tea.Cmd {
	return nil
}

// SetSize resizes the page.
func (m *MaterialsPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if h := height - 6; h > 3 {
		m.table.SetHeight(h)
	}
}

// UpdateContent replaces the material list and known categories.
func (m *MaterialsPageModel) UpdateContent(materials []store.Material, categories []string, used bool) {
	m.materials = materials
	m.categories = categories
	m.used = used
	if m.categoryIdx > len(categories) {
		m.categoryIdx = 0
	}
	m.applyFilter()
}

// Selected returns the material under the cursor, nil when empty.
func (m MaterialsPageModel) Selected() *store.Material {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return nil
	}
	return &m.filtered[idx]
}

// Update handles messages.
func (m MaterialsPageModel) Update(msg tea.Msg) (MaterialsPageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filterFocused {
			switch msg.String() {
			case "esc":
				m.filterFocused = false
				m.filterInput.Blur()
				m.filterInput.SetValue("")
				m.applyFilter()
				return m, nil
			case "enter":
				m.filterFocused = false
				m.filterInput.Blur()
				return m, nil
			}
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.filterFocused = true
			m.filterInput.Focus()
			return m, nil
		case "u":
			m.used = !m.used
			used := m.used
			return m, func() tea.Msg { return reloadMaterialsMsg{Used: used} }
		case "c":
			m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
			m.applyFilter()
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// category returns the active category filter, empty for all.
func (m MaterialsPageModel) category() string {
	if m.categoryIdx == 0 || m.categoryIdx > len(m.categories) {
		return ""
	}
	return m.categories[m.categoryIdx-1]
}

func (m *MaterialsPageModel) applyFilter() {
	text := strings.ToLower(m.filterInput.Value())
	category := m.category()

	m.filtered = m.filtered[:0]
	for _, mat := range m.materials {
		if category != "" && mat.EffectiveCategory() != category {
			continue
		}
		if text != "" {
			hay := strings.ToLower(mat.Name + " " + mat.Model + " " + mat.Producer)
			if !strings.Contains(hay, text) {
				continue
			}
		}
		m.filtered = append(m.filtered, mat)
	}

	rows := make([]table.Row, 0, len(m.filtered))
	for _, mat := range m.filtered {
		price := ""
		if mat.RetailPrice.Valid {
			price = mat.RetailPrice.Decimal.StringFixed(2)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", mat.ID),
			mat.Name,
			mat.Model,
			mat.EffectiveCategory(),
			price,
			fmt.Sprintf("%d/%d", mat.AvailableSerials, mat.TotalSerials),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// View renders the page.
func (m MaterialsPageModel) View() string {
	var sb strings.Builder

	list := "New stock"
	if m.used {
		list = "Used stock"
	}
	header := m.styles.Header.Render(list)
	if c := m.category(); c != "" {
		header += " " + m.styles.Badge.Render(c)
	}
	sb.WriteString(header + "\n")

	if m.filterFocused || m.filterInput.Value() != "" {
		sb.WriteString(m.filterInput.View() + "\n")
	}

	if len(m.filtered) == 0 {
		sb.WriteString(m.styles.Muted.Render("No materials.") + "\n")
	} else {
		sb.WriteString(m.table.View() + "\n")
	}

	sb.WriteString(m.styles.Footer.Render(
		fmt.Sprintf("%d materials  •  / filter  u new/used  c category", len(m.filtered))))
	return sb.String()
}
