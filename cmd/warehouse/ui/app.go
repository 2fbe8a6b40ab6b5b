package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"mywarehouse/internal/config"
	"mywarehouse/internal/logging"
	"mywarehouse/internal/store"
)

// page indices
const (
	pageMaterials = iota
	pageCustomers
	pageStats
	pageCount
)

var pageNames = [pageCount]string{"Materials", "Customers", "Stats"}

// Messages carrying store query results into the UI.
type (
	materialsLoadedMsg struct {
		Materials  []store.Material
		Categories []string
		Used       bool
	}
	customersLoadedMsg struct {
		Customers []store.Customer
	}
	historyLoadedMsg struct {
		Customer store.Customer
		Entries  []store.HistoryEntry
	}
	statsLoadedMsg struct {
		Stats map[string]int64
	}
	dbChangedMsg struct{}
	errMsg       struct{ err error }
)

// AppModel is the root model: a tab bar over the pages, plus a
// database watcher that reloads content when another process writes
// the file.
type AppModel struct {
	st  *store.Store
	cfg *config.Config

	width  int
	height int
	page   int

	materials MaterialsPageModel
	customers CustomersPageModel
	stats     map[string]int64

	err error

	changes chan struct{}
	watcher *fsnotify.Watcher

	styles Styles
}

// NewAppModel builds the root model. The watcher may be nil (in-memory
// databases and tests).
func NewAppModel(st *store.Store, cfg *config.Config, watcher *fsnotify.Watcher) AppModel {
	styles := NewStyles(ThemeByName(cfg.UI.Theme))
	return AppModel{
		st:        st,
		cfg:       cfg,
		materials: NewMaterialsPageModel(styles),
		customers: NewCustomersPageModel(styles),
		changes:   make(chan struct{}, 1),
		watcher:   watcher,
		styles:    styles,
	}
}

// Init loads the initial content and starts watching for changes.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadMaterials(false),
		m.loadCustomers(""),
		m.loadStats(),
	}
	if m.watcher != nil {
		go m.forwardChanges()
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

// forwardChanges collapses watcher events for the database file into
// the changes channel. Runs until the watcher closes.
func (m AppModel) forwardChanges() {
	dbName := filepath.Base(m.st.Path())
	for {
		select {
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !matchesDatabase(dbName, ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case m.changes <- struct{}{}:
			default: // a reload is already pending
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logging.UI("watcher error: %v", err)
		}
	}
}

// matchesDatabase reports whether a watcher event path refers to the
// database or its WAL sidecar. With journal_mode=WAL another writer's
// commits land in <db>-wal until checkpoint, so the main file alone
// would miss them.
func matchesDatabase(dbName, path string) bool {
	base := filepath.Base(path)
	return base == dbName || base == dbName+"-wal"
}

func (m AppModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return dbChangedMsg{}
	}
}

func (m AppModel) loadMaterials(used bool) tea.Cmd {
	return func() tea.Msg {
		materials, err := m.st.ListMaterials(store.MaterialFilter{Used: used})
		if err != nil {
			return errMsg{err}
		}
		categories, err := m.st.AllCategories()
		if err != nil {
			return errMsg{err}
		}
		return materialsLoadedMsg{Materials: materials, Categories: categories, Used: used}
	}
}

func (m AppModel) loadCustomers(query string) tea.Cmd {
	return func() tea.Msg {
		customers, err := m.st.SearchCustomers(query)
		if err != nil {
			return errMsg{err}
		}
		return customersLoadedMsg{Customers: customers}
	}
}

func (m AppModel) loadHistory(customerID string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.st.CustomerByID(customerID)
		if err != nil {
			return errMsg{err}
		}
		entries, err := m.st.CustomerHistory(customerID)
		if err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg{Customer: *c, Entries: entries}
	}
}

func (m AppModel) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.st.Stats()
		if err != nil {
			return errMsg{err}
		}
		return statsLoadedMsg{Stats: stats}
	}
}

// Update handles messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.materials.SetSize(msg.Width, msg.Height-3)
		m.customers.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.inputFocused() {
				return m, tea.Quit
			}
		case "tab":
			if !m.inputFocused() {
				m.page = (m.page + 1) % pageCount
				return m, nil
			}
		case "shift+tab":
			if !m.inputFocused() {
				m.page = (m.page + pageCount - 1) % pageCount
				return m, nil
			}
		}

	case materialsLoadedMsg:
		m.materials.UpdateContent(msg.Materials, msg.Categories, msg.Used)
		return m, nil
	case customersLoadedMsg:
		m.customers.UpdateContent(msg.Customers)
		return m, nil
	case historyLoadedMsg:
		m.customers.ShowHistory(msg.Customer, msg.Entries)
		return m, nil
	case statsLoadedMsg:
		m.stats = msg.Stats
		return m, nil

	case reloadMaterialsMsg:
		return m, m.loadMaterials(msg.Used)
	case searchCustomersMsg:
		return m, m.loadCustomers(msg.Query)
	case loadHistoryMsg:
		return m, m.loadHistory(msg.CustomerID)

	case dbChangedMsg:
		logging.UI("database changed on disk, reloading")
		cmds := []tea.Cmd{
			m.loadMaterials(m.materials.used),
			m.loadCustomers(m.customers.searchInput.Value()),
			m.loadStats(),
		}
		if m.watcher != nil {
			cmds = append(cmds, m.waitForChange())
		}
		return m, tea.Batch(cmds...)

	case errMsg:
		m.err = msg.err
		logging.Get(logging.CategoryUI).Error("%v", msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.page {
	case pageMaterials:
		m.materials, cmd = m.materials.Update(msg)
	case pageCustomers:
		m.customers, cmd = m.customers.Update(msg)
	}
	return m, cmd
}

// inputFocused reports whether the active page is capturing text.
func (m AppModel) inputFocused() bool {
	switch m.page {
	case pageMaterials:
		return m.materials.filterFocused
	case pageCustomers:
		return m.customers.searchFocused
	}
	return false
}

// View renders the tab bar, the active page and any pending error.
func (m AppModel) View() string {
	var sb strings.Builder

	var tabs []string
	for i, name := range pageNames {
		if i == m.page {
			tabs = append(tabs, m.styles.TabOn.Render(name))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(name))
		}
	}
	sb.WriteString(strings.Join(tabs, "") + "\n")
	sb.WriteString(m.styles.RenderDivider(m.width) + "\n")

	switch m.page {
	case pageMaterials:
		sb.WriteString(m.materials.View())
	case pageCustomers:
		sb.WriteString(m.customers.View())
	case pageStats:
		sb.WriteString(m.viewStats())
	}

	if m.err != nil {
		sb.WriteString("\n" + m.styles.Error.Render(m.err.Error()))
	}
	sb.WriteString("\n" + m.styles.Footer.Render("tab switch page  q quit"))
	return sb.String()
}

func (m AppModel) viewStats() string {
	if m.stats == nil {
		return m.styles.Muted.Render("Loading...")
	}
	t := NewSimpleTable("Database", []string{"Table", "Rows"})
	for _, name := range []string{
		"customers", "materials", "serial_numbers",
		"assignments", "category_aliases", "users",
	} {
		t.AddRow(name, fmt.Sprintf("%d", m.stats[name]))
	}
	return t.View(m.styles)
}

// Run prompts for operator credentials, then starts the interactive UI
// and blocks until the user quits.
func Run(st *store.Store, cfg *config.Config) error {
	styles := NewStyles(ThemeByName(cfg.UI.Theme))
	res, err := tea.NewProgram(NewLoginModel(st, styles), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	login := res.(LoginModel)
	if login.Aborted() || login.User() == nil {
		return nil
	}
	logging.UI("operator %s (%s) entered the UI", login.User().Username, login.User().Role)

	var watcher *fsnotify.Watcher
	if st.Path() != ":memory:" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			logging.UI("file watcher unavailable: %v", err)
		} else if err := w.Add(filepath.Dir(st.Path())); err != nil {
			logging.UI("cannot watch %s: %v", st.Path(), err)
			w.Close()
		} else {
			watcher = w
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(NewAppModel(st, cfg, watcher), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
