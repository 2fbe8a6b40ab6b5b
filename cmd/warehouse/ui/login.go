package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mywarehouse/internal/store"
)

// loginResultMsg carries the outcome of an authentication attempt.
type loginResultMsg struct {
	user *store.User
	err  error
}

// LoginModel gates the UI behind operator credentials. It runs as its
// own program; the main app starts only after a successful login.
type LoginModel struct {
	st *store.Store

	username textinput.Model
	password textinput.Model
	focus    int // 0 username, 1 password

	user    *store.User
	aborted bool
	errText string

	styles Styles
}

// NewLoginModel creates the login prompt.
func NewLoginModel(st *store.Store, styles Styles) LoginModel {
	u := textinput.New()
	u.Placeholder = "username"
	u.CharLimit = 50
	u.Width = 28
	u.Focus()

	p := textinput.New()
	p.Placeholder = "password"
	p.CharLimit = 100
	p.Width = 28
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '*'

	return LoginModel{st: st, username: u, password: p, styles: styles}
}

// Init initializes the model.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// User returns the authenticated account, nil before login succeeds.
func (m LoginModel) User() *store.User {
	return m.user
}

// Aborted reports whether the operator quit instead of logging in.
func (m LoginModel) Aborted() bool {
	return m.aborted
}

func (m LoginModel) authenticate() tea.Cmd {
	username, password := m.username.Value(), m.password.Value()
	return func() tea.Msg {
		u, err := m.st.Authenticate(username, password)
		return loginResultMsg{user: u, err: err}
	}
}

func (m *LoginModel) setFocus(field int) {
	m.focus = field
	if field == 0 {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.username.Blur()
		m.password.Focus()
	}
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.setFocus(1 - m.focus)
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.setFocus(1)
				return m, nil
			}
			return m, m.authenticate()
		}

	case loginResultMsg:
		if msg.err != nil {
			m.errText = "Wrong username or password."
			m.password.SetValue("")
			return m, nil
		}
		m.user = msg.user
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// View renders the prompt.
func (m LoginModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("MyWarehouse Login") + "\n\n")
	sb.WriteString("Username  " + m.username.View() + "\n")
	sb.WriteString("Password  " + m.password.View() + "\n")
	if m.errText != "" {
		sb.WriteString("\n" + m.styles.Error.Render(m.errText) + "\n")
	}
	sb.WriteString("\n" + m.styles.Footer.Render("enter login  esc quit"))
	return sb.String()
}
