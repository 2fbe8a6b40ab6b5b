package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mywarehouse/internal/store"
)

func newTestLogin(t *testing.T) LoginModel {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return NewLoginModel(st, NewStyles(DarkTheme()))
}

func loginType(t *testing.T, m LoginModel, s string) LoginModel {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(LoginModel)
	}
	return m
}

func loginKey(t *testing.T, m LoginModel, key tea.KeyType) (LoginModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(LoginModel), cmd
}

func TestLoginAcceptsSeededAdmin(t *testing.T) {
	m := newTestLogin(t)

	m = loginType(t, m, "admin")
	m, _ = loginKey(t, m, tea.KeyEnter) // to the password field
	m = loginType(t, m, "admin")
	m, cmd := loginKey(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected an authentication command")
	}

	res, ok := cmd().(loginResultMsg)
	if !ok {
		t.Fatalf("expected loginResultMsg, got %T", cmd())
	}
	if res.err != nil {
		t.Fatalf("authentication failed: %v", res.err)
	}

	next, quit := m.Update(res)
	m = next.(LoginModel)
	if m.User() == nil || m.User().Username != "admin" || m.User().Role != "admin1" {
		t.Fatalf("unexpected user: %+v", m.User())
	}
	if quit == nil {
		t.Fatal("expected quit after successful login")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	m := newTestLogin(t)

	m = loginType(t, m, "admin")
	m, _ = loginKey(t, m, tea.KeyEnter)
	m = loginType(t, m, "wrong")
	m, cmd := loginKey(t, m, tea.KeyEnter)

	res := cmd().(loginResultMsg)
	if res.err == nil {
		t.Fatal("expected authentication error")
	}

	next, _ := m.Update(res)
	m = next.(LoginModel)
	if m.User() != nil {
		t.Fatal("user should stay nil after a failed login")
	}
	if m.password.Value() != "" {
		t.Error("password field should be cleared after a failure")
	}
	if !strings.Contains(m.View(), "Wrong username or password") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestLoginEscAborts(t *testing.T) {
	m := newTestLogin(t)

	m, cmd := loginKey(t, m, tea.KeyEsc)
	if !m.Aborted() {
		t.Fatal("esc should abort the login")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
