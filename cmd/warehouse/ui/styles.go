// Package ui implements the interactive terminal interface for the
// warehouse, with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors
	lightForeground = lipgloss.Color("#1a2332")
	lightPrimary    = lipgloss.Color("#1a5fb4")
	lightAccent     = lipgloss.Color("#26a269")
	lightMuted      = lipgloss.Color("#77818f")
	lightBorder     = lipgloss.Color("#d0d4da")

	// Dark mode colors
	darkForeground = lipgloss.Color("#e8e8e8")
	darkPrimary    = lipgloss.Color("#62a0ea")
	darkAccent     = lipgloss.Color("#57e389")
	darkMuted      = lipgloss.Color("#6e7a8a")
	darkBorder     = lipgloss.Color("#3a4454")

	// Semantic colors, same in both modes
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#ffc107")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Accent:     lightAccent,
		Muted:      lightMuted,
		Border:     lightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: darkForeground,
		Primary:    darkPrimary,
		Accent:     darkAccent,
		Muted:      darkMuted,
		Border:     darkBorder,
		IsDark:     true,
	}
}

// ThemeByName resolves a configured theme name. "auto" detects from the
// terminal; unknown names fall back to auto detection.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal's background from COLORFGBG.
// Defaults to dark, the common case for terminal work.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// Format is "foreground;background"; ANSI indices 7 and 15
		// are light backgrounds.
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx == 7 || bgIdx == 15 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles holds the styled components.
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Tab    lipgloss.Style
	TabOn  lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Status
	OK      lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Components
	Badge   lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a Styles instance for the theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Padding(0, 1).
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		TabOn: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Padding(0, 2).
			Bold(true).
			Underline(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		OK: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
