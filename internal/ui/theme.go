// Package ui holds the color palette shared by the TUI panels.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines a color palette used by all TUI panels.
// Panels hold a *Theme pointer so a palette swap is visible on the next
// View() call.
type Theme struct {
	Bg       lipgloss.Color
	Accent   lipgloss.Color
	Subtle   lipgloss.Color
	Text     lipgloss.Color
	Dim      lipgloss.Color
	Border   lipgloss.Color
	StatusBg lipgloss.Color
	StatusFg lipgloss.Color
	Error    lipgloss.Color
	Dirty    lipgloss.Color
	Clean    lipgloss.Color
	TabBg    lipgloss.Color
}

// DefaultTheme returns the default color palette (catppuccin-inspired).
func DefaultTheme() Theme {
	return Theme{
		Bg:       lipgloss.Color("#1e1e2e"),
		Accent:   lipgloss.Color("#cba6f7"),
		Subtle:   lipgloss.Color("#6c7086"),
		Text:     lipgloss.Color("#cdd6f4"),
		Dim:      lipgloss.Color("#585b70"),
		Border:   lipgloss.Color("#45475a"),
		StatusBg: lipgloss.Color("#313244"),
		StatusFg: lipgloss.Color("#cdd6f4"),
		Error:    lipgloss.Color("#f38ba8"),
		Dirty:    lipgloss.Color("#f9e2af"),
		Clean:    lipgloss.Color("#a6e3a1"),
		TabBg:    lipgloss.Color("#181825"),
	}
}

var themes = map[string]func() Theme{
	"catppuccin": DefaultTheme,
	"nord": func() Theme {
		return Theme{
			Bg:       lipgloss.Color("#2e3440"),
			Accent:   lipgloss.Color("#88c0d0"),
			Subtle:   lipgloss.Color("#4c566a"),
			Text:     lipgloss.Color("#eceff4"),
			Dim:      lipgloss.Color("#434c5e"),
			Border:   lipgloss.Color("#3b4252"),
			StatusBg: lipgloss.Color("#3b4252"),
			StatusFg: lipgloss.Color("#eceff4"),
			Error:    lipgloss.Color("#bf616a"),
			Dirty:    lipgloss.Color("#ebcb8b"),
			Clean:    lipgloss.Color("#a3be8c"),
			TabBg:    lipgloss.Color("#272c36"),
		}
	},
}

// ThemeByName returns a named palette, defaulting to catppuccin.
func ThemeByName(name string) Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return DefaultTheme()
}
