package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/quire/internal/ui"
)

// DirtyMarker flags a tab with unsaved edits.
const DirtyMarker = "●"

// TabItem is one entry of the tab bar.
type TabItem struct {
	Title  string
	Dirty  bool
	Active bool
}

// Tabs is the tab bar above the editor.
type Tabs struct {
	items []TabItem
	width int
	theme *ui.Theme
}

func NewTabs() Tabs {
	return Tabs{}
}

// SetTheme sets the color theme for the tab bar.
func (t *Tabs) SetTheme(th *ui.Theme) { t.theme = th }

func (t *Tabs) SetItems(items []TabItem) {
	t.items = items
}

func (t *Tabs) SetWidth(width int) {
	t.width = width
}

// label is the plain text of one tab, without styling.
func label(it TabItem) string {
	l := " " + it.Title
	if it.Dirty {
		l += " " + DirtyMarker
	}
	return l + " "
}

func (t Tabs) View() string {
	if t.width == 0 {
		return ""
	}
	th := t.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	if len(t.items) == 0 {
		dim := lipgloss.NewStyle().Foreground(th.Dim)
		return dim.Render(" no open files · ctrl+o to open")
	}

	active := lipgloss.NewStyle().
		Background(th.Accent).
		Foreground(th.Bg).
		Bold(true)
	inactive := lipgloss.NewStyle().
		Background(th.TabBg).
		Foreground(th.Subtle)
	dirty := lipgloss.NewStyle().Foreground(th.Dirty)

	var parts []string
	for _, it := range t.items {
		if it.Active {
			parts = append(parts, active.Render(label(it)))
			continue
		}
		text := " " + it.Title
		if it.Dirty {
			text += " " + dirty.Render(DirtyMarker)
		}
		parts = append(parts, inactive.Render(text+" "))
	}

	line := strings.Join(parts, " ")
	if lipgloss.Width(line) > t.width {
		line = ansi.Truncate(line, t.width-1, "") + "…"
	}
	return line
}
