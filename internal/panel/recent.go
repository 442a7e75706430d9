package panel

import (
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/quire/internal/recent"
	"github.com/pfassina/quire/internal/ui"
)

// Recent is the side panel listing recently opened files.
type Recent struct {
	width   int
	height  int
	entries []recent.Entry
	current string
	theme   *ui.Theme
}

func NewRecent() Recent {
	return Recent{}
}

// SetTheme sets the color theme for the recent panel.
func (r *Recent) SetTheme(th *ui.Theme) { r.theme = th }

// SetEntries replaces the listed files. current is highlighted.
func (r *Recent) SetEntries(entries []recent.Entry, current string) {
	r.entries = entries
	r.current = current
}

func (r *Recent) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r Recent) View() string {
	if r.width == 0 || r.height == 0 {
		return ""
	}
	th := r.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Accent).
		Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(th.Dim)
	normal := lipgloss.NewStyle().Foreground(th.Text)
	selected := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent"))
	b.WriteByte('\n')

	viewHeight := r.height - 2
	if viewHeight < 0 {
		viewHeight = 0
	}

	if len(r.entries) == 0 {
		b.WriteString(" " + dim.Render("No recent files"))
		b.WriteByte('\n')
		return b.String()
	}

	for i := 0; i < len(r.entries) && i < viewHeight; i++ {
		e := r.entries[i]
		style := normal
		if e.Path == r.current {
			style = selected
		}
		line := style.Render(e.Name)
		if dir := path.Dir(e.Path); dir != "." {
			line += " " + dim.Render(dir)
		}
		b.WriteString(" ")
		b.WriteString(ansi.Truncate(line, r.width-2, "…"))
		b.WriteByte('\n')
	}

	return b.String()
}
