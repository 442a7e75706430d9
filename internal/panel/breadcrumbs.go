package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/quire/internal/breadcrumb"
	"github.com/pfassina/quire/internal/ui"
)

const crumbSeparator = " › "

// Breadcrumbs renders the active document's path.
type Breadcrumbs struct {
	items []breadcrumb.Item
	width int
	theme *ui.Theme
}

func NewBreadcrumbs() Breadcrumbs {
	return Breadcrumbs{}
}

// SetTheme sets the color theme for the breadcrumb bar.
func (b *Breadcrumbs) SetTheme(th *ui.Theme) { b.theme = th }

func (b *Breadcrumbs) SetItems(items []breadcrumb.Item) {
	b.items = items
}

func (b *Breadcrumbs) SetWidth(width int) {
	b.width = width
}

// Parents returns the directory paths the bar links to, outermost first.
func (b Breadcrumbs) Parents() []string {
	var out []string
	for _, it := range b.items {
		if breadcrumb.Navigable(it) {
			out = append(out, it.Path)
		}
	}
	return out
}

func (b Breadcrumbs) View() string {
	if b.width == 0 || len(b.items) == 0 {
		return ""
	}
	th := b.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	dir := lipgloss.NewStyle().Foreground(th.Subtle)
	dim := lipgloss.NewStyle().Foreground(th.Dim)
	last := lipgloss.NewStyle().Foreground(th.Text).Bold(true)

	parts := make([]string, len(b.items))
	for i, it := range b.items {
		switch {
		case it.IsEllipsis:
			parts[i] = dim.Render(it.Name)
		case it.IsLast:
			parts[i] = last.Render(it.Name)
		default:
			parts[i] = dir.Render(it.Name)
		}
	}

	line := " " + strings.Join(parts, dim.Render(crumbSeparator))
	return ansi.Truncate(line, b.width, "…")
}
