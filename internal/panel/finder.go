package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/quire/internal/ui"
)

// FinderItem represents an item in the finder results.
type FinderItem struct {
	Title string
	Path  string
	Extra string // e.g. "recent"
}

// FinderResultMsg is sent when a finder item is selected.
type FinderResultMsg struct {
	Path string
}

// FinderOpenQueryMsg is sent when enter is pressed with no matches; the
// query is treated as a path to open or create.
type FinderOpenQueryMsg struct {
	Query string
}

// FinderClosedMsg is sent when the finder is dismissed.
type FinderClosedMsg struct{}

// SearchFunc is called to get results for a query.
type SearchFunc func(query string) []FinderItem

// Finder is a quick-open overlay.
type Finder struct {
	input    textinput.Model
	items    []FinderItem
	cursor   int
	width    int
	height   int
	visible  bool
	searchFn SearchFunc
	theme    *ui.Theme
}

// SetTheme sets the color theme for the finder panel.
func (f *Finder) SetTheme(th *ui.Theme) { f.theme = th }

func NewFinder() Finder {
	ti := textinput.New()
	ti.Placeholder = "Search files..."
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return Finder{
		input: ti,
	}
}

func (f *Finder) SetSearchFunc(fn SearchFunc) {
	f.searchFn = fn
}

func (f *Finder) Show() {
	f.visible = true
	f.input.SetValue("")
	f.cursor = 0
	f.input.Focus()
	if f.searchFn != nil {
		f.items = f.searchFn("")
	}
}

func (f *Finder) Hide() {
	f.visible = false
	f.input.Blur()
}

func (f Finder) Visible() bool {
	return f.visible
}

// Items returns the current results.
func (f Finder) Items() []FinderItem {
	return f.items
}

func (f Finder) Update(msg tea.Msg) (Finder, tea.Cmd) {
	if !f.visible {
		return f, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			f.visible = false
			return f, func() tea.Msg { return FinderClosedMsg{} }

		case "enter":
			if f.cursor < len(f.items) {
				item := f.items[f.cursor]
				f.visible = false
				return f, func() tea.Msg {
					return FinderResultMsg{Path: item.Path}
				}
			}
			query := strings.TrimSpace(f.input.Value())
			if query == "" {
				return f, nil
			}
			f.visible = false
			return f, func() tea.Msg {
				return FinderOpenQueryMsg{Query: query}
			}

		case "up", "ctrl+p", "ctrl+k":
			if f.cursor > 0 {
				f.cursor--
			}
			return f, nil

		case "down", "ctrl+n", "ctrl+j":
			if f.cursor < len(f.items)-1 {
				f.cursor++
			}
			return f, nil
		}
	}

	var cmd tea.Cmd
	prevValue := f.input.Value()
	f.input, cmd = f.input.Update(msg)

	// Re-search on input change
	if f.input.Value() != prevValue && f.searchFn != nil {
		f.items = f.searchFn(f.input.Value())
		f.cursor = 0
	}

	return f, cmd
}

func (f Finder) View() string {
	if !f.visible {
		return ""
	}
	th := f.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	width := f.width
	if width == 0 {
		width = 60
	}
	innerWidth := width - 6

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent).
		Padding(0, 1).
		Width(innerWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Accent)
	dim := lipgloss.NewStyle().Foreground(th.Dim)

	lines := []string{
		titleStyle.Render("Quick Open"),
		f.input.View(),
		"",
	}

	maxResults := f.height/2 - 4
	if maxResults < 5 {
		maxResults = 5
	}
	if maxResults > len(f.items) {
		maxResults = len(f.items)
	}

	if len(f.items) == 0 {
		lines = append(lines, dim.Render("No results"))
		if query := strings.TrimSpace(f.input.Value()); query != "" {
			lines = append(lines, "", dim.Render(fmt.Sprintf("Enter: open %q", query)))
		}
		return borderStyle.Render(strings.Join(lines, "\n"))
	}

	// Keep the cursor inside the visible window.
	start := 0
	if f.cursor >= maxResults {
		start = f.cursor - maxResults + 1
	}

	for i := start; i < start+maxResults; i++ {
		item := f.items[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(th.Text)
		if i == f.cursor {
			prefix = "> "
			style = lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
		}

		title := item.Title
		if title == "" {
			title = item.Path
		}

		line := style.Render(prefix + title)
		if item.Extra != "" {
			line += " " + dim.Render(item.Extra)
		}
		lines = append(lines, ansi.Truncate(line, innerWidth, "…"))
	}

	if len(f.items) > maxResults {
		lines = append(lines, dim.Render(fmt.Sprintf("  ... and %d more", len(f.items)-maxResults)))
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (f *Finder) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.input.Width = width/2 - 8
}
