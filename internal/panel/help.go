package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/quire/internal/ui"
)

// HelpEntry is a single key binding for display.
type HelpEntry struct {
	Key   string
	Label string
}

// Help renders a popup listing the key bindings.
type Help struct {
	entries []HelpEntry
	width   int
	theme   *ui.Theme
}

func NewHelp(entries []HelpEntry) Help {
	return Help{entries: entries}
}

// SetTheme sets the color theme for the help popup.
func (h *Help) SetTheme(th *ui.Theme) { h.theme = th }

func (h *Help) SetWidth(width int) {
	h.width = width
}

func (h Help) View() string {
	if len(h.entries) == 0 {
		return ""
	}
	th := h.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	width := h.width
	if width == 0 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent).
		Padding(0, 1).
		Width(width - 4)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Accent)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Clean).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(th.Text)

	lines := []string{titleStyle.Render("Keys")}

	// Two columns when there is room for them.
	colWidth := (width - 4) / 2
	twoCol := colWidth >= 20

	cell := func(e HelpEntry) string {
		return fmt.Sprintf("%s %s", keyStyle.Render(e.Key), labelStyle.Render(e.Label))
	}

	for i := 0; i < len(h.entries); i++ {
		left := cell(h.entries[i])
		if !twoCol || i+1 == len(h.entries) {
			lines = append(lines, left)
			continue
		}
		leftPad := colWidth - lipgloss.Width(left)
		if leftPad < 1 {
			leftPad = 1
		}
		i++
		lines = append(lines, left+strings.Repeat(" ", leftPad)+cell(h.entries[i]))
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(th.Dim).Render("any key to close"))
	return borderStyle.Render(strings.Join(lines, "\n"))
}
