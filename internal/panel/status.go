package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/quire/internal/ui"
)

// Status is the status bar at the bottom.
type Status struct {
	width     int
	file      string
	dirty     bool
	workspace string
	autosave  string
	toast     string
	toastErr  bool
	theme     *ui.Theme
}

func NewStatus(workspace string) Status {
	return Status{workspace: workspace}
}

// SetTheme sets the color theme for the status bar.
func (s *Status) SetTheme(th *ui.Theme) { s.theme = th }

func (s *Status) SetFile(file string, dirty bool) {
	s.file = file
	s.dirty = dirty
}

func (s *Status) SetWidth(width int) {
	s.width = width
}

// SetAutosave sets the autosave status text shown on the right.
func (s *Status) SetAutosave(text string) {
	s.autosave = text
}

// SetToast shows a transient message in place of the file name.
func (s *Status) SetToast(msg string, isErr bool) {
	s.toast = msg
	s.toastErr = isErr
}

func (s *Status) ClearToast() {
	s.toast = ""
	s.toastErr = false
}

func (s Status) Toast() string {
	return s.toast
}

func (s Status) View() string {
	if s.width == 0 {
		return ""
	}
	th := s.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	bgStyle := lipgloss.NewStyle().Background(th.StatusBg)

	badge, color := "SAVED", th.Clean
	if s.dirty {
		badge, color = "MODIFIED", th.Dirty
	}
	if s.file == "" {
		badge, color = "QUIRE", th.Accent
	}
	badgeStyle := lipgloss.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("0")).
		Bold(true).
		Padding(0, 1)

	textStyle := lipgloss.NewStyle().
		Background(th.StatusBg).
		Foreground(th.StatusFg).
		Padding(0, 1)

	var middle string
	switch {
	case s.toast != "" && s.toastErr:
		middle = textStyle.Foreground(th.Error).Render(s.toast)
	case s.toast != "":
		middle = textStyle.Render(s.toast)
	case s.file != "":
		middle = textStyle.Render(s.file)
	default:
		middle = textStyle.Render(s.workspace)
	}

	left := badgeStyle.Render(badge) + bgStyle.Render(" ") + middle

	right := ""
	if s.autosave != "" {
		right = textStyle.Foreground(th.Subtle).Render(s.autosave)
	}

	padLen := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padLen < 0 {
		padLen = 0
	}
	padding := bgStyle.Render(strings.Repeat(" ", padLen))

	return left + padding + right
}
