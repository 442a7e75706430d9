package panel

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/quire/internal/ui"
)

// PromptResultMsg is sent when a text prompt is confirmed.
type PromptResultMsg struct {
	Value string
}

// PromptChoiceMsg is sent when a choice prompt is answered.
type PromptChoiceMsg struct {
	Key string
}

// PromptCancelledMsg is sent when the prompt is dismissed.
type PromptCancelledMsg struct{}

// Prompt is a centered overlay dialog. It either reads a line of text or
// waits for one of a fixed set of keys.
type Prompt struct {
	input   textinput.Model
	title   string
	hint    string
	choices []string
	width   int
	height  int
	visible bool
	theme   *ui.Theme
}

func NewPrompt() Prompt {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return Prompt{input: ti}
}

// SetTheme sets the color theme for the prompt.
func (p *Prompt) SetTheme(th *ui.Theme) { p.theme = th }

func (p *Prompt) Show(title, placeholder string) {
	p.visible = true
	p.title = title
	p.hint = "Enter to confirm, Esc to cancel"
	p.choices = nil
	p.input.Placeholder = placeholder
	p.input.SetValue("")
	p.input.Focus()
}

// ShowChoice asks a question answered by a single key from keys. Esc
// always cancels.
func (p *Prompt) ShowChoice(title, hint string, keys ...string) {
	p.visible = true
	p.title = title
	p.hint = hint
	p.choices = keys
	p.input.Blur()
}

func (p *Prompt) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p Prompt) Visible() bool {
	return p.visible
}

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	key, isKey := msg.(tea.KeyMsg)
	if isKey && (key.String() == "esc" || key.String() == "ctrl+c") {
		p.visible = false
		return p, func() tea.Msg { return PromptCancelledMsg{} }
	}

	if p.choices != nil {
		if isKey && slices.Contains(p.choices, key.String()) {
			p.visible = false
			choice := key.String()
			return p, func() tea.Msg { return PromptChoiceMsg{Key: choice} }
		}
		return p, nil
	}

	if isKey && key.String() == "enter" {
		value := strings.TrimSpace(p.input.Value())
		p.visible = false
		if value == "" {
			return p, func() tea.Msg { return PromptCancelledMsg{} }
		}
		return p, func() tea.Msg { return PromptResultMsg{Value: value} }
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}
	th := p.theme
	if th == nil {
		d := ui.DefaultTheme()
		th = &d
	}

	width := p.width
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

	dimStyle := lipgloss.NewStyle().
		Foreground(th.Dim)

	lines := []string{titleStyle.Render(p.title)}
	if p.choices == nil {
		lines = append(lines, p.input.View())
	}
	lines = append(lines, "", dimStyle.Render(p.hint))

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (p *Prompt) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width/2 - 8
}
