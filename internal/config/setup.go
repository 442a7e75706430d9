package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultWorkspaceInput = "~/notes"

// SetupResult is returned by RunSetup.
type SetupResult struct {
	Workspace string
	Cancelled bool
}

type setupModel struct {
	input     textinput.Model
	err       string
	workspace string
	cancelled bool
}

func newSetupModel() setupModel {
	ti := textinput.New()
	ti.Placeholder = defaultWorkspaceInput
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return setupModel{input: ti}
}

// resolve expands the typed path, falling back to the placeholder.
func (m setupModel) resolve() string {
	path := m.input.Value()
	if path == "" {
		path = defaultWorkspaceInput
	}
	return ExpandHome(path)
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			path := m.resolve()
			if err := validateWorkspace(path); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.workspace = path
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	setupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	setupError = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	setupHint  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m setupModel) View() string {
	s := "\n " + setupTitle.Render("quire") + "\n\n"
	s += " Workspace directory (created if missing):\n\n"
	s += "   " + m.input.View() + "\n\n"
	if m.err != "" {
		s += " " + setupError.Render(m.err) + "\n\n"
	}
	s += " " + setupHint.Render("enter confirm · esc cancel") + "\n"
	return s
}

// validateWorkspace checks that a path is, or can become, a directory.
func validateWorkspace(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s exists but is not a directory", path)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return err
	}

	parent := filepath.Dir(path)
	pinfo, err := os.Stat(parent)
	if err != nil {
		return fmt.Errorf("parent directory %s does not exist", parent)
	}
	if !pinfo.IsDir() {
		return fmt.Errorf("%s is not a directory", parent)
	}
	return nil
}

// finish creates the workspace and records it in config.toml.
func (m setupModel) finish() (SetupResult, error) {
	if m.cancelled || m.workspace == "" {
		return SetupResult{Cancelled: true}, nil
	}
	if err := os.MkdirAll(m.workspace, 0755); err != nil {
		return SetupResult{}, fmt.Errorf("create workspace: %w", err)
	}
	if err := SaveFile(m.workspace); err != nil {
		return SetupResult{}, fmt.Errorf("saving config: %w", err)
	}
	return SetupResult{Workspace: m.workspace}, nil
}

// RunSetup runs the first-run prompt, creates the chosen workspace and
// writes config.toml.
func RunSetup() (SetupResult, error) {
	final, err := tea.NewProgram(newSetupModel()).Run()
	if err != nil {
		return SetupResult{}, err
	}
	fm, ok := final.(setupModel)
	if !ok {
		return SetupResult{}, fmt.Errorf("unexpected model type from setup prompt")
	}
	return fm.finish()
}
