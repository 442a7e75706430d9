// Package app is the Bubble Tea root model. It renders the session (tab
// bar, breadcrumbs, editor, recent files and status bar) and turns key
// presses into session operations.
package app

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/autosave"
	"github.com/pfassina/quire/internal/config"
	"github.com/pfassina/quire/internal/panel"
	"github.com/pfassina/quire/internal/session"
	"github.com/pfassina/quire/internal/ui"
	"github.com/pfassina/quire/internal/workspace"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptClose
)

type promptAction struct {
	kind promptKind
	tab  session.TabID
}

// Deps are the collaborators an App is built from. The app owns the
// scheduler's lifecycle: Init starts it and Close stops it.
type Deps struct {
	Config    config.Config
	Session   *session.Session
	Autosave  *autosave.Scheduler
	Workspace *workspace.Workspace
	Log       logrus.FieldLogger
	// Watch enables the workspace file watcher.
	Watch bool
}

type App struct {
	cfg      config.Config
	sess     *session.Session
	autosave *autosave.Scheduler
	ws       *workspace.Workspace
	log      logrus.FieldLogger
	events   *events
	watch    bool
	watcher  *workspace.Watcher

	keys   map[string]config.Action
	editor textarea.Model
	tabs   panel.Tabs
	crumbs panel.Breadcrumbs
	recent panel.Recent
	status panel.Status
	finder panel.Finder
	prompt panel.Prompt
	help   panel.Help
	theme  ui.Theme

	width    int
	height   int
	showHelp bool
	pending  promptAction
	// bound is the tab whose content the editor widget currently shows.
	bound    session.TabID
	toastSeq int

	closeOnce sync.Once
	closed    bool
}

func New(d Deps) *App {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = ""

	binds := config.DefaultKeybinds()
	help := make([]panel.HelpEntry, len(binds))
	for i, b := range binds {
		help[i] = panel.HelpEntry{Key: b.Key, Label: b.Help}
	}

	a := &App{
		cfg:      d.Config,
		sess:     d.Session,
		autosave: d.Autosave,
		ws:       d.Workspace,
		log:      log.WithField("component", "app"),
		events:   newEvents(),
		watch:    d.Watch,
		keys:     config.KeyMap(binds),
		editor:   ta,
		tabs:     panel.NewTabs(),
		crumbs:   panel.NewBreadcrumbs(),
		recent:   panel.NewRecent(),
		status:   panel.NewStatus(d.Workspace.Root),
		finder:   panel.NewFinder(),
		prompt:   panel.NewPrompt(),
		help:     panel.NewHelp(help),
		theme:    ui.ThemeByName(d.Config.Theme),
	}
	a.tabs.SetTheme(&a.theme)
	a.crumbs.SetTheme(&a.theme)
	a.recent.SetTheme(&a.theme)
	a.status.SetTheme(&a.theme)
	a.finder.SetTheme(&a.theme)
	a.prompt.SetTheme(&a.theme)
	a.help.SetTheme(&a.theme)
	a.finder.SetSearchFunc(a.searchFiles)

	a.autosave.SetNotifier(notifier{ev: a.events})
	a.status.SetAutosave(a.autosave.Status())
	a.syncEditor()
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd {
	a.autosave.Start()
	if a.watch {
		a.startWatcher()
	}
	return tea.Batch(textarea.Blink, a.events.wait())
}

func (a *App) startWatcher() {
	w, err := workspace.NewWatcher(a.ws.Root, a.log, func() {
		a.events.post(documentsRemovedMsg{})
	})
	if err != nil {
		a.log.WithError(err).Warn("start watcher")
		return
	}
	a.watcher = w
	go w.Start()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		// Some terminals send transient 0x0 sizes during live resizes; ignore them.
		if msg.Width <= 0 || msg.Height <= 0 {
			return a, nil
		}
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, tea.ClearScreen

	case autosaveStatusMsg:
		a.status.SetAutosave(msg.text)
		a.refresh()
		return a, a.events.wait()

	case notifyMsg:
		return a, tea.Batch(a.toast(msg.text, msg.level == autosave.LevelError), a.events.wait())

	case documentsRemovedMsg:
		a.pruneRecent()
		return a, a.events.wait()

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.status.ClearToast()
		}
		return a, nil

	case saveDoneMsg:
		a.refresh()
		if msg.err != nil {
			return a, a.toast("save failed: "+msg.err.Error(), true)
		}
		return a, a.toast("saved "+msg.path, false)

	case panel.PromptResultMsg:
		return a, a.handlePromptResult(msg.Value)

	case panel.PromptChoiceMsg:
		return a, a.handlePromptChoice(msg.Key)

	case panel.PromptCancelledMsg:
		a.pending = promptAction{}
		return a, nil

	case panel.FinderResultMsg:
		return a, a.openPath(msg.Path)

	case panel.FinderOpenQueryMsg:
		return a, a.openInput(msg.Query)

	case panel.FinderClosedMsg:
		return a, nil
	}

	// Cursor blink and other widget messages.
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		a.Close()
		return tea.Quit
	}

	if a.showHelp {
		a.showHelp = false
		return nil
	}

	// Overlays take priority when visible
	if a.prompt.Visible() {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		return cmd
	}
	if a.finder.Visible() {
		var cmd tea.Cmd
		a.finder, cmd = a.finder.Update(msg)
		return cmd
	}

	if action, ok := a.keys[msg.String()]; ok {
		return a.dispatch(action)
	}
	return a.edit(msg)
}

// edit forwards a key to the editor widget and records any change in the
// session.
func (a *App) edit(msg tea.KeyMsg) tea.Cmd {
	tab, ok := a.sess.ActiveTab()
	if !ok {
		return nil
	}

	before := a.editor.Value()
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	if after := a.editor.Value(); after != before {
		if err := a.sess.Edit(tab.ID, after); err != nil {
			a.log.WithError(err).Warn("edit")
		}
		a.refresh()
	}
	return cmd
}

// syncEditor loads the active tab into the editor widget when the active
// tab has changed.
func (a *App) syncEditor() {
	tab, ok := a.sess.ActiveTab()
	if !ok {
		a.bound = ""
		a.editor.SetValue("")
		a.editor.Blur()
		return
	}
	if tab.ID == a.bound {
		return
	}
	content, err := a.sess.Content(tab.ID)
	if err != nil {
		a.log.WithError(err).Warn("load tab content")
	}
	a.editor.SetValue(content)
	a.editor.Focus()
	a.bound = tab.ID
}

// refresh copies session state into the panels.
func (a *App) refresh() {
	tabs := a.sess.Tabs()
	activeID := a.sess.ActiveTabID()

	var active session.Tab
	items := make([]panel.TabItem, len(tabs))
	for i, t := range tabs {
		items[i] = panel.TabItem{Title: t.Title, Dirty: t.Dirty, Active: t.ID == activeID}
		if t.ID == activeID {
			active = t
		}
	}

	a.tabs.SetItems(items)
	a.status.SetFile(active.Path, active.Dirty)
	a.crumbs.SetItems(a.sess.Breadcrumbs())
	a.recent.SetEntries(a.sess.Recent().List(), active.Path)
}

func (a *App) currentLayout() Layout {
	l := a.sess.Layout()
	return ComputeLayout(a.width, a.height, l.ShowRecent, l.ShowBreadcrumb, l.FocusMode)
}

func (a *App) updateLayout() {
	if a.width == 0 || a.height == 0 {
		return
	}
	lay := a.currentLayout()

	a.editor.SetWidth(lay.EditorWidth)
	a.editor.SetHeight(lay.EditorHeight)
	a.tabs.SetWidth(a.width)
	a.crumbs.SetWidth(a.width)
	a.recent.SetSize(lay.RecentWidth, lay.EditorHeight)
	a.status.SetWidth(a.width)
	a.finder.SetSize(a.width, a.height)
	a.help.SetWidth(min(a.width-4, 72))

	// Clamp to a sane modal width; 80% of a wide terminal is still too wide.
	promptW := min(max(a.width*4/5, 40), 100, a.width-2)
	a.prompt.SetSize(promptW, a.height)
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	lay := a.currentLayout()
	var rows []string
	if lay.TabsHeight > 0 {
		rows = append(rows, a.tabs.View())
	}
	if lay.CrumbHeight > 0 {
		rows = append(rows, a.crumbs.View())
	}

	body := a.editorView(lay)
	if lay.RecentWidth > 0 {
		side := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(a.theme.Border).
			Width(lay.RecentWidth - 1).
			Height(lay.EditorHeight).
			Render(a.recent.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}
	rows = append(rows, body, a.status.View())
	result := strings.Join(rows, "\n")

	if a.showHelp {
		result = overlayCenter(result, a.help.View(), a.width, a.height)
	}
	if a.finder.Visible() {
		result = overlayCenter(result, a.finder.View(), a.width, a.height)
	}
	if a.prompt.Visible() {
		result = overlayCenter(result, a.prompt.View(), a.width, a.height)
	}
	return result
}

func (a *App) editorView(lay Layout) string {
	style := lipgloss.NewStyle().
		Width(lay.EditorWidth).
		Height(lay.EditorHeight)

	if a.bound == "" {
		title := lipgloss.NewStyle().Bold(true).Foreground(a.theme.Accent).Render("quire")
		hint := lipgloss.NewStyle().Foreground(a.theme.Dim).
			Render("ctrl+o open · ctrl+p quick open · f1 keys")
		splash := lipgloss.JoinVertical(lipgloss.Center, title, "", hint)
		return lipgloss.Place(lay.EditorWidth, lay.EditorHeight, lipgloss.Center, lipgloss.Center, splash)
	}
	return style.Render(a.editor.View())
}

// Close stops background work and tears the session down. It is safe to
// call more than once and from any goroutine.
func (a *App) Close() {
	a.closeOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.closed = true
	a.events.close()
	a.autosave.Stop()
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.log.WithError(err).Warn("stop watcher")
		}
	}
	if err := a.sess.Teardown(); err != nil {
		a.log.WithError(err).Warn("teardown")
	}
}
