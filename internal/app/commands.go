package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/quire/internal/autosave"
	"github.com/pfassina/quire/internal/config"
	"github.com/pfassina/quire/internal/panel"
	"github.com/pfassina/quire/internal/session"
)

func (a *App) dispatch(action config.Action) tea.Cmd {
	switch action {
	case config.ActionOpen:
		a.pending = promptAction{kind: promptOpen}
		a.prompt.Show("Open file", "notes/today.md")
	case config.ActionQuickOpen:
		a.finder.Show()
	case config.ActionSave:
		return a.saveActive()
	case config.ActionClose:
		return a.closeActive()
	case config.ActionNextTab:
		a.cycleTab(1)
	case config.ActionPrevTab:
		a.cycleTab(-1)
	case config.ActionMoveTabLeft:
		a.moveTab(-1)
	case config.ActionMoveTabRight:
		a.moveTab(1)
	case config.ActionToggleAutosave:
		return a.toggleAutosave()
	case config.ActionToggleRecent:
		a.toggleLayout(func(l *session.Layout) { l.ShowRecent = !l.ShowRecent })
	case config.ActionToggleBreadcrumb:
		a.toggleLayout(func(l *session.Layout) { l.ShowBreadcrumb = !l.ShowBreadcrumb })
	case config.ActionFocusMode:
		a.toggleLayout(func(l *session.Layout) { l.FocusMode = !l.FocusMode })
	case config.ActionHelp:
		a.showHelp = true
	case config.ActionQuit:
		a.Close()
		return tea.Quit
	}
	return nil
}

// searchFiles feeds the quick-open finder.
func (a *App) searchFiles(query string) []panel.FinderItem {
	files, err := a.ws.ListFiles()
	if err != nil {
		a.log.WithError(err).Warn("list workspace files")
	}
	return quickOpenItems(a.sess.Recent().List(), files, query)
}

// openInput opens a path typed by the user.
func (a *App) openInput(input string) tea.Cmd {
	rel, err := a.ws.Normalize(input)
	if err != nil {
		return a.toast(err.Error(), true)
	}
	return a.openPath(rel)
}

func (a *App) openPath(rel string) tea.Cmd {
	if _, err := a.sess.Open(rel); err != nil {
		a.log.WithError(err).WithField("path", rel).Warn("open")
		return a.toast("open failed: "+err.Error(), true)
	}
	a.syncEditor()
	a.refresh()
	return nil
}

// saveActive writes the active tab off the UI goroutine.
func (a *App) saveActive() tea.Cmd {
	tab, ok := a.sess.ActiveTab()
	if !ok {
		return nil
	}
	sess := a.sess
	return func() tea.Msg {
		err := sess.SaveActive(context.Background(), false)
		return saveDoneMsg{path: tab.Path, err: err}
	}
}

// closeActive closes the active tab, asking first if it has unsaved edits.
func (a *App) closeActive() tea.Cmd {
	tab, ok := a.sess.ActiveTab()
	if !ok {
		return nil
	}
	if tab.Dirty {
		a.pending = promptAction{kind: promptClose, tab: tab.ID}
		a.prompt.ShowChoice(
			fmt.Sprintf("Save changes to %s?", tab.Title),
			"y save · n discard · esc cancel",
			"y", "n",
		)
		return nil
	}
	return a.closeTab(tab.ID, false)
}

func (a *App) closeTab(id session.TabID, force bool) tea.Cmd {
	err := a.sess.Close(id, force)
	a.syncEditor()
	a.refresh()
	switch {
	case errors.Is(err, session.ErrUnsavedChanges):
		return a.closeActive()
	case err != nil:
		return a.toast("close failed: "+err.Error(), true)
	}
	return nil
}

func (a *App) handlePromptResult(value string) tea.Cmd {
	p := a.pending
	a.pending = promptAction{}
	if p.kind == promptOpen {
		return a.openInput(value)
	}
	return nil
}

func (a *App) handlePromptChoice(key string) tea.Cmd {
	p := a.pending
	a.pending = promptAction{}
	if p.kind != promptClose {
		return nil
	}

	switch key {
	case "y":
		if a.sess.ActiveTabID() != p.tab {
			return nil
		}
		if err := a.sess.SaveActive(context.Background(), false); err != nil {
			a.refresh()
			return a.toast("save failed: "+err.Error(), true)
		}
		return a.closeTab(p.tab, false)
	case "n":
		return a.closeTab(p.tab, true)
	}
	return nil
}

func (a *App) activeIndex(tabs []session.Tab) int {
	id := a.sess.ActiveTabID()
	return slices.IndexFunc(tabs, func(t session.Tab) bool { return t.ID == id })
}

func (a *App) cycleTab(delta int) {
	tabs := a.sess.Tabs()
	idx := a.activeIndex(tabs)
	if len(tabs) < 2 || idx < 0 {
		return
	}
	next := (idx + delta + len(tabs)) % len(tabs)
	if err := a.sess.Activate(tabs[next].ID); err != nil {
		a.log.WithError(err).Warn("activate tab")
	}
	a.syncEditor()
	a.refresh()
}

func (a *App) moveTab(delta int) {
	tabs := a.sess.Tabs()
	idx := a.activeIndex(tabs)
	to := idx + delta
	if idx < 0 || to < 0 || to >= len(tabs) {
		return
	}
	if err := a.sess.Move(idx, to); err != nil {
		a.log.WithError(err).Warn("move tab")
	}
	a.refresh()
}

func (a *App) toggleAutosave() tea.Cmd {
	enabled := !a.autosave.Settings().Enabled
	a.autosave.UpdateSettings(autosave.Patch{Enabled: &enabled})
	a.status.SetAutosave(a.autosave.Status())
	if enabled {
		return a.toast("autosave on", false)
	}
	return a.toast("autosave off", false)
}

func (a *App) toggleLayout(fn func(*session.Layout)) {
	l := a.sess.Layout()
	fn(&l)
	a.sess.SetLayout(l)
	a.updateLayout()
}

// pruneRecent drops recent entries whose files no longer exist.
func (a *App) pruneRecent() {
	valid, err := a.ws.ValidPaths()
	if err != nil {
		a.log.WithError(err).Warn("list workspace files")
		return
	}
	if n := a.sess.Recent().RemoveInvalid(valid); n > 0 {
		a.log.WithField("removed", n).Debug("pruned recent files")
	}
	a.refresh()
}

// toast shows msg in the status bar until it expires or is replaced.
func (a *App) toast(msg string, isErr bool) tea.Cmd {
	a.toastSeq++
	seq := a.toastSeq
	a.status.SetToast(msg, isErr)
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}
