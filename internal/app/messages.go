package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/quire/internal/autosave"
)

// toastDuration is how long a notification stays in the status bar.
const toastDuration = 4 * time.Second

// autosaveStatusMsg carries new autosave status text.
type autosaveStatusMsg struct{ text string }

// notifyMsg is a transient notification for the status bar.
type notifyMsg struct {
	level autosave.Level
	text  string
}

// toastExpiredMsg clears the toast with the matching sequence number.
type toastExpiredMsg struct{ seq int }

// documentsRemovedMsg is sent when files disappear from the workspace.
type documentsRemovedMsg struct{}

// saveDoneMsg reports the result of an explicit save.
type saveDoneMsg struct {
	path string
	err  error
}

// events delivers messages produced outside the Bubble Tea loop, such as
// autosave ticks and file watcher callbacks.
type events struct {
	ch   chan tea.Msg
	done chan struct{}
}

func newEvents() *events {
	return &events{
		ch:   make(chan tea.Msg, 64),
		done: make(chan struct{}),
	}
}

// post queues msg without blocking. It reports false if the queue is full
// or the app has shut down.
func (e *events) post(msg tea.Msg) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.ch <- msg:
		return true
	default:
		return false
	}
}

// wait returns a command that yields the next queued message.
func (e *events) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.ch:
			return msg
		case <-e.done:
			return nil
		}
	}
}

func (e *events) close() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// notifier adapts the event queue to autosave.Notifier.
type notifier struct{ ev *events }

func (n notifier) StatusChanged(text string) {
	n.ev.post(autosaveStatusMsg{text: text})
}

func (n notifier) Notify(level autosave.Level, text string) {
	n.ev.post(notifyMsg{level: level, text: text})
}
