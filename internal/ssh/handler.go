package ssh

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/quire/internal/app"
)

// NewHandler returns a Bubble Tea handler for SSH sessions. Every
// connection gets its own session, editor cache and autosave scheduler;
// the key/value store in env is shared.
func NewHandler(env app.Env) bts.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		a, err := app.Build(env)
		if err != nil {
			wish.Fatalln(sess, err)
			return nil, nil
		}

		// A dropped connection never delivers ctrl+c.
		go func() {
			<-sess.Context().Done()
			a.Close()
		}()

		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
		}
		opts = append(opts, bts.MakeOptions(sess)...)

		return a, opts
	}
}
