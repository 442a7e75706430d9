package ssh

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bts "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/pfassina/quire/internal/app"
)

// Server wraps a Wish SSH server.
type Server struct {
	server *ssh.Server
	addr   string
}

// HostKeyPath is where the server keeps its key, inside the workspace
// state directory.
func HostKeyPath(env app.Env) string {
	return filepath.Join(env.Config.StateDir(), "ssh_host_key")
}

// New creates a new SSH server.
func New(env app.Env) (*Server, error) {
	s, err := wish.NewServer(
		wish.WithAddress(env.Config.Listen),
		wish.WithHostKeyPath(HostKeyPath(env)),
		wish.WithMiddleware(
			bts.Middleware(NewHandler(env)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}

	return &Server{server: s, addr: env.Config.Listen}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe starts the SSH server. It returns nil after Close.
func (s *Server) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the SSH server.
func (s *Server) Close() error {
	return s.server.Close()
}
