package ssh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/quire/internal/app"
	"github.com/pfassina/quire/internal/config"
)

func TestHostKeyPath(t *testing.T) {
	env := app.Env{Config: config.Config{Workspace: "/w"}}
	assert.Equal(t, filepath.Join("/w", ".quire", "ssh_host_key"), HostKeyPath(env))
}

func TestNew_CreatesHostKey(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	cfg.Listen = "127.0.0.1:0"
	require.NoError(t, os.MkdirAll(cfg.StateDir(), 0755))
	env := app.Env{Config: cfg}

	s, err := New(env)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "127.0.0.1:0", s.Addr())
	assert.FileExists(t, HostKeyPath(env))
}
