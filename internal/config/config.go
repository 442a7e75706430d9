package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Workspace        string
	Listen           string
	Serve            bool
	LogLevel         string
	CacheSize        int
	AutosaveEnabled  bool
	AutosaveInterval int // seconds
	EditorBackend    string
	Theme            string
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Workspace:        filepath.Join(home, "notes"),
		Listen:           ":2323",
		Serve:            false,
		LogLevel:         "info",
		CacheSize:        5,
		AutosaveEnabled:  true,
		AutosaveInterval: 30,
		EditorBackend:    "buffer",
		Theme:            "catppuccin",
	}
}

// StateDir is where quire keeps per-workspace state such as the
// key/value database and the log file.
func (c Config) StateDir() string {
	return filepath.Join(c.Workspace, ".quire")
}

// StatePath returns the path of the workspace state database.
func (c Config) StatePath() string {
	return filepath.Join(c.StateDir(), "state.db")
}
