package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	Workspace        *string `toml:"workspace"`
	Listen           *string `toml:"listen"`
	LogLevel         *string `toml:"log_level"`
	CacheSize        *int    `toml:"cache_size"`
	AutosaveEnabled  *bool   `toml:"autosave_enabled"`
	AutosaveInterval *int    `toml:"autosave_interval"`
	EditorBackend    *string `toml:"editor_backend"`
	Theme            *string `toml:"theme"`
}

// ConfigDir returns the quire config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quire")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quire")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Workspace != nil {
		cfg.Workspace = ExpandHome(*fc.Workspace)
	}
	if fc.Listen != nil {
		cfg.Listen = *fc.Listen
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.CacheSize != nil && *fc.CacheSize > 0 {
		cfg.CacheSize = *fc.CacheSize
	}
	if fc.AutosaveEnabled != nil {
		cfg.AutosaveEnabled = *fc.AutosaveEnabled
	}
	if fc.AutosaveInterval != nil && *fc.AutosaveInterval > 0 {
		cfg.AutosaveInterval = *fc.AutosaveInterval
	}
	if fc.EditorBackend != nil {
		cfg.EditorBackend = *fc.EditorBackend
	}
	if fc.Theme != nil {
		cfg.Theme = *fc.Theme
	}

	return true, nil
}

// SaveFile writes a minimal config.toml with the given workspace path.
func SaveFile(workspace string) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Store with ~ for readability if under home dir.
	home, _ := os.UserHomeDir()
	display := workspace
	if home != "" && strings.HasPrefix(workspace, home+string(os.PathSeparator)) {
		display = "~" + workspace[len(home):]
	}

	fc := fileConfig{Workspace: &display}
	f, err := os.Create(filepath.Join(dir, "config.toml"))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(fc)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
