package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pfassina/quire/internal/app"
	"github.com/pfassina/quire/internal/autosave"
	"github.com/pfassina/quire/internal/config"
	"github.com/pfassina/quire/internal/editor"
	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/logging"
	"github.com/pfassina/quire/internal/ssh"
)

// version is set during build with -ldflags
var version = "dev"

var errSetupCancelled = errors.New("setup cancelled")

type flags struct {
	workspace        string
	serve            bool
	listen           string
	logLevel         string
	cacheSize        int
	editor           string
	theme            string
	autosaveInterval int
	noAutosave       bool
	noWatch          bool
}

var opts flags

var rootCmd = &cobra.Command{
	Use:           "quire",
	Short:         "Terminal markdown editor with tabs, recent files and autosave",
	Long:          `Quire edits the markdown documents of one workspace directory. Open files live in tabs, recently opened files are remembered and dirty documents are saved automatically.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, true)
		if errors.Is(err, errSetupCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		log, closeLog := logging.New(cfg)
		defer closeLog()

		kv, err := kvstore.Open(cfg.StatePath())
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer func() {
			if err := kv.Close(); err != nil {
				log.WithError(err).Warn("close state store")
			}
		}()

		factory, err := editor.NewFactory(editor.Backend(cfg.EditorBackend), cfg.Workspace, log)
		if err != nil {
			return err
		}

		env := app.Env{
			Config:   cfg,
			Store:    kv,
			Log:      log,
			Factory:  factory,
			Autosave: autosaveOverride(cmd),
			Watch:    !opts.noWatch,
		}

		log.WithFields(logrus.Fields{
			"workspace": cfg.Workspace,
			"serve":     cfg.Serve,
			"backend":   cfg.EditorBackend,
		}).Info("starting quire")

		if cfg.Serve {
			return runServe(env)
		}
		return runLocal(env)
	},
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&opts.serve, "serve", false, "run in SSH server mode")
	f.StringVar(&opts.listen, "listen", "", "listen address for --serve (e.g. :2323)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.IntVar(&opts.cacheSize, "cache-size", 0, "number of closed editors kept warm")
	f.StringVar(&opts.editor, "editor", "", "editor backend: buffer|nvim")
	f.StringVar(&opts.theme, "theme", "", "color theme name")
	f.IntVar(&opts.autosaveInterval, "autosave-interval", 0, "autosave interval in seconds")
	f.BoolVar(&opts.noAutosave, "no-autosave", false, "disable autosave")
	f.BoolVar(&opts.noWatch, "no-watch", false, "do not watch the workspace for removed files")

	rootCmd.PersistentFlags().StringVar(&opts.workspace, "workspace", "", "path to workspace directory")
	rootCmd.AddCommand(newRecentCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig merges config.toml with explicit flags. When setup is true and
// neither a config file nor --workspace exists, the first-run prompt asks
// for a workspace.
func loadConfig(cmd *cobra.Command, setup bool) (config.Config, error) {
	cfg := config.Default()
	existed, err := config.LoadFile(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("workspace") {
		cfg.Workspace = opts.workspace
	}
	if changed("serve") {
		cfg.Serve = opts.serve
	}
	if changed("listen") {
		cfg.Listen = opts.listen
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("cache-size") && opts.cacheSize > 0 {
		cfg.CacheSize = opts.cacheSize
	}
	if changed("editor") {
		cfg.EditorBackend = opts.editor
	}
	if changed("theme") {
		cfg.Theme = opts.theme
	}

	if setup && !existed && !changed("workspace") {
		res, err := config.RunSetup()
		if err != nil {
			return cfg, fmt.Errorf("setup failed: %w", err)
		}
		if res.Cancelled {
			return cfg, errSetupCancelled
		}
		cfg.Workspace = res.Workspace
	}

	// Expand ~ and make absolute so saved paths stay stable.
	cfg.Workspace = config.ExpandHome(cfg.Workspace)
	if abs, err := filepath.Abs(cfg.Workspace); err == nil {
		cfg.Workspace = abs
	}

	if err := os.MkdirAll(cfg.Workspace, 0755); err != nil {
		return cfg, fmt.Errorf("creating workspace dir: %w", err)
	}
	if err := os.MkdirAll(cfg.StateDir(), 0755); err != nil {
		return cfg, fmt.Errorf("creating state dir: %w", err)
	}
	return cfg, nil
}

// autosaveOverride returns only the autosave settings given explicitly on
// the command line. They are persisted like a toggle from the UI.
func autosaveOverride(cmd *cobra.Command) autosave.Patch {
	var p autosave.Patch
	changed := cmd.Flags().Changed
	if changed("no-autosave") {
		enabled := !opts.noAutosave
		p.Enabled = &enabled
	}
	if changed("autosave-interval") && opts.autosaveInterval > 0 {
		interval := opts.autosaveInterval
		p.Interval = &interval
	}
	return p
}

func runLocal(env app.Env) error {
	a, err := app.Build(env)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(env app.Env) error {
	s, err := ssh.New(env)
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		if err := s.Close(); err != nil {
			env.Log.WithError(err).Error("close server")
		}
	}()

	fmt.Fprintf(os.Stderr, "quire listening on %s\n", s.Addr())
	return s.ListenAndServe()
}
