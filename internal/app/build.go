package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/autosave"
	"github.com/pfassina/quire/internal/cache"
	"github.com/pfassina/quire/internal/config"
	"github.com/pfassina/quire/internal/editor"
	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/recent"
	"github.com/pfassina/quire/internal/session"
	"github.com/pfassina/quire/internal/workspace"
)

// Env holds what every App in a process shares.
type Env struct {
	Config  config.Config
	Store   kvstore.Store
	Log     logrus.FieldLogger
	Factory editor.Factory
	// Autosave is applied after the stored settings are loaded, for
	// explicit command-line overrides. Nil fields are left alone.
	Autosave autosave.Patch
	Watch    bool
}

// Build assembles a session, its cache, recent registry and autosave
// scheduler, restores the previous session and wraps it in an App.
func Build(env Env) (*App, error) {
	cfg := env.Config
	log := env.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if env.Store == nil || env.Factory == nil {
		return nil, fmt.Errorf("build app: store and editor factory are required")
	}

	ws := workspace.New(cfg.Workspace)
	c := cache.New(env.Factory, cache.WithMaxSize(cfg.CacheSize), cache.WithLogger(log))

	reg := recent.New(env.Store, log)
	_ = reg.Load() // logged by the registry; starts empty

	sess := session.New(session.Deps{
		Cache:  c,
		Recent: reg,
		Store:  env.Store,
		Log:    log,
	})
	if err := sess.Restore(ws.Exists); err != nil {
		log.WithError(err).Warn("restore session")
	}

	sched := autosave.New(sess, env.Store, log, autosave.WithDefaults(autosave.Config{
		Enabled:  cfg.AutosaveEnabled,
		Interval: cfg.AutosaveInterval,
	}))
	_ = sched.Load() // logged by the scheduler; defaults kept
	if env.Autosave.Enabled != nil || env.Autosave.Interval != nil {
		sched.UpdateSettings(env.Autosave)
		sched.Stop()
	}

	return New(Deps{
		Config:    cfg,
		Session:   sess,
		Autosave:  sched,
		Workspace: ws,
		Log:       log,
		Watch:     env.Watch,
	}), nil
}
