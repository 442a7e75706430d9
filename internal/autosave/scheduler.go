// Package autosave periodically saves the active document while it has
// unsaved edits.
//
// The scheduler is Idle or Armed. Start arms it when autosave is enabled,
// replacing any running timer; Stop disarms it. Each tick runs to
// completion before the next one, and Stop never interrupts a save that is
// already in flight.
package autosave

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/kvstore"
)

// Saver is the view of the session the scheduler needs.
type Saver interface {
	HasDirtyTabs() bool
	ActiveDirty() bool
	SaveActive(ctx context.Context, silent bool) error
}

// Level classifies a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier receives status text and transient, non-blocking notifications.
type Notifier interface {
	StatusChanged(status string)
	Notify(level Level, msg string)
}

type nopNotifier struct{}

func (nopNotifier) StatusChanged(string) {}
func (nopNotifier) Notify(Level, string) {}

// State is the scheduler's timer state.
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Scheduler drives the autosave cycle.
type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	lastSave time.Time
	cancel   context.CancelFunc

	// tickMu keeps ticks from overlapping, including across a restart.
	tickMu sync.Mutex

	saver    Saver
	store    kvstore.Store
	log      logrus.FieldLogger
	notifier Notifier
	now      func() time.Time
	unit     time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// WithDefaults sets the config used until Load finds a stored one.
// Invalid fields are replaced with the built-in defaults.
func WithDefaults(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = Patch{Enabled: &cfg.Enabled, Interval: &cfg.Interval}.apply(DefaultConfig())
	}
}

// WithTickUnit sets the duration of one interval unit (default one second).
func WithTickUnit(d time.Duration) Option {
	return func(s *Scheduler) { s.unit = d }
}

func New(saver Saver, store kvstore.Store, log logrus.FieldLogger, opts ...Option) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Scheduler{
		cfg:      DefaultConfig(),
		saver:    saver,
		store:    store,
		log:      log.WithField("component", "autosave"),
		notifier: nopNotifier{},
		now:      time.Now,
		unit:     time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetNotifier replaces the notifier. It exists for front ends that are
// built after the scheduler.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Load reads the persisted config. Defaults are kept when the key is
// absent, malformed or unreadable; failures are logged and returned.
func (s *Scheduler) Load() error {
	raw, ok, err := s.store.Get(kvstore.KeyAutoSave)
	if err != nil {
		s.log.WithError(err).Warn("load autosave settings")
		return fmt.Errorf("load autosave settings: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	base := s.cfg
	s.mu.Unlock()

	cfg, err := decodeConfig([]byte(raw), base)
	if err != nil {
		s.log.WithError(err).Warn("parse autosave settings")
		return fmt.Errorf("parse autosave settings: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) persist(cfg Config) {
	data, err := json.Marshal(cfg)
	if err != nil {
		s.log.WithError(err).Warn("encode autosave settings")
		return
	}
	if err := s.store.Set(kvstore.KeyAutoSave, string(data)); err != nil {
		s.log.WithError(err).Warn("save autosave settings")
	}
}

// Start arms the timer if autosave is enabled. Any running timer is
// replaced, so calling Start while Armed resets the tick phase.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if !s.cfg.Enabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	period := time.Duration(s.cfg.Interval) * s.unit
	go s.loop(ctx, period)
	s.log.WithField("interval", s.cfg.Interval).Debug("armed")
}

func (s *Scheduler) loop(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready.
			if s.armed(ctx) {
				s.Tick(ctx)
			}
		}
	}
}

// armed reports whether the timer that owns ctx is still the current one.
// Stop cancels under s.mu, so a tick that passes this check began before
// Stop returned.
func (s *Scheduler) armed(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ctx.Err() == nil
}

// Stop disarms the timer. It is a no-op when Idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.log.Debug("idle")
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return Armed
	}
	return Idle
}

// Tick runs one autosave cycle. Only the active tab is saved; other dirty
// tabs wait until they become active. Save failures are logged and
// reported to the notifier, never returned.
func (s *Scheduler) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if !s.saver.HasDirtyTabs() || !s.saver.ActiveDirty() {
		return
	}

	// A save that has started finishes even if the scheduler is stopped.
	if err := s.saver.SaveActive(context.WithoutCancel(ctx), true); err != nil {
		s.log.WithError(err).Error("autosave failed")
		s.notifierSnapshot().Notify(LevelError, "autosave failed")
		return
	}

	s.mu.Lock()
	s.lastSave = s.now()
	s.mu.Unlock()
	s.refreshStatus()
}

func (s *Scheduler) notifierSnapshot() Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier
}

// UpdateSettings applies p, persists the result and restarts the timer so
// a new interval takes effect from the next cycle.
func (s *Scheduler) UpdateSettings(p Patch) Config {
	s.mu.Lock()
	s.cfg = p.apply(s.cfg)
	cfg := s.cfg
	s.mu.Unlock()

	s.persist(cfg)
	s.Stop()
	s.Start()
	s.refreshStatus()
	return cfg
}

func (s *Scheduler) Settings() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// LastSaveTime returns the time of the last successful autosave in this
// process, or the zero time.
func (s *Scheduler) LastSaveTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// Status returns the text shown in the status bar.
func (s *Scheduler) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.cfg.Enabled:
		return "autosave off"
	case s.lastSave.IsZero():
		return fmt.Sprintf("autosave every %d seconds", s.cfg.Interval)
	default:
		return "last saved at " + s.lastSave.Format("15:04")
	}
}

func (s *Scheduler) refreshStatus() {
	s.notifierSnapshot().StatusChanged(s.Status())
}
