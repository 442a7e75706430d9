package autosave

import (
	"encoding/json"
	"fmt"
)

// DefaultInterval is the autosave period in seconds.
const DefaultInterval = 30

// Config is the persisted autosave preference.
type Config struct {
	Enabled  bool `json:"enabled"`
	Interval int  `json:"interval"`
}

func DefaultConfig() Config {
	return Config{Enabled: true, Interval: DefaultInterval}
}

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	Enabled  *bool
	Interval *int
}

// apply returns cfg with the valid fields of p applied. A non-positive
// interval is ignored.
func (p Patch) apply(cfg Config) Config {
	if p.Enabled != nil {
		cfg.Enabled = *p.Enabled
	}
	if p.Interval != nil && *p.Interval > 0 {
		cfg.Interval = *p.Interval
	}
	return cfg
}

// PatchFromJSON builds a Patch from a loosely typed JSON object. A
// non-boolean "enabled" or an "interval" that is not a number of at least
// one second is dropped rather than rejected.
func PatchFromJSON(data []byte) (Patch, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Patch{}, fmt.Errorf("parse autosave settings: %w", err)
	}

	var p Patch
	if b, ok := raw["enabled"].(bool); ok {
		p.Enabled = &b
	}
	if n, ok := seconds(raw["interval"]); ok {
		p.Interval = &n
	}
	return p, nil
}

// decodeConfig reads a stored config over base. "enabled" is true unless
// it is exactly false; "interval" falls back to base unless it is a usable
// number of seconds.
func decodeConfig(data []byte, base Config) (Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return base, err
	}

	cfg := base
	cfg.Enabled = true
	if b, ok := raw["enabled"].(bool); ok && !b {
		cfg.Enabled = false
	}
	if n, ok := seconds(raw["interval"]); ok {
		cfg.Interval = n
	}
	return cfg, nil
}

func seconds(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f < 1 {
		return 0, false
	}
	return int(f), true
}
