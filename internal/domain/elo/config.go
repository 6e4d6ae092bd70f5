// Package elo implements the sequential rating engine that turns an ordered
// game log into opponent-adjusted home field advantage observations.
package elo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Recognized configuration keys.
const (
	KeyEloInit   = "elo_init"
	KeyZ         = "z"
	KeyK         = "k"
	KeyB         = "b"
	KeyWTWeight  = "wt_weight"
	KeyReversion = "reversion"
)

// RequiredKeys lists every key NewConfig expects.
var RequiredKeys = []string{KeyEloInit, KeyZ, KeyK, KeyB, KeyWTWeight, KeyReversion} //nolint:gochecknoglobals // read-only key list

// Config holds the rating model parameters.
type Config struct {
	// EloInit is the starting rating and the league baseline for reversion.
	EloInit float64
	// Z is the logistic win probability scale divisor.
	Z float64
	// K is the base rating shift step.
	K float64
	// B is the baseline margin of victory multiplier.
	B float64
	// WTWeight pulls a reverted rating toward the team's win total prior.
	WTWeight float64
	// Reversion pulls a reverted rating toward EloInit.
	Reversion float64
}

// NewConfig builds a Config from raw key/value pairs. Every key in
// RequiredKeys must be present; the error names all missing keys.
func NewConfig(values map[string]float64) (Config, error) {
	var missing []string
	for _, key := range RequiredKeys {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Config{}, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	cfg := Config{
		EloInit:   values[KeyEloInit],
		Z:         values[KeyZ],
		K:         values[KeyK],
		B:         values[KeyB],
		WTWeight:  values[KeyWTWeight],
		Reversion: values[KeyReversion],
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the update rule cannot work with. Reversion
// weights are not checked here; they are renormalized on use.
func (c Config) Validate() error {
	fields := map[string]float64{
		KeyEloInit:   c.EloInit,
		KeyZ:         c.Z,
		KeyK:         c.K,
		KeyB:         c.B,
		KeyWTWeight:  c.WTWeight,
		KeyReversion: c.Reversion,
	}
	for _, key := range RequiredKeys {
		if v := fields[key]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, key)
		}
	}
	if c.Z == 0 {
		return fmt.Errorf("%w: %s must not be zero", ErrInvalidConfig, KeyZ)
	}
	return nil
}

// weights returns the normalized (current, league, prior) reversion weights.
func (c Config) weights() (current, league, prior float64) {
	prior = c.WTWeight
	league = c.Reversion
	current = 1 - (prior + league)
	total := prior + league + current
	return current / total, league / total, prior / total
}
