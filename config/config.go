// Package config holds the tunables of the effects engine
// Values come from defaults, an optional TOML file, then SNDFX_* environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Config is treated as immutable once handed to the engine; reloads swap in a new value
type Config struct {
	Enabled   bool `toml:"enabled"`
	Occlusion bool `toml:"occlusion"`

	// Scheduling
	Period            Duration `toml:"period"`
	StaggerPeriod     int      `toml:"stagger_period"`
	QuiescenceTimeout Duration `toml:"quiescence_timeout"`
	AttachTimeout     Duration `toml:"attach_timeout"`
	WorkerDivisor     int      `toml:"worker_divisor"`
	MaxWorkers        int      `toml:"max_workers"`
	QueueDepth        int      `toml:"queue_depth"`

	// Driver requirements
	AuxSends    int    `toml:"aux_sends"`
	RequiredEFX string `toml:"required_efx"`

	// Sources in these categories bypass effects processing
	IgnoredCategories []string `toml:"ignored_categories"`

	// Dampening coefficient per fluid name while the listener's eyes are submerged
	Fluids map[string]float32 `toml:"fluids"`

	// Recalculation
	OcclusionAbsorption float32 `toml:"occlusion_absorption"`
	MaxOcclusionHits    int     `toml:"max_occlusion_hits"`
	ReverbRays          int     `toml:"reverb_rays"`
	ReverbDistance      float64 `toml:"reverb_distance"`
	BlendStep           float32 `toml:"blend_step"`
	RainAirAbsorption   float32 `toml:"rain_air_absorption"`
	FluidAirAbsorption  float32 `toml:"fluid_air_absorption"`
	AirAbsorptionRange  float64 `toml:"air_absorption_range"`

	LogLevel string `toml:"log_level"`
}

// Default returns the stock configuration: ~30 Hz, every 4th period per source
func Default() *Config {
	return &Config{
		Enabled:             true,
		Occlusion:           true,
		Period:              Duration(time.Second / 30),
		StaggerPeriod:       4,
		QuiescenceTimeout:   Duration(5 * time.Second),
		AttachTimeout:       Duration(250 * time.Millisecond),
		WorkerDivisor:       3,
		MaxWorkers:          0,
		QueueDepth:          256,
		AuxSends:            4,
		RequiredEFX:         ">= 1.0",
		IgnoredCategories:   []string{"weather", "records", "music", "master"},
		Fluids:              map[string]float32{"water": 0.8, "lava": 0.95},
		OcclusionAbsorption: 0.75,
		MaxOcclusionHits:    4,
		ReverbRays:          16,
		ReverbDistance:      32,
		BlendStep:           0.35,
		RainAirAbsorption:   1.5,
		FluidAirAbsorption:  6,
		AirAbsorptionRange:  64,
		LogLevel:            "info",
	}
}

// Sentinel errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Period.D() <= 0:
		return fmt.Errorf("%w: period must be positive", ErrInvalidConfig)
	case c.StaggerPeriod < 1:
		return fmt.Errorf("%w: stagger_period must be >= 1", ErrInvalidConfig)
	case c.QuiescenceTimeout.D() <= 0:
		return fmt.Errorf("%w: quiescence_timeout must be positive", ErrInvalidConfig)
	case c.AttachTimeout.D() <= 0:
		return fmt.Errorf("%w: attach_timeout must be positive", ErrInvalidConfig)
	case c.WorkerDivisor < 1:
		return fmt.Errorf("%w: worker_divisor must be >= 1", ErrInvalidConfig)
	case c.MaxWorkers < 0:
		return fmt.Errorf("%w: max_workers must be >= 0", ErrInvalidConfig)
	case c.QueueDepth < 1:
		return fmt.Errorf("%w: queue_depth must be >= 1", ErrInvalidConfig)
	case c.AuxSends < 0 || c.AuxSends > 4:
		return fmt.Errorf("%w: aux_sends must be in [0,4]", ErrInvalidConfig)
	case c.BlendStep <= 0 || c.BlendStep > 1:
		return fmt.Errorf("%w: blend_step must be in (0,1]", ErrInvalidConfig)
	case c.ReverbRays < 0 || c.MaxOcclusionHits < 0:
		return fmt.Errorf("%w: ray counts must be >= 0", ErrInvalidConfig)
	case c.AirAbsorptionRange <= 0 || c.ReverbDistance <= 0:
		return fmt.Errorf("%w: distances must be positive", ErrInvalidConfig)
	}
	if _, err := c.EFXConstraint(); err != nil {
		return fmt.Errorf("%w: required_efx: %v", ErrInvalidConfig, err)
	}
	return nil
}

// EFXConstraint parses RequiredEFX; an empty string accepts any version
func (c *Config) EFXConstraint() (*semver.Constraints, error) {
	if c.RequiredEFX == "" {
		return semver.NewConstraint("*")
	}
	return semver.NewConstraint(c.RequiredEFX)
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	cp := *c
	cp.IgnoredCategories = append([]string(nil), c.IgnoredCategories...)
	cp.Fluids = make(map[string]float32, len(c.Fluids))
	for k, v := range c.Fluids {
		cp.Fluids[k] = v
	}
	return &cp
}

// Duration decodes TOML strings such as "33ms"
type Duration time.Duration

func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
