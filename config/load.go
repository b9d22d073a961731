package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads path over the defaults, applies environment overrides and validates
// An empty path skips the file
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v in %s", ErrInvalidConfig, undecoded, path)
		}
	}
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SNDFX_* environment variables; malformed values are ignored
func ApplyEnv(cfg *Config) {
	if v, ok := envBool("SNDFX_ENABLED"); ok {
		cfg.Enabled = v
	}
	if v, ok := envBool("SNDFX_OCCLUSION"); ok {
		cfg.Occlusion = v
	}
	if v, ok := envDuration("SNDFX_PERIOD"); ok {
		cfg.Period = Duration(v)
	}
	if v, ok := envDuration("SNDFX_QUIESCENCE_TIMEOUT"); ok {
		cfg.QuiescenceTimeout = Duration(v)
	}
	if v, ok := envInt("SNDFX_STAGGER_PERIOD"); ok && v > 0 {
		cfg.StaggerPeriod = v
	}
	if v, ok := envInt("SNDFX_MAX_WORKERS"); ok && v >= 0 {
		cfg.MaxWorkers = v
	}
	if v, ok := envInt("SNDFX_REVERB_RAYS"); ok && v >= 0 {
		cfg.ReverbRays = v
	}
	if v := os.Getenv("SNDFX_IGNORED_CATEGORIES"); v != "" {
		var cats []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cats = append(cats, c)
			}
		}
		cfg.IgnoredCategories = cats
	}
	if v := os.Getenv("SNDFX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func envBool(key string) (bool, bool) {
	s := os.Getenv(key)
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	return v, err == nil
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func envDuration(key string) (time.Duration, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := time.ParseDuration(s)
	return v, err == nil && v > 0
}
