package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.StaggerPeriod != 4 {
		t.Errorf("StaggerPeriod = %d, want 4", cfg.StaggerPeriod)
	}
	if cfg.Period.D() != time.Second/30 {
		t.Errorf("Period = %v", cfg.Period)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero period", func(c *Config) { c.Period = 0 }},
		{"zero stagger", func(c *Config) { c.StaggerPeriod = 0 }},
		{"zero divisor", func(c *Config) { c.WorkerDivisor = 0 }},
		{"blend step", func(c *Config) { c.BlendStep = 1.5 }},
		{"aux sends", func(c *Config) { c.AuxSends = 8 }},
		{"bad constraint", func(c *Config) { c.RequiredEFX = "not a version" }},
		{"queue depth", func(c *Config) { c.QueueDepth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sndfx.toml")
	writeFile(t, path, `
enabled = true
period = "50ms"
stagger_period = 2
ignored_categories = ["music"]
required_efx = ">= 1.1"

[fluids]
water = 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Period.D() != 50*time.Millisecond {
		t.Errorf("Period = %v", cfg.Period)
	}
	if cfg.StaggerPeriod != 2 {
		t.Errorf("StaggerPeriod = %d", cfg.StaggerPeriod)
	}
	if len(cfg.IgnoredCategories) != 1 || cfg.IgnoredCategories[0] != "music" {
		t.Errorf("IgnoredCategories = %v", cfg.IgnoredCategories)
	}
	if cfg.Fluids["water"] != 0.5 {
		t.Errorf("water = %v", cfg.Fluids["water"])
	}
	// Untouched keys keep defaults
	if cfg.ReverbRays != Default().ReverbRays {
		t.Errorf("ReverbRays = %d", cfg.ReverbRays)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sndfx.toml")
	writeFile(t, path, "periodd = \"5ms\"\n")
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SNDFX_ENABLED", "false")
	t.Setenv("SNDFX_PERIOD", "20ms")
	t.Setenv("SNDFX_STAGGER_PERIOD", "-3")
	t.Setenv("SNDFX_IGNORED_CATEGORIES", " master , ui ,")
	t.Setenv("SNDFX_MAX_WORKERS", "junk")

	cfg := Default()
	ApplyEnv(cfg)
	if cfg.Enabled {
		t.Error("SNDFX_ENABLED ignored")
	}
	if cfg.Period.D() != 20*time.Millisecond {
		t.Errorf("Period = %v", cfg.Period)
	}
	if cfg.StaggerPeriod != 4 {
		t.Errorf("negative stagger accepted: %d", cfg.StaggerPeriod)
	}
	if len(cfg.IgnoredCategories) != 2 || cfg.IgnoredCategories[1] != "ui" {
		t.Errorf("IgnoredCategories = %v", cfg.IgnoredCategories)
	}
	if cfg.MaxWorkers != 0 {
		t.Errorf("malformed MaxWorkers applied: %d", cfg.MaxWorkers)
	}
}

func TestClone_Independent(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Fluids["water"] = 0.1
	b.IgnoredCategories[0] = "changed"
	if a.Fluids["water"] == 0.1 || a.IgnoredCategories[0] == "changed" {
		t.Error("Clone shares state with the original")
	}
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sndfx.toml")
	writeFile(t, path, "stagger_period = 4\n")

	got := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) {
		select {
		case got <- c:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	writeFile(t, path, "stagger_period = 7\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.StaggerPeriod == 7 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatch_InvalidReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sndfx.toml")
	writeFile(t, path, "stagger_period = 4\n")

	errs := make(chan error, 4)
	w, err := Watch(path, func(*Config) {}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	writeFile(t, path, "stagger_period = 0\n")

	// A partially written file may surface a parse error first
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-errs:
			if errors.Is(err, ErrInvalidConfig) {
				return
			}
		case <-deadline:
			t.Fatal("no validation error observed")
		}
	}
}
