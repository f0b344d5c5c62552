package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/projector/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scheduler.MaxParallelTasks != 3 {
		t.Errorf("MaxParallelTasks = %d, want 3", cfg.Scheduler.MaxParallelTasks)
	}
	if cfg.Pool.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Pool.Workers)
	}
	if cfg.Telemetry.Enabled {
		t.Error("tracing must be off by default")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.Telemetry.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
store:
  dir: /tmp/projector-plans
scheduler:
  max_parallel_tasks: 5
  base_branch: develop
pool:
  workers: 8
log:
  level: debug
  format: json
telemetry:
  enabled: true
  endpoint: localhost:4318
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Dir != "/tmp/projector-plans" {
		t.Errorf("Store.Dir = %q", cfg.Store.Dir)
	}
	if cfg.Scheduler.MaxParallelTasks != 5 || cfg.Scheduler.BaseBranch != "develop" {
		t.Errorf("scheduler config not applied: %+v", cfg.Scheduler)
	}
	if cfg.Scheduler.RetryAttempts != 3 {
		t.Errorf("unset fields must keep defaults, got %d", cfg.Scheduler.RetryAttempts)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log config not applied: %+v", cfg.Log)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "localhost:4318" {
		t.Errorf("telemetry config not applied: %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("unset sample rate must keep the default, got %v", cfg.Telemetry.SampleRate)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if errors.CodeOf(err) != errors.ErrCodeFileNotFound {
		t.Errorf("expected %s, got: %v", errors.ErrCodeFileNotFound, err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "store: [not a map\n")

	_, err := Load(path)
	if errors.CodeOf(err) != errors.ErrCodeFileUnmarshal {
		t.Errorf("expected %s, got: %v", errors.ErrCodeFileUnmarshal, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.ErrorCode
	}{
		{
			name:   "zero parallel tasks",
			mutate: func(c *Config) { c.Scheduler.MaxParallelTasks = 0 },
			code:   errors.ErrCodePlanInvalid,
		},
		{
			name:   "zero retry attempts",
			mutate: func(c *Config) { c.Scheduler.RetryAttempts = 0 },
			code:   errors.ErrCodePlanInvalid,
		},
		{
			name:   "bad repository mode",
			mutate: func(c *Config) { c.Repository.Mode = "svn" },
			code:   errors.ErrCodeGatewayConfig,
		},
		{
			name:   "github mode without credentials",
			mutate: func(c *Config) { c.Repository.Mode = "github" },
			code:   errors.ErrCodeGatewayConfig,
		},
		{
			name: "tracing enabled with bad sample rate",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.SampleRate = 1.5
			},
			code: errors.ErrCodePlanInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if errors.CodeOf(err) != tt.code {
				t.Errorf("expected %s, got: %v", tt.code, err)
			}
		})
	}
}
