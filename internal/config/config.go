// Package config loads projector configuration from a YAML file and
// PROJECTOR_* environment variables, with sane defaults for local use.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// Config is the complete projector configuration.
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Pool       PoolConfig       `mapstructure:"pool"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Slack      SlackConfig      `mapstructure:"slack"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	Log        LogConfig        `mapstructure:"log"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// StoreConfig controls plan persistence.
type StoreConfig struct {
	// Dir is the directory plan records are written to.
	Dir string `mapstructure:"dir"`
}

// SchedulerConfig controls admission behavior.
type SchedulerConfig struct {
	// MaxParallelTasks is the default per-plan concurrency ceiling.
	MaxParallelTasks int `mapstructure:"max_parallel_tasks"`
	// RetryAttempts is the total tries per gateway call during admission.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBackoffMs is the base wait between retries in milliseconds.
	RetryBackoffMs int `mapstructure:"retry_backoff_ms"`
	// BaseBranch is the branch feature branches fork from.
	BaseBranch string `mapstructure:"base_branch"`
}

// PoolConfig controls the execution pool.
type PoolConfig struct {
	// Workers is the worker count, clamped to [1, 20] by the pool.
	Workers int `mapstructure:"workers"`
}

// RepositoryConfig selects and configures the repository gateway.
type RepositoryConfig struct {
	// Mode is "github" or "local".
	Mode string `mapstructure:"mode"`
	// Path is the working copy used in local mode.
	Path string `mapstructure:"path"`
}

// SlackConfig configures the notification gateway.
type SlackConfig struct {
	Token   string `mapstructure:"token"`
	Channel string `mapstructure:"channel"`
}

// GitHubConfig configures the github repository gateway.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "json" or "text".
	Format string `mapstructure:"format"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	// Enabled turns tracing on. When false every span is a noop.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP/HTTP collector address. Empty means traces
	// are recorded but not exported.
	Endpoint string `mapstructure:"endpoint"`
	// SampleRate is the fraction of traces kept, in (0, 1].
	SampleRate float64 `mapstructure:"sample_rate"`
	// Environment tags exported spans.
	Environment string `mapstructure:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Dir: filepath.Join(configDir(), "plans"),
		},
		Scheduler: SchedulerConfig{
			MaxParallelTasks: 3,
			RetryAttempts:    3,
			RetryBackoffMs:   500,
			BaseBranch:       "main",
		},
		Pool: PoolConfig{
			Workers: 5,
		},
		Repository: RepositoryConfig{
			Mode: "local",
			Path: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			SampleRate:  1.0,
			Environment: "development",
		},
	}
}

// Load reads configuration from the given file path, falling back to
// config.yaml in the projector config directory. A missing file yields
// the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("PROJECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path == "" && (stderrors.As(err, &notFound) || os.IsNotExist(err)):
			// No file is fine; defaults and environment apply.
		case path != "" && os.IsNotExist(err):
			return nil, errors.New(errors.ErrCodeFileNotFound,
				fmt.Sprintf("config file not found: %s", path))
		default:
			return nil, errors.NewFileUnmarshalError(v.ConfigFileUsed(), "YAML", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(v.ConfigFileUsed(), "YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Scheduler.MaxParallelTasks < 1 {
		return errors.New(errors.ErrCodePlanInvalid,
			"scheduler.max_parallel_tasks must be at least 1")
	}
	if c.Scheduler.RetryAttempts < 1 {
		return errors.New(errors.ErrCodePlanInvalid,
			"scheduler.retry_attempts must be at least 1")
	}
	switch c.Repository.Mode {
	case "local", "github":
	default:
		return errors.New(errors.ErrCodeGatewayConfig,
			fmt.Sprintf("repository.mode must be local or github, got %q", c.Repository.Mode))
	}
	if c.Repository.Mode == "github" {
		if c.GitHub.Token == "" || c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return errors.New(errors.ErrCodeGatewayConfig,
				"github mode requires github.token, github.owner and github.repo")
		}
	}
	if c.Telemetry.Enabled && (c.Telemetry.SampleRate <= 0 || c.Telemetry.SampleRate > 1) {
		return errors.New(errors.ErrCodePlanInvalid,
			"telemetry.sample_rate must be in (0, 1]")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("scheduler.max_parallel_tasks", d.Scheduler.MaxParallelTasks)
	v.SetDefault("scheduler.retry_attempts", d.Scheduler.RetryAttempts)
	v.SetDefault("scheduler.retry_backoff_ms", d.Scheduler.RetryBackoffMs)
	v.SetDefault("scheduler.base_branch", d.Scheduler.BaseBranch)
	v.SetDefault("pool.workers", d.Pool.Workers)
	v.SetDefault("repository.mode", d.Repository.Mode)
	v.SetDefault("repository.path", d.Repository.Path)
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.channel", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
	v.SetDefault("telemetry.environment", d.Telemetry.Environment)
}

// configDir returns the projector config directory, honoring
// XDG_CONFIG_HOME.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "projector")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".projector"
	}
	return filepath.Join(home, ".config", "projector")
}
