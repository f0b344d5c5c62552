// Package cmd implements the projector command line interface.
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/projector/internal/config"
	"github.com/felixgeelhaar/projector/internal/gateway"
	"github.com/felixgeelhaar/projector/internal/gateway/github"
	"github.com/felixgeelhaar/projector/internal/gateway/local"
	"github.com/felixgeelhaar/projector/internal/gateway/slack"
	"github.com/felixgeelhaar/projector/internal/log"
	"github.com/felixgeelhaar/projector/internal/metrics"
	"github.com/felixgeelhaar/projector/internal/scheduler"
	"github.com/felixgeelhaar/projector/internal/store"
	"github.com/felixgeelhaar/projector/internal/telemetry"
	"github.com/felixgeelhaar/projector/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "projector",
	Short: "Feature delivery scheduler",
	Long: `projector drives multi-feature delivery plans to completion.
It parses a markdown plan into features with dependencies and steps,
admits features for parallel implementation as their dependencies
complete, and keeps branches and progress threads in sync through the
configured gateways.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		logConfig := log.DefaultConfig()
		logConfig.Level = log.ParseLevel(cfg.Log.Level)
		logConfig.Format = log.ParseFormat(cfg.Log.Format)
		logger = log.New(logConfig)
		log.SetDefaultLogger(logger)

		tcfg := telemetry.DefaultConfig()
		tcfg.ServiceVersion = version.GetInfo().Version
		tcfg.Enabled = cfg.Telemetry.Enabled
		tcfg.Endpoint = cfg.Telemetry.Endpoint
		if cfg.Telemetry.Environment != "" {
			tcfg.Environment = cfg.Telemetry.Environment
		}
		if cfg.Telemetry.SampleRate > 0 {
			tcfg.SampleRate = cfg.Telemetry.SampleRate
		}
		if _, err := telemetry.InitProvider(cmd.Context(), tcfg); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $XDG_CONFIG_HOME/projector/config.yaml)")
}

func planStore() *store.PlanStore {
	return store.NewPlanStore(cfg.Store.Dir)
}

// newScheduler assembles a scheduler from the configured gateways.
func newScheduler() (*scheduler.Scheduler, error) {
	var repo gateway.RepositoryGateway
	var err error
	switch cfg.Repository.Mode {
	case "github":
		repo, err = github.New(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo,
			github.WithLogger(logger))
	default:
		repo, err = local.Open(cfg.Repository.Path)
	}
	if err != nil {
		return nil, err
	}

	var notify gateway.NotificationGateway
	if cfg.Slack.Token != "" {
		notify, err = slack.New(cfg.Slack.Token, cfg.Slack.Channel, slack.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	} else {
		notify = logNotifier{logger: logger}
	}

	return scheduler.New(planStore(), repo, notify,
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(metrics.GetDefault()),
		scheduler.WithBaseBranch(cfg.Scheduler.BaseBranch),
		scheduler.WithRetryPolicy(scheduler.RetryPolicy{
			Attempts: cfg.Scheduler.RetryAttempts,
			Backoff:  time.Duration(cfg.Scheduler.RetryBackoffMs) * time.Millisecond,
		}),
	), nil
}

// logNotifier is the fallback notification gateway when Slack is not
// configured: thread activity goes to the log instead.
type logNotifier struct {
	logger *log.Logger
}

func (n logNotifier) CreateThread(_ context.Context, topic, message string) (string, error) {
	n.logger.With("topic", topic).Info(message)
	return "log:" + topic, nil
}

func (n logNotifier) ReplyToThread(_ context.Context, threadRef, message string) error {
	n.logger.With("thread", threadRef).Info(message)
	return nil
}
