package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/telemetry"
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Report feature and step progress",
}

var featureCompleteCmd = &cobra.Command{
	Use:   "complete <plan-id> <feature>",
	Short: "Mark a feature completed and start unlocked dependents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), "feature complete")
		defer span.End()

		sched, err := newScheduler()
		if err != nil {
			return err
		}

		res, err := sched.OnFeatureCompleted(ctx, args[0], args[1])
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}

		fmt.Printf("completed: %s\n", args[1])
		for _, name := range res.Started {
			fmt.Printf("started: %s\n", name)
		}
		return nil
	},
}

var stepCompleteCmd = &cobra.Command{
	Use:   "step <plan-id> <feature> <step-index>",
	Short: "Mark a single step completed",
	Long: `Mark a single step completed. Step indexes are zero-based in
document order. Completing the last open step completes the feature
and runs an admission pass.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), "feature step")
		defer span.End()

		index, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.New(errors.ErrCodeStepOutOfRange,
				fmt.Sprintf("step index must be a number, got %q", args[2]))
		}

		sched, err := newScheduler()
		if err != nil {
			return err
		}

		res, err := sched.OnStepCompleted(ctx, args[0], args[1], index)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}

		fmt.Printf("step %d of %s completed\n", index, args[1])
		for _, name := range res.Started {
			fmt.Printf("started: %s\n", name)
		}
		return nil
	},
}

var featureBlockCmd = &cobra.Command{
	Use:   "block <plan-id> <feature>",
	Short: "Block a feature so admission passes skip it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := newScheduler()
		if err != nil {
			return err
		}
		if err := sched.BlockFeature(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("blocked: %s\n", args[1])
		return nil
	},
}

var featureResetCmd = &cobra.Command{
	Use:   "reset <plan-id> <feature>",
	Short: "Return a blocked feature to the not-started pool",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := newScheduler()
		if err != nil {
			return err
		}
		if err := sched.ResetFeature(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("reset: %s\n", args[1])
		return nil
	},
}

func init() {
	featureCmd.AddCommand(featureCompleteCmd)
	featureCmd.AddCommand(stepCompleteCmd)
	featureCmd.AddCommand(featureBlockCmd)
	featureCmd.AddCommand(featureResetCmd)
	rootCmd.AddCommand(featureCmd)
}
