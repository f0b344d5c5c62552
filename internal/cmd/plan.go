package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/parser"
	"github.com/felixgeelhaar/projector/internal/plan"
	"github.com/felixgeelhaar/projector/internal/progress"
	"github.com/felixgeelhaar/projector/internal/telemetry"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage delivery plans",
}

var (
	planCreateName         string
	planCreateRequirements string
	planStartMaxParallel   int
)

var planCreateCmd = &cobra.Command{
	Use:   "create <plan.md>",
	Short: "Create a plan from a markdown plan document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := telemetry.StartCommandSpan(cmd.Context(), "plan create")
		defer span.End()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(errors.ErrCodeFileReadFailed,
				fmt.Sprintf("failed to read plan document: %s", args[0]), err)
		}

		parsed, err := parser.ExtractFeatures(string(data))
		if err != nil {
			return err
		}

		name := planCreateName
		if name == "" {
			name = args[0]
		}
		p, err := plan.New(name, planCreateRequirements, parsed.Features, parsed.Order)
		if err != nil {
			return err
		}
		if err := planStore().Save(p); err != nil {
			return err
		}

		fmt.Printf("Created plan %s with %d features\n", p.ID, len(p.Features))
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plans, err := planStore().List()
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROJECT\tSTATUS\tFEATURES\tPROGRESS")
		for _, p := range plans {
			r := progress.Snapshot(p)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.1f%%\n",
				p.ID, p.ProjectName, p.Status, r.Completed, r.TotalFeatures, r.Weighted)
		}
		return w.Flush()
	},
}

var planStatusCmd = &cobra.Command{
	Use:   "status <plan-id>",
	Short: "Show a plan's features and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := planStore().Get(args[0])
		if err != nil {
			return err
		}

		r := progress.Snapshot(p)
		fmt.Printf("%s (%s)\n", p.ProjectName, p.ID)
		fmt.Printf("status: %s  features: %.1f%%  steps: %.1f%%  weighted: %.1f%%\n\n",
			p.Status, r.FeatureProgress, r.StepProgress, r.Weighted)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FEATURE\tSTATUS\tSTEPS\tDEPENDS ON\tBRANCH")
		for _, name := range append(append(append([]string{},
			p.CompletedFeatures...), p.ActiveFeatures...), p.PendingFeatures...) {
			f := p.Features[name]
			done := 0
			for _, s := range f.Steps {
				if s.Status == plan.StepStatusCompleted {
					done++
				}
			}
			deps := "-"
			if len(f.Dependencies) > 0 {
				deps = fmt.Sprintf("%v", f.Dependencies)
			}
			fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
				name, f.Status, done, len(f.Steps), deps, f.BranchRef)
		}
		return w.Flush()
	},
}

var planStartCmd = &cobra.Command{
	Use:   "start <plan-id>",
	Short: "Run an admission pass, starting eligible features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), "plan start")
		defer span.End()

		sched, err := newScheduler()
		if err != nil {
			return err
		}

		res, err := sched.StartImplementation(ctx, args[0], planStartMaxParallel)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}

		for _, name := range res.Started {
			fmt.Printf("started: %s\n", name)
		}
		for _, name := range res.Pending {
			if admErr, ok := res.Errors[name]; ok {
				fmt.Printf("pending: %s (%v)\n", name, admErr)
			} else {
				fmt.Printf("pending: %s\n", name)
			}
		}
		if len(res.Started) == 0 && len(res.Pending) == 0 {
			fmt.Println("Nothing to start; plan is complete.")
		}
		return nil
	},
}

var planExportFormat string

var planExportCmd = &cobra.Command{
	Use:   "export <plan-id>",
	Short: "Write a plan record to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := planStore().Get(args[0])
		if err != nil {
			return err
		}

		switch planExportFormat {
		case "json":
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode plan", err)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(p)
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode plan", err)
			}
			fmt.Print(string(data))
		default:
			return fmt.Errorf("unknown export format %q (want json or yaml)", planExportFormat)
		}
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := planStore().Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted plan %s\n", args[0])
		return nil
	},
}

func init() {
	planCreateCmd.Flags().StringVar(&planCreateName, "name", "", "project name (defaults to the document path)")
	planCreateCmd.Flags().StringVar(&planCreateRequirements, "requirements", "", "free-form requirements text stored with the plan")
	planStartCmd.Flags().IntVar(&planStartMaxParallel, "max-parallel", 0, "concurrency ceiling for this plan (0 keeps the current value)")
	planExportCmd.Flags().StringVar(&planExportFormat, "format", "yaml", "output format: yaml or json")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planStatusCmd)
	planCmd.AddCommand(planStartCmd)
	planCmd.AddCommand(planExportCmd)
	planCmd.AddCommand(planDeleteCmd)
	rootCmd.AddCommand(planCmd)
}
