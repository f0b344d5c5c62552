package cmd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/projector/internal/plan"
	"github.com/felixgeelhaar/projector/internal/pool"
	"github.com/felixgeelhaar/projector/internal/scheduler"
	"github.com/felixgeelhaar/projector/internal/telemetry"
)

var sweepTimeout time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run an admission pass over every unfinished plan",
	Long: `Run an admission pass over every stored plan that is not yet
completed. Plans are processed concurrently on the configured worker
pool; each plan still serializes its own mutations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), "sweep")
		defer span.End()

		sched, err := newScheduler()
		if err != nil {
			return err
		}
		plans, err := planStore().List()
		if err != nil {
			return err
		}

		p := pool.New(cfg.Pool.Workers, pool.WithLogger(logger))
		defer p.Shutdown(true)

		var mu sync.Mutex
		results := make(map[string]*scheduler.StartResult)
		failures := make(map[string]error)

		swept := 0
		for _, rec := range plans {
			if rec.Status == plan.PlanStatusCompleted {
				continue
			}
			swept++
			planID := rec.ID
			task := func() {
				res, err := sched.StartImplementation(ctx, planID, 0)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures[planID] = err
					return
				}
				results[planID] = res
			}
			if err := p.Submit(task); err != nil {
				return err
			}
		}
		if swept == 0 {
			fmt.Println("Nothing to sweep; all plans are complete.")
			return nil
		}
		if !p.WaitCompletion(sweepTimeout) {
			return fmt.Errorf("sweep did not finish within %s", sweepTimeout)
		}

		ids := make([]string, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			res := results[id]
			fmt.Printf("%s: started %d, pending %d\n", id, len(res.Started), len(res.Pending))
		}
		for id, err := range failures {
			fmt.Printf("%s: %v\n", id, err)
		}
		if len(failures) > 0 {
			return fmt.Errorf("sweep failed for %d of %d plans", len(failures), swept)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 5*time.Minute,
		"maximum time to wait for all admission passes")
	rootCmd.AddCommand(sweepCmd)
}
