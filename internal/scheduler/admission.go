package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/plan"
)

// admit runs one admission pass. Pending features are considered in
// insertion order; a candidate with unmet dependencies is skipped in
// place and a candidate whose gateway calls fail stays pending at its
// original position. Caller holds the plan lock.
func (s *Scheduler) admit(ctx context.Context, p *plan.Plan) *StartResult {
	result := &StartResult{PlanID: p.ID, Errors: map[string]error{}}

	slots := p.MaxParallelTasks - len(p.ActiveFeatures)
	candidates := append([]string(nil), p.PendingFeatures...)

	for _, name := range candidates {
		if slots <= 0 {
			break
		}
		dep, err := p.UnsatisfiedDependency(name)
		if err != nil {
			result.Errors[name] = err
			continue
		}
		if dep != "" {
			s.logger.With("plan_id", p.ID, "feature", name, "dependency", dep).
				Debug("skipping feature with unmet dependency")
			continue
		}

		f, err := p.Feature(name)
		if err != nil {
			result.Errors[name] = err
			continue
		}
		// Blocked features park in the pending list; they must not reach
		// the gateways until an operator resets them.
		if f.Status != plan.FeatureStatusNotStarted {
			s.logger.With("plan_id", p.ID, "feature", name, "status", string(f.Status)).
				Debug("skipping feature not eligible to start")
			continue
		}

		branchRef, threadRef, err := s.provision(ctx, name, f)
		if err != nil {
			// The feature keeps its place in the pending list and is
			// retried on the next pass.
			result.Errors[name] = err
			s.logger.WithError(err).With("plan_id", p.ID, "feature", name).
				Warn("admission failed, feature stays pending")
			if s.metrics != nil {
				s.metrics.AdmissionFailures.WithLabelValues(p.ID, string(errors.CodeOf(err))).Inc()
				s.metrics.RecordError(string(errors.CodeOf(err)))
			}
			continue
		}

		if err := p.Transition(name, plan.FeatureStatusInProgress); err != nil {
			result.Errors[name] = err
			continue
		}
		f.BranchRef = branchRef
		f.ThreadRef = threadRef
		slots--
		result.Started = append(result.Started, name)

		s.logger.With("plan_id", p.ID, "feature", name, "branch", branchRef).
			Info("feature admitted")
		if s.metrics != nil {
			s.metrics.FeaturesAdmitted.WithLabelValues(p.ID).Inc()
			s.metrics.ActiveFeatures.WithLabelValues(p.ID).Set(float64(len(p.ActiveFeatures)))
		}
	}

	result.Pending = append([]string(nil), p.PendingFeatures...)
	return result
}

// provision performs the admission side effects: branch first, then
// thread. Either failure leaves the feature unadmitted.
func (s *Scheduler) provision(ctx context.Context, name string, f *plan.Feature) (branchRef, threadRef string, err error) {
	branchRef = branchName(name)
	err = s.withRetry(ctx, "create_branch", func() error {
		return s.repo.CreateBranch(ctx, branchRef, s.baseBranch)
	})
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeAdmissionBranch,
			fmt.Sprintf("feature %s not started: branch creation failed", name), err)
	}

	message := f.Description
	if message == "" {
		message = fmt.Sprintf("Implementation of %s has started.", name)
	}
	err = s.withRetry(ctx, "create_thread", func() error {
		ref, threadErr := s.notify.CreateThread(ctx, name, message)
		if threadErr != nil {
			return threadErr
		}
		threadRef = ref
		return nil
	})
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeAdmissionThread,
			fmt.Sprintf("feature %s not started: thread creation failed", name), err)
	}

	return branchRef, threadRef, nil
}

// withRetry runs a gateway call up to the policy's attempt count with
// linearly growing waits between tries.
func (s *Scheduler) withRetry(ctx context.Context, operation string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		start := time.Now()
		lastErr = call()
		if s.metrics != nil {
			s.metrics.GatewayCalls.WithLabelValues("gateway", operation,
				fmt.Sprintf("%t", lastErr == nil)).Inc()
			s.metrics.GatewayLatency.WithLabelValues("gateway", operation).
				Observe(time.Since(start).Seconds())
		}
		if lastErr == nil {
			return nil
		}
		if attempt == s.retry.Attempts {
			break
		}

		wait := time.Duration(attempt) * s.retry.Backoff
		s.logger.WithError(lastErr).With("operation", operation, "attempt", attempt, "wait", wait.String()).
			Debug("gateway call failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}
