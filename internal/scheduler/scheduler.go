// Package scheduler decides which pending features become active. It
// owns all plan mutation: admission, completion callbacks and step
// bookkeeping run under the plan's lock and are persisted through the
// plan store.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/gateway"
	"github.com/felixgeelhaar/projector/internal/log"
	"github.com/felixgeelhaar/projector/internal/metrics"
	"github.com/felixgeelhaar/projector/internal/plan"
	"github.com/felixgeelhaar/projector/internal/progress"
	"github.com/felixgeelhaar/projector/internal/store"
	"github.com/felixgeelhaar/projector/internal/telemetry"
)

// RetryPolicy bounds gateway retries during admission. Attempts is the
// total number of tries per call; waits grow linearly with the attempt
// number.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy retries a failed gateway call twice more with
// linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}
}

// PlanHandle binds a loaded plan to the mutex serializing access to
// it. The lock lives with the plan, so a handle can never exist
// without its lock.
type PlanHandle struct {
	mu   sync.Mutex
	plan *plan.Plan
}

// Snapshot returns a progress report for the handle's plan.
func (h *PlanHandle) Snapshot() progress.Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return progress.Snapshot(h.plan)
}

// StartResult reports the outcome of an admission pass. Errors maps
// feature names to the admission failure that kept them pending.
type StartResult struct {
	PlanID  string           `json:"plan_id"`
	Started []string         `json:"started"`
	Pending []string         `json:"pending"`
	Errors  map[string]error `json:"-"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics attaches a metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithRetryPolicy overrides the gateway retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Scheduler) {
		if p.Attempts > 0 {
			s.retry = p
		}
	}
}

// WithBaseBranch sets the branch new feature branches fork from.
func WithBaseBranch(branch string) Option {
	return func(s *Scheduler) {
		s.baseBranch = branch
	}
}

// Scheduler drives feature admission and lifecycle transitions for
// stored plans. It talks to the outside world only through the gateway
// interfaces.
type Scheduler struct {
	store      *store.PlanStore
	repo       gateway.RepositoryGateway
	notify     gateway.NotificationGateway
	logger     *log.Logger
	metrics    *metrics.Metrics
	retry      RetryPolicy
	baseBranch string

	mu      sync.Mutex
	handles map[string]*PlanHandle
}

// New creates a Scheduler over the given store and gateways.
func New(planStore *store.PlanStore, repo gateway.RepositoryGateway, notify gateway.NotificationGateway, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:      planStore,
		repo:       repo,
		notify:     notify,
		logger:     log.Default(),
		retry:      DefaultRetryPolicy(),
		baseBranch: "main",
		handles:    make(map[string]*PlanHandle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the shared handle for a plan, loading it from the
// store on first use. Concurrent callers always receive the same
// handle, so they contend on the same lock.
func (s *Scheduler) Handle(planID string) (*PlanHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles[planID]; ok {
		return h, nil
	}
	p, err := s.store.Get(planID)
	if err != nil {
		return nil, err
	}
	h := &PlanHandle{plan: p}
	s.handles[planID] = h
	return h, nil
}

// StartImplementation runs an admission pass over the plan's pending
// features, admitting up to maxConcurrent minus the currently active
// count. A maxConcurrent of zero or less keeps the plan's stored
// ceiling.
func (s *Scheduler) StartImplementation(ctx context.Context, planID string, maxConcurrent int) (*StartResult, error) {
	h, err := s.Handle(planID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.plan
	if maxConcurrent > 0 {
		p.MaxParallelTasks = maxConcurrent
	}
	if p.Status == plan.PlanStatusPlanning {
		p.Status = plan.PlanStatusInProgress
	}

	if s.metrics != nil {
		s.metrics.AdmissionPasses.WithLabelValues("start").Inc()
	}
	ctx, span := telemetry.StartAdmissionSpan(ctx, planID, "start")
	result := s.admit(ctx, p)
	span.End()

	if err := s.store.Save(p); err != nil {
		s.logger.WithError(err).With("plan_id", planID).Error("failed to persist plan after admission")
	}
	return result, nil
}

// OnFeatureCompleted records a feature completion and re-runs
// admission so dependents can start. Completing a feature that is not
// in progress fails without mutating the plan.
func (s *Scheduler) OnFeatureCompleted(ctx context.Context, planID, featureName string) (*StartResult, error) {
	h, err := s.Handle(planID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.completeFeature(ctx, h.plan, featureName); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AdmissionPasses.WithLabelValues("completion").Inc()
	}
	ctx, span := telemetry.StartAdmissionSpan(ctx, planID, "completion")
	result := s.admit(ctx, h.plan)
	span.End()

	if err := s.store.Save(h.plan); err != nil {
		s.logger.WithError(err).With("plan_id", planID).Error("failed to persist plan after completion")
	}
	return result, nil
}

// OnStepCompleted marks one step of a feature completed. When it was
// the feature's last open step the feature itself is completed and an
// admission pass runs; otherwise the returned result is empty.
func (s *Scheduler) OnStepCompleted(ctx context.Context, planID, featureName string, stepIndex int) (*StartResult, error) {
	h, err := s.Handle(planID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.plan
	allDone, err := p.SetStepStatus(featureName, stepIndex, plan.StepStatusCompleted)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StepsCompleted.WithLabelValues(p.ID).Inc()
	}

	result := &StartResult{PlanID: p.ID, Errors: map[string]error{}}
	if allDone {
		if err := s.completeFeature(ctx, p, featureName); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.AdmissionPasses.WithLabelValues("completion").Inc()
		}
		ctx, span := telemetry.StartAdmissionSpan(ctx, planID, "step_completion")
		result = s.admit(ctx, p)
		span.End()
	} else {
		result.Pending = append([]string(nil), p.PendingFeatures...)
	}

	if err := s.store.Save(p); err != nil {
		s.logger.WithError(err).With("plan_id", planID).Error("failed to persist plan after step update")
	}
	return result, nil
}

// BlockFeature parks a feature so admission passes skip it until an
// operator resets it.
func (s *Scheduler) BlockFeature(_ context.Context, planID, featureName string) error {
	return s.transitionFeature(planID, featureName, plan.FeatureStatusBlocked)
}

// ResetFeature returns a blocked feature to the not-started pool.
func (s *Scheduler) ResetFeature(_ context.Context, planID, featureName string) error {
	return s.transitionFeature(planID, featureName, plan.FeatureStatusNotStarted)
}

func (s *Scheduler) transitionFeature(planID, featureName string, to plan.FeatureStatus) error {
	h, err := s.Handle(planID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.plan.Transition(featureName, to); err != nil {
		return err
	}
	s.logger.With("plan_id", planID, "feature", featureName, "status", string(to)).
		Info("feature status changed")
	return s.store.Save(h.plan)
}

// completeFeature transitions a feature to completed and announces it
// in the feature's thread. Caller holds the plan lock.
func (s *Scheduler) completeFeature(ctx context.Context, p *plan.Plan, featureName string) error {
	f, err := p.Feature(featureName)
	if err != nil {
		return err
	}
	started := f.StartedAt

	if err := p.Transition(featureName, plan.FeatureStatusCompleted); err != nil {
		if s.metrics != nil {
			s.metrics.RecordError(string(errors.CodeOf(err)))
		}
		return err
	}

	s.logger.With("plan_id", p.ID, "feature", featureName).Info("feature completed")
	if s.metrics != nil {
		s.metrics.FeaturesCompleted.WithLabelValues(p.ID).Inc()
		s.metrics.ActiveFeatures.WithLabelValues(p.ID).Set(float64(len(p.ActiveFeatures)))
		if started != nil {
			s.metrics.FeatureDuration.WithLabelValues(p.ID).Observe(time.Since(*started).Seconds())
		}
	}

	if f.ThreadRef != "" {
		msg := fmt.Sprintf("Feature *%s* completed. Project is %.1f%% done (%d of %d features).",
			featureName, progress.WeightedCompletion(p), len(p.CompletedFeatures), len(p.Features))
		if err := s.notify.ReplyToThread(ctx, f.ThreadRef, msg); err != nil {
			// Announcement failures never roll back a completion.
			s.logger.WithError(err).With("feature", featureName).Warn("failed to announce completion")
		}
	}
	return nil
}

// branchName derives the work branch for a feature.
func branchName(feature string) string {
	slug := strings.ToLower(strings.TrimSpace(feature))
	slug = strings.ReplaceAll(slug, " ", "-")
	return "feature/" + slug
}
