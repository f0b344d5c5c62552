// Package progress computes completion figures over a plan snapshot.
// All functions are pure; they never mutate the plan.
package progress

import (
	"github.com/felixgeelhaar/projector/internal/plan"
)

// Report summarizes how far a plan has progressed.
type Report struct {
	PlanID        string          `json:"plan_id"`
	Status        plan.PlanStatus `json:"status"`
	TotalFeatures int             `json:"total_features"`
	Completed     int             `json:"completed_features"`
	Active        int             `json:"active_features"`
	Pending       int             `json:"pending_features"`
	TotalSteps    int             `json:"total_steps"`
	DoneSteps     int             `json:"completed_steps"`

	// FeatureProgress counts completed features only; Weighted credits
	// in-progress features at half weight.
	FeatureProgress float64 `json:"feature_progress"`
	StepProgress    float64 `json:"step_progress"`
	Weighted        float64 `json:"weighted_completion"`
}

// FeatureProgress returns the percentage of completed features,
// 0 when the plan has no features.
func FeatureProgress(p *plan.Plan) float64 {
	if len(p.Features) == 0 {
		return 0
	}
	return float64(len(p.CompletedFeatures)) / float64(len(p.Features)) * 100
}

// StepProgress returns the percentage of completed steps across all
// features, 0 when no feature has steps.
func StepProgress(p *plan.Plan) float64 {
	total, done := countSteps(p)
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// WeightedCompletion returns a coarse project-level estimate that
// counts in-progress features at half weight.
func WeightedCompletion(p *plan.Plan) float64 {
	if len(p.Features) == 0 {
		return 0
	}
	inProgress := 0
	for _, f := range p.Features {
		if f.Status == plan.FeatureStatusInProgress {
			inProgress++
		}
	}
	weighted := float64(len(p.CompletedFeatures)) + 0.5*float64(inProgress)
	return weighted / float64(len(p.Features)) * 100
}

// Snapshot builds a full progress report for a plan.
func Snapshot(p *plan.Plan) Report {
	total, done := countSteps(p)
	return Report{
		PlanID:          p.ID,
		Status:          p.Status,
		TotalFeatures:   len(p.Features),
		Completed:       len(p.CompletedFeatures),
		Active:          len(p.ActiveFeatures),
		Pending:         len(p.PendingFeatures),
		TotalSteps:      total,
		DoneSteps:       done,
		FeatureProgress: FeatureProgress(p),
		StepProgress:    StepProgress(p),
		Weighted:        WeightedCompletion(p),
	}
}

func countSteps(p *plan.Plan) (total, done int) {
	for _, f := range p.Features {
		total += len(f.Steps)
		for _, s := range f.Steps {
			if s.Status == plan.StepStatusCompleted {
				done++
			}
		}
	}
	return total, done
}
