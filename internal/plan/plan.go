package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// DefaultMaxParallelTasks is the per-plan concurrency ceiling used
// when a plan does not specify one.
const DefaultMaxParallelTasks = 3

func errInvalidEnum(kind, value string) error {
	return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("invalid %s %q", kind, value))
}

// NewPlanID derives a plan ID from the project name: a lowercase slug
// plus a short random suffix for uniqueness.
func NewPlanID(projectName string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(projectName), " ", "-"))
	if slug == "" {
		slug = "plan"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}

// New creates a Plan in planning status with every feature pending,
// in the insertion order given by featureOrder. The order slice must
// contain each key of features exactly once; this preserves the FIFO
// admission order the parser saw in the source document.
func New(projectName, requirements string, features map[string]*Feature, featureOrder []string) (*Plan, error) {
	now := time.Now().UTC()
	p := &Plan{
		ID:                NewPlanID(projectName),
		ProjectName:       projectName,
		Requirements:      requirements,
		Features:          features,
		Status:            PlanStatusPlanning,
		PendingFeatures:   make([]string, 0, len(features)),
		ActiveFeatures:    []string{},
		CompletedFeatures: []string{},
		MaxParallelTasks:  DefaultMaxParallelTasks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, name := range featureOrder {
		f, ok := features[name]
		if !ok {
			return nil, errors.New(errors.ErrCodePlanInvalid,
				fmt.Sprintf("feature order references unknown feature %q", name))
		}
		if f.Status == "" {
			f.Status = FeatureStatusNotStarted
		}
		if f.Complexity == "" {
			f.Complexity = ComplexityMedium
		}
		for i := range f.Steps {
			if f.Steps[i].Status == "" {
				f.Steps[i].Status = StepStatusNotStarted
			}
		}
		p.PendingFeatures = append(p.PendingFeatures, name)
	}

	if len(p.PendingFeatures) != len(features) {
		return nil, errors.New(errors.ErrCodePlanInvalid,
			"feature order must list every feature exactly once")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Feature returns the named feature or a not-found error.
func (p *Plan) Feature(name string) (*Feature, error) {
	f, ok := p.Features[name]
	if !ok {
		return nil, errors.NewFeatureNotFoundError(name)
	}
	return f, nil
}

// Touch updates the plan's modification timestamp.
func (p *Plan) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// IsComplete reports whether every feature has been completed.
func (p *Plan) IsComplete() bool {
	return len(p.Features) > 0 && len(p.CompletedFeatures) == len(p.Features)
}

// refreshStatus keeps the plan status consistent with the completed
// list: completed exactly when every feature is completed.
func (p *Plan) refreshStatus() {
	if p.IsComplete() {
		p.Status = PlanStatusCompleted
	} else if p.Status == PlanStatusCompleted {
		p.Status = PlanStatusInProgress
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func remove(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
