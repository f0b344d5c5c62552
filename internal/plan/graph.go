package plan

import (
	"time"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// legalTransitions is the feature status transition table. Completed
// is terminal: a finished feature is never rescheduled or blocked.
var legalTransitions = map[FeatureStatus][]FeatureStatus{
	FeatureStatusNotStarted: {FeatureStatusInProgress, FeatureStatusBlocked},
	FeatureStatusInProgress: {FeatureStatusCompleted, FeatureStatusBlocked},
	FeatureStatusBlocked:    {FeatureStatusNotStarted},
	FeatureStatusCompleted:  {},
}

func transitionAllowed(from, to FeatureStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DependenciesSatisfied reports whether every dependency of the named
// feature is in the completed list.
func (p *Plan) DependenciesSatisfied(name string) (bool, error) {
	f, err := p.Feature(name)
	if err != nil {
		return false, err
	}
	for _, dep := range f.Dependencies {
		if !contains(p.CompletedFeatures, dep) {
			return false, nil
		}
	}
	return true, nil
}

// UnsatisfiedDependency returns the first dependency of the named
// feature that has not completed, or "" when all are satisfied.
func (p *Plan) UnsatisfiedDependency(name string) (string, error) {
	f, err := p.Feature(name)
	if err != nil {
		return "", err
	}
	for _, dep := range f.Dependencies {
		if !contains(p.CompletedFeatures, dep) {
			return dep, nil
		}
	}
	return "", nil
}

// Transition moves a feature to a new status, updating the pending,
// active and completed lists so membership always agrees with the
// status field. Illegal transitions fail without mutating anything.
func (p *Plan) Transition(name string, to FeatureStatus) error {
	f, err := p.Feature(name)
	if err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}

	from := f.Status
	if !transitionAllowed(from, to) {
		return errors.NewInvalidTransitionError(name, string(from), string(to))
	}

	now := time.Now().UTC()
	switch to {
	case FeatureStatusInProgress:
		p.PendingFeatures = remove(p.PendingFeatures, name)
		if !contains(p.ActiveFeatures, name) {
			p.ActiveFeatures = append(p.ActiveFeatures, name)
		}
		f.StartedAt = &now
	case FeatureStatusCompleted:
		p.ActiveFeatures = remove(p.ActiveFeatures, name)
		if !contains(p.CompletedFeatures, name) {
			p.CompletedFeatures = append(p.CompletedFeatures, name)
		}
		f.CompletedAt = &now
	case FeatureStatusBlocked:
		// Blocked features park in the pending list so the three lists
		// still partition the feature set.
		p.ActiveFeatures = remove(p.ActiveFeatures, name)
		if !contains(p.PendingFeatures, name) {
			p.PendingFeatures = append(p.PendingFeatures, name)
		}
	case FeatureStatusNotStarted:
		if !contains(p.PendingFeatures, name) {
			p.PendingFeatures = append(p.PendingFeatures, name)
		}
		f.StartedAt = nil
	}

	f.Status = to
	p.refreshStatus()
	p.Touch()
	return nil
}

// AllStepsCompleted reports whether every step of the named feature
// is completed. A feature with no steps is never auto-completed.
func (p *Plan) AllStepsCompleted(name string) (bool, error) {
	f, err := p.Feature(name)
	if err != nil {
		return false, err
	}
	if len(f.Steps) == 0 {
		return false, nil
	}
	for _, s := range f.Steps {
		if s.Status != StepStatusCompleted {
			return false, nil
		}
	}
	return true, nil
}

// SetStepStatus updates one step of a feature and reports whether the
// feature's steps are now all completed.
func (p *Plan) SetStepStatus(feature string, index int, status StepStatus) (bool, error) {
	f, err := p.Feature(feature)
	if err != nil {
		return false, err
	}
	if err := status.Validate(); err != nil {
		return false, err
	}
	if index < 0 || index >= len(f.Steps) {
		return false, errors.NewStepOutOfRangeError(feature, index)
	}

	f.Steps[index].Status = status
	p.Touch()

	return p.AllStepsCompleted(feature)
}
