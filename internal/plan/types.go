// Package plan holds the feature graph for a project: the features to
// implement, their steps and dependencies, and the bookkeeping lists
// that drive scheduling. The types here are not safe for concurrent
// use; callers serialize access through a scheduler.PlanHandle.
package plan

import "time"

// PlanStatus represents the lifecycle state of a whole plan
type PlanStatus string

const (
	PlanStatusPlanning   PlanStatus = "planning"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
)

// Validate checks if the plan status is valid
func (s PlanStatus) Validate() error {
	switch s {
	case PlanStatusPlanning, PlanStatusInProgress, PlanStatusCompleted:
		return nil
	default:
		return errInvalidEnum("plan status", string(s))
	}
}

// FeatureStatus represents the lifecycle state of a single feature
type FeatureStatus string

const (
	FeatureStatusNotStarted FeatureStatus = "not_started"
	FeatureStatusInProgress FeatureStatus = "in_progress"
	FeatureStatusCompleted  FeatureStatus = "completed"
	FeatureStatusBlocked    FeatureStatus = "blocked"
)

// Validate checks if the feature status is valid
func (s FeatureStatus) Validate() error {
	switch s {
	case FeatureStatusNotStarted, FeatureStatusInProgress, FeatureStatusCompleted, FeatureStatusBlocked:
		return nil
	default:
		return errInvalidEnum("feature status", string(s))
	}
}

// StepStatus represents the state of a single step inside a feature
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "not_started"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
)

// Validate checks if the step status is valid
func (s StepStatus) Validate() error {
	switch s {
	case StepStatusNotStarted, StepStatusInProgress, StepStatusCompleted:
		return nil
	default:
		return errInvalidEnum("step status", string(s))
	}
}

// Complexity is a coarse implementation-effort estimate for a feature
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Validate checks if the complexity is valid
func (c Complexity) Validate() error {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return nil
	default:
		return errInvalidEnum("complexity", string(c))
	}
}

// Step is the smallest tracked unit of progress inside a feature
type Step struct {
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	TaskRef     string     `json:"task_ref,omitempty"`
}

// Feature is a unit of schedulable work with dependencies and steps
type Feature struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Steps        []Step        `json:"steps"`
	Dependencies []string      `json:"dependencies"`
	Complexity   Complexity    `json:"complexity"`
	Status       FeatureStatus `json:"status"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`

	// Opaque handles recorded at admission time. ThreadRef comes from
	// the notification gateway, BranchRef from the repository gateway.
	ThreadRef string `json:"thread_ref,omitempty"`
	BranchRef string `json:"branch_ref,omitempty"`
}

// Plan is the aggregate of features for one project plus its
// completion state. Features live in the map; the three name lists
// partition the map keys by lifecycle stage.
type Plan struct {
	ID           string              `json:"id"`
	ProjectName  string              `json:"project_name"`
	Requirements string              `json:"requirements"`
	Features     map[string]*Feature `json:"features"`
	Status       PlanStatus          `json:"status"`

	PendingFeatures   []string `json:"pending_features"`
	ActiveFeatures    []string `json:"active_features"`
	CompletedFeatures []string `json:"completed_features"`

	MaxParallelTasks int `json:"max_parallel_tasks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
