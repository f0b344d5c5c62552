package plan

import (
	"testing"

	"github.com/felixgeelhaar/projector/internal/errors"
)

func mustTransition(t *testing.T, p *Plan, name string, to FeatureStatus) {
	t.Helper()
	if err := p.Transition(name, to); err != nil {
		t.Fatalf("transition %s -> %s failed: %v", name, to, err)
	}
}

// assertPartition checks that each feature is in exactly one list and
// that list membership agrees with the status field.
func assertPartition(t *testing.T, p *Plan) {
	t.Helper()

	for name, f := range p.Features {
		inPending := contains(p.PendingFeatures, name)
		inActive := contains(p.ActiveFeatures, name)
		inCompleted := contains(p.CompletedFeatures, name)

		count := 0
		for _, in := range []bool{inPending, inActive, inCompleted} {
			if in {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("feature %s is in %d lists, want exactly 1", name, count)
		}

		switch f.Status {
		case FeatureStatusNotStarted, FeatureStatusBlocked:
			if !inPending {
				t.Fatalf("feature %s has status %s but is not pending", name, f.Status)
			}
		case FeatureStatusInProgress:
			if !inActive {
				t.Fatalf("feature %s is in_progress but not active", name)
			}
		case FeatureStatusCompleted:
			if !inCompleted {
				t.Fatalf("feature %s is completed but not in completed list", name)
			}
		}
	}
}

func TestTransitionLifecycle(t *testing.T) {
	p := fixture(t, "auth", "api:auth")

	mustTransition(t, p, "auth", FeatureStatusInProgress)
	assertPartition(t, p)

	auth := p.Features["auth"]
	if auth.StartedAt == nil {
		t.Error("StartedAt should be stamped on admission")
	}

	mustTransition(t, p, "auth", FeatureStatusCompleted)
	assertPartition(t, p)

	if auth.CompletedAt == nil {
		t.Error("CompletedAt should be stamped on completion")
	}
	if p.Status == PlanStatusCompleted {
		t.Error("plan should not be completed while api is pending")
	}

	mustTransition(t, p, "api", FeatureStatusInProgress)
	mustTransition(t, p, "api", FeatureStatusCompleted)
	assertPartition(t, p)

	if p.Status != PlanStatusCompleted {
		t.Errorf("plan should be completed, got %s", p.Status)
	}
}

func TestTransitionIllegal(t *testing.T) {
	tests := []struct {
		name string
		from FeatureStatus
		to   FeatureStatus
	}{
		{"skip in_progress", FeatureStatusNotStarted, FeatureStatusCompleted},
		{"restart active", FeatureStatusInProgress, FeatureStatusNotStarted},
		{"complete twice", FeatureStatusCompleted, FeatureStatusCompleted},
		{"reopen completed", FeatureStatusCompleted, FeatureStatusInProgress},
		{"block completed", FeatureStatusCompleted, FeatureStatusBlocked},
		{"identity", FeatureStatusNotStarted, FeatureStatusNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixture(t, "auth")
			if tt.from != FeatureStatusNotStarted {
				mustTransition(t, p, "auth", FeatureStatusInProgress)
				if tt.from == FeatureStatusCompleted {
					mustTransition(t, p, "auth", FeatureStatusCompleted)
				}
			}

			before := p.Features["auth"].Status
			err := p.Transition("auth", tt.to)
			if errors.CodeOf(err) != errors.ErrCodeInvalidTransition {
				t.Fatalf("expected FEATURE-002, got %v", err)
			}
			if p.Features["auth"].Status != before {
				t.Error("illegal transition must not mutate state")
			}
			assertPartition(t, p)
		})
	}
}

func TestTransitionBlockedAndReset(t *testing.T) {
	p := fixture(t, "auth")

	mustTransition(t, p, "auth", FeatureStatusInProgress)
	mustTransition(t, p, "auth", FeatureStatusBlocked)
	assertPartition(t, p)

	if !contains(p.PendingFeatures, "auth") {
		t.Error("blocked feature should park in pending list")
	}

	mustTransition(t, p, "auth", FeatureStatusNotStarted)
	assertPartition(t, p)

	if p.Features["auth"].StartedAt != nil {
		t.Error("reset should clear StartedAt")
	}
}

func TestTransitionCompleteIsIdempotentError(t *testing.T) {
	p := fixture(t, "auth")
	mustTransition(t, p, "auth", FeatureStatusInProgress)
	mustTransition(t, p, "auth", FeatureStatusCompleted)

	err := p.Transition("auth", FeatureStatusCompleted)
	if errors.CodeOf(err) != errors.ErrCodeInvalidTransition {
		t.Fatalf("expected FEATURE-002 on double completion, got %v", err)
	}
	if len(p.CompletedFeatures) != 1 {
		t.Errorf("feature must not be duplicated in completed list, got %v", p.CompletedFeatures)
	}
}

func TestTransitionUnknownFeature(t *testing.T) {
	p := fixture(t, "auth")
	err := p.Transition("ghost", FeatureStatusInProgress)
	if errors.CodeOf(err) != errors.ErrCodeFeatureNotFound {
		t.Fatalf("expected FEATURE-001, got %v", err)
	}
}

func TestDependenciesSatisfied(t *testing.T) {
	p := fixture(t, "auth", "api:auth")

	ok, err := p.DependenciesSatisfied("api")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("api deps should not be satisfied before auth completes")
	}

	dep, err := p.UnsatisfiedDependency("api")
	if err != nil {
		t.Fatal(err)
	}
	if dep != "auth" {
		t.Errorf("expected unsatisfied dependency auth, got %q", dep)
	}

	mustTransition(t, p, "auth", FeatureStatusInProgress)
	mustTransition(t, p, "auth", FeatureStatusCompleted)

	ok, err = p.DependenciesSatisfied("api")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("api deps should be satisfied after auth completes")
	}
}

func TestSetStepStatus(t *testing.T) {
	p := fixture(t, "auth")

	allDone, err := p.SetStepStatus("auth", 0, StepStatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if allDone {
		t.Error("one of two steps completed should not report all done")
	}

	allDone, err = p.SetStepStatus("auth", 1, StepStatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if !allDone {
		t.Error("all steps completed should be reported")
	}
}

func TestSetStepStatusOutOfRange(t *testing.T) {
	p := fixture(t, "auth")

	for _, index := range []int{-1, 2} {
		_, err := p.SetStepStatus("auth", index, StepStatusCompleted)
		if errors.CodeOf(err) != errors.ErrCodeStepOutOfRange {
			t.Fatalf("expected FEATURE-004 for index %d, got %v", index, err)
		}
	}
}

func TestAllStepsCompletedEmptyFeature(t *testing.T) {
	features := map[string]*Feature{
		"bare": {Name: "bare", Complexity: ComplexityLow},
	}
	p, err := New("p", "", features, []string{"bare"})
	if err != nil {
		t.Fatal(err)
	}

	done, err := p.AllStepsCompleted("bare")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("feature with no steps should not report all steps completed")
	}
}
