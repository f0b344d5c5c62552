package plan

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// fixture builds a plan with the given features. Each entry is
// "name:dep1,dep2" with deps optional.
func fixture(t *testing.T, entries ...string) *Plan {
	t.Helper()

	features := make(map[string]*Feature, len(entries))
	order := make([]string, 0, len(entries))

	for _, entry := range entries {
		name, depList, _ := strings.Cut(entry, ":")
		var deps []string
		if depList != "" {
			deps = strings.Split(depList, ",")
		}
		features[name] = &Feature{
			Name:         name,
			Description:  "test feature " + name,
			Complexity:   ComplexityMedium,
			Dependencies: deps,
			Steps: []Step{
				{Description: "design " + name},
				{Description: "implement " + name},
			},
		}
		order = append(order, name)
	}

	p, err := New("Test Project", "requirements text", features, order)
	if err != nil {
		t.Fatalf("failed to build fixture plan: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	p := fixture(t, "auth", "api:auth", "ui:api")

	if p.Status != PlanStatusPlanning {
		t.Errorf("expected planning status, got %s", p.Status)
	}
	if len(p.PendingFeatures) != 3 {
		t.Errorf("expected 3 pending features, got %d", len(p.PendingFeatures))
	}
	if p.PendingFeatures[0] != "auth" || p.PendingFeatures[2] != "ui" {
		t.Errorf("pending order should match insertion order, got %v", p.PendingFeatures)
	}
	if !strings.HasPrefix(p.ID, "test-project-") {
		t.Errorf("plan ID should start with project slug, got %s", p.ID)
	}
	for _, f := range p.Features {
		if f.Status != FeatureStatusNotStarted {
			t.Errorf("feature %s should start not_started, got %s", f.Name, f.Status)
		}
		for _, s := range f.Steps {
			if s.Status != StepStatusNotStarted {
				t.Errorf("step of %s should start not_started, got %s", f.Name, s.Status)
			}
		}
	}
}

func TestNewRejectsUnknownDependency(t *testing.T) {
	features := map[string]*Feature{
		"api": {Name: "api", Complexity: ComplexityLow, Dependencies: []string{"ghost"}},
	}
	_, err := New("p", "", features, []string{"api"})
	if errors.CodeOf(err) != errors.ErrCodePlanInvalid {
		t.Fatalf("expected PLAN-002, got %v", err)
	}
}

func TestNewRejectsCycle(t *testing.T) {
	features := map[string]*Feature{
		"a": {Name: "a", Complexity: ComplexityLow, Dependencies: []string{"b"}},
		"b": {Name: "b", Complexity: ComplexityLow, Dependencies: []string{"a"}},
	}
	_, err := New("p", "", features, []string{"a", "b"})
	if errors.CodeOf(err) != errors.ErrCodePlanCyclicDep {
		t.Fatalf("expected PLAN-003, got %v", err)
	}
}

func TestNewRejectsSelfDependency(t *testing.T) {
	features := map[string]*Feature{
		"a": {Name: "a", Complexity: ComplexityLow, Dependencies: []string{"a"}},
	}
	_, err := New("p", "", features, []string{"a"})
	if errors.CodeOf(err) != errors.ErrCodePlanCyclicDep {
		t.Fatalf("expected PLAN-003, got %v", err)
	}
}

func TestNewRejectsEmptyPlan(t *testing.T) {
	_, err := New("p", "", map[string]*Feature{}, nil)
	if errors.CodeOf(err) != errors.ErrCodePlanNoFeatures {
		t.Fatalf("expected PLAN-004, got %v", err)
	}
}
