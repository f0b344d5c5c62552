package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/plan"
)

func testPlan(t *testing.T) *plan.Plan {
	t.Helper()
	features := map[string]*plan.Feature{
		"auth": {
			Name:        "auth",
			Description: "login flow",
			Complexity:  plan.ComplexityHigh,
			Steps: []plan.Step{
				{Description: "add session middleware"},
				{Description: "wire login form"},
			},
		},
		"profile": {
			Name:         "profile",
			Dependencies: []string{"auth"},
		},
	}
	p, err := plan.New("store test", "requirements text", features, []string{"auth", "profile"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := NewPlanStore(t.TempDir())
	p := testPlan(t)

	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != p.ID || got.ProjectName != p.ProjectName {
		t.Errorf("identity fields did not round-trip: %+v", got)
	}
	if len(got.Features) != 2 || got.Features["auth"].Steps[1].Description != "wire login form" {
		t.Errorf("features did not round-trip: %+v", got.Features)
	}
	if len(got.PendingFeatures) != 2 || got.PendingFeatures[0] != "auth" {
		t.Errorf("pending order did not round-trip: %v", got.PendingFeatures)
	}
}

func TestSaveUpdatesTimestamp(t *testing.T) {
	s := NewPlanStore(t.TempDir())
	p := testPlan(t)
	before := p.UpdatedAt

	time.Sleep(time.Millisecond)
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !p.UpdatedAt.After(before) {
		t.Errorf("Save should stamp UpdatedAt: before=%v after=%v", before, p.UpdatedAt)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewPlanStore(t.TempDir())

	_, err := s.Get("missing-plan")
	if errors.CodeOf(err) != errors.ErrCodePlanNotFound {
		t.Errorf("expected %s, got: %v", errors.ErrCodePlanNotFound, err)
	}
}

func TestDelete(t *testing.T) {
	s := NewPlanStore(t.TempDir())
	p := testPlan(t)

	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Exists(p.ID) {
		t.Error("plan should be gone after Delete")
	}
	if err := s.Delete(p.ID); errors.CodeOf(err) != errors.ErrCodePlanNotFound {
		t.Errorf("expected not-found on double delete, got: %v", err)
	}
}

func TestListSkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	s := NewPlanStore(dir)

	first := testPlan(t)
	second := testPlan(t)
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	plans, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(plans) != 2 {
		t.Errorf("expected 2 plans, got %d", len(plans))
	}
}

func TestListEmptyDir(t *testing.T) {
	s := NewPlanStore(filepath.Join(t.TempDir(), "never-created"))

	plans, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("expected empty list, got %d", len(plans))
	}
}
