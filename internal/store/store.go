// Package store persists plans as JSON files, one file per plan under
// a store directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/plan"
)

// PlanStore reads and writes plan records. Records are overwritten
// whole on every Save.
type PlanStore struct {
	dir string
}

// NewPlanStore creates a store rooted at dir. The directory is created
// lazily on the first Save.
func NewPlanStore(dir string) *PlanStore {
	return &PlanStore{dir: dir}
}

// Dir returns the store's root directory.
func (s *PlanStore) Dir() string {
	return s.dir
}

func (s *PlanStore) planPath(planID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", planID))
}

// Save writes the plan record, stamping its modification time.
func (s *PlanStore) Save(p *plan.Plan) error {
	if p == nil {
		return errors.New(errors.ErrCodePlanInvalid, "cannot save nil plan")
	}

	p.Touch()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to create store directory: %s", s.dir), err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal,
			fmt.Sprintf("failed to marshal plan: %s", p.ID), err)
	}

	if err := os.WriteFile(s.planPath(p.ID), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to write plan file: %s", p.ID), err)
	}
	return nil
}

// Get reads the plan with the given ID.
func (s *PlanStore) Get(planID string) (*plan.Plan, error) {
	data, err := os.ReadFile(s.planPath(planID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(planID)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("failed to read plan file: %s", planID), err)
	}

	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewFileUnmarshalError(s.planPath(planID), "JSON", err)
	}
	return &p, nil
}

// Exists reports whether a plan record is present.
func (s *PlanStore) Exists(planID string) bool {
	_, err := os.Stat(s.planPath(planID))
	return err == nil
}

// Delete removes a plan record. Deleting an unknown plan is an error.
func (s *PlanStore) Delete(planID string) error {
	if err := os.Remove(s.planPath(planID)); err != nil {
		if os.IsNotExist(err) {
			return errors.NewPlanNotFoundError(planID)
		}
		return errors.Wrap(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to delete plan file: %s", planID), err)
	}
	return nil
}

// List returns every stored plan. Unreadable or malformed records are
// skipped so one corrupt file does not hide the rest.
func (s *PlanStore) List() ([]*plan.Plan, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*plan.Plan{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("failed to read store directory: %s", s.dir), err)
	}

	plans := make([]*plan.Plan, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := s.Get(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		plans = append(plans, p)
	}
	return plans, nil
}
