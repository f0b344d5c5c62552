package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// Validate checks the plan's structural invariants: at least one
// feature, dependency references that exist, list membership agreeing
// with feature status, and an acyclic dependency graph.
func (p *Plan) Validate() error {
	if len(p.Features) == 0 {
		return errors.New(errors.ErrCodePlanNoFeatures, "plan must have at least one feature")
	}

	for name, f := range p.Features {
		if f == nil {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("feature %q is nil", name))
		}
		if f.Name != name {
			return errors.New(errors.ErrCodePlanInvalid,
				fmt.Sprintf("feature key %q does not match feature name %q", name, f.Name))
		}
		if err := f.Status.Validate(); err != nil {
			return err
		}
		if err := f.Complexity.Validate(); err != nil {
			return err
		}
		for _, dep := range f.Dependencies {
			if _, ok := p.Features[dep]; !ok {
				return errors.New(errors.ErrCodePlanInvalid,
					fmt.Sprintf("feature %q has dependency %q that does not exist in plan", name, dep))
			}
			if dep == name {
				return errors.NewPlanCyclicDepError(fmt.Sprintf("%s -> %s", name, name))
			}
		}
	}

	if err := p.validateLists(); err != nil {
		return err
	}

	return p.checkCircularDependencies()
}

// validateLists checks that pending, active and completed partition
// the feature set.
func (p *Plan) validateLists() error {
	seen := make(map[string]string, len(p.Features))
	lists := []struct {
		label string
		names []string
	}{
		{"pending", p.PendingFeatures},
		{"active", p.ActiveFeatures},
		{"completed", p.CompletedFeatures},
	}

	for _, l := range lists {
		for _, name := range l.names {
			if _, ok := p.Features[name]; !ok {
				return errors.New(errors.ErrCodePlanInvalid,
					fmt.Sprintf("%s list references unknown feature %q", l.label, name))
			}
			if prev, dup := seen[name]; dup {
				return errors.New(errors.ErrCodePlanInvalid,
					fmt.Sprintf("feature %q appears in both %s and %s lists", name, prev, l.label))
			}
			seen[name] = l.label
		}
	}

	if len(seen) != len(p.Features) {
		return errors.New(errors.ErrCodePlanInvalid,
			"every feature must appear in exactly one of pending, active, completed")
	}
	return nil
}

// checkCircularDependencies detects cycles in the dependency graph
// using a DFS with a recursion stack.
func (p *Plan) checkCircularDependencies() error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(name string, path []string) error
	hasCycle = func(name string, path []string) error {
		visited[name] = true
		recStack[name] = true
		path = append(path, name)

		f := p.Features[name]
		for _, dep := range f.Dependencies {
			if !visited[dep] {
				if err := hasCycle(dep, path); err != nil {
					return err
				}
			} else if recStack[dep] {
				cyclePath := append(path, dep)
				return errors.NewPlanCyclicDepError(strings.Join(cyclePath, " -> "))
			}
		}

		recStack[name] = false
		return nil
	}

	for name := range p.Features {
		if !visited[name] {
			if err := hasCycle(name, []string{}); err != nil {
				return err
			}
		}
	}

	return nil
}
