// Package parser extracts features from a structured markdown plan
// document. The expected shape is a "## Feature: <name>" heading per
// feature followed by optional "Description:", "Dependencies:",
// "Complexity:" lines and "- [ ]" step checkboxes.
package parser

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/plan"
)

// Result carries the extracted features in document order.
type Result struct {
	Features map[string]*plan.Feature
	Order    []string
}

// ExtractFeatures parses a markdown plan document. It fails when the
// document declares no features or declares the same feature twice;
// dependency and cycle validation happens later at plan creation.
func ExtractFeatures(planText string) (*Result, error) {
	res := &Result{Features: make(map[string]*plan.Feature)}

	var current *plan.Feature
	scanner := bufio.NewScanner(strings.NewReader(planText))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "## Feature:") || strings.HasPrefix(line, "### Feature:"):
			name := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			if name == "" {
				return nil, errors.New(errors.ErrCodeParseBadFeature,
					"feature heading has no name")
			}
			if _, ok := res.Features[name]; ok {
				return nil, errors.New(errors.ErrCodeParseBadFeature,
					fmt.Sprintf("duplicate feature heading: %s", name))
			}
			current = &plan.Feature{
				Name:       name,
				Complexity: plan.ComplexityMedium,
				Status:     plan.FeatureStatusNotStarted,
			}
			res.Features[name] = current
			res.Order = append(res.Order, name)

		case current == nil:
			// Preamble before the first feature heading.

		case strings.HasPrefix(line, "Description:"):
			current.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))

		case strings.HasPrefix(line, "- [ ]") || strings.HasPrefix(line, "* [ ]"):
			current.Steps = append(current.Steps, plan.Step{
				Description: strings.TrimSpace(line[len("- [ ]"):]),
				Status:      plan.StepStatusNotStarted,
			})

		case strings.HasPrefix(line, "Dependencies:"):
			current.Dependencies = splitList(strings.TrimPrefix(line, "Dependencies:"))

		case strings.HasPrefix(line, "Complexity:"):
			value := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "Complexity:")))
			complexity := plan.Complexity(value)
			if err := complexity.Validate(); err != nil {
				return nil, errors.New(errors.ErrCodeParseBadFeature,
					fmt.Sprintf("feature %s has invalid complexity %q", current.Name, value))
			}
			current.Complexity = complexity
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseBadFeature, "failed to scan plan text", err)
	}

	if len(res.Order) == 0 {
		return nil, errors.New(errors.ErrCodeParseNoFeatures,
			"plan text declares no features").
			WithSuggestion("Declare features with '## Feature: <name>' headings")
	}
	return res, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
