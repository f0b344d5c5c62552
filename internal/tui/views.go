package tui

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/projector/internal/plan"
	"github.com/felixgeelhaar/projector/internal/progress"
)

// View renders the watch view (required by Bubble Tea)
func (m Model) View() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}
	if m.plan == nil {
		return m.styles.Muted.Render("Loading plan...") + "\n"
	}

	report := progress.Snapshot(m.plan)

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s (%s)", m.plan.ProjectName, m.plan.ID)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf(
		"status: %s  features: %d/%d  steps: %d/%d",
		m.plan.Status, report.Completed, report.TotalFeatures,
		report.DoneSteps, report.TotalSteps)))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(report.Weighted / 100))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %.1f%%", report.Weighted)))
	b.WriteString("\n\n")

	for _, name := range featureOrder(m.plan) {
		b.WriteString(m.renderFeature(m.plan.Features[name]))
		b.WriteString("\n")
	}

	if m.quitting && m.plan.IsComplete() {
		b.WriteString("\n" + m.styles.Completed.Render("All features completed."))
	} else {
		b.WriteString("\n" + m.styles.Muted.Render("q to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderFeature(f *plan.Feature) string {
	done := 0
	for _, s := range f.Steps {
		if s.Status == plan.StepStatusCompleted {
			done++
		}
	}
	line := fmt.Sprintf("%s %s (%d/%d steps)", statusGlyph(f.Status), f.Name, done, len(f.Steps))

	switch f.Status {
	case plan.FeatureStatusCompleted:
		return m.styles.Completed.Render(line)
	case plan.FeatureStatusInProgress:
		return m.styles.Active.Render(line)
	case plan.FeatureStatusBlocked:
		return m.styles.Blocked.Render(line)
	default:
		return m.styles.Pending.Render(line)
	}
}

func statusGlyph(s plan.FeatureStatus) string {
	switch s {
	case plan.FeatureStatusCompleted:
		return "✓"
	case plan.FeatureStatusInProgress:
		return "▶"
	case plan.FeatureStatusBlocked:
		return "⛔"
	default:
		return "·"
	}
}

// featureOrder lists features completed first, then active, then
// pending, matching the lifecycle lists' ordering.
func featureOrder(p *plan.Plan) []string {
	out := make([]string, 0, len(p.Features))
	out = append(out, p.CompletedFeatures...)
	out = append(out, p.ActiveFeatures...)
	out = append(out, p.PendingFeatures...)
	return out
}
