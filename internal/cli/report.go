package cli

import (
	"fmt"
	"strings"

	"github.com/paymentops/vigil/internal/agent"
	"github.com/paymentops/vigil/internal/model"
)

// FormatCycleReport renders one decision cycle in the strict report
// format operators expect.
func FormatCycleReport(report *agent.CycleReport) string {
	result := report.Result

	lines := []string{
		"- Diagnosis: " + result.Diagnosis.Label(),
		"- Evidence: " + result.Evidence,
		"- Proposed Action: " + result.Action.Label(),
		"- Risk Assessment: " + result.Risk,
		fmt.Sprintf("- Confidence Score: %.2f", result.Confidence),
	}
	if result.RequiresApproval {
		lines = append(lines, "- Recommendation: Human approval required before acting (confidence < 0.8).")
	}
	lines = append(lines, "- Outcome: "+outcomeLine(report))

	return RenderBox("Agent decision", strings.Join(lines, "\n"))
}

// FormatSnapshot renders the window statistics alongside a report.
func FormatSnapshot(snap model.AggregateSnapshot) string {
	lines := []string{
		fmt.Sprintf("Transactions: %d  (success %d / failure %d)", snap.TotalCount, snap.SuccessCount, snap.FailureCount),
		fmt.Sprintf("Success rate: %.1f%%", snap.SuccessRate*100),
		fmt.Sprintf("Avg latency:  %.0fms", snap.AverageLatencyMS),
	}
	if len(snap.FailuresByBank) > 0 {
		parts := make([]string, 0, len(snap.FailuresByBank))
		for _, bank := range snap.Banks {
			if n := snap.FailuresByBank[bank]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", bank, n))
			}
		}
		lines = append(lines, "Failures by bank: "+strings.Join(parts, ", "))
	}
	return RenderBox(fmt.Sprintf("Window (last %ds)", snap.WindowSeconds), strings.Join(lines, "\n"))
}

// FormatLesson renders one stored lesson as a table-ish line.
func FormatLesson(lesson model.LessonRecord) string {
	line := fmt.Sprintf("%s  %-14s %-28s %s",
		lesson.CreatedAt.Format("2006-01-02 15:04:05"),
		lesson.Outcome,
		lesson.ActionTaken,
		lesson.Diagnosis.Label())

	switch lesson.Outcome {
	case model.OutcomeExecuted:
		return SuccessStyle.Render(line)
	case model.OutcomeEscalated, model.OutcomeSkippedSafety:
		return WarningStyle.Render(line)
	default:
		return SubtleStyle.Render(line)
	}
}

func outcomeLine(report *agent.CycleReport) string {
	switch report.Outcome {
	case model.OutcomeExecuted:
		return FormatSuccess(fmt.Sprintf("Executed: %s", report.ActionTaken))
	case model.OutcomeEscalated:
		return FormatWarning("Escalated to human operators")
	case model.OutcomeSkippedSafety:
		return FormatWarning("Skipped for safety (volume or confidence limit)")
	default:
		return SubtleStyle.Render("Monitoring; no action taken")
	}
}
