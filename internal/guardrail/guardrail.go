// Package guardrail decides whether a proposed action may execute
// autonomously, and routes each decision to an outcome.
package guardrail

import (
	"github.com/paymentops/vigil/internal/model"
)

// Defaults for the guardrail thresholds.
const (
	DefaultConfidenceThreshold = 0.8
	DefaultMaxAutonomousVolume = 500
)

// Guardrail is the safety layer between the diagnostic engine and the
// action dispatcher. Two independent predicates must both hold before
// any action runs autonomously: the confidence bar and the volume
// ceiling. The volume ceiling applies uniformly to every autonomous
// action, reroute or otherwise.
type Guardrail struct {
	ConfidenceThreshold float64
	MaxAutonomousVolume int
}

// New creates a guardrail with the given thresholds. Non-positive
// arguments fall back to the defaults.
func New(confidenceThreshold float64, maxAutonomousVolume int) *Guardrail {
	if confidenceThreshold <= 0 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	if maxAutonomousVolume <= 0 {
		maxAutonomousVolume = DefaultMaxAutonomousVolume
	}
	return &Guardrail{
		ConfidenceThreshold: confidenceThreshold,
		MaxAutonomousVolume: maxAutonomousVolume,
	}
}

// RequiresApproval reports whether the result must be escalated to a
// human regardless of the proposed action.
func (g *Guardrail) RequiresApproval(result model.DiagnosisResult) bool {
	return result.RequiresApproval || result.Confidence < g.ConfidenceThreshold
}

// IsSafe reports whether an action may run autonomously: confidence
// must clear the threshold and the observed transaction volume must be
// under the autonomous ceiling. High load forces a human into the loop
// even when confidence is nominally sufficient.
func (g *Guardrail) IsSafe(confidence float64, volume int) bool {
	if confidence < g.ConfidenceThreshold {
		return false
	}
	if volume > g.MaxAutonomousVolume {
		return false
	}
	return true
}

// Route maps one diagnosis result to its outcome, given the current
// window volume. Evaluation order matters:
//
//  1. low confidence always escalates,
//  2. a safe non-trivial action executes,
//  3. an unsafe non-trivial action is skipped for safety,
//  4. "take no action" is simply monitored.
func (g *Guardrail) Route(result model.DiagnosisResult, volume int) model.Outcome {
	if g.RequiresApproval(result) {
		return model.OutcomeEscalated
	}
	if result.Action != model.ActionNone {
		if g.IsSafe(result.Confidence, volume) {
			return model.OutcomeExecuted
		}
		return model.OutcomeSkippedSafety
	}
	return model.OutcomeMonitored
}
