package model

import (
	"time"
)

// Outcome records what actually happened after a diagnosis passed
// through the guardrail.
type Outcome string

// Outcome constants.
const (
	OutcomeExecuted      Outcome = "EXECUTED"
	OutcomeEscalated     Outcome = "ESCALATED"
	OutcomeSkippedSafety Outcome = "SKIPPED_SAFETY"
	OutcomeMonitored     Outcome = "MONITORED"
)

// AllOutcomes lists every outcome in display order.
var AllOutcomes = []Outcome{
	OutcomeExecuted,
	OutcomeEscalated,
	OutcomeSkippedSafety,
	OutcomeMonitored,
}

// ActionAlertOnly is the action recorded when a decision was escalated
// to humans instead of being executed.
const ActionAlertOnly = "ALERT_ONLY"

// LessonRecord is one persisted decision outcome. Lessons are
// append-only; the engine reads back a bounded recent slice as
// historical context.
type LessonRecord struct {
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Diagnosis   Diagnosis         `json:"diagnosis"`
	ActionTaken string            `json:"action_taken"`
	Outcome     Outcome           `json:"outcome"`
	ID          int64             `json:"id"`
}
