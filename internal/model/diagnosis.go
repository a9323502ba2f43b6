package model

// Diagnosis classifies the health of the payment pipeline for one cycle.
type Diagnosis string

// Diagnosis constants, one per rule in the diagnostic engine.
const (
	DiagnosisInsufficientSample Diagnosis = "insufficient_sample"
	DiagnosisUserRelated        Diagnosis = "user_related"
	DiagnosisBankDegradation    Diagnosis = "bank_issuer_degradation"
	DiagnosisNetworkFailure     Diagnosis = "network_failure"
	DiagnosisRoutingMisconfig   Diagnosis = "routing_misconfiguration"
	DiagnosisUnclearAnomaly     Diagnosis = "unclear_anomaly"
	DiagnosisNormalVariance     Diagnosis = "normal_variance"
)

// Label returns the operator-facing description of the diagnosis.
func (d Diagnosis) Label() string {
	switch d {
	case DiagnosisInsufficientSample:
		return "Insufficient sample"
	case DiagnosisUserRelated:
		return "User-related"
	case DiagnosisBankDegradation:
		return "Bank/issuer degradation"
	case DiagnosisNetworkFailure:
		return "Network or system failure"
	case DiagnosisRoutingMisconfig:
		return "Retry or routing misconfiguration"
	case DiagnosisUnclearAnomaly:
		return "Possible bank/issuer or network issue; unclear from data"
	case DiagnosisNormalVariance:
		return "Normal variance (no significant anomaly)"
	default:
		return string(d)
	}
}

// Action is the structured remediation the engine proposes. The engine
// emits this enumeration directly; the prose label exists only for
// display and for classifying free-text action strings from external
// sources.
type Action string

// Action constants.
const (
	ActionReroute     Action = "reroute"
	ActionAdjustRetry Action = "retry"
	ActionSuppress    Action = "suppress"
	ActionAlert       Action = "alert"
	ActionNone        Action = "no_action"
)

// Label returns the operator-facing description of the action.
func (a Action) Label() string {
	switch a {
	case ActionReroute:
		return "Reroute traffic"
	case ActionAdjustRetry:
		return "Adjust retry policy"
	case ActionSuppress:
		return "Suppress failing path"
	case ActionAlert:
		return "Alert human operators"
	case ActionNone:
		return "Take no action"
	default:
		return string(a)
	}
}

// DiagnosisResult is the full output of one diagnostic cycle. Created
// fresh per cycle and never mutated.
type DiagnosisResult struct {
	Diagnosis        Diagnosis `json:"diagnosis"`
	Evidence         string    `json:"evidence"`
	Action           Action    `json:"proposed_action"`
	Risk             string    `json:"risk_assessment"`
	Confidence       float64   `json:"confidence_score"`
	RequiresApproval bool      `json:"requires_human_approval"`
}

// Severity grades notifications sent to human operators.
type Severity string

// Severity constants.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)
