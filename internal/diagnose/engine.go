// Package diagnose implements the rule-based diagnostic engine that
// classifies payment-pipeline health and proposes one mitigating action.
package diagnose

import (
	"fmt"
	"math"

	"github.com/paymentops/vigil/internal/model"
	"github.com/paymentops/vigil/internal/observe"
)

// Rule thresholds. These are fixed constants rather than tunable knobs:
// downstream consumers depend on the exact confidence values each rule
// emits.
const (
	// MinSampleSize is the minimum window size for any diagnosis.
	MinSampleSize = 10
	// FailureSpikeRate marks an anomalous failure rate.
	FailureSpikeRate = 0.15
	// HighLatencyMS combined with a failure spike indicates a
	// network or system problem.
	HighLatencyMS = 1800
	// ElevatedLatencyMS combined with a failure spike suggests
	// routing or retry misconfiguration.
	ElevatedLatencyMS = 1500
	// BankConcentration is the share of failures on one bank that
	// indicates bank-side degradation.
	BankConcentration = 0.6
	// RerouteBankConcentration is the stronger concentration at which
	// rerouting is proposed instead of suppression.
	RerouteBankConcentration = 0.7
	// UserDeclineShare is the share of USER_DECLINED failures above
	// which declines are attributed to user-side causes.
	UserDeclineShare = 0.5
	// ConfidenceAutonomous is the confidence below which human
	// approval is required before acting.
	ConfidenceAutonomous = 0.8
)

// Per-rule confidence constants.
const (
	confidenceInsufficientSample = 0.4
	confidenceUserRelated        = 0.82
	confidenceSuppress           = 0.78
	confidenceReroute            = 0.82
	confidenceAdjustRetry        = 0.75
	confidenceNetworkFailure     = 0.72
	confidenceRoutingMisconfig   = 0.68
	confidenceUnclearAnomaly     = 0.65
	confidenceNormalVariance     = 0.85
)

// Engine is the deterministic diagnostic engine. It holds no state:
// every Diagnose call is a pure transformation over the snapshot.
type Engine struct{}

// New creates a diagnostic engine.
func New() *Engine {
	return &Engine{}
}

// Diagnose evaluates the rule chain top-to-bottom against the snapshot
// and returns exactly one result; the first matching rule wins.
//
// The history parameter is advisory context only. It is accepted as a
// forward-compatibility hook for outcome-driven tuning and deliberately
// never alters which rule fires.
func (e *Engine) Diagnose(snap model.AggregateSnapshot, history []model.LessonRecord) model.DiagnosisResult {
	_ = history

	total := snap.TotalCount
	failure := snap.FailureCount
	failureRate := snap.FailureRate()
	avgLatency := snap.AverageLatencyMS

	userDeclined := snap.StatusCounts[model.StatusUserDeclined]
	bankTimeout := snap.StatusCounts[model.StatusBankTimeout]
	issuerDown := snap.StatusCounts[model.StatusIssuerDown]
	networkError := snap.StatusCounts[model.StatusNetworkError]

	// Rule 1: too few events for any reliable diagnosis. Pre-empts
	// everything else regardless of the error mix.
	if total < MinSampleSize {
		return newResult(
			model.DiagnosisInsufficientSample,
			fmt.Sprintf("Only %d transactions in window; insufficient sample size for a reliable diagnosis.", total),
			model.ActionNone,
			"Low risk; no intervention.",
			confidenceInsufficientSample,
		)
	}

	// Rule 2: declines dominated by user-side causes. Infra remediation
	// would not help and could add friction.
	if failure > 0 && float64(userDeclined)/float64(failure) >= UserDeclineShare {
		return newResult(
			model.DiagnosisUserRelated,
			fmt.Sprintf("USER_DECLINED accounts for %d/%d failures; pattern suggests user/card issues rather than infra.", userDeclined, failure),
			model.ActionNone,
			"Automated intervention unlikely to help; could increase friction.",
			confidenceUserRelated,
		)
	}

	// Rule 3: failures concentrated on one bank or issuer.
	if failure >= 3 {
		topBank, pctBank := observe.TopFailureBank(snap)

		if pctBank >= BankConcentration || float64(issuerDown) >= 0.4*float64(failure) {
			action := model.ActionSuppress
			risk := "Suppressing one path reduces exposure; low-medium risk if rollback is available."
			confidence := confidenceSuppress
			if pctBank >= RerouteBankConcentration && issuerDown >= 2 {
				action = model.ActionReroute
				risk = "Rerouting to the backup PSP is reversible; moderate risk at high volume."
				confidence = confidenceReroute
			}
			return newResult(
				model.DiagnosisBankDegradation,
				fmt.Sprintf("Failures concentrated: bank %s (%.0f%% of failures), ISSUER_DOWN=%d. Suggests issuer or bank-side degradation.", topBank, pctBank*100, issuerDown),
				action,
				risk,
				confidence,
			)
		}

		if float64(bankTimeout) >= math.Max(2, 0.4*float64(failure)) {
			return newResult(
				model.DiagnosisBankDegradation,
				fmt.Sprintf("BANK_TIMEOUT=%d of %d failures; indicates bank connectivity or timeout issues.", bankTimeout, failure),
				model.ActionAdjustRetry,
				"Retry policy change is reversible; medium risk if backoff is not too aggressive.",
				confidenceAdjustRetry,
			)
		}
	}

	// Rule 4: network or system failure.
	if float64(networkError) >= math.Max(2, 0.35*float64(failure)) ||
		(avgLatency >= HighLatencyMS && failureRate >= FailureSpikeRate) {
		return newResult(
			model.DiagnosisNetworkFailure,
			fmt.Sprintf("NETWORK_ERROR=%d, avg latency=%.0fms, failure rate=%.1f%%.", networkError, avgLatency, failureRate*100),
			model.ActionAlert,
			"Network/system issues need investigation; autonomous rerouting could mask root cause.",
			confidenceNetworkFailure,
		)
	}

	// Rule 5: elevated failures with high latency, not explained by
	// user declines.
	userShare := float64(userDeclined) / math.Max(float64(failure), 1)
	if failureRate >= FailureSpikeRate && avgLatency > ElevatedLatencyMS && userShare < UserDeclineShare {
		return newResult(
			model.DiagnosisRoutingMisconfig,
			fmt.Sprintf("Elevated failure rate (%.1f%%) with high latency (%.0fms); may indicate bad routing or retry storms.", failureRate*100, avgLatency),
			model.ActionAlert,
			"Misconfiguration changes are sensitive; recommend human review before changing retry or routing.",
			confidenceRoutingMisconfig,
		)
	}

	// Rule 6: failure rate above threshold but no clear root cause.
	if failureRate >= FailureSpikeRate {
		return newResult(
			model.DiagnosisUnclearAnomaly,
			fmt.Sprintf("Failure rate %.1f%% above threshold; error mix: %v.", failureRate*100, statusSummary(snap)),
			model.ActionAlert,
			"Uncertain root cause; escalating to avoid wrong intervention.",
			confidenceUnclearAnomaly,
		)
	}

	// Rule 7: nothing matched.
	return newResult(
		model.DiagnosisNormalVariance,
		fmt.Sprintf("Success rate %.1f%%, %d failures in %d txns; within normal range.", snap.SuccessRate*100, failure, total),
		model.ActionNone,
		"No change; no risk.",
		confidenceNormalVariance,
	)
}

func newResult(diagnosis model.Diagnosis, evidence string, action model.Action, risk string, confidence float64) model.DiagnosisResult {
	confidence = math.Round(confidence*100) / 100
	return model.DiagnosisResult{
		Diagnosis:        diagnosis,
		Evidence:         evidence,
		Action:           action,
		Risk:             risk,
		Confidence:       confidence,
		RequiresApproval: confidence < ConfidenceAutonomous,
	}
}

// statusSummary renders the failure status counts in a stable order for
// evidence strings.
func statusSummary(snap model.AggregateSnapshot) string {
	order := []model.StatusCode{
		model.StatusBankTimeout,
		model.StatusIssuerDown,
		model.StatusUserDeclined,
		model.StatusNetworkError,
	}
	out := ""
	for _, code := range order {
		if n := snap.StatusCounts[code]; n > 0 {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%s=%d", code, n)
		}
	}
	if out == "" {
		return "none"
	}
	return out
}
