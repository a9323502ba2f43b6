package diagnose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/paymentops/vigil/internal/model"
)

// snapshot builds an AggregateSnapshot with consistent derived fields.
func snapshot(total int, statusCounts map[model.StatusCode]int, byBank map[string]int, avgLatency float64) model.AggregateSnapshot {
	failure := 0
	for code, n := range statusCounts {
		if code.IsFailure() {
			failure += n
		}
	}

	snap := model.AggregateSnapshot{
		WindowSeconds:    60,
		TotalCount:       total,
		FailureCount:     failure,
		SuccessCount:     total - failure,
		StatusCounts:     statusCounts,
		FailuresByBank:   byBank,
		AverageLatencyMS: avgLatency,
	}
	if total > 0 {
		snap.SuccessRate = float64(snap.SuccessCount) / float64(total)
	}
	return snap
}

func TestDiagnose_InsufficientSample(t *testing.T) {
	engine := New()

	// Even an extreme error mix cannot override the sample-size rule.
	snap := snapshot(8, map[model.StatusCode]int{
		model.StatusIssuerDown: 8,
	}, map[string]int{"SBI": 8}, 2400)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisInsufficientSample, result.Diagnosis)
	assert.Equal(t, model.ActionNone, result.Action)
	assert.Equal(t, 0.4, result.Confidence)
	assert.True(t, result.RequiresApproval)
}

func TestDiagnose_UserRelated(t *testing.T) {
	engine := New()

	snap := snapshot(20, map[model.StatusCode]int{
		model.StatusSuccess:      10,
		model.StatusUserDeclined: 6,
		model.StatusBankTimeout:  4,
	}, map[string]int{"HDFC": 10}, 500)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisUserRelated, result.Diagnosis)
	assert.Equal(t, model.ActionNone, result.Action)
	assert.Equal(t, 0.82, result.Confidence)
	assert.False(t, result.RequiresApproval)
	assert.Contains(t, result.Evidence, "USER_DECLINED accounts for 6/10 failures")
}

func TestDiagnose_UserRelatedPreemptsBankConcentration(t *testing.T) {
	engine := New()

	// Both the user-decline share and the bank concentration conditions
	// hold; the earlier rule must win.
	snap := snapshot(20, map[model.StatusCode]int{
		model.StatusSuccess:      10,
		model.StatusUserDeclined: 5,
		model.StatusIssuerDown:   5,
	}, map[string]int{"SBI": 10}, 500)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisUserRelated, result.Diagnosis)
}

func TestDiagnose_BankConcentrationSuppress(t *testing.T) {
	engine := New()

	snap := snapshot(50, map[model.StatusCode]int{
		model.StatusSuccess:     44,
		model.StatusBankTimeout: 5,
		model.StatusIssuerDown:  1,
	}, map[string]int{"SBI": 4, "HDFC": 2}, 600)

	result := engine.Diagnose(snap, nil)

	// pct_bank = 4/6 >= 0.6 but not >= 0.7 with issuer_down >= 2.
	assert.Equal(t, model.DiagnosisBankDegradation, result.Diagnosis)
	assert.Equal(t, model.ActionSuppress, result.Action)
	assert.Equal(t, 0.78, result.Confidence)
	assert.True(t, result.RequiresApproval)
	assert.Contains(t, result.Evidence, "bank SBI")
}

func TestDiagnose_BankConcentrationReroute(t *testing.T) {
	engine := New()

	snap := snapshot(50, map[model.StatusCode]int{
		model.StatusSuccess:     42,
		model.StatusIssuerDown:  4,
		model.StatusBankTimeout: 4,
	}, map[string]int{"SBI": 6, "ICICI": 2}, 700)

	result := engine.Diagnose(snap, nil)

	// pct_bank = 6/8 = 0.75 >= 0.7 and issuer_down = 4 >= 2.
	assert.Equal(t, model.DiagnosisBankDegradation, result.Diagnosis)
	assert.Equal(t, model.ActionReroute, result.Action)
	assert.Equal(t, 0.82, result.Confidence)
	assert.False(t, result.RequiresApproval)
}

func TestDiagnose_BankTimeoutAdjustRetry(t *testing.T) {
	engine := New()

	snap := snapshot(40, map[model.StatusCode]int{
		model.StatusSuccess:      34,
		model.StatusBankTimeout:  4,
		model.StatusNetworkError: 1,
		model.StatusUserDeclined: 1,
	}, map[string]int{"HDFC": 3, "ICICI": 2, "AXIS": 1}, 800)

	result := engine.Diagnose(snap, nil)

	// No concentration (3/6 = 0.5), but BANK_TIMEOUT=4 >= max(2, 2.4).
	assert.Equal(t, model.DiagnosisBankDegradation, result.Diagnosis)
	assert.Equal(t, model.ActionAdjustRetry, result.Action)
	assert.Equal(t, 0.75, result.Confidence)
}

func TestDiagnose_NetworkFailure(t *testing.T) {
	tests := []struct {
		name string
		snap model.AggregateSnapshot
	}{
		{
			name: "network error count",
			snap: snapshot(60, map[model.StatusCode]int{
				model.StatusSuccess:      54,
				model.StatusNetworkError: 4,
				model.StatusBankTimeout:  1,
				model.StatusUserDeclined: 1,
			}, map[string]int{"HDFC": 2, "ICICI": 2, "AXIS": 2}, 400),
		},
		{
			name: "high latency with failure spike",
			snap: snapshot(20, map[model.StatusCode]int{
				model.StatusSuccess:      16,
				model.StatusBankTimeout:  1,
				model.StatusIssuerDown:   1,
				model.StatusUserDeclined: 1,
				model.StatusNetworkError: 1,
			}, map[string]int{"HDFC": 2, "ICICI": 1, "AXIS": 1}, 2000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().Diagnose(tt.snap, nil)
			assert.Equal(t, model.DiagnosisNetworkFailure, result.Diagnosis)
			assert.Equal(t, model.ActionAlert, result.Action)
			assert.Equal(t, 0.72, result.Confidence)
			assert.True(t, result.RequiresApproval)
		})
	}
}

func TestDiagnose_RoutingMisconfiguration(t *testing.T) {
	engine := New()

	// Failure rate 4/20 = 0.2, latency 1600 between the two latency
	// thresholds, no dominant error code.
	snap := snapshot(20, map[model.StatusCode]int{
		model.StatusSuccess:      16,
		model.StatusBankTimeout:  1,
		model.StatusIssuerDown:   1,
		model.StatusUserDeclined: 1,
		model.StatusNetworkError: 1,
	}, map[string]int{"HDFC": 2, "ICICI": 1, "AXIS": 1}, 1600)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisRoutingMisconfig, result.Diagnosis)
	assert.Equal(t, model.ActionAlert, result.Action)
	assert.Equal(t, 0.68, result.Confidence)
}

func TestDiagnose_UnclearAnomaly(t *testing.T) {
	engine := New()

	// Elevated failure rate with low latency and no dominant code.
	snap := snapshot(20, map[model.StatusCode]int{
		model.StatusSuccess:      16,
		model.StatusBankTimeout:  1,
		model.StatusIssuerDown:   1,
		model.StatusUserDeclined: 1,
		model.StatusNetworkError: 1,
	}, map[string]int{"HDFC": 2, "ICICI": 1, "AXIS": 1}, 300)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisUnclearAnomaly, result.Diagnosis)
	assert.Equal(t, model.ActionAlert, result.Action)
	assert.Equal(t, 0.65, result.Confidence)
}

func TestDiagnose_NormalVariance(t *testing.T) {
	engine := New()

	snap := snapshot(100, map[model.StatusCode]int{
		model.StatusSuccess:      95,
		model.StatusUserDeclined: 2,
		model.StatusBankTimeout:  1,
		model.StatusIssuerDown:   1,
		model.StatusNetworkError: 1,
	}, map[string]int{"HDFC": 2, "ICICI": 2, "AXIS": 1}, 500)

	result := engine.Diagnose(snap, nil)

	assert.Equal(t, model.DiagnosisNormalVariance, result.Diagnosis)
	assert.Equal(t, model.ActionNone, result.Action)
	assert.Equal(t, 0.85, result.Confidence)
	assert.False(t, result.RequiresApproval)
}

func TestDiagnose_HistoryDoesNotChangeOutcome(t *testing.T) {
	engine := New()

	snap := snapshot(100, map[model.StatusCode]int{
		model.StatusSuccess:     95,
		model.StatusBankTimeout: 5,
	}, map[string]int{"HDFC": 5}, 500)

	history := []model.LessonRecord{
		{Diagnosis: model.DiagnosisBankDegradation, ActionTaken: "Reroute traffic", Outcome: model.OutcomeExecuted, CreatedAt: time.Now()},
		{Diagnosis: model.DiagnosisNetworkFailure, ActionTaken: model.ActionAlertOnly, Outcome: model.OutcomeEscalated, CreatedAt: time.Now()},
	}

	withHistory := engine.Diagnose(snap, history)
	withoutHistory := engine.Diagnose(snap, nil)

	assert.Equal(t, withoutHistory, withHistory)
}

func TestDiagnose_EvidenceCitesNumbers(t *testing.T) {
	engine := New()

	snap := snapshot(50, map[model.StatusCode]int{
		model.StatusSuccess:     42,
		model.StatusIssuerDown:  4,
		model.StatusBankTimeout: 4,
	}, map[string]int{"SBI": 6, "ICICI": 2}, 700)

	result := engine.Diagnose(snap, nil)

	assert.Contains(t, result.Evidence, "75%")
	assert.Contains(t, result.Evidence, "ISSUER_DOWN=4")
	assert.NotEmpty(t, result.Risk)
}
