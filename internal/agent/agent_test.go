package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paymentops/vigil/internal/common"
	"github.com/paymentops/vigil/internal/dispatch"
	"github.com/paymentops/vigil/internal/guardrail"
	"github.com/paymentops/vigil/internal/model"
	"github.com/paymentops/vigil/internal/window"
)

type fakeStore struct {
	lessons    []model.LessonRecord
	recentErr  error
	appendErr  error
	recentSeen int
}

func (f *fakeStore) AppendLesson(_ context.Context, lesson *model.LessonRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.lessons = append(f.lessons, *lesson)
	return nil
}

func (f *fakeStore) RecentLessons(_ context.Context, n int) ([]model.LessonRecord, error) {
	f.recentSeen = n
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.lessons) > n {
		return f.lessons[len(f.lessons)-n:], nil
	}
	return f.lessons, nil
}

func (f *fakeStore) Migrate(_ context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, message string, _ model.Severity) error {
	f.messages = append(f.messages, message)
	return nil
}

type fakeTools struct {
	rerouted  int
	supressed int
	retried   int
}

func (f *fakeTools) Reroute(_ context.Context, _ int, _ string) error { f.rerouted++; return nil }
func (f *fakeTools) Suppress(_ context.Context, _, _ string) error    { f.supressed++; return nil }
func (f *fakeTools) AdjustRetry(_ context.Context, _ time.Duration, _ int, _ string) error {
	f.retried++
	return nil
}

type testHarness struct {
	agent    *Agent
	store    *fakeStore
	notifier *fakeNotifier
	tools    *fakeTools
}

func newTestHarness(t *testing.T, maxVolume int) *testHarness {
	t.Helper()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	actionTools := &fakeTools{}

	w := window.New(60*time.Second, 0)
	guard := guardrail.New(0.8, maxVolume)
	dispatcher := dispatch.New(actionTools, notifier)

	a := New(w, store, guard, dispatcher, notifier, nil, DefaultConfig())

	return &testHarness{agent: a, store: store, notifier: notifier, tools: actionTools}
}

func successEvents(n int) []model.TransactionEvent {
	events := make([]model.TransactionEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, model.TransactionEvent{
			Bank:      "HDFC",
			Issuer:    "VISA",
			Method:    "CARD",
			Status:    model.StatusSuccess,
			LatencyMS: 300,
			Timestamp: time.Now(),
		})
	}
	return events
}

// rerouteScenario builds traffic that concentrates ISSUER_DOWN failures
// on one bank strongly enough to propose rerouting at 0.82 confidence.
func rerouteScenario() []model.TransactionEvent {
	events := successEvents(12)
	for i := 0; i < 6; i++ {
		events = append(events, model.TransactionEvent{
			Bank: "SBI", Issuer: "RUPAY", Method: "CARD",
			Status: model.StatusIssuerDown, LatencyMS: 400, Timestamp: time.Now(),
		})
	}
	for i := 0; i < 2; i++ {
		events = append(events, model.TransactionEvent{
			Bank: "ICICI", Issuer: "VISA", Method: "UPI",
			Status: model.StatusBankTimeout, LatencyMS: 400, Timestamp: time.Now(),
		})
	}
	return events
}

func TestRunCycle_RefusesSparseWindow(t *testing.T) {
	h := newTestHarness(t, 500)
	h.agent.Ingest(successEvents(3)...)

	_, err := h.agent.RunCycle(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInsufficientEvents)
	assert.Empty(t, h.store.lessons)
}

func TestRunCycle_MonitoredOnHealthyTraffic(t *testing.T) {
	h := newTestHarness(t, 500)
	h.agent.Ingest(successEvents(20)...)

	report, err := h.agent.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DiagnosisNormalVariance, report.Result.Diagnosis)
	assert.Equal(t, model.OutcomeMonitored, report.Outcome)
	assert.Equal(t, "Take no action", report.ActionTaken)
	assert.Empty(t, h.notifier.messages)

	require.Len(t, h.store.lessons, 1)
	assert.Equal(t, model.OutcomeMonitored, h.store.lessons[0].Outcome)
}

func TestRunCycle_EscalatesLowConfidence(t *testing.T) {
	h := newTestHarness(t, 500)
	// Passes the outer minimum-sample gate but trips the engine's
	// insufficient-sample rule at 0.4 confidence.
	h.agent.Ingest(successEvents(6)...)

	report, err := h.agent.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DiagnosisInsufficientSample, report.Result.Diagnosis)
	assert.Equal(t, model.OutcomeEscalated, report.Outcome)
	assert.Equal(t, model.ActionAlertOnly, report.ActionTaken)
	assert.NotEmpty(t, h.notifier.messages)

	require.Len(t, h.store.lessons, 1)
	lesson := h.store.lessons[0]
	assert.Equal(t, model.OutcomeEscalated, lesson.Outcome)
	assert.Equal(t, "0.40", lesson.Metadata["confidence"])
}

func TestRunCycle_ExecutesSafeReroute(t *testing.T) {
	h := newTestHarness(t, 500)
	h.agent.Ingest(rerouteScenario()...)

	report, err := h.agent.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DiagnosisBankDegradation, report.Result.Diagnosis)
	assert.Equal(t, model.ActionReroute, report.Result.Action)
	assert.Equal(t, model.OutcomeExecuted, report.Outcome)
	assert.Equal(t, "Reroute traffic", report.ActionTaken)
	assert.Equal(t, 1, h.tools.rerouted)

	require.Len(t, h.store.lessons, 1)
	assert.Equal(t, model.OutcomeExecuted, h.store.lessons[0].Outcome)
	assert.Equal(t, "reroute", h.store.lessons[0].Metadata["action_key"])
}

func TestRunCycle_SkipsActionOverVolume(t *testing.T) {
	// Volume ceiling below the window size forces the skip path.
	h := newTestHarness(t, 10)
	h.agent.Ingest(rerouteScenario()...)

	report, err := h.agent.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeSkippedSafety, report.Outcome)
	assert.Equal(t, 0, h.tools.rerouted)
	assert.NotEmpty(t, h.notifier.messages)

	require.Len(t, h.store.lessons, 1)
	assert.Equal(t, model.OutcomeSkippedSafety, h.store.lessons[0].Outcome)
}

func TestRunCycle_DegradesWithoutHistory(t *testing.T) {
	h := newTestHarness(t, 500)
	h.store.recentErr = errors.New("disk gone")
	h.agent.Ingest(successEvents(20)...)

	report, err := h.agent.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Nil(t, report.History)
	assert.Equal(t, model.OutcomeMonitored, report.Outcome)
}

func TestRunCycle_SurvivesAppendFailure(t *testing.T) {
	h := newTestHarness(t, 500)
	h.store.appendErr = errors.New("disk full")
	h.agent.Ingest(successEvents(20)...)

	report, err := h.agent.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeMonitored, report.Outcome)
}

func TestRunCycle_PassesBoundedHistory(t *testing.T) {
	h := newTestHarness(t, 500)
	h.agent.Ingest(successEvents(20)...)

	for i := 0; i < 8; i++ {
		h.store.lessons = append(h.store.lessons, model.LessonRecord{
			Diagnosis:   model.DiagnosisNormalVariance,
			ActionTaken: "Take no action",
			Outcome:     model.OutcomeMonitored,
		})
	}

	report, err := h.agent.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().HistoryDepth, h.store.recentSeen)
	assert.Len(t, report.History, DefaultConfig().HistoryDepth)
}

func TestIngest_FeedsWindow(t *testing.T) {
	h := newTestHarness(t, 500)
	h.agent.Ingest(successEvents(4)...)

	assert.Equal(t, 4, h.agent.Window().Len(time.Now()))
}
