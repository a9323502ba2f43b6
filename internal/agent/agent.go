// Package agent orchestrates the observe -> diagnose -> decide ->
// record cycle.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/paymentops/vigil/internal/common"
	"github.com/paymentops/vigil/internal/diagnose"
	"github.com/paymentops/vigil/internal/dispatch"
	"github.com/paymentops/vigil/internal/guardrail"
	"github.com/paymentops/vigil/internal/model"
	"github.com/paymentops/vigil/internal/observe"
	"github.com/paymentops/vigil/internal/service"
	"github.com/paymentops/vigil/internal/window"
)

// Config holds the loop-level knobs of the agent.
type Config struct {
	// MinSample blocks a cycle from running at all when the window is
	// too sparse. This outer gate is looser than the engine's internal
	// insufficient-sample rule.
	MinSample int
	// HistoryDepth is how many recent lessons are handed to the engine.
	HistoryDepth int
	// EventsPerTick is how many events to pull from the event source
	// before each cycle when a source is attached.
	EventsPerTick int
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		MinSample:     5,
		HistoryDepth:  5,
		EventsPerTick: 8,
	}
}

// Agent owns one event window and one lesson store and runs decision
// cycles over them. All collaborators are explicit instances so tests
// can run with isolated state.
type Agent struct {
	window     *window.Window
	store      service.LessonStore
	engine     *diagnose.Engine
	guard      *guardrail.Guardrail
	dispatcher *dispatch.Dispatcher
	notifier   service.Notifier
	source     service.EventSource
	cfg        Config
}

// CycleReport captures everything one cycle produced.
type CycleReport struct {
	Snapshot    model.AggregateSnapshot
	Result      model.DiagnosisResult
	History     []model.LessonRecord
	ActionTaken string
	Outcome     model.Outcome
}

// New creates an agent. The source may be nil when events are fed
// directly via Ingest.
func New(w *window.Window, store service.LessonStore, guard *guardrail.Guardrail, dispatcher *dispatch.Dispatcher, notifier service.Notifier, source service.EventSource, cfg Config) *Agent {
	if cfg.MinSample <= 0 {
		cfg.MinSample = DefaultConfig().MinSample
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = DefaultConfig().HistoryDepth
	}
	if cfg.EventsPerTick <= 0 {
		cfg.EventsPerTick = DefaultConfig().EventsPerTick
	}
	return &Agent{
		window:     w,
		store:      store,
		engine:     diagnose.New(),
		guard:      guard,
		dispatcher: dispatcher,
		notifier:   notifier,
		source:     source,
		cfg:        cfg,
	}
}

// Ingest feeds events directly into the agent's window.
func (a *Agent) Ingest(events ...model.TransactionEvent) {
	for _, e := range events {
		a.window.Add(e)
	}
}

// Window exposes the agent's event window.
func (a *Agent) Window() *window.Window {
	return a.window
}

// RunCycle executes one complete decision cycle: drain the event
// source, snapshot the window, aggregate, diagnose with recent history,
// route through the guardrail, dispatch or escalate, and record the
// lesson. It runs to completion once started.
func (a *Agent) RunCycle(ctx context.Context) (*CycleReport, error) {
	a.drainSource(ctx)

	now := time.Now()
	events := a.window.Snapshot(now)
	if len(events) < a.cfg.MinSample {
		return nil, fmt.Errorf("%w: have %d, need %d", common.ErrInsufficientEvents, len(events), a.cfg.MinSample)
	}

	snap := observe.Aggregate(events, int(a.window.Duration().Seconds()))
	history := a.recentHistory(ctx)

	result := a.engine.Diagnose(snap, history)
	outcome := a.guard.Route(result, snap.TotalCount)

	report := &CycleReport{
		Snapshot: snap,
		Result:   result,
		History:  history,
		Outcome:  outcome,
	}

	slog.Info("Cycle diagnosed",
		"diagnosis", result.Diagnosis,
		"action", result.Action,
		"confidence", result.Confidence,
		"outcome", outcome,
		"total", snap.TotalCount,
		"failures", snap.FailureCount)

	lesson := a.applyOutcome(ctx, report)
	a.recordLesson(ctx, lesson)
	report.ActionTaken = lesson.ActionTaken

	return report, nil
}

// applyOutcome performs the side effects of the routed outcome and
// builds the lesson to record. Notifications and tool calls are
// best-effort; their failure never aborts the cycle.
func (a *Agent) applyOutcome(ctx context.Context, report *CycleReport) *model.LessonRecord {
	result := report.Result

	switch report.Outcome {
	case model.OutcomeEscalated:
		msg := fmt.Sprintf("Confidence %.2f < %.2f - human approval required. Proposed: %s",
			result.Confidence, a.guard.ConfidenceThreshold, result.Action.Label())
		a.notify(ctx, msg, model.SeverityWarning)
		return &model.LessonRecord{
			Diagnosis:   result.Diagnosis,
			ActionTaken: model.ActionAlertOnly,
			Outcome:     model.OutcomeEscalated,
			Metadata: map[string]string{
				"proposed_action": result.Action.Label(),
				"confidence":      fmt.Sprintf("%.2f", result.Confidence),
			},
		}

	case model.OutcomeExecuted:
		a.dispatcher.Dispatch(ctx, result)
		return &model.LessonRecord{
			Diagnosis:   result.Diagnosis,
			ActionTaken: result.Action.Label(),
			Outcome:     model.OutcomeExecuted,
			Metadata: map[string]string{
				"action_key": string(result.Action),
			},
		}

	case model.OutcomeSkippedSafety:
		a.notify(ctx, "Action skipped: volume or safety limit exceeded. "+result.Evidence, model.SeverityWarning)
		return &model.LessonRecord{
			Diagnosis:   result.Diagnosis,
			ActionTaken: result.Action.Label(),
			Outcome:     model.OutcomeSkippedSafety,
		}

	default:
		return &model.LessonRecord{
			Diagnosis:   result.Diagnosis,
			ActionTaken: model.ActionNone.Label(),
			Outcome:     model.OutcomeMonitored,
		}
	}
}

// Run drives decision cycles on a fixed tick until the context is
// canceled. A failed cycle is logged and the loop keeps going: loop
// availability is the top priority.
func (a *Agent) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 5 * time.Second
	}

	slog.Info("Agent loop started", "tick", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Agent loop stopped")
			return ctx.Err()
		case <-ticker.C:
			a.runCycleLogged(ctx)
		}
	}
}

// RunSchedule drives decision cycles on a cron schedule until the
// context is canceled.
func (a *Agent) RunSchedule(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		a.runCycleLogged(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	slog.Info("Agent schedule started", "spec", spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Agent schedule stopped")
	return ctx.Err()
}

func (a *Agent) runCycleLogged(ctx context.Context) {
	_, err := a.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInsufficientEvents):
		slog.Debug("Cycle skipped", "reason", err)
	default:
		slog.Error("Cycle failed", "error", err)
	}
}

// drainSource pulls one batch of events from the attached source.
func (a *Agent) drainSource(ctx context.Context) {
	if a.source == nil {
		return
	}
	for i := 0; i < a.cfg.EventsPerTick; i++ {
		event, err := a.source.Next(ctx)
		if err != nil {
			slog.Warn("Event source failed", "error", err)
			return
		}
		a.window.Add(event)
	}
}

// recentHistory reads the bounded lesson history. A broken store
// degrades to empty history: the engine keeps running without context.
func (a *Agent) recentHistory(ctx context.Context) []model.LessonRecord {
	history, err := a.store.RecentLessons(ctx, a.cfg.HistoryDepth)
	if err != nil {
		slog.Warn("Failed to read lesson history, continuing without it", "error", err)
		return nil
	}
	return history
}

// recordLesson appends the lesson, degrading to a log entry on failure.
func (a *Agent) recordLesson(ctx context.Context, lesson *model.LessonRecord) {
	if err := a.store.AppendLesson(ctx, lesson); err != nil {
		slog.Error("Failed to record lesson", "error", err, "outcome", lesson.Outcome)
	}
}

func (a *Agent) notify(ctx context.Context, message string, severity model.Severity) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, message, severity); err != nil {
		slog.Warn("Notification failed", "error", err)
	}
}
