// Package dispatch maps diagnosis results to external tool invocations.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/paymentops/vigil/internal/common"
	"github.com/paymentops/vigil/internal/model"
	"github.com/paymentops/vigil/internal/service"
)

// Reroute and retry parameters used when the engine proposes the
// corresponding actions.
const (
	ReroutePercent     = 30
	RetryBackoff       = 2 * time.Second
	reasonMaxLen       = 50
	dispatchMaxRetries = 2
)

// ClassifyAction maps a free-text proposed-action label to the action
// enumeration via case-insensitive keyword matching. The engine itself
// emits structured actions; this classifier exists for action labels
// arriving as prose from external sources, and its vocabulary must stay
// in sync with the labels in model.Action.
func ClassifyAction(text string) model.Action {
	a := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(a, "reroute") || strings.Contains(a, "traffic"):
		return model.ActionReroute
	case strings.Contains(a, "retry"):
		return model.ActionAdjustRetry
	case strings.Contains(a, "suppress") || strings.Contains(a, "failing path"):
		return model.ActionSuppress
	case strings.Contains(a, "alert") || strings.Contains(a, "human") || strings.Contains(a, "operators"):
		return model.ActionAlert
	default:
		return model.ActionNone
	}
}

// Dispatcher invokes the external tool matching a proposed action.
type Dispatcher struct {
	tools    service.ActionTools
	notifier service.Notifier
}

// New creates a dispatcher over the given tool collaborators.
func New(tools service.ActionTools, notifier service.Notifier) *Dispatcher {
	return &Dispatcher{
		tools:    tools,
		notifier: notifier,
	}
}

// Dispatch executes the tool invocation for the proposed action. Tool
// calls are best-effort: failures are retried briefly, then logged and
// swallowed, because a failing collaborator must never abort the
// decision cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, result model.DiagnosisResult) {
	var invoke func() error

	reason := truncateReason(result.Diagnosis.Label())

	switch result.Action {
	case model.ActionReroute:
		invoke = func() error {
			return d.tools.Reroute(ctx, ReroutePercent, reason)
		}
	case model.ActionSuppress:
		invoke = func() error {
			return d.tools.Suppress(ctx, "", reason)
		}
	case model.ActionAdjustRetry:
		invoke = func() error {
			return d.tools.AdjustRetry(ctx, RetryBackoff, 0, reason)
		}
	case model.ActionAlert:
		invoke = func() error {
			return d.notifier.Notify(ctx, result.Evidence, model.SeverityWarning)
		}
	case model.ActionNone:
		return
	default:
		slog.Warn("Unknown action, nothing dispatched", "action", result.Action)
		return
	}

	err := common.WithRetry(ctx, invoke, service.RetryOptions{
		MaxAttempts:  dispatchMaxRetries,
		InitialDelay: 50 * time.Millisecond,
	})
	if err != nil {
		slog.Error("Tool invocation failed",
			"action", result.Action,
			"error", err)
	}
}

func truncateReason(reason string) string {
	if len(reason) > reasonMaxLen {
		return reason[:reasonMaxLen]
	}
	return reason
}
