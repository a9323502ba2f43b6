// Package tools provides the production implementations of the
// remediation tool collaborators. These stand in for PSP routing,
// retry-policy, and paging integrations; each call logs the action it
// would take downstream.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paymentops/vigil/internal/model"
)

// OpsTools implements service.ActionTools.
type OpsTools struct{}

// NewOpsTools creates the default tool set.
func NewOpsTools() *OpsTools {
	return &OpsTools{}
}

// Reroute shifts a percentage of payment traffic to the backup PSP.
// Reversible; low risk at moderate percentages.
func (t *OpsTools) Reroute(_ context.Context, percent int, reason string) error {
	msg := fmt.Sprintf("Rerouting %d%% of traffic to backup PSP", percent)
	if reason != "" {
		msg += " - " + reason
	}
	slog.Info("Action executed", "tool", "reroute", "detail", msg)
	return nil
}

// Suppress temporarily stops sending traffic down a failing path.
// Should stay reversible via config or feature flag.
func (t *OpsTools) Suppress(_ context.Context, target, reason string) error {
	if target == "" {
		target = "affected path"
	}
	msg := fmt.Sprintf("Suppressing failing path: %s", target)
	if reason != "" {
		msg += " - " + reason
	}
	slog.Info("Action executed", "tool", "suppress", "detail", msg)
	return nil
}

// AdjustRetry tunes retry backoff and limits to avoid retry storms.
func (t *OpsTools) AdjustRetry(_ context.Context, backoff time.Duration, maxRetries int, reason string) error {
	msg := "Adjusting retry policy"
	if maxRetries > 0 {
		msg += fmt.Sprintf(", max_retries=%d", maxRetries)
	}
	if backoff > 0 {
		msg += fmt.Sprintf(", backoff=%s", backoff)
	}
	if reason != "" {
		msg += " - " + reason
	}
	slog.Info("Action executed", "tool", "adjust_retry", "detail", msg)
	return nil
}

// OpsNotifier implements service.Notifier by logging to the operator
// channel at a level matching the severity.
type OpsNotifier struct{}

// NewOpsNotifier creates the default notifier.
func NewOpsNotifier() *OpsNotifier {
	return &OpsNotifier{}
}

// Notify delivers one message to human operators.
func (n *OpsNotifier) Notify(_ context.Context, message string, severity model.Severity) error {
	switch severity {
	case model.SeverityCritical:
		slog.Error("OPS ALERT", "severity", severity, "message", message)
	case model.SeverityWarning:
		slog.Warn("OPS ALERT", "severity", severity, "message", message)
	default:
		slog.Info("OPS ALERT", "severity", severity, "message", message)
	}
	return nil
}
