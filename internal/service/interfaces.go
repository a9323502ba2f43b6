// Package service defines the interfaces for all agent collaborators.
package service

import (
	"context"
	"time"

	"github.com/paymentops/vigil/internal/model"
)

// LessonStore is the contract for the persistent outcome log. Lessons
// are append-only; RecentLessons returns the most recent records
// ordered oldest-to-newest.
type LessonStore interface {
	AppendLesson(ctx context.Context, lesson *model.LessonRecord) error
	RecentLessons(ctx context.Context, n int) ([]model.LessonRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Notifier delivers messages to human operators. Fire-and-forget: the
// agent never consumes a return value beyond the error, and a failed
// notification never aborts a cycle.
type Notifier interface {
	Notify(ctx context.Context, message string, severity model.Severity) error
}

// ActionTools groups the external remediation tools the dispatcher can
// invoke. All calls are best-effort and assumed reversible.
type ActionTools interface {
	// Reroute shifts a percentage of traffic to the backup PSP.
	Reroute(ctx context.Context, percent int, reason string) error
	// Suppress temporarily stops sending traffic down a failing path.
	// An empty target means the currently affected path.
	Suppress(ctx context.Context, target, reason string) error
	// AdjustRetry tunes backoff and retry limits to avoid retry storms.
	// Zero values leave the corresponding setting unchanged.
	AdjustRetry(ctx context.Context, backoff time.Duration, maxRetries int, reason string) error
}

// EventSource yields transaction events for ingestion. The production
// source is a live stream; tests and demos use the simulator.
type EventSource interface {
	Next(ctx context.Context) (model.TransactionEvent, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
