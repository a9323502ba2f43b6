package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paymentops/vigil/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidLesson = errors.New("invalid lesson")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLesson checks the required fields of a lesson record.
func validateLesson(lesson *model.LessonRecord) error {
	if lesson == nil {
		return fmt.Errorf("%w: lesson", ErrNilParameter)
	}
	if lesson.Diagnosis == "" {
		return fmt.Errorf("%w: missing diagnosis", ErrInvalidLesson)
	}
	if lesson.ActionTaken == "" {
		return fmt.Errorf("%w: missing action", ErrInvalidLesson)
	}
	switch lesson.Outcome {
	case model.OutcomeExecuted, model.OutcomeEscalated, model.OutcomeSkippedSafety, model.OutcomeMonitored:
	default:
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidLesson, lesson.Outcome)
	}
	return nil
}
