package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCycleID is the standardized structured logging key for the planning or publish cycle identifier.
	FieldCycleID = "cycle_id"
	// FieldKeyword is the standardized structured logging key for the normalized keyword phrase.
	FieldKeyword = "keyword"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact states what a warning costs the current cycle.
	FieldImpact = "impact"
	// FieldDecisionType names the decision being logged.
	FieldDecisionType   = "decision_type"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"
)

type cycleIDKey struct{}

// WithCycleID returns a context carrying the cycle identifier for log correlation.
func WithCycleID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cycleIDKey{}, id)
}

// CycleID returns the identifier attached by WithCycleID, if any.
func CycleID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(cycleIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns logger tagged with the cycle identifier carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	id, ok := CycleID(ctx)
	if !ok {
		return logger
	}
	return logger.With(String(FieldCycleID, id))
}
