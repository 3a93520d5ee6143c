package logging

import (
	"context"
	"log/slog"

	"phrasesync/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID is the standardized structured logging key for playback session identifiers.
	FieldSessionID = "session_id"
	// FieldScript is the standardized structured logging key for script names.
	FieldScript = "script"
	// FieldPhraseIndex is the standardized structured logging key for timeline phrase ordinals.
	FieldPhraseIndex = "phrase_index"
	// FieldPosition is the standardized structured logging key for audio clock positions.
	FieldPosition = "position"
	// FieldSpeaker names the speaker of the phrase a log line refers to.
	FieldSpeaker = "speaker"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries a short next-step suggestion for operators.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if name, ok := services.ScriptFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldScript, name))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
