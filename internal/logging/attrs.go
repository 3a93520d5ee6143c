package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func String(key, value string) slog.Attr { return slog.String(key, value) }

// Error keys err under "error"; a nil error is logged as "none".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "none")
	}
	return slog.Any("error", err)
}

// PhraseIndex, Speaker and Position feed the console cue column.

func PhraseIndex(index int) slog.Attr { return slog.Int(FieldPhraseIndex, index) }

func Speaker(name string) slog.Attr { return slog.String(FieldSpeaker, name) }

func Position(d time.Duration) slog.Attr { return slog.Duration(FieldPosition, d) }

func Script(name string) slog.Attr { return slog.String(FieldScript, name) }

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields a
// tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Caller-supplied values win over the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	defaults := []slog.Attr{
		slog.String(FieldEventType, eventType),
		slog.String(FieldErrorHint, "check logs for details"),
		slog.String(FieldImpact, "playback state left unchanged"),
	}
	for _, d := range defaults {
		if !slices.ContainsFunc(attrs, func(a slog.Attr) bool { return a.Key == d.Key }) {
			attrs = append(attrs, d)
		}
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
