package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phrasesync/internal/config"
	"phrasesync/internal/logging"
	"phrasesync/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "phrasesync.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func newFileLogger(t *testing.T, opts logging.Options) (*slog.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	opts.Outputs = []string{path}
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerSourceFollowsLevel(t *testing.T) {
	tests := []struct {
		level      string
		wantSource bool
	}{
		{level: "info", wantSource: false},
		{level: "debug", wantSource: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, path := newFileLogger(t, logging.Options{Format: "console", Level: tt.level})
			logger.Info("hello")
			got := strings.Contains(readLog(t, path), "_test.go:")
			if got != tt.wantSource {
				t.Fatalf("source present = %v, want %v", got, tt.wantSource)
			}
		})
	}
}

func TestConsoleLoggerRendersPlaybackCue(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "console", Level: "info"})
	logger = logging.NewComponentLogger(logger, "playback")
	logger.Info("phrase changed",
		logging.String(logging.FieldSessionID, "3f2a9c1e-aaaa-bbbb-cccc-000000000000"),
		logging.PhraseIndex(2),
		logging.Speaker("Jane Doe"),
		logging.Position(62500*time.Millisecond),
		logging.Float64("rate", 0.75),
	)

	line := readLog(t, path)
	want := "INFO  [3f2a9c1e] playback: phrase changed (#2 Jane Doe @01:02.500) rate=0.75\n"
	if !strings.HasSuffix(line, want) {
		t.Fatalf("expected line ending %q, got %q", want, line)
	}
}

func TestConsoleLoggerFlattensGroupsAndQuotes(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "console", Level: "info"})
	logger.WithGroup("device").Info("rate applied",
		logging.Float64("rate", 0.5),
		logging.String("note", "slow down"),
		slog.Group("limits", logging.Float64("min", 0.25)),
	)

	line := readLog(t, path)
	for _, fragment := range []string{"device.rate=0.5", `device.note="slow down"`, "device.limits.min=0.25"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestConsoleLoggerLeavesNonDurationPositionInTail(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "console", Level: "info"})
	logger.Info("odd position", logging.String(logging.FieldPosition, "start"))

	line := readLog(t, path)
	if !strings.Contains(line, "position=start") || strings.Contains(line, "(@") {
		t.Fatalf("unexpected rendering %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "json", Level: "info"})
	logger.Info("json message", logging.String("k", "v"), logging.Position(2500*time.Millisecond))

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace([]byte(readLog(t, path))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["msg"] != "json message" || payload["k"] != "v" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["position_ms"] != float64(2500) {
		t.Fatalf("expected position_ms=2500, got %v", payload)
	}
	if _, ok := payload["position"]; ok {
		t.Fatalf("expected raw position to be replaced, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, _ := newFileLogger(t, logging.Options{Format: "console", Level: "invalid"})
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info to be enabled")
	}
}

type captureHandler struct {
	records []slog.Record
	attrs   []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = append(h.attrs, attrs...)
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "session-42")
	ctx = services.WithScript(ctx, "example")
	ctx = services.WithRequestID(ctx, "req-xyz")

	handler := &captureHandler{}
	logging.WithContext(ctx, slog.New(handler)).Info("contextual log")

	if len(handler.records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(handler.records))
	}
	want := map[string]string{
		logging.FieldSessionID:     "session-42",
		logging.FieldScript:        "example",
		logging.FieldCorrelationID: "req-xyz",
	}
	for key, value := range want {
		found := false
		for _, attr := range handler.attrs {
			if attr.Key == key {
				found = true
				if attr.Value.String() != value {
					t.Fatalf("field %s = %q, want %q", key, attr.Value.String(), value)
				}
			}
		}
		if !found {
			t.Fatalf("field %s not found", key)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	handler := &captureHandler{}
	logging.WarnWithContext(slog.New(handler), "device pause failed", "device_pause_failed")
	if len(handler.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(handler.records))
	}
	keys := map[string]bool{}
	handler.records[0].Attrs(func(a slog.Attr) bool {
		keys[a.Key] = true
		return true
	})
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if !keys[key] {
			t.Fatalf("expected %s to be injected", key)
		}
	}
}

func TestWarnWithContextKeepsCallerValues(t *testing.T) {
	handler := &captureHandler{}
	logging.WarnWithContext(slog.New(handler), "script missing", "library_file_missing",
		logging.String(logging.FieldImpact, "falling back"))
	var impact []string
	handler.records[0].Attrs(func(a slog.Attr) bool {
		if a.Key == logging.FieldImpact {
			impact = append(impact, a.Value.String())
		}
		return true
	})
	if len(impact) != 1 || impact[0] != "falling back" {
		t.Fatalf("impact = %v, want [falling back]", impact)
	}
}

func TestNewNopDiscards(t *testing.T) {
	if logging.NewNop().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}
