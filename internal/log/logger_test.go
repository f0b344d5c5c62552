package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/projector/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name: "custom config json",
			config: Config{
				Level:     LevelDebug,
				Format:    FormatJSON,
				Output:    OutputStdout(),
				AddSource: true,
			},
		},
		{
			name: "custom config text",
			config: Config{
				Level:     LevelWarn,
				Format:    FormatText,
				Output:    OutputStderr(),
				AddSource: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.slog == nil {
				t.Fatal("expected slog logger, got nil")
			}
			if logger.config.Level != tt.config.Level {
				t.Errorf("expected level %v, got %v", tt.config.Level, logger.config.Level)
			}
		})
	}
}

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(buf),
	})
	return logger, buf
}

func TestLogLevels(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN and ERROR messages should be logged, got: %s", out)
	}
}

func TestWith(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.With("plan_id", "plan-123").Info("admitted feature")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["plan_id"] != "plan-123" {
		t.Errorf("expected plan_id attribute, got: %v", entry)
	}
}

func TestWithError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	err := errors.New(errors.ErrCodeDependencyNotMet, "dependency missing").
		WithSuggestion("complete the dependency first")
	logger.WithError(err).Warn("feature skipped")

	var entry map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &entry); jsonErr != nil {
		t.Fatalf("failed to parse log entry: %v", jsonErr)
	}
	if entry["error_code"] != string(errors.ErrCodeDependencyNotMet) {
		t.Errorf("expected error_code attribute, got: %v", entry)
	}
	if entry["error"] != "dependency missing" {
		t.Errorf("expected error attribute, got: %v", entry)
	}
}

func TestWithErrorPlain(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.WithError(context.DeadlineExceeded).Error("gateway call failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["error"] != context.DeadlineExceeded.Error() {
		t.Errorf("expected plain error attribute, got: %v", entry)
	}
}

func TestWithErrorNil(t *testing.T) {
	logger, _ := newBufferLogger(LevelInfo, FormatJSON)

	if got := logger.WithError(nil); got != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.LogError(errors.Wrap(errors.ErrCodeFileWriteFailed, "save failed", context.Canceled))

	out := buf.String()
	if !strings.Contains(out, string(errors.ErrCodeFileWriteFailed)) {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "context canceled") {
		t.Errorf("expected cause in output, got: %s", out)
	}

	buf.Reset()
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Errorf("LogError(nil) should not log, got: %s", buf.String())
	}
}

func TestEnabled(t *testing.T) {
	logger, _ := newBufferLogger(LevelWarn, FormatJSON)
	ctx := context.Background()

	if logger.Enabled(ctx, LevelDebug) {
		t.Error("DEBUG should not be enabled at WARN level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("ERROR should be enabled at WARN level")
	}
}
