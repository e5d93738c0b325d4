package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// captureLogOutput redirects the global logger to a buffer while f runs.
func captureLogOutput(level Level, format Format, f func()) string {
	var buf bytes.Buffer

	oldOutput := output
	output = &buf
	InitLogger(level, format)

	f()

	output = oldOutput
	InitLogger(LevelInfo, FormatText)
	return buf.String()
}

func TestInitLogger(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		level     Level
		format    Format
		logFunc   func()
		wantEmpty bool
		contains  string
	}{
		{"debug shown at debug", LevelDebug, FormatJSON, func() { DebugContext(ctx, "dbg") }, false, `"msg":"dbg"`},
		{"debug hidden at info", LevelInfo, FormatJSON, func() { DebugContext(ctx, "dbg") }, true, ""},
		{"warn shown at warn", LevelWarn, FormatText, func() { WarnContext(ctx, "careful") }, false, "msg=careful"},
		{"info hidden at error", LevelError, FormatText, func() { InfoContext(ctx, "quiet") }, true, ""},
		{"error shown at error", LevelError, FormatJSON, func() { ErrorContext(ctx, "boom") }, false, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutput(tt.level, tt.format, tt.logFunc)
			if tt.wantEmpty {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output %q does not contain %q", out, tt.contains)
			}
		})
	}
}

func TestTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LevelInfo, FormatJSON).Info("stamp")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	ts, _ := rec["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo, "warning": LevelWarn, "error": LevelError}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel() expected error")
	}

	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat() expected error")
	}
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewRunID() = %q is not a uuid: %v", id, err)
	}

	ctx := WithRunID(context.Background(), id)
	if got := GetRunID(ctx); got != id {
		t.Errorf("GetRunID() = %q, want %q", got, id)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID() on empty context = %q", got)
	}

	out := captureLogOutput(LevelInfo, FormatJSON, func() {
		InfoContext(ctx, "tagged")
	})
	if !strings.Contains(out, `"run_id":"`+id+`"`) {
		t.Errorf("output %q missing run id", out)
	}
}

func TestFileOperation(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")

	var called bool
	out := captureLogOutput(LevelDebug, FormatJSON, func() {
		err := FileOperation(ctx, "validate", "a.xml", func() error {
			called = true
			return nil
		})
		if err != nil {
			t.Errorf("FileOperation() error = %v", err)
		}
	})
	if !called {
		t.Fatal("fn was not called")
	}
	for _, want := range []string{`"msg":"file_done"`, `"op":"validate"`, `"path":"a.xml"`, `"run_id":"run-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}

	boom := errors.New("boom")
	out = captureLogOutput(LevelInfo, FormatJSON, func() {
		if err := FileOperation(ctx, "convert", "b.xml", func() error { return boom }); !errors.Is(err, boom) {
			t.Errorf("FileOperation() error = %v, want boom", err)
		}
	})
	if !strings.Contains(out, `"msg":"file_failed"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("output %q missing failure record", out)
	}
}

func TestInitLoggerSetsDefault(t *testing.T) {
	out := captureLogOutput(LevelInfo, FormatJSON, func() {
		slog.Info("via default")
	})
	if !strings.Contains(out, `"msg":"via default"`) {
		t.Errorf("slog.Default() did not use the configured logger: %q", out)
	}
}
