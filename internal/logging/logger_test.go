package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestZerologAdapterFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf))

	logger.Info("evaluated",
		String("backend", "native"),
		Int("nodes", 5),
		Uint64("bits", 64),
		Float64("progress", 0.5),
		Bool("assigned", true),
		Duration("elapsed", 2*time.Millisecond),
	)
	entry := decodeLine(t, &buf)

	if entry["message"] != "evaluated" || entry["level"] != "info" {
		t.Errorf("unexpected envelope: %v", entry)
	}
	if entry["backend"] != "native" {
		t.Errorf("backend = %v", entry["backend"])
	}
	if entry["nodes"] != float64(5) || entry["bits"] != float64(64) {
		t.Errorf("numeric fields = %v, %v", entry["nodes"], entry["bits"])
	}
	if entry["assigned"] != true {
		t.Errorf("assigned = %v", entry["assigned"])
	}
	if _, ok := entry["elapsed"]; !ok {
		t.Error("elapsed field missing")
	}
}

func TestZerologAdapterError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewLogger(&buf, "server")

	logger.Error("request failed", errors.New("boom"), String("path", "/evaluate"))
	entry := decodeLine(t, &buf)

	if entry["level"] != "error" || entry["error"] != "boom" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["component"] != "server" || entry["path"] != "/evaluate" {
		t.Errorf("context fields missing: %v", entry)
	}
}

func TestZerologAdapterLevels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.WarnLevel))

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("entries below warn were written: %q", buf.String())
	}
	logger.Warn("shown")
	if entry := decodeLine(t, &buf); entry["level"] != "warn" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestZerologAdapterPrintf(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf))

	logger.Printf("listening on %s", ":8080")
	if entry := decodeLine(t, &buf); entry["message"] != "listening on :8080" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestStdLoggerAdapter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewStdLoggerAdapter(stdlog.New(&buf, "", 0))

	logger.Info("plain")
	logger.Warn("with field", String("k", "v"))
	logger.Error("failed", errors.New("boom"))
	logger.Error("nil error", nil)

	out := buf.String()
	for _, want := range []string{"[INFO] plain", "[WARN] with field", "{k v}", "[ERROR] failed: boom", "nil error: <nil>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// Setup mutates process-wide zerolog state, so it is not run in parallel.
func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Setup(tt.level, &buf)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("Setup(%q): global level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

var _ Logger = (*ZerologAdapter)(nil)
var _ Logger = (*StdLoggerAdapter)(nil)
