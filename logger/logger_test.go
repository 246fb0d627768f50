package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func jsonLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&Config{Level: level, Format: FormatJSON}, &buf), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNew_LevelFilter(t *testing.T) {
	l, buf := jsonLogger("warn")
	l.Info("hidden")
	l.Warn("shown", Fields("node", "tokens"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["message"] != "shown" || lines[0]["node"] != "tokens" {
		t.Errorf("unexpected line: %v", lines[0])
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l, buf := jsonLogger("invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if lines := decodeLines(t, buf); len(lines) != 1 {
		t.Fatalf("expected invalid level to fall back to info, got %s", buf.String())
	}
}

func TestDisabledLevel(t *testing.T) {
	l, buf := jsonLogger("disabled")
	l.Error("hidden")
	if buf.Len() != 0 || l.Enabled("error") {
		t.Errorf("expected nothing written, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	l, buf := jsonLogger("info")
	l.WithComponent("dag").Info("hello")
	if lines := decodeLines(t, buf); lines[0][FieldComponent] != "dag" {
		t.Errorf("expected component field, got %v", lines[0])
	}
}

func TestWithContext(t *testing.T) {
	l, buf := jsonLogger("info")
	ctx := ContextWithRun(context.Background(), "wordcount", "run-1")
	l.WithContext(ctx).Info("started")
	l.WithContext(context.Background()).Info("plain")

	lines := decodeLines(t, buf)
	if lines[0][FieldRunID] != "run-1" || lines[0][FieldJob] != "wordcount" {
		t.Errorf("expected run fields, got %v", lines[0])
	}
	if _, ok := lines[1][FieldRunID]; ok {
		t.Errorf("expected no run field, got %v", lines[1])
	}
}

func TestMultipleFieldMaps(t *testing.T) {
	l, buf := jsonLogger("info")
	l.Error("failed", Fields("records", 3), ErrorFields("run", fmt.Errorf("boom")))
	line := decodeLines(t, buf)[0]
	if line["records"] != float64(3) || line[FieldError] != "boom" || line[FieldOperation] != "run" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestEnabled(t *testing.T) {
	l, _ := jsonLogger("info")
	if l.Enabled("debug") {
		t.Error("debug should be disabled at info level")
	}
	if !l.Enabled("error") {
		t.Error("error should be enabled at info level")
	}
	if l.Enabled("nonsense") {
		t.Error("unknown level should be disabled")
	}
}

func TestConsoleFormatNamesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: FormatConsole, NoColor: true}, &buf)
	l.WithComponent("dag").Warn("careful", Fields(FieldNode, "tokens"))
	out := buf.String()
	for _, want := range []string{"WRN", "dag: careful", "node=tokens"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in console output %q", want, out)
		}
	}
	if strings.Contains(out, FieldComponent+"=") {
		t.Errorf("component should not be repeated as a field: %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Level: "DEBUG"}
	cfg.ApplyDefaults()

	if cfg.Level != "debug" {
		t.Errorf("expected level 'debug', got %q", cfg.Level)
	}
	if cfg.Format != FormatConsole {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stderr"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stdout"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stderr"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l, _ := jsonLogger("info")
	Register("my-component", l)

	if got := Get("my-component"); got != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGet_FollowsGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer SetGlobalLogger(prev)

	first, firstBuf := jsonLogger("info")
	SetGlobalLogger(first)
	Get("engine-test").Info("one")

	second, secondBuf := jsonLogger("info")
	SetGlobalLogger(second)
	Get("engine-test").Info("two")

	if !strings.Contains(firstBuf.String(), "one") || strings.Contains(firstBuf.String(), "two") {
		t.Errorf("unexpected first output: %s", firstBuf.String())
	}
	if line := decodeLines(t, secondBuf)[0]; line["message"] != "two" || line[FieldComponent] != "engine-test" {
		t.Errorf("unexpected second output: %v", line)
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want int
	}{
		{"pairs", []interface{}{"a", 1, "b", 2}, 2},
		{"odd trailing key", []interface{}{"a", 1, "b"}, 1},
		{"non-string key", []interface{}{1, "x", "a", 2}, 1},
		{"empty", nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fields(tc.in...); len(got) != tc.want {
				t.Errorf("expected %d fields, got %v", tc.want, got)
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("run", fmt.Errorf("bad"))
	if ef[FieldOperation] != "run" || ef[FieldError] != "bad" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("run", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields: %v", df)
	}
}

func TestInitSetsGlobal(t *testing.T) {
	prev := globalLogger
	defer SetGlobalLogger(prev)

	Init(Config{Level: "error", Format: "json"})
	if GetGlobalLogger().Enabled("warn") {
		t.Error("expected warn to be disabled after Init at error level")
	}
}
