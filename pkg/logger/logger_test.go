package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, level Level, format Format) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := NewLogger(&Config{
		Level:            level,
		Format:           format,
		Output:           StderrOutput,
		DisableTimestamp: true,
		Writer:           buf,
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return l, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", *DefaultConfig(), false},
		{"debug", *DebugConfig(), false},
		{"bad level", Config{Level: "trace", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"bad output", Config{Level: InfoLevel, Format: TextFormat, Output: "syslog"}, true},
		{"file without path", Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	if _, err := NewLogger(&Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, WarnLevel, JSONFormat)

	l.Info("hidden")
	l.Debugf("hidden %d", 1)
	l.Warn("shown")
	l.Errorf("shown %s", "too")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["msg"] != "shown" || entries[1]["msg"] != "shown too" {
		t.Errorf("unexpected messages: %v", entries)
	}
}

func TestLogger_DerivedFieldsPersist(t *testing.T) {
	l, buf := newBufferLogger(t, DebugLevel, JSONFormat)

	derived := l.WithComponent("matcher").WithFields(Fields{"records": 3})
	derived.WithError(errors.New("boom")).Info("first")
	derived.Debug("second")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e["component"] != "matcher" {
			t.Errorf("component missing in %v", e)
		}
		if e["records"] != float64(3) {
			t.Errorf("records missing in %v", e)
		}
	}
	if entries[0]["error"] != "boom" {
		t.Errorf("error field missing in %v", entries[0])
	}
	if _, ok := entries[1]["error"]; ok {
		t.Errorf("error field leaked into sibling entry %v", entries[1])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel, TextFormat)
	l.WithField("file", "a.csv").Info("loaded")

	out := buf.String()
	if !strings.Contains(out, "loaded") || !strings.Contains(out, "file=a.csv") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestConfigureGlobal(t *testing.T) {
	previous := GetGlobalLogger()
	defer SetGlobalLogger(previous)

	buf := &bytes.Buffer{}
	if err := Configure(&Config{Level: InfoLevel, Format: JSONFormat, Output: StdoutOutput, Writer: buf}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	WithComponent("cli").Info("hello")
	Infof("count=%d", 2)

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["component"] != "cli" {
		t.Errorf("component missing in %v", entries[0])
	}

	if err := Configure(&Config{Level: "nope"}); err == nil {
		t.Error("expected error for invalid global config")
	}
}

func TestProgressTracker(t *testing.T) {
	l, _ := newBufferLogger(t, DebugLevel, JSONFormat)
	p := NewProgressTracker(ProgressConfig{Operation: "reconcile", Total: 4, Logger: l, LogInterval: time.Hour})

	p.Begin("loading")
	stats := p.GetStats()
	if stats.Current != 0 || stats.Step != "loading" {
		t.Errorf("unexpected stats after Begin: %+v", stats)
	}

	p.Advance("matching")
	stats = p.GetStats()
	if stats.Current != 1 || stats.Percentage != 25 || stats.Step != "matching" {
		t.Errorf("unexpected stats after Advance: %+v", stats)
	}
	if !strings.Contains(stats.String(), "reconcile: 1/4 (25.0%) matching") {
		t.Errorf("unexpected String(): %s", stats.String())
	}

	p.Complete()
	if got := p.GetStats(); got.Current != 4 || got.Percentage != 100 {
		t.Errorf("unexpected stats after Complete: %+v", got)
	}
}

func TestProgressStats_StringWithoutTotal(t *testing.T) {
	s := ProgressStats{Operation: "detect", Step: "reading", Elapsed: time.Second}
	if got := s.String(); got != "detect: reading, elapsed: 1s" {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestTimedOperation(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel, JSONFormat)

	if err := TimedOperation("export", l, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantErr := errors.New("disk full")
	if err := TimedOperation("export", l, func() error { return wantErr }); err != wantErr {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["status"] != "success" || entries[0]["operation"] != "export" {
		t.Errorf("unexpected success entry %v", entries[0])
	}
	if entries[1]["status"] != "error" || entries[1]["error"] != "disk full" {
		t.Errorf("unexpected error entry %v", entries[1])
	}
}
