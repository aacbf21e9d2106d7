package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contesthub/pkg/utils/contextkey"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetGlobal(NewWithZap(zap.New(core)))
	defer SetGlobal(nil)

	ctx := context.WithValue(context.Background(), contextkey.TraceID, "t-1")
	ctx = contextkey.WithUsername(ctx, "alice")
	ctx = contextkey.WithContestID(ctx, "c-9")
	Warn(ctx, "hello", zap.Int("n", 1))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "t-1" || fields["username"] != "alice" || fields["contest_id"] != "c-9" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s", entries[0].Level)
	}
}

func TestHelpersAreNoopsWithoutLogger(t *testing.T) {
	SetGlobal(nil)
	Info(context.Background(), "dropped")
	Error(context.Background(), "dropped")
	if err := Sync(); err != nil {
		t.Errorf("Sync without logger: %v", err)
	}
}

func TestNewLoggerSplitsErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.log")
	errOut := filepath.Join(dir, "err.log")
	l, err := NewLogger(Config{Level: "info", Format: "json", OutputPath: out, ErrorPath: errOut})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.WithContext(context.Background()).Info("routine")
	l.WithContext(context.Background()).Error("broken")
	_ = l.Sync()

	all, _ := os.ReadFile(out)
	errs, _ := os.ReadFile(errOut)
	if !strings.Contains(string(all), "routine") {
		t.Errorf("info missing from output: %s", all)
	}
	if strings.Contains(string(errs), "routine") || !strings.Contains(string(errs), "broken") {
		t.Errorf("error sink content: %s", errs)
	}
}

func TestNewLoggerSharedSinkWritesErrorsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := NewLogger(Config{Level: "info", Format: "json", OutputPath: path, ErrorPath: path})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.WithContext(context.Background()).Error("broken")
	_ = l.Sync()

	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "broken"); n != 1 {
		t.Errorf("error written %d times: %s", n, data)
	}
}

func TestSinkName(t *testing.T) {
	if sinkName("", "stderr") != sinkName("stderr", "stdout") {
		t.Error("empty error path resolves to stderr")
	}
	if sinkName("", "stdout") == sinkName("", "stderr") {
		t.Error("default sinks differ")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(Config{Level: "loud", OutputPath: "discard"}); err == nil {
		t.Fatal("expected error")
	}
}
