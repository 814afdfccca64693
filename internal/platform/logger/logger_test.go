package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want zapcore.Level
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "nonsense", want: zapcore.InfoLevel},
	} {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewConsoleLogger(t *testing.T) {
	l, err := New("debug", "console", "sanctionguard-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestMustReturnsConfiguredLogger(t *testing.T) {
	l := Must("warn", "json", "sanctionguard-test")
	if l == nil {
		t.Fatal("expected a logger")
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected warn level to be enabled")
	}
}
