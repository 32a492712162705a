package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{Verbose, Table, Quiet} {
		l, err := New(mode, "debug")
		if err != nil {
			t.Fatalf("New(%q) error: %v", mode, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("mode %q: debug level not enabled", mode)
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("chatty", ""); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := New(Quiet, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNamedNil(t *testing.T) {
	if Named(nil, "x") == nil {
		t.Fatal("Named(nil) returned nil")
	}
}
