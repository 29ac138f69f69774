package infra

import "testing"

func TestNewLogger(t *testing.T) {
	for _, prod := range []bool{true, false} {
		logger, err := NewLogger(prod, "debug")
		if err != nil {
			t.Fatalf("NewLogger(%v) error = %v", prod, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Errorf("NewLogger(%v): debug level not enabled", prod)
		}
		_ = logger.Sync()
	}
	if _, err := NewLogger(false, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
