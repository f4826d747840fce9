package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "development", "nop"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		l.With("component", "test").Info("hello", "mode", mode)
	}
}
