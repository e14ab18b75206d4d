package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		l := Must(New(tt.level))
		if !l.Core().Enabled(tt.want) {
			t.Errorf("New(%q) does not enable %v", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q) enables %v", tt.level, tt.want-1)
		}
	}
}

func TestNamed_NilBase(t *testing.T) {
	if Named(nil, "store") == nil {
		t.Fatal("Named(nil) returned nil")
	}
}
