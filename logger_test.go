package densityfield

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_DefaultIsSilent(t *testing.T) {
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(nil, slog.LevelError) {
		t.Error("default logger should be disabled at all levels")
	}
}

func TestLogger_SetAndRestore(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("density pass", "slices", 8)
	if !strings.Contains(buf.String(), "density pass") {
		t.Errorf("log output missing message: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(nil, slog.LevelInfo) {
		t.Error("SetLogger(nil) should restore silent logger")
	}
}
