package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"fintrack/internal/config"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, "cli", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"component":"cli"`) {
		t.Errorf("expected JSON warn record with component, got %s", out)
	}
	if logger.Component() != "cli" {
		t.Errorf("unexpected component %q", logger.Component())
	}
}
