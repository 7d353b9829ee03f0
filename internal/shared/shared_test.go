package shared

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("child loggers carry key-value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "harvest")
		logger.Info("working")

		if !strings.Contains(buf.String(), "component") {
			t.Errorf("expected component key in output, got %q", buf.String())
		}
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestTempFileName(t *testing.T) {
	t.Run("lives under the temp directory", func(t *testing.T) {
		path := TempFileName(42)
		if !strings.HasPrefix(path, os.TempDir()) {
			t.Errorf("expected path under %s, got %s", os.TempDir(), path)
		}
		if !strings.Contains(path, "imagehound_42_") {
			t.Errorf("expected the id in the name, got %s", path)
		}
	})

	t.Run("never repeats for the same id", func(t *testing.T) {
		if TempFileName(1) == TempFileName(1) {
			t.Error("expected unique paths per call")
		}
	})
}
