package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// #region logging-tests

func TestNew_StderrLogger(t *testing.T) {
	logger, err := New(Options{Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("visible at debug level")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_FileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("turn scored", zap.Int("turn", 3))
	if err := logger.Sync(); err != nil {
		t.Logf("sync: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, `"msg":"turn scored"`) {
		t.Errorf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"turn":3`) {
		t.Errorf("log line missing field: %s", line)
	}
}

func TestNew_FileSinkHonorsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New(Options{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("suppressed")
	logger.Warn("kept")
	logger.Sync()

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "suppressed") {
		t.Error("info line logged despite warn level")
	}
	if !strings.Contains(string(raw), "kept") {
		t.Error("warn line missing")
	}
}

// #endregion logging-tests
