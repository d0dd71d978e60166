package logger

import (
	"errors"
	"os"
	"testing"
)

func TestWithErrorBeforeInitialize(t *testing.T) {
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	Logger = nil
	FileLogger = nil

	entry := WithError(errors.New("connection refused"), "delay_service")
	if entry == nil {
		t.Fatal("Expected a log entry from an uninitialized logger")
	}
	if entry.Data["component"] != "delay_service" {
		t.Errorf("Expected component field, got %v", entry.Data["component"])
	}
	if entry.Data["error"] != "connection refused" {
		t.Errorf("Expected error field, got %v", entry.Data["error"])
	}
}
