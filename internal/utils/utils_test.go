package utils

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestGetApplicationVersionPrefersLinkedVersion(t *testing.T) {
	previous := Version
	t.Cleanup(func() { Version = previous })

	Version = "v9.9.9"
	if got := GetApplicationVersion(); got != "v9.9.9" {
		t.Fatalf("expected linked version, got %q", got)
	}
}

func TestFindGitDirectoryWalksUpward(t *testing.T) {
	rootDirectory := t.TempDir()
	if err := os.MkdirAll(filepath.Join(rootDirectory, GitDirectoryName), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	nestedDirectory := filepath.Join(rootDirectory, "a", "b")
	if err := os.MkdirAll(nestedDirectory, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	found, err := findGitDirectory(nestedDirectory)
	if err != nil {
		t.Fatalf("findGitDirectory error: %v", err)
	}
	expected, _ := filepath.EvalSymlinks(rootDirectory)
	actual, _ := filepath.EvalSymlinks(found)
	if actual != expected {
		t.Fatalf("expected %s, got %s", expected, actual)
	}
}

func TestNewApplicationLoggerLevels(t *testing.T) {
	testCases := []struct {
		name        string
		verbose     bool
		expectDebug bool
	}{
		{name: "info_by_default", verbose: false, expectDebug: false},
		{name: "debug_when_verbose", verbose: true, expectDebug: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logger, err := NewApplicationLogger(testCase.verbose)
			if err != nil {
				t.Fatalf("NewApplicationLogger error: %v", err)
			}
			if enabled := logger.Core().Enabled(zapcore.DebugLevel); enabled != testCase.expectDebug {
				t.Fatalf("debug enabled: got %v want %v", enabled, testCase.expectDebug)
			}
		})
	}
}
