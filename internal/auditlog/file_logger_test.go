package auditlog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ownershift/internal/auditlog"
)

type fixedClock struct {
	currentTime time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.currentTime
}

func TestFileLoggerWritesHeaderEntriesAndFooter(testFramework *testing.T) {
	logDirectory := testFramework.TempDir()
	frozenTime := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)

	logger, creationError := auditlog.NewFileLogger(
		auditlog.Dependencies{Clock: fixedClock{currentTime: frozenTime}},
		auditlog.Options{
			LogDirectory:  logDirectory,
			OldIdentifier: "alice",
			NewIdentifier: "carol",
			ScanRoot:      "/home/dev/projects",
		},
	)
	require.NoError(testFramework, creationError)
	require.Equal(testFramework, filepath.Join(logDirectory, "ownershift-migration-20260304-093000.log"), logger.FilePath())

	logger.RecordSuccess("/home/dev/projects/alpha", "origin", "git@github.com:alice/alpha.git", "git@github.com:carol/alpha.git")
	logger.RecordFailure("/home/dev/projects/beta", "origin", "git@github.com:alice/beta.git", "git@github.com:carol/beta.git", "write refused")

	logFilePath, finalizeError := logger.Finalize()
	require.NoError(testFramework, finalizeError)

	logContent, readError := os.ReadFile(logFilePath)
	require.NoError(testFramework, readError)
	logText := string(logContent)

	require.Contains(testFramework, logText, "=== ownershift migration log ===")
	require.Contains(testFramework, logText, "Started:   2026-03-04T09:30:00Z")
	require.Contains(testFramework, logText, "Old owner: alice")
	require.Contains(testFramework, logText, "New owner: carol")
	require.Contains(testFramework, logText, "Scan root: /home/dev/projects")

	require.Contains(testFramework, logText, "[2026-03-04T09:30:00Z] SUCCESS repository=/home/dev/projects/alpha remote=origin")
	require.Contains(testFramework, logText, "  old: git@github.com:alice/alpha.git")
	require.Contains(testFramework, logText, "  new: git@github.com:carol/alpha.git")

	require.Contains(testFramework, logText, "[2026-03-04T09:30:00Z] FAILED repository=/home/dev/projects/beta remote=origin")
	require.Contains(testFramework, logText, "  error: write refused")

	require.Contains(testFramework, logText, "Finished:  2026-03-04T09:30:00Z")
	require.Contains(testFramework, logText, "Totals:    1 succeeded, 1 failed")
}

func TestFileLoggerAppendsOnlySuccessEntriesWithoutErrorLine(testFramework *testing.T) {
	logDirectory := testFramework.TempDir()

	logger, creationError := auditlog.NewFileLogger(
		auditlog.Dependencies{Clock: fixedClock{currentTime: time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)}},
		auditlog.Options{LogDirectory: logDirectory, OldIdentifier: "alice", NewIdentifier: "carol", ScanRoot: "/projects"},
	)
	require.NoError(testFramework, creationError)

	logger.RecordSuccess("/projects/alpha", "origin", "git@github.com:alice/alpha.git", "git@github.com:carol/alpha.git")

	logFilePath, finalizeError := logger.Finalize()
	require.NoError(testFramework, finalizeError)

	logContent, readError := os.ReadFile(logFilePath)
	require.NoError(testFramework, readError)
	require.NotContains(testFramework, string(logContent), "  error:")
	require.Contains(testFramework, string(logContent), "Totals:    1 succeeded, 0 failed")
}

func TestNewFileLoggerRequiresLogDirectory(testFramework *testing.T) {
	_, creationError := auditlog.NewFileLogger(auditlog.Dependencies{}, auditlog.Options{LogDirectory: "   "})
	require.Error(testFramework, creationError)
	require.Contains(testFramework, creationError.Error(), "log directory required")
}
