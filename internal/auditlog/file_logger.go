package auditlog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/ownershift/internal/shared"
)

const (
	logFileNameTemplateConstant      = "ownershift-migration-%s.log"
	logFileTimestampLayoutConstant   = "20060102-150405"
	entryTimestampLayoutConstant     = time.RFC3339
	logFilePermissionsConstant       = 0o644
	logDirectoryPermissionsConstant  = 0o755
	statusSuccessConstant            = "SUCCESS"
	statusFailedConstant             = "FAILED"
	headerTemplateConstant           = "=== ownershift migration log ===\nStarted:   %s\nOld owner: %s\nNew owner: %s\nScan root: %s\n\n"
	entryHeaderTemplateConstant      = "[%s] %s repository=%s remote=%s\n"
	entryOldURLTemplateConstant      = "  old: %s\n"
	entryNewURLTemplateConstant      = "  new: %s\n"
	entryErrorTemplateConstant       = "  error: %s\n"
	footerTemplateConstant           = "\nFinished:  %s\nTotals:    %d succeeded, %d failed\n"
	logDirectoryRequiredMessage      = "log directory required"
	logDirectoryCreateErrorTemplate  = "unable to create log directory %s: %w"
	logFileAppendErrorTemplate       = "unable to append to migration log %s: %w"
)

// Options identifies the migration run recorded in the log header.
type Options struct {
	LogDirectory  string
	OldIdentifier string
	NewIdentifier string
	ScanRoot      string
}

// Dependencies captures the collaborators required by the file logger.
type Dependencies struct {
	FileSystem shared.FileSystem
	Clock      shared.Clock
}

// FileLogger appends migration attempt entries to a timestamped log file under
// the configured application-data directory. It is a single sequential writer;
// entries land strictly in completion order.
type FileLogger struct {
	fileSystem   shared.FileSystem
	clock        shared.Clock
	filePath     string
	successCount int
	failureCount int
	appendError  error
}

// NewFileLogger creates the log directory and file and writes the header block.
// The file name embeds a timestamp so every run produces a distinct artifact.
func NewFileLogger(dependencies Dependencies, options Options) (*FileLogger, error) {
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = shared.OSFileSystem{}
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	logDirectory := strings.TrimSpace(options.LogDirectory)
	if len(logDirectory) == 0 {
		return nil, fmt.Errorf(logDirectoryRequiredMessage)
	}

	if directoryError := fileSystem.MkdirAll(logDirectory, logDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(logDirectoryCreateErrorTemplate, logDirectory, directoryError)
	}

	startTime := clock.Now()
	logFileName := fmt.Sprintf(logFileNameTemplateConstant, startTime.Format(logFileTimestampLayoutConstant))

	logger := &FileLogger{
		fileSystem: fileSystem,
		clock:      clock,
		filePath:   filepath.Join(logDirectory, logFileName),
	}

	header := fmt.Sprintf(
		headerTemplateConstant,
		startTime.Format(entryTimestampLayoutConstant),
		options.OldIdentifier,
		options.NewIdentifier,
		options.ScanRoot,
	)
	if headerError := logger.appendContent(header); headerError != nil {
		return nil, headerError
	}

	return logger, nil
}

// FilePath returns the location of the log artifact.
func (logger *FileLogger) FilePath() string {
	return logger.filePath
}

// RecordSuccess appends a success entry for one migrated remote.
func (logger *FileLogger) RecordSuccess(repositoryPath string, remoteName string, oldURL string, newURL string) {
	logger.successCount++
	logger.appendEntry(statusSuccessConstant, repositoryPath, remoteName, oldURL, newURL, "")
}

// RecordFailure appends a failure entry carrying the captured error message.
func (logger *FileLogger) RecordFailure(repositoryPath string, remoteName string, oldURL string, newURL string, errorMessage string) {
	logger.failureCount++
	logger.appendEntry(statusFailedConstant, repositoryPath, remoteName, oldURL, newURL, errorMessage)
}

// Finalize appends the footer block and returns the log file path together with
// the first append failure observed during the run, if any.
func (logger *FileLogger) Finalize() (string, error) {
	footer := fmt.Sprintf(
		footerTemplateConstant,
		logger.clock.Now().Format(entryTimestampLayoutConstant),
		logger.successCount,
		logger.failureCount,
	)
	if footerError := logger.appendContent(footer); footerError != nil {
		return logger.filePath, footerError
	}
	return logger.filePath, logger.appendError
}

func (logger *FileLogger) appendEntry(status string, repositoryPath string, remoteName string, oldURL string, newURL string, errorMessage string) {
	var entry strings.Builder
	entry.WriteString(fmt.Sprintf(entryHeaderTemplateConstant, logger.clock.Now().Format(entryTimestampLayoutConstant), status, repositoryPath, remoteName))
	entry.WriteString(fmt.Sprintf(entryOldURLTemplateConstant, oldURL))
	entry.WriteString(fmt.Sprintf(entryNewURLTemplateConstant, newURL))
	if len(errorMessage) > 0 {
		entry.WriteString(fmt.Sprintf(entryErrorTemplateConstant, errorMessage))
	}

	if appendError := logger.appendContent(entry.String()); appendError != nil && logger.appendError == nil {
		logger.appendError = appendError
	}
}

func (logger *FileLogger) appendContent(content string) error {
	if appendError := logger.fileSystem.AppendFile(logger.filePath, []byte(content), logFilePermissionsConstant); appendError != nil {
		return fmt.Errorf(logFileAppendErrorTemplate, logger.filePath, appendError)
	}
	return nil
}
