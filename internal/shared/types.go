package shared

import (
	"io/fs"
	"sync/atomic"
	"time"
)

const (
	// GitMetadataDirectoryNameConstant names the directory that marks a repository root.
	GitMetadataDirectoryNameConstant = ".git"
	// GitConfigFileNameConstant names the configuration file stored inside the metadata directory.
	GitConfigFileNameConstant = "config"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// CancellationSignal reports whether a long-running operation should stop issuing new work.
type CancellationSignal interface {
	IsCancelled() bool
}

// ManualCancellationSignal implements CancellationSignal with an explicit trigger.
type ManualCancellationSignal struct {
	cancelled atomic.Bool
}

// NewManualCancellationSignal constructs an untriggered ManualCancellationSignal.
func NewManualCancellationSignal() *ManualCancellationSignal {
	return &ManualCancellationSignal{}
}

// Cancel marks the signal as triggered.
func (signal *ManualCancellationSignal) Cancel() {
	signal.cancelled.Store(true)
}

// IsCancelled reports whether Cancel has been invoked.
func (signal *ManualCancellationSignal) IsCancelled() bool {
	return signal.cancelled.Load()
}

// SignalCancelled reports whether the provided signal exists and has been triggered.
func SignalCancelled(signal CancellationSignal) bool {
	if signal == nil {
		return false
	}
	return signal.IsCancelled()
}

// FileSystem exposes the filesystem operations required by the scanner and executor.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	AppendFile(path string, data []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
	Abs(path string) (string, error)
}
