package scan

import (
	"github.com/temirov/ownershift/internal/gitconfig"
)

// Repository is a read-only snapshot of a discovered repository root and the
// remotes recorded in its configuration at discovery time.
type Repository struct {
	Path    string
	Remotes []gitconfig.Remote
}

// MatchedRemote pairs a remote with its proposed replacement URL. The proposal
// is not applied until a migration runs.
type MatchedRemote struct {
	Remote gitconfig.Remote
	NewURL string
}

// MatchedRepository is a repository with at least one matched remote.
type MatchedRepository struct {
	Repository
	MatchedRemotes []MatchedRemote
}

// ScanError records a per-path traversal failure that did not abort the scan.
type ScanError struct {
	Path    string
	Message string
}

// ScanProgress carries running totals for progress sinks.
type ScanProgress struct {
	DirectoriesVisited int
	DirectoriesSkipped int
	RepositoriesFound  int
	MatchesFound       int
	CurrentPath        string
}

// ScanResult aggregates the outcome of a scan. Counts grow monotonically while
// the walk runs; a cancelled scan still returns a well-formed partial result.
type ScanResult struct {
	DirectoriesVisited  int
	DirectoriesSkipped  int
	RepositoriesFound   int
	MatchedRepositories []MatchedRepository
	Errors              []ScanError
	Cancelled           bool
}
