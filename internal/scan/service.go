package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ownershift/internal/gitconfig"
	"github.com/temirov/ownershift/internal/ignore"
	"github.com/temirov/ownershift/internal/remoteurl"
	"github.com/temirov/ownershift/internal/shared"
)

const (
	defaultMaximumDepthConstant           = 20
	progressReportIntervalConstant        = 100 * time.Millisecond
	dotDirectoryPrefixConstant            = "."
	rootPathFieldNameConstant             = "root_path"
	strategyFieldNameConstant             = "strategy"
	requiredValueMessageConstant          = "value required"
	invalidInputErrorTemplateConstant     = "%s: %s"
	scanStartedMessageConstant            = "repository scan started"
	scanCompletedMessageConstant          = "repository scan completed"
	logFieldRootPathConstant              = "root_path"
	logFieldDirectoriesVisitedConstant    = "directories_visited"
	logFieldDirectoriesSkippedConstant    = "directories_skipped"
	logFieldRepositoriesFoundConstant     = "repositories_found"
	logFieldMatchedRepositoriesConstant   = "matched_repositories"
	logFieldScanErrorsConstant            = "scan_errors"
	logFieldCancelledConstant             = "cancelled"
)

// InvalidInputError describes scan option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// Options configures a single scan invocation.
type Options struct {
	RootPath     string
	MaximumDepth int
	ExcludeGlobs []string
	Strategy     remoteurl.Strategy
}

// Dependencies captures the collaborators required by the scanner. Nil entries
// other than Strategy fall back to operational defaults.
type Dependencies struct {
	Logger       *zap.Logger
	FileSystem   shared.FileSystem
	Clock        shared.Clock
	ProgressSink func(ScanProgress)
	Cancellation shared.CancellationSignal
}

// Service walks directory trees, identifies repository roots, and matches their
// remotes against the configured strategy.
type Service struct {
	logger       *zap.Logger
	fileSystem   shared.FileSystem
	clock        shared.Clock
	progressSink func(ScanProgress)
	cancellation shared.CancellationSignal
}

// NewService constructs a scan Service with the provided dependencies.
func NewService(dependencies Dependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = shared.OSFileSystem{}
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	return &Service{
		logger:       logger,
		fileSystem:   fileSystem,
		clock:        clock,
		progressSink: dependencies.ProgressSink,
		cancellation: dependencies.Cancellation,
	}
}

type workItem struct {
	path  string
	depth int
}

// Execute performs the scan. Traversal is depth-first with one directory in
// flight at a time; cancellation is checked between work items and never
// interrupts an in-flight filesystem call.
func (service *Service) Execute(executionContext context.Context, options Options) (ScanResult, error) {
	if validationError := validateOptions(options); validationError != nil {
		return ScanResult{}, validationError
	}

	maximumDepth := options.MaximumDepth
	if maximumDepth <= 0 {
		maximumDepth = defaultMaximumDepthConstant
	}

	ignoreMatcher := ignore.NewMatcher(options.ExcludeGlobs)

	service.logger.Debug(scanStartedMessageConstant, zap.String(logFieldRootPathConstant, options.RootPath))

	var result ScanResult
	matchedRemoteCount := 0
	var lastProgressTime time.Time

	workStack := []workItem{{path: options.RootPath, depth: 0}}

	for len(workStack) > 0 {
		if shared.SignalCancelled(service.cancellation) || executionContext.Err() != nil {
			result.Cancelled = true
			break
		}

		currentItem := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if currentItem.depth > maximumDepth {
			continue
		}

		result.DirectoriesVisited++
		lastProgressTime = service.reportProgress(&result, matchedRemoteCount, currentItem.path, lastProgressTime, false)

		metadataPath := filepath.Join(currentItem.path, shared.GitMetadataDirectoryNameConstant)
		if metadataInfo, statError := service.fileSystem.Stat(metadataPath); statError == nil && metadataInfo.IsDir() {
			matchedRemoteCount += service.inspectRepository(&result, currentItem.path, options.Strategy)
			continue
		}

		directoryEntries, listError := service.fileSystem.ReadDir(currentItem.path)
		if listError != nil {
			result.Errors = append(result.Errors, ScanError{Path: currentItem.path, Message: listError.Error()})
			continue
		}

		for entryIndex := len(directoryEntries) - 1; entryIndex >= 0; entryIndex-- {
			directoryEntry := directoryEntries[entryIndex]
			if !directoryEntry.IsDir() {
				continue
			}

			entryName := directoryEntry.Name()
			if strings.HasPrefix(entryName, dotDirectoryPrefixConstant) && entryName != shared.GitMetadataDirectoryNameConstant {
				continue
			}
			if ignoreMatcher.ShouldSkipSegment(entryName) {
				result.DirectoriesSkipped++
				continue
			}

			childPath := filepath.Join(currentItem.path, entryName)
			if ignoreMatcher.ShouldSkipPath(childPath) {
				result.DirectoriesSkipped++
				continue
			}
			if ignoreMatcher.MatchesExclude(entryName) {
				result.DirectoriesSkipped++
				continue
			}

			workStack = append(workStack, workItem{path: childPath, depth: currentItem.depth + 1})
		}
	}

	service.reportProgress(&result, matchedRemoteCount, options.RootPath, lastProgressTime, true)

	service.logger.Debug(
		scanCompletedMessageConstant,
		zap.String(logFieldRootPathConstant, options.RootPath),
		zap.Int(logFieldDirectoriesVisitedConstant, result.DirectoriesVisited),
		zap.Int(logFieldDirectoriesSkippedConstant, result.DirectoriesSkipped),
		zap.Int(logFieldRepositoriesFoundConstant, result.RepositoriesFound),
		zap.Int(logFieldMatchedRepositoriesConstant, len(result.MatchedRepositories)),
		zap.Int(logFieldScanErrorsConstant, len(result.Errors)),
		zap.Bool(logFieldCancelledConstant, result.Cancelled),
	)

	return result, nil
}

// inspectRepository reads the repository's remotes, applies the strategy, and
// records the outcome. It returns the number of newly matched remotes.
func (service *Service) inspectRepository(result *ScanResult, repositoryPath string, strategy remoteurl.Strategy) int {
	result.RepositoriesFound++

	remotes, readError := gitconfig.ReadRepositoryRemotes(service.fileSystem, repositoryPath)
	if readError != nil {
		result.Errors = append(result.Errors, ScanError{Path: repositoryPath, Message: readError.Error()})
		return 0
	}

	var matchedRemotes []MatchedRemote
	for _, remote := range remotes {
		proposedURL, matched := strategy.Propose(remote.URL)
		if !matched {
			continue
		}
		matchedRemotes = append(matchedRemotes, MatchedRemote{Remote: remote, NewURL: proposedURL})
	}

	if len(matchedRemotes) == 0 {
		return 0
	}

	result.MatchedRepositories = append(result.MatchedRepositories, MatchedRepository{
		Repository:     Repository{Path: repositoryPath, Remotes: remotes},
		MatchedRemotes: matchedRemotes,
	})

	return len(matchedRemotes)
}

// reportProgress emits a progress update when the throttle interval has elapsed,
// or unconditionally for the terminal report. It returns the emission time used
// for subsequent throttling.
func (service *Service) reportProgress(result *ScanResult, matchedRemoteCount int, currentPath string, lastProgressTime time.Time, final bool) time.Time {
	if service.progressSink == nil {
		return lastProgressTime
	}

	currentTime := service.clock.Now()
	if !final && !lastProgressTime.IsZero() && currentTime.Sub(lastProgressTime) < progressReportIntervalConstant {
		return lastProgressTime
	}

	service.progressSink(ScanProgress{
		DirectoriesVisited: result.DirectoriesVisited,
		DirectoriesSkipped: result.DirectoriesSkipped,
		RepositoriesFound:  result.RepositoriesFound,
		MatchesFound:       matchedRemoteCount,
		CurrentPath:        currentPath,
	})

	return currentTime
}

func validateOptions(options Options) error {
	if len(strings.TrimSpace(options.RootPath)) == 0 {
		return InvalidInputError{FieldName: rootPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if options.Strategy == nil {
		return InvalidInputError{FieldName: strategyFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
