package migrate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ownershift/internal/gitconfig"
	"github.com/temirov/ownershift/internal/scan"
	"github.com/temirov/ownershift/internal/shared"
)

const (
	configFilePermissionsConstant            = 0o644
	migrationStartedMessageConstant          = "remote migration started"
	migrationCompletedMessageConstant        = "remote migration completed"
	logFieldRepositoryCountConstant          = "repository_count"
	logFieldCompletedRepositoriesConstant    = "completed_repositories"
	logFieldCancelledConstant                = "cancelled"
	inaccessiblePathIssueTemplateConstant    = "repository path not accessible: %s (%s)"
	emptyProposedURLIssueTemplateConstant    = "empty replacement URL for remote %q in %s"
	configWriteErrorTemplateConstant         = "unable to write repository configuration %s: %v"
)

// RemoteMigrationOutcome records one rewrite attempt against one remote.
type RemoteMigrationOutcome struct {
	RemoteName   string
	OldURL       string
	NewURL       string
	Success      bool
	ErrorMessage string
}

// RepositoryMigrationResult collects the per-remote outcomes for one repository.
type RepositoryMigrationResult struct {
	RepositoryPath string
	RemoteOutcomes []RemoteMigrationOutcome
}

// MigrateResult aggregates every repository processed by a migration batch.
type MigrateResult struct {
	RepositoryResults []RepositoryMigrationResult
	Cancelled         bool
}

// MigrationProgress is emitted after each repository completes.
type MigrationProgress struct {
	TotalRepositories     int
	CompletedRepositories int
	CurrentRepositoryPath string
	RepositoryResults     []RepositoryMigrationResult
}

// DryRunValidation lists the issues a validation-only pass detected.
type DryRunValidation struct {
	Valid  bool
	Issues []string
}

// AuditLogger receives one entry per migration attempt. Implementations append
// strictly in completion order; the executor is the only writer.
type AuditLogger interface {
	RecordSuccess(repositoryPath string, remoteName string, oldURL string, newURL string)
	RecordFailure(repositoryPath string, remoteName string, oldURL string, newURL string, errorMessage string)
}

// ServiceDependencies captures the collaborators required by the executor.
type ServiceDependencies struct {
	Logger       *zap.Logger
	FileSystem   shared.FileSystem
	AuditLogger  AuditLogger
	ProgressSink func(MigrationProgress)
	Cancellation shared.CancellationSignal
}

// Service applies accepted rewrites to repository configurations.
type Service struct {
	logger       *zap.Logger
	fileSystem   shared.FileSystem
	auditLogger  AuditLogger
	progressSink func(MigrationProgress)
	cancellation shared.CancellationSignal
}

// NewService constructs a migration Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = shared.OSFileSystem{}
	}

	return &Service{
		logger:       logger,
		fileSystem:   fileSystem,
		auditLogger:  dependencies.AuditLogger,
		progressSink: dependencies.ProgressSink,
		cancellation: dependencies.Cancellation,
	}
}

// Execute rewrites every matched remote of every repository in order. Failures
// are captured per remote and never abort the batch. Cancellation is checked
// before each repository; a repository whose remotes have begun processing runs
// to completion.
func (service *Service) Execute(executionContext context.Context, matchedRepositories []scan.MatchedRepository) MigrateResult {
	service.logger.Debug(migrationStartedMessageConstant, zap.Int(logFieldRepositoryCountConstant, len(matchedRepositories)))

	var result MigrateResult

	for _, matchedRepository := range matchedRepositories {
		if shared.SignalCancelled(service.cancellation) || executionContext.Err() != nil {
			result.Cancelled = true
			break
		}

		repositoryResult := service.migrateRepository(matchedRepository)
		result.RepositoryResults = append(result.RepositoryResults, repositoryResult)

		if service.progressSink != nil {
			service.progressSink(MigrationProgress{
				TotalRepositories:     len(matchedRepositories),
				CompletedRepositories: len(result.RepositoryResults),
				CurrentRepositoryPath: matchedRepository.Path,
				RepositoryResults:     result.RepositoryResults,
			})
		}
	}

	service.logger.Debug(
		migrationCompletedMessageConstant,
		zap.Int(logFieldCompletedRepositoriesConstant, len(result.RepositoryResults)),
		zap.Bool(logFieldCancelledConstant, result.Cancelled),
	)

	return result
}

func (service *Service) migrateRepository(matchedRepository scan.MatchedRepository) RepositoryMigrationResult {
	repositoryResult := RepositoryMigrationResult{RepositoryPath: matchedRepository.Path}

	for _, matchedRemote := range matchedRepository.MatchedRemotes {
		outcome := service.migrateRemote(matchedRepository.Path, matchedRemote)
		repositoryResult.RemoteOutcomes = append(repositoryResult.RemoteOutcomes, outcome)

		if service.auditLogger == nil {
			continue
		}
		if outcome.Success {
			service.auditLogger.RecordSuccess(matchedRepository.Path, outcome.RemoteName, outcome.OldURL, outcome.NewURL)
		} else {
			service.auditLogger.RecordFailure(matchedRepository.Path, outcome.RemoteName, outcome.OldURL, outcome.NewURL, outcome.ErrorMessage)
		}
	}

	return repositoryResult
}

func (service *Service) migrateRemote(repositoryPath string, matchedRemote scan.MatchedRemote) RemoteMigrationOutcome {
	outcome := RemoteMigrationOutcome{
		RemoteName: matchedRemote.Remote.Name,
		OldURL:     matchedRemote.Remote.URL,
		NewURL:     matchedRemote.NewURL,
	}

	configContent, readError := gitconfig.ReadRepositoryConfig(service.fileSystem, repositoryPath)
	if readError != nil {
		outcome.ErrorMessage = readError.Error()
		return outcome
	}

	rewrittenContent := gitconfig.RewriteRemoteURL(configContent, matchedRemote.Remote.Name, matchedRemote.NewURL)

	configFilePath := gitconfig.RepositoryConfigPath(repositoryPath)
	if writeError := service.fileSystem.WriteFile(configFilePath, []byte(rewrittenContent), configFilePermissionsConstant); writeError != nil {
		outcome.ErrorMessage = fmt.Sprintf(configWriteErrorTemplateConstant, configFilePath, writeError)
		return outcome
	}

	outcome.Success = true
	return outcome
}

// ValidateDryRun checks that each target repository path is currently accessible
// and each proposed URL is non-empty, without writing anything.
func (service *Service) ValidateDryRun(matchedRepositories []scan.MatchedRepository) DryRunValidation {
	var issues []string

	for _, matchedRepository := range matchedRepositories {
		if _, statError := service.fileSystem.Stat(matchedRepository.Path); statError != nil {
			issues = append(issues, fmt.Sprintf(inaccessiblePathIssueTemplateConstant, matchedRepository.Path, statError))
		}

		for _, matchedRemote := range matchedRepository.MatchedRemotes {
			if len(strings.TrimSpace(matchedRemote.NewURL)) == 0 {
				issues = append(issues, fmt.Sprintf(emptyProposedURLIssueTemplateConstant, matchedRemote.Remote.Name, matchedRepository.Path))
			}
		}
	}

	return DryRunValidation{Valid: len(issues) == 0, Issues: issues}
}
