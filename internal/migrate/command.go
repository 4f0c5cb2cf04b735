package migrate

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ownershift/internal/auditlog"
	"github.com/temirov/ownershift/internal/remoteurl"
	"github.com/temirov/ownershift/internal/scan"
	"github.com/temirov/ownershift/internal/shared"
	"github.com/temirov/ownershift/internal/utils/flags"
	pathutils "github.com/temirov/ownershift/internal/utils/path"
)

const (
	commandUseConstant                = "migrate [root]"
	commandShortDescriptionConstant   = "Rewrite matching remote URLs in discovered repositories"
	commandLongDescriptionConstant    = "migrate scans the root directory for repositories whose remotes match the configured rewrite, then applies the rewrites in place. Dry-run is the default; pass --dry-run=no to persist changes and record them in the audit log."
	flagOldOwnerNameConstant          = "old-owner"
	flagOldOwnerUsageConstant         = "Current owner segment to match in remote URLs."
	flagNewOwnerNameConstant          = "new-owner"
	flagNewOwnerUsageConstant         = "Replacement owner segment for matched remote URLs."
	flagFromPatternNameConstant       = "from"
	flagFromPatternUsageConstant      = "Custom regular expression matched against remote URLs (mutually exclusive with owner flags)."
	flagToTemplateNameConstant        = "to"
	flagToTemplateUsageConstant       = "Replacement template for the custom pattern; $N references capture groups."
	flagMaxDepthNameConstant          = "max-depth"
	flagMaxDepthUsageConstant         = "Maximum directory depth explored below the root."
	flagExcludeNameConstant           = "exclude"
	flagExcludeUsageConstant          = "Glob excluding directory names from traversal (repeatable)."
	flagDryRunNameConstant            = "dry-run"
	flagDryRunUsageConstant           = "Preview the migration without writing anything."
	flagLogDirectoryNameConstant      = "log-dir"
	flagLogDirectoryUsageConstant     = "Directory receiving the migration audit log."
	defaultRootArgumentConstant       = "."
	noMatchesMessageConstant          = "MIGRATE-SKIP: no matching repositories under %s\n"
	planMessageConstant               = "PLAN-MIGRATE: %s %s %s → %s\n"
	dryRunIssueMessageConstant        = "DRY-RUN-ISSUE: %s\n"
	dryRunValidMessageConstant        = "DRY-RUN-OK: %d repositories ready to migrate\n"
	repositoryDoneMessageConstant     = "MIGRATE-REPO: %s (%d/%d)\n"
	remoteSuccessMessageConstant      = "MIGRATE-DONE: %s %s now %s\n"
	remoteFailureMessageConstant      = "MIGRATE-FAILED: %s %s (%s)\n"
	cancelledMessageConstant          = "MIGRATE-CANCELLED: remaining repositories untouched\n"
	auditLogLocationMessageConstant   = "MIGRATE-LOG: %s\n"
	auditLogFailureMessageConstant    = "MIGRATE-LOG-ERROR: %s\n"
	defaultLogDirectorySegmentsSuffix = ".ownershift/logs"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the migrate cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
	Cancellation          shared.CancellationSignal
}

type commandOptions struct {
	scanOptions   scan.Options
	dryRun        bool
	logDirectory  string
	oldIdentifier string
	newIdentifier string
}

// Build constructs the cobra command for remote migrations.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var dryRunValue bool

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, dryRunValue)
		},
	}

	command.Flags().String(flagOldOwnerNameConstant, "", flagOldOwnerUsageConstant)
	command.Flags().String(flagNewOwnerNameConstant, "", flagNewOwnerUsageConstant)
	command.Flags().String(flagFromPatternNameConstant, "", flagFromPatternUsageConstant)
	command.Flags().String(flagToTemplateNameConstant, "", flagToTemplateUsageConstant)
	command.Flags().Int(flagMaxDepthNameConstant, 0, flagMaxDepthUsageConstant)
	command.Flags().StringArray(flagExcludeNameConstant, nil, flagExcludeUsageConstant)
	command.Flags().String(flagLogDirectoryNameConstant, "", flagLogDirectoryUsageConstant)
	flags.AddToggleFlag(command.Flags(), &dryRunValue, flagDryRunNameConstant, "", true, flagDryRunUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, dryRunFlagValue bool) error {
	options, optionsError := builder.resolveOptions(command, arguments, dryRunFlagValue)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()
	reporter := shared.NewWriterReporter(command.OutOrStdout())

	scanService := scan.NewService(scan.Dependencies{
		Logger:       logger,
		FileSystem:   fileSystem,
		Clock:        builder.Clock,
		Cancellation: builder.Cancellation,
	})

	scanResult, scanError := scanService.Execute(command.Context(), options.scanOptions)
	if scanError != nil {
		return scanError
	}

	if len(scanResult.MatchedRepositories) == 0 {
		reporter.Printf(noMatchesMessageConstant, options.scanOptions.RootPath)
		return nil
	}

	if options.dryRun {
		builder.reportDryRun(reporter, fileSystem, logger, scanResult.MatchedRepositories)
		return nil
	}

	return builder.executeMigration(command, reporter, fileSystem, logger, options, scanResult.MatchedRepositories)
}

func (builder *CommandBuilder) reportDryRun(reporter shared.Reporter, fileSystem shared.FileSystem, logger *zap.Logger, matchedRepositories []scan.MatchedRepository) {
	for _, matchedRepository := range matchedRepositories {
		for _, matchedRemote := range matchedRepository.MatchedRemotes {
			reporter.Printf(planMessageConstant, matchedRepository.Path, matchedRemote.Remote.Name, matchedRemote.Remote.URL, matchedRemote.NewURL)
		}
	}

	validationService := NewService(ServiceDependencies{Logger: logger, FileSystem: fileSystem})
	validation := validationService.ValidateDryRun(matchedRepositories)
	for _, issue := range validation.Issues {
		reporter.Printf(dryRunIssueMessageConstant, issue)
	}
	if validation.Valid {
		reporter.Printf(dryRunValidMessageConstant, len(matchedRepositories))
	}
}

func (builder *CommandBuilder) executeMigration(command *cobra.Command, reporter shared.Reporter, fileSystem shared.FileSystem, logger *zap.Logger, options commandOptions, matchedRepositories []scan.MatchedRepository) error {
	auditLogger, auditError := auditlog.NewFileLogger(
		auditlog.Dependencies{FileSystem: fileSystem, Clock: builder.Clock},
		auditlog.Options{
			LogDirectory:  options.logDirectory,
			OldIdentifier: options.oldIdentifier,
			NewIdentifier: options.newIdentifier,
			ScanRoot:      options.scanOptions.RootPath,
		},
	)
	if auditError != nil {
		return auditError
	}

	migrationService := NewService(ServiceDependencies{
		Logger:      logger,
		FileSystem:  fileSystem,
		AuditLogger: auditLogger,
		ProgressSink: func(progress MigrationProgress) {
			reporter.Printf(repositoryDoneMessageConstant, progress.CurrentRepositoryPath, progress.CompletedRepositories, progress.TotalRepositories)
		},
		Cancellation: builder.Cancellation,
	})

	migrateResult := migrationService.Execute(command.Context(), matchedRepositories)

	for _, repositoryResult := range migrateResult.RepositoryResults {
		for _, remoteOutcome := range repositoryResult.RemoteOutcomes {
			if remoteOutcome.Success {
				reporter.Printf(remoteSuccessMessageConstant, repositoryResult.RepositoryPath, remoteOutcome.RemoteName, remoteOutcome.NewURL)
			} else {
				reporter.Printf(remoteFailureMessageConstant, repositoryResult.RepositoryPath, remoteOutcome.RemoteName, remoteOutcome.ErrorMessage)
			}
		}
	}

	if migrateResult.Cancelled {
		reporter.Printf(cancelledMessageConstant)
	}

	logFilePath, finalizeError := auditLogger.Finalize()
	if finalizeError != nil {
		reporter.Printf(auditLogFailureMessageConstant, finalizeError)
	}
	reporter.Printf(auditLogLocationMessageConstant, logFilePath)

	return nil
}

// resolveOptions merges persisted configuration with command-line flags.
func (builder *CommandBuilder) resolveOptions(command *cobra.Command, arguments []string, dryRunFlagValue bool) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	oldOwner, _ := command.Flags().GetString(flagOldOwnerNameConstant)
	newOwner, _ := command.Flags().GetString(flagNewOwnerNameConstant)
	fromPattern, _ := command.Flags().GetString(flagFromPatternNameConstant)
	toTemplate, _ := command.Flags().GetString(flagToTemplateNameConstant)

	strategy, strategyError := remoteurl.SelectStrategy(oldOwner, newOwner, fromPattern, toTemplate)
	if strategyError != nil {
		return commandOptions{}, strategyError
	}

	oldIdentifier := oldOwner
	newIdentifier := newOwner
	if len(fromPattern) > 0 {
		oldIdentifier = fromPattern
		newIdentifier = toTemplate
	}

	maximumDepth := configuration.MaxDepth
	if command.Flags().Changed(flagMaxDepthNameConstant) {
		maximumDepth, _ = command.Flags().GetInt(flagMaxDepthNameConstant)
	}

	excludeGlobs := configuration.Excludes
	if command.Flags().Changed(flagExcludeNameConstant) {
		excludeGlobs, _ = command.Flags().GetStringArray(flagExcludeNameConstant)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRun = dryRunFlagValue
	}

	homeExpander := pathutils.NewHomeExpander()

	logDirectory := configuration.LogDirectory
	if command.Flags().Changed(flagLogDirectoryNameConstant) {
		logDirectory, _ = command.Flags().GetString(flagLogDirectoryNameConstant)
	}
	if len(logDirectory) == 0 {
		logDirectory = pathutils.ApplicationDataDirectory(defaultLogDirectorySegmentsSuffix)
	} else {
		logDirectory = homeExpander.Expand(logDirectory)
	}

	rootArgument := defaultRootArgumentConstant
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}

	rootPath := homeExpander.Expand(rootArgument)
	if absolutePath, absError := builder.resolveFileSystem().Abs(rootPath); absError == nil {
		rootPath = absolutePath
	}

	return commandOptions{
		scanOptions: scan.Options{
			RootPath:     rootPath,
			MaximumDepth: maximumDepth,
			ExcludeGlobs: excludeGlobs,
			Strategy:     strategy,
		},
		dryRun:        dryRun,
		logDirectory:  logDirectory,
		oldIdentifier: oldIdentifier,
		newIdentifier: newIdentifier,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveFileSystem() shared.FileSystem {
	if builder.FileSystem == nil {
		return shared.OSFileSystem{}
	}
	return builder.FileSystem
}
