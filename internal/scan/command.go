package scan

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ownershift/internal/remoteurl"
	"github.com/temirov/ownershift/internal/shared"
	pathutils "github.com/temirov/ownershift/internal/utils/path"
)

const (
	commandUseConstant               = "scan [root]"
	commandShortDescriptionConstant  = "Discover repositories whose remotes match the requested rewrite"
	commandLongDescriptionConstant   = "scan walks the root directory, identifies git repositories, and previews which remote URLs the configured owner rename or custom pattern would rewrite."
	flagOldOwnerNameConstant         = "old-owner"
	flagOldOwnerUsageConstant        = "Current owner segment to match in remote URLs."
	flagNewOwnerNameConstant         = "new-owner"
	flagNewOwnerUsageConstant        = "Replacement owner segment for matched remote URLs."
	flagFromPatternNameConstant      = "from"
	flagFromPatternUsageConstant     = "Custom regular expression matched against remote URLs (mutually exclusive with owner flags)."
	flagToTemplateNameConstant       = "to"
	flagToTemplateUsageConstant      = "Replacement template for the custom pattern; $N references capture groups."
	flagMaxDepthNameConstant         = "max-depth"
	flagMaxDepthUsageConstant        = "Maximum directory depth explored below the root."
	flagExcludeNameConstant          = "exclude"
	flagExcludeUsageConstant         = "Glob excluding directory names from traversal (repeatable)."
	defaultRootArgumentConstant      = "."
	matchMessageConstant             = "SCAN-MATCH: %s\n"
	matchedRemoteMessageConstant     = "  %s: %s → %s\n"
	scanErrorMessageConstant         = "SCAN-ERROR: %s (%s)\n"
	summaryMessageConstant           = "SCAN-SUMMARY: visited=%d skipped=%d repositories=%d matched=%d errors=%d\n"
	cancelledMessageConstant         = "SCAN-CANCELLED: partial results reported\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the scan cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
	Cancellation          shared.CancellationSignal
}

// Build constructs the cobra command for repository scans.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(flagOldOwnerNameConstant, "", flagOldOwnerUsageConstant)
	command.Flags().String(flagNewOwnerNameConstant, "", flagNewOwnerUsageConstant)
	command.Flags().String(flagFromPatternNameConstant, "", flagFromPatternUsageConstant)
	command.Flags().String(flagToTemplateNameConstant, "", flagToTemplateUsageConstant)
	command.Flags().Int(flagMaxDepthNameConstant, 0, flagMaxDepthUsageConstant)
	command.Flags().StringArray(flagExcludeNameConstant, nil, flagExcludeUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.resolveOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	service := NewService(Dependencies{
		Logger:       builder.resolveLogger(),
		FileSystem:   builder.resolveFileSystem(),
		Clock:        builder.Clock,
		Cancellation: builder.Cancellation,
	})

	result, scanError := service.Execute(command.Context(), options)
	if scanError != nil {
		return scanError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	ReportScanResult(reporter, result)

	return nil
}

// ReportScanResult prints matched repositories, traversal errors, and the scan
// summary through the provided reporter.
func ReportScanResult(reporter shared.Reporter, result ScanResult) {
	for _, matchedRepository := range result.MatchedRepositories {
		reporter.Printf(matchMessageConstant, matchedRepository.Path)
		for _, matchedRemote := range matchedRepository.MatchedRemotes {
			reporter.Printf(matchedRemoteMessageConstant, matchedRemote.Remote.Name, matchedRemote.Remote.URL, matchedRemote.NewURL)
		}
	}

	for _, scanFailure := range result.Errors {
		reporter.Printf(scanErrorMessageConstant, scanFailure.Path, scanFailure.Message)
	}

	if result.Cancelled {
		reporter.Printf(cancelledMessageConstant)
	}

	reporter.Printf(
		summaryMessageConstant,
		result.DirectoriesVisited,
		result.DirectoriesSkipped,
		result.RepositoriesFound,
		len(result.MatchedRepositories),
		len(result.Errors),
	)
}

// resolveOptions merges persisted configuration with command-line flags.
func (builder *CommandBuilder) resolveOptions(command *cobra.Command, arguments []string) (Options, error) {
	configuration := builder.resolveConfiguration()

	oldOwner, _ := command.Flags().GetString(flagOldOwnerNameConstant)
	newOwner, _ := command.Flags().GetString(flagNewOwnerNameConstant)
	fromPattern, _ := command.Flags().GetString(flagFromPatternNameConstant)
	toTemplate, _ := command.Flags().GetString(flagToTemplateNameConstant)

	strategy, strategyError := remoteurl.SelectStrategy(oldOwner, newOwner, fromPattern, toTemplate)
	if strategyError != nil {
		return Options{}, strategyError
	}

	maximumDepth := configuration.MaxDepth
	if command.Flags().Changed(flagMaxDepthNameConstant) {
		maximumDepth, _ = command.Flags().GetInt(flagMaxDepthNameConstant)
	}

	excludeGlobs := configuration.Excludes
	if command.Flags().Changed(flagExcludeNameConstant) {
		excludeGlobs, _ = command.Flags().GetStringArray(flagExcludeNameConstant)
	}

	rootArgument := defaultRootArgumentConstant
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}

	rootPath := pathutils.NewHomeExpander().Expand(rootArgument)
	if absolutePath, absError := builder.resolveFileSystem().Abs(rootPath); absError == nil {
		rootPath = absolutePath
	}

	return Options{
		RootPath:     rootPath,
		MaximumDepth: maximumDepth,
		ExcludeGlobs: excludeGlobs,
		Strategy:     strategy,
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
