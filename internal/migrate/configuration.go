package migrate

import "strings"

const (
	defaultMaxDepthConfigurationConstant = 20
)

// CommandConfiguration captures persistent settings for the migrate command.
type CommandConfiguration struct {
	MaxDepth     int      `mapstructure:"max_depth"`
	Excludes     []string `mapstructure:"excludes"`
	DryRun       bool     `mapstructure:"dry_run"`
	LogDirectory string   `mapstructure:"log_directory"`
}

// DefaultCommandConfiguration returns baseline configuration values for the
// migrate command. Dry-run is the default posture; live runs are opt-in.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MaxDepth:     defaultMaxDepthConfigurationConstant,
		Excludes:     nil,
		DryRun:       true,
		LogDirectory: "",
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	if sanitized.MaxDepth <= 0 {
		sanitized.MaxDepth = defaultMaxDepthConfigurationConstant
	}
	sanitized.LogDirectory = strings.TrimSpace(configuration.LogDirectory)

	excludes := make([]string, 0, len(configuration.Excludes))
	for index := range configuration.Excludes {
		trimmed := strings.TrimSpace(configuration.Excludes[index])
		if len(trimmed) == 0 {
			continue
		}
		excludes = append(excludes, trimmed)
	}
	sanitized.Excludes = excludes

	return sanitized
}
