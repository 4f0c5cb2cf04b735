package scan

import "strings"

// CommandConfiguration captures persistent settings for the scan command.
type CommandConfiguration struct {
	MaxDepth int      `mapstructure:"max_depth"`
	Excludes []string `mapstructure:"excludes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the scan command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MaxDepth: defaultMaximumDepthConstant,
		Excludes: nil,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	if sanitized.MaxDepth <= 0 {
		sanitized.MaxDepth = defaultMaximumDepthConstant
	}
	sanitized.Excludes = sanitizeExcludes(configuration.Excludes)

	return sanitized
}

func sanitizeExcludes(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
