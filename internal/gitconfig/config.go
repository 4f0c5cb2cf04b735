package gitconfig

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/temirov/ownershift/internal/shared"
)

const (
	remoteSectionHeaderPatternConstant = `^\s*\[remote\s+"([^"]+)"\]\s*$`
	urlLinePatternConstant             = `^(\s*)url\s*=\s*(.*?)\s*$`
	sectionOpenBracketConstant         = "["
	lineSeparatorConstant              = "\n"
	urlLineTemplateConstant            = "%surl = %s"
	configReadErrorTemplateConstant    = "unable to read repository configuration %s: %w"
)

var (
	remoteSectionHeaderExpression = regexp.MustCompile(remoteSectionHeaderPatternConstant)
	urlLineExpression             = regexp.MustCompile(urlLinePatternConstant)
)

// Remote pairs a remote name with its configured URL. Remotes are immutable
// snapshots of the configuration text they were parsed from.
type Remote struct {
	Name string
	URL  string
}

// ParseRemotes extracts the ordered remote list from raw configuration text.
// Only the first url line inside each remote section is captured; malformed or
// unrecognized lines are ignored, so malformed input yields fewer remotes rather
// than an error.
func ParseRemotes(configContent string) []Remote {
	var remotes []Remote
	var currentSectionName string
	inRemoteSection := false
	urlCaptured := false

	for _, configLine := range strings.Split(configContent, lineSeparatorConstant) {
		if sectionMatch := remoteSectionHeaderExpression.FindStringSubmatch(configLine); sectionMatch != nil {
			currentSectionName = sectionMatch[1]
			inRemoteSection = true
			urlCaptured = false
			continue
		}

		trimmedLine := strings.TrimSpace(configLine)
		if strings.HasPrefix(trimmedLine, sectionOpenBracketConstant) {
			inRemoteSection = false
			continue
		}

		if !inRemoteSection || urlCaptured {
			continue
		}

		if urlMatch := urlLineExpression.FindStringSubmatch(configLine); urlMatch != nil {
			remotes = append(remotes, Remote{Name: currentSectionName, URL: urlMatch[2]})
			urlCaptured = true
		}
	}

	return remotes
}

// RewriteRemoteURL replaces the value of the first url line inside the section
// named remoteName, preserving that line's leading whitespace and every other
// line byte for byte. When the section or its url line is absent the input is
// returned unchanged.
func RewriteRemoteURL(configContent string, remoteName string, newURL string) string {
	configLines := strings.Split(configContent, lineSeparatorConstant)

	inTargetSection := false
	rewriteCompleted := false

	for lineIndex, configLine := range configLines {
		if rewriteCompleted {
			break
		}

		if sectionMatch := remoteSectionHeaderExpression.FindStringSubmatch(configLine); sectionMatch != nil {
			inTargetSection = sectionMatch[1] == remoteName
			continue
		}

		trimmedLine := strings.TrimSpace(configLine)
		if strings.HasPrefix(trimmedLine, sectionOpenBracketConstant) {
			inTargetSection = false
			continue
		}

		if !inTargetSection {
			continue
		}

		if urlMatch := urlLineExpression.FindStringSubmatch(configLine); urlMatch != nil {
			configLines[lineIndex] = fmt.Sprintf(urlLineTemplateConstant, urlMatch[1], newURL)
			rewriteCompleted = true
		}
	}

	if !rewriteCompleted {
		return configContent
	}

	return strings.Join(configLines, lineSeparatorConstant)
}

// RepositoryConfigPath resolves the configuration file path for a repository root.
func RepositoryConfigPath(repositoryPath string) string {
	return filepath.Join(repositoryPath, shared.GitMetadataDirectoryNameConstant, shared.GitConfigFileNameConstant)
}

// ReadRepositoryConfig loads the raw configuration text for a repository root.
// An unreadable configuration file is the only hard error this package surfaces.
func ReadRepositoryConfig(fileSystem shared.FileSystem, repositoryPath string) (string, error) {
	configFilePath := RepositoryConfigPath(repositoryPath)
	configContent, readError := fileSystem.ReadFile(configFilePath)
	if readError != nil {
		return "", fmt.Errorf(configReadErrorTemplateConstant, configFilePath, readError)
	}
	return string(configContent), nil
}

// ReadRepositoryRemotes parses the remotes recorded for a repository root.
func ReadRepositoryRemotes(fileSystem shared.FileSystem, repositoryPath string) ([]Remote, error) {
	configContent, readError := ReadRepositoryConfig(fileSystem, repositoryPath)
	if readError != nil {
		return nil, readError
	}
	return ParseRemotes(configContent), nil
}
