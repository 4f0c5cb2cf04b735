package remoteurl

import (
	"fmt"
	"strings"
)

const (
	gitUserPrefixConstant               = "git@"
	httpsProtocolPrefixConstant         = "https://"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "unrecognized remote url"
	requiredValueMessageConstant        = "value required"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
)

// RemoteProtocol enumerates recognized git remote protocols.
type RemoteProtocol string

// Recognized remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL. HasGitSuffix records whether
// the textual form carried a trailing .git so formatting round-trips exactly.
type RemoteURL struct {
	Protocol     RemoteProtocol
	Host         string
	Owner        string
	Repository   string
	HasGitSuffix bool
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Exactly two shapes are recognized: git@<host>:<owner>/<repo>[.git] and
// https://<host>/<owner>/<repo>[.git].
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, gitUserPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func parseSSHRemote(hostAndPath string) (RemoteURL, error) {
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: hostAndPath, Message: invalidRemoteURLMessageConstant}
	}

	host := hostAndPath[:pathSplitIndex]
	owner, repository, hasGitSuffix, parseError := splitOwnerAndRepository(hostAndPath[pathSplitIndex+1:])
	if parseError != nil {
		return RemoteURL{}, parseError
	}

	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository, HasGitSuffix: hasGitSuffix}, nil
}

func parseHTTPSRemote(hostAndPath string) (RemoteURL, error) {
	hostSplitIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if hostSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: hostAndPath, Message: invalidRemoteURLMessageConstant}
	}

	host := hostAndPath[:hostSplitIndex]
	owner, repository, hasGitSuffix, parseError := splitOwnerAndRepository(hostAndPath[hostSplitIndex+1:])
	if parseError != nil {
		return RemoteURL{}, parseError
	}

	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository, HasGitSuffix: hasGitSuffix}, nil
}

func splitOwnerAndRepository(path string) (string, string, bool, error) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(segments) != 2 {
		return "", "", false, RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}

	owner := segments[0]
	repository := segments[1]
	hasGitSuffix := strings.HasSuffix(repository, gitSuffixConstant)
	if hasGitSuffix {
		repository = strings.TrimSuffix(repository, gitSuffixConstant)
	}

	if len(owner) == 0 || len(repository) == 0 {
		return "", "", false, RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}

	return owner, repository, hasGitSuffix, nil
}

// FormatRemoteURL creates a textual remote URL from a structured representation,
// reattaching the .git suffix only when the parsed form carried one.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return "", RemoteURLParseError{Input: remote.Owner, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return "", RemoteURLParseError{Input: remote.Repository, Message: requiredValueMessageConstant}
	}

	repositorySegment := remote.Repository
	if remote.HasGitSuffix {
		repositorySegment += gitSuffixConstant
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf("%s%s%s%s%s%s", gitUserPrefixConstant, remote.Host, sshPathDelimiterConstant, remote.Owner, pathSeparatorConstant, repositorySegment), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf("%s%s%s%s%s%s", httpsProtocolPrefixConstant, remote.Host, pathSeparatorConstant, remote.Owner, pathSeparatorConstant, repositorySegment), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}

// IsRecognized reports whether the remote matches either recognized shape.
func IsRecognized(remote string) bool {
	_, parseError := ParseRemoteURL(remote)
	return parseError == nil
}

// ExtractOwner returns the owner segment of a recognized remote URL.
func ExtractOwner(remote string) (string, bool) {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", false
	}
	return parsedRemote.Owner, true
}

// OwnerEquals reports whether the remote's owner case-insensitively equals the
// candidate. Unrecognized remotes never match.
func OwnerEquals(remote string, candidateOwner string) bool {
	owner, recognized := ExtractOwner(remote)
	if !recognized {
		return false
	}
	return strings.EqualFold(owner, candidateOwner)
}

// RenameOwner substitutes newOwner for oldOwner when the remote's owner matches
// case-insensitively, preserving protocol, host, repository, and .git suffix
// presence. The input is returned unchanged for unrecognized remotes and owner
// mismatches.
func RenameOwner(remote string, oldOwner string, newOwner string) string {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return remote
	}
	if !strings.EqualFold(parsedRemote.Owner, oldOwner) {
		return remote
	}

	parsedRemote.Owner = newOwner
	formattedRemote, formatError := FormatRemoteURL(parsedRemote)
	if formatError != nil {
		return remote
	}
	return formattedRemote
}
