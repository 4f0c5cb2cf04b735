package ignore

import (
	"regexp"
	"strings"
)

const (
	gitMetadataDirectoryNameConstant        = ".git"
	windowsPathSeparatorConstant            = "\\"
	normalizedPathSeparatorConstant         = "/"
	globAnyRunTokenConstant                 = "**"
	globSegmentRunTokenConstant             = "*"
	globSingleCharacterTokenConstant        = "?"
	globAnyRunExpressionConstant            = ".*"
	globSegmentRunExpressionConstant        = "[^/]*"
	globSingleCharacterExpressionConstant   = "."
	globCaseInsensitiveAnchorPrefixConstant = "(?i)^"
	globAnchorSuffixConstant                = "$"
)

// defaultSegmentDenylistEntries lists directory names that never contain projects worth
// scanning: package caches, build outputs, OS trash, and foreign VCS internals.
// Matching is by substring containment, so a directory named "mydist" also matches
// the "dist" entry. That weak matching is intentional; it keeps the hot path to a
// handful of strings.Contains calls per directory.
var defaultSegmentDenylistEntries = []string{
	"node_modules",
	"bower_components",
	"__pycache__",
	".venv",
	".tox",
	".mypy_cache",
	".pytest_cache",
	".gradle",
	".npm",
	".yarn",
	".pnpm-store",
	".cargo",
	".rustup",
	"DerivedData",
	"Pods",
	"dist",
	"target",
	".Trash",
	"$RECYCLE.BIN",
	"System Volume Information",
	".svn",
	".hg",
	".cache",
}

// defaultPathDenylistEntries lists multi-segment suffixes checked against the
// normalized full path. The .git entries prune object storage beneath repository
// metadata without pruning the metadata directory itself.
var defaultPathDenylistEntries = []string{
	"Library/Caches",
	"Library/Application Support",
	".git/objects",
	".git/lfs",
}

// Matcher classifies directory names and paths that should be pruned from traversal.
type Matcher struct {
	segmentEntries  []string
	pathEntries     []string
	excludePatterns []*regexp.Regexp
}

// NewMatcher constructs a Matcher with the built-in denylist and the provided
// caller-supplied exclude globs.
func NewMatcher(excludeGlobPatterns []string) *Matcher {
	excludePatterns := make([]*regexp.Regexp, 0, len(excludeGlobPatterns))
	for _, globPattern := range excludeGlobPatterns {
		trimmedPattern := strings.TrimSpace(globPattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		excludePatterns = append(excludePatterns, compileGlobPattern(trimmedPattern))
	}

	return &Matcher{
		segmentEntries:  defaultSegmentDenylistEntries,
		pathEntries:     defaultPathDenylistEntries,
		excludePatterns: excludePatterns,
	}
}

// ShouldSkipSegment reports whether a single directory name matches the denylist.
// The repository metadata directory itself is never skipped here; the scanner
// handles it explicitly.
func (matcher *Matcher) ShouldSkipSegment(segmentName string) bool {
	if segmentName == gitMetadataDirectoryNameConstant {
		return false
	}

	for _, denylistEntry := range matcher.segmentEntries {
		if segmentName == denylistEntry || strings.Contains(segmentName, denylistEntry) {
			return true
		}
	}

	return false
}

// ShouldSkipPath reports whether a full path matches the denylist. Separators are
// normalized to forward slashes before multi-segment entries are tested, then each
// individual segment is checked against the segment denylist.
func (matcher *Matcher) ShouldSkipPath(candidatePath string) bool {
	normalizedPath := strings.ReplaceAll(candidatePath, windowsPathSeparatorConstant, normalizedPathSeparatorConstant)

	for _, denylistEntry := range matcher.pathEntries {
		if strings.Contains(normalizedPath, denylistEntry) {
			return true
		}
	}

	for _, pathSegment := range strings.Split(normalizedPath, normalizedPathSeparatorConstant) {
		if matcher.ShouldSkipSegment(pathSegment) {
			return true
		}
	}

	return false
}

// MatchesExclude reports whether a directory name matches any caller-supplied glob.
func (matcher *Matcher) MatchesExclude(segmentName string) bool {
	for _, excludePattern := range matcher.excludePatterns {
		if excludePattern.MatchString(segmentName) {
			return true
		}
	}
	return false
}

// compileGlobPattern translates a glob into an anchored case-insensitive regular
// expression: ** matches any run including separators, * matches a run of
// non-separator characters, ? matches a single character, and every other
// character is escaped literally. The translation always compiles.
func compileGlobPattern(globPattern string) *regexp.Regexp {
	var expression strings.Builder
	expression.WriteString(globCaseInsensitiveAnchorPrefixConstant)

	remainingPattern := globPattern
	for len(remainingPattern) > 0 {
		switch {
		case strings.HasPrefix(remainingPattern, globAnyRunTokenConstant):
			expression.WriteString(globAnyRunExpressionConstant)
			remainingPattern = remainingPattern[len(globAnyRunTokenConstant):]
		case strings.HasPrefix(remainingPattern, globSegmentRunTokenConstant):
			expression.WriteString(globSegmentRunExpressionConstant)
			remainingPattern = remainingPattern[len(globSegmentRunTokenConstant):]
		case strings.HasPrefix(remainingPattern, globSingleCharacterTokenConstant):
			expression.WriteString(globSingleCharacterExpressionConstant)
			remainingPattern = remainingPattern[len(globSingleCharacterTokenConstant):]
		default:
			expression.WriteString(regexp.QuoteMeta(remainingPattern[:1]))
			remainingPattern = remainingPattern[1:]
		}
	}

	expression.WriteString(globAnchorSuffixConstant)
	return regexp.MustCompile(expression.String())
}
