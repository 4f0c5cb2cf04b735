package remoteurl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	patternCompileErrorTemplateConstant  = "unable to compile custom pattern %q: %w"
	conflictingModesMessageConstant      = "owner flags and custom-pattern flags are mutually exclusive"
	incompleteOwnerModeMessageConstant   = "owner mode requires both the old and the new owner"
	incompletePatternModeMessageConstant = "custom-pattern mode requires a from pattern"
	missingModeMessageConstant           = "either owner flags or a custom pattern must be provided"
)

var (
	errConflictingModes      = errors.New(conflictingModesMessageConstant)
	errIncompleteOwnerMode   = errors.New(incompleteOwnerModeMessageConstant)
	errIncompletePatternMode = errors.New(incompletePatternModeMessageConstant)
	errMissingMode           = errors.New(missingModeMessageConstant)
)

// Strategy decides whether a remote URL qualifies for rewriting and proposes the
// replacement. Exactly one strategy is selected per scan or migration invocation;
// the owner-rename and custom-pattern modes are mutually exclusive.
type Strategy interface {
	Propose(remoteURLText string) (proposedURL string, matched bool)
}

// OwnerRenameStrategy rewrites the owner segment of recognized remote URLs.
type OwnerRenameStrategy struct {
	OldOwner string
	NewOwner string
}

// Propose returns the owner-substituted URL. No-op substitutions are reported as
// non-matches, so a matched proposal always differs from its input.
func (strategy OwnerRenameStrategy) Propose(remoteURLText string) (string, bool) {
	renamedURL := RenameOwner(remoteURLText, strategy.OldOwner, strategy.NewOwner)
	if renamedURL == remoteURLText {
		return remoteURLText, false
	}
	return renamedURL, true
}

// PatternStrategy applies a single regular-expression substitution, bypassing the
// owner-based logic entirely. $N in the template references the Nth capture group.
type PatternStrategy struct {
	expression          *regexp.Regexp
	replacementTemplate string
}

// NewPatternStrategy compiles the custom pattern into a strategy.
func NewPatternStrategy(fromPattern string, toTemplate string) (PatternStrategy, error) {
	compiledExpression, compileError := regexp.Compile(fromPattern)
	if compileError != nil {
		return PatternStrategy{}, fmt.Errorf(patternCompileErrorTemplateConstant, fromPattern, compileError)
	}
	return PatternStrategy{expression: compiledExpression, replacementTemplate: toTemplate}, nil
}

// Propose substitutes the leftmost pattern match with the expanded template. URLs
// the pattern does not match are returned unchanged.
func (strategy PatternStrategy) Propose(remoteURLText string) (string, bool) {
	matchIndexes := strategy.expression.FindStringSubmatchIndex(remoteURLText)
	if matchIndexes == nil {
		return remoteURLText, false
	}

	expandedReplacement := strategy.expression.ExpandString(nil, strategy.replacementTemplate, remoteURLText, matchIndexes)
	proposedURL := remoteURLText[:matchIndexes[0]] + string(expandedReplacement) + remoteURLText[matchIndexes[1]:]
	return proposedURL, true
}

// SelectStrategy resolves the matching mode for one invocation. Owner flags and
// custom-pattern flags select mutually exclusive strategies; providing both, or
// an incomplete set of either, is an input error.
func SelectStrategy(oldOwner string, newOwner string, fromPattern string, toTemplate string) (Strategy, error) {
	trimmedOldOwner := strings.TrimSpace(oldOwner)
	trimmedNewOwner := strings.TrimSpace(newOwner)
	trimmedFromPattern := strings.TrimSpace(fromPattern)

	ownerModeRequested := len(trimmedOldOwner) > 0 || len(trimmedNewOwner) > 0
	patternModeRequested := len(trimmedFromPattern) > 0 || len(toTemplate) > 0

	switch {
	case ownerModeRequested && patternModeRequested:
		return nil, errConflictingModes
	case ownerModeRequested:
		if len(trimmedOldOwner) == 0 || len(trimmedNewOwner) == 0 {
			return nil, errIncompleteOwnerMode
		}
		return OwnerRenameStrategy{OldOwner: trimmedOldOwner, NewOwner: trimmedNewOwner}, nil
	case patternModeRequested:
		if len(trimmedFromPattern) == 0 {
			return nil, errIncompletePatternMode
		}
		return NewPatternStrategy(trimmedFromPattern, toTemplate)
	default:
		return nil, errMissingMode
	}
}
