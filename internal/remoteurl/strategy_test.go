package remoteurl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ownershift/internal/remoteurl"
)

func TestOwnerRenameStrategyPropose(testFramework *testing.T) {
	testScenarios := []struct {
		name            string
		oldOwner        string
		newOwner        string
		remoteURLText   string
		expectedURL     string
		expectedMatched bool
	}{
		{
			name:            "proposesRenamedURL",
			oldOwner:        "alice",
			newOwner:        "carol",
			remoteURLText:   "git@github.com:alice/widgets.git",
			expectedURL:     "git@github.com:carol/widgets.git",
			expectedMatched: true,
		},
		{
			name:            "reportsNoOpRenameAsNonMatch",
			oldOwner:        "alice",
			newOwner:        "alice",
			remoteURLText:   "git@github.com:alice/widgets.git",
			expectedURL:     "git@github.com:alice/widgets.git",
			expectedMatched: false,
		},
		{
			name:            "reportsDifferentOwnerAsNonMatch",
			oldOwner:        "alice",
			newOwner:        "carol",
			remoteURLText:   "git@github.com:bob/widgets.git",
			expectedURL:     "git@github.com:bob/widgets.git",
			expectedMatched: false,
		},
		{
			name:            "reportsUnrecognizedRemoteAsNonMatch",
			oldOwner:        "alice",
			newOwner:        "carol",
			remoteURLText:   "svn://example.com/alice/widgets",
			expectedURL:     "svn://example.com/alice/widgets",
			expectedMatched: false,
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.name, func(testFramework *testing.T) {
			strategy := remoteurl.OwnerRenameStrategy{OldOwner: testScenario.oldOwner, NewOwner: testScenario.newOwner}
			proposedURL, matched := strategy.Propose(testScenario.remoteURLText)
			require.Equal(testFramework, testScenario.expectedURL, proposedURL)
			require.Equal(testFramework, testScenario.expectedMatched, matched)
		})
	}
}

func TestPatternStrategyPropose(testFramework *testing.T) {
	testScenarios := []struct {
		name            string
		fromPattern     string
		toTemplate      string
		remoteURLText   string
		expectedURL     string
		expectedMatched bool
	}{
		{
			name:            "substitutesLiteralFragment",
			fromPattern:     "old-company",
			toTemplate:      "new-company",
			remoteURLText:   "git@github.com:old-company/widgets.git",
			expectedURL:     "git@github.com:new-company/widgets.git",
			expectedMatched: true,
		},
		{
			name:            "expandsCaptureGroupReferences",
			fromPattern:     `github\.com:olduser/(.+)`,
			toTemplate:      "github.com:newuser/$1",
			remoteURLText:   "git@github.com:olduser/widgets.git",
			expectedURL:     "git@github.com:newuser/widgets.git",
			expectedMatched: true,
		},
		{
			name:            "substitutesOnlyLeftmostMatch",
			fromPattern:     "widgets",
			toTemplate:      "gadgets",
			remoteURLText:   "https://github.com/widgets/widgets",
			expectedURL:     "https://github.com/gadgets/widgets",
			expectedMatched: true,
		},
		{
			name:            "leavesNonMatchingURLUnchanged",
			fromPattern:     "gitlab",
			toTemplate:      "github",
			remoteURLText:   "git@github.com:alice/widgets.git",
			expectedURL:     "git@github.com:alice/widgets.git",
			expectedMatched: false,
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.name, func(testFramework *testing.T) {
			strategy, strategyError := remoteurl.NewPatternStrategy(testScenario.fromPattern, testScenario.toTemplate)
			require.NoError(testFramework, strategyError)

			proposedURL, matched := strategy.Propose(testScenario.remoteURLText)
			require.Equal(testFramework, testScenario.expectedURL, proposedURL)
			require.Equal(testFramework, testScenario.expectedMatched, matched)
		})
	}
}

func TestNewPatternStrategyRejectsInvalidExpression(testFramework *testing.T) {
	_, strategyError := remoteurl.NewPatternStrategy("(", "unused")
	require.Error(testFramework, strategyError)
	require.Contains(testFramework, strategyError.Error(), "unable to compile custom pattern")
}

func TestSelectStrategy(testFramework *testing.T) {
	testScenarios := []struct {
		name                 string
		oldOwner             string
		newOwner             string
		fromPattern          string
		toTemplate           string
		expectedErrorMessage string
	}{
		{name: "selectsOwnerMode", oldOwner: "alice", newOwner: "carol"},
		{name: "selectsPatternMode", fromPattern: "alice", toTemplate: "carol"},
		{name: "allowsEmptyReplacementTemplate", fromPattern: `\.git$`},
		{
			name:                 "rejectsConflictingModes",
			oldOwner:             "alice",
			newOwner:             "carol",
			fromPattern:          "alice",
			expectedErrorMessage: "mutually exclusive",
		},
		{
			name:                 "rejectsIncompleteOwnerMode",
			oldOwner:             "alice",
			expectedErrorMessage: "both the old and the new owner",
		},
		{
			name:                 "rejectsTemplateWithoutPattern",
			toTemplate:           "carol",
			expectedErrorMessage: "requires a from pattern",
		},
		{
			name:                 "rejectsMissingMode",
			expectedErrorMessage: "either owner flags or a custom pattern",
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.name, func(testFramework *testing.T) {
			selectedStrategy, selectionError := remoteurl.SelectStrategy(testScenario.oldOwner, testScenario.newOwner, testScenario.fromPattern, testScenario.toTemplate)
			if len(testScenario.expectedErrorMessage) > 0 {
				require.Error(testFramework, selectionError)
				require.Contains(testFramework, selectionError.Error(), testScenario.expectedErrorMessage)
				return
			}
			require.NoError(testFramework, selectionError)
			require.NotNil(testFramework, selectedStrategy)
		})
	}
}
