package scan_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ownershift/internal/remoteurl"
	"github.com/temirov/ownershift/internal/scan"
	"github.com/temirov/ownershift/internal/shared"
)

const (
	listFailureMessageConstant = "permission denied"
)

type fixedClock struct {
	currentTime time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.currentTime
}

type failingListFileSystem struct {
	shared.FileSystem
	failingPath string
}

func (fileSystem failingListFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	if path == fileSystem.failingPath {
		return nil, errors.New(listFailureMessageConstant)
	}
	return fileSystem.FileSystem.ReadDir(path)
}

func writeRepository(testFramework *testing.T, repositoryPath string, remoteURLText string) {
	testFramework.Helper()

	fileSystem := shared.OSFileSystem{}
	metadataPath := filepath.Join(repositoryPath, shared.GitMetadataDirectoryNameConstant)
	require.NoError(testFramework, fileSystem.MkdirAll(metadataPath, 0o755))

	configContent := repositoryConfigContent(remoteURLText)
	require.NoError(testFramework, fileSystem.WriteFile(filepath.Join(metadataPath, shared.GitConfigFileNameConstant), []byte(configContent), 0o644))
}

func repositoryConfigContent(remoteURLText string) string {
	return "[remote \"origin\"]\n\turl = " + remoteURLText + "\n\tfetch = +refs/heads/*:refs/remotes/origin/*\n"
}

func ownerStrategy(testFramework *testing.T, oldOwner string, newOwner string) remoteurl.Strategy {
	testFramework.Helper()

	selectedStrategy, selectionError := remoteurl.SelectStrategy(oldOwner, newOwner, "", "")
	require.NoError(testFramework, selectionError)
	return selectedStrategy
}

func TestExecuteMatchesOwnerRemotes(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	fileSystem := shared.OSFileSystem{}

	writeRepository(testFramework, filepath.Join(rootPath, "alpha"), "git@github.com:alice/alpha.git")
	writeRepository(testFramework, filepath.Join(rootPath, "beta"), "git@github.com:bob/beta.git")
	writeRepository(testFramework, filepath.Join(rootPath, "nested", "gamma"), "https://github.com/alice/gamma")
	writeRepository(testFramework, filepath.Join(rootPath, "node_modules", "vendored"), "git@github.com:alice/vendored.git")
	require.NoError(testFramework, fileSystem.MkdirAll(filepath.Join(rootPath, ".hidden"), 0o755))

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.False(testFramework, result.Cancelled)
	require.Equal(testFramework, 3, result.RepositoriesFound)
	require.Equal(testFramework, 1, result.DirectoriesSkipped)
	require.Empty(testFramework, result.Errors)

	require.Len(testFramework, result.MatchedRepositories, 2)
	require.Equal(testFramework, filepath.Join(rootPath, "alpha"), result.MatchedRepositories[0].Path)
	require.Equal(testFramework, filepath.Join(rootPath, "nested", "gamma"), result.MatchedRepositories[1].Path)

	alphaMatches := result.MatchedRepositories[0].MatchedRemotes
	require.Len(testFramework, alphaMatches, 1)
	require.Equal(testFramework, "origin", alphaMatches[0].Remote.Name)
	require.Equal(testFramework, "git@github.com:carol/alpha.git", alphaMatches[0].NewURL)

	gammaMatches := result.MatchedRepositories[1].MatchedRemotes
	require.Len(testFramework, gammaMatches, 1)
	require.Equal(testFramework, "https://github.com/carol/gamma", gammaMatches[0].NewURL)
}

func TestExecuteDoesNotDescendIntoRepositories(testFramework *testing.T) {
	rootPath := testFramework.TempDir()

	writeRepository(testFramework, filepath.Join(rootPath, "outer"), "git@github.com:alice/outer.git")
	writeRepository(testFramework, filepath.Join(rootPath, "outer", "embedded"), "git@github.com:alice/embedded.git")

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Equal(testFramework, 1, result.RepositoriesFound)
	require.Len(testFramework, result.MatchedRepositories, 1)
	require.Equal(testFramework, filepath.Join(rootPath, "outer"), result.MatchedRepositories[0].Path)
}

func TestExecuteHonorsMaximumDepth(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	writeRepository(testFramework, filepath.Join(rootPath, "a", "b", "c"), "git@github.com:alice/deep.git")

	testScenarios := []struct {
		name                 string
		maximumDepth         int
		expectedRepositories int
	}{
		{name: "depthBelowRepositoryPrunesIt", maximumDepth: 2, expectedRepositories: 0},
		{name: "depthAtRepositoryReachesIt", maximumDepth: 3, expectedRepositories: 1},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.name, func(testFramework *testing.T) {
			service := scan.NewService(scan.Dependencies{})
			result, executionError := service.Execute(context.Background(), scan.Options{
				RootPath:     rootPath,
				MaximumDepth: testScenario.maximumDepth,
				Strategy:     ownerStrategy(testFramework, "alice", "carol"),
			})

			require.NoError(testFramework, executionError)
			require.Equal(testFramework, testScenario.expectedRepositories, result.RepositoriesFound)
		})
	}
}

func TestExecuteSkipsPathDenylistSubtrees(testFramework *testing.T) {
	rootPath := testFramework.TempDir()

	writeRepository(testFramework, filepath.Join(rootPath, "Library", "Caches", "cached-clone"), "git@github.com:alice/cached-clone.git")
	writeRepository(testFramework, filepath.Join(rootPath, "projects", "kept"), "git@github.com:alice/kept.git")

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Equal(testFramework, 1, result.RepositoriesFound)
	require.Equal(testFramework, 1, result.DirectoriesSkipped)
	require.Len(testFramework, result.MatchedRepositories, 1)
	require.Equal(testFramework, filepath.Join(rootPath, "projects", "kept"), result.MatchedRepositories[0].Path)
}

func TestExecuteAppliesExcludeGlobs(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	writeRepository(testFramework, filepath.Join(rootPath, "temporary", "scratch"), "git@github.com:alice/scratch.git")
	writeRepository(testFramework, filepath.Join(rootPath, "projects", "kept"), "git@github.com:alice/kept.git")

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath:     rootPath,
		ExcludeGlobs: []string{"temp*"},
		Strategy:     ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Equal(testFramework, 1, result.RepositoriesFound)
	require.Equal(testFramework, 1, result.DirectoriesSkipped)
	require.Len(testFramework, result.MatchedRepositories, 1)
	require.Equal(testFramework, filepath.Join(rootPath, "projects", "kept"), result.MatchedRepositories[0].Path)
}

func TestExecuteReturnsPartialResultWhenCancelled(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	writeRepository(testFramework, filepath.Join(rootPath, "alpha"), "git@github.com:alice/alpha.git")

	cancellationSignal := shared.NewManualCancellationSignal()
	cancellationSignal.Cancel()

	service := scan.NewService(scan.Dependencies{Cancellation: cancellationSignal})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.True(testFramework, result.Cancelled)
	require.Zero(testFramework, result.DirectoriesVisited)
	require.Empty(testFramework, result.MatchedRepositories)
}

func TestExecuteHonorsContextCancellation(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	writeRepository(testFramework, filepath.Join(rootPath, "alpha"), "git@github.com:alice/alpha.git")

	cancelledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(cancelledContext, scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.True(testFramework, result.Cancelled)
}

func TestExecuteRecordsTraversalErrors(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	fileSystem := shared.OSFileSystem{}

	lockedPath := filepath.Join(rootPath, "locked")
	require.NoError(testFramework, fileSystem.MkdirAll(lockedPath, 0o755))
	writeRepository(testFramework, filepath.Join(rootPath, "reachable"), "git@github.com:alice/reachable.git")

	service := scan.NewService(scan.Dependencies{
		FileSystem: failingListFileSystem{FileSystem: fileSystem, failingPath: lockedPath},
	})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Len(testFramework, result.Errors, 1)
	require.Equal(testFramework, lockedPath, result.Errors[0].Path)
	require.Contains(testFramework, result.Errors[0].Message, listFailureMessageConstant)
	require.Len(testFramework, result.MatchedRepositories, 1)
}

func TestExecuteRecordsUnreadableRepositoryConfiguration(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	fileSystem := shared.OSFileSystem{}

	brokenRepositoryPath := filepath.Join(rootPath, "broken")
	require.NoError(testFramework, fileSystem.MkdirAll(filepath.Join(brokenRepositoryPath, shared.GitMetadataDirectoryNameConstant), 0o755))

	service := scan.NewService(scan.Dependencies{})
	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Equal(testFramework, 1, result.RepositoriesFound)
	require.Len(testFramework, result.Errors, 1)
	require.Equal(testFramework, brokenRepositoryPath, result.Errors[0].Path)
	require.Empty(testFramework, result.MatchedRepositories)
}

func TestExecuteThrottlesProgressAndAlwaysEmitsFinalReport(testFramework *testing.T) {
	rootPath := testFramework.TempDir()
	fileSystem := shared.OSFileSystem{}
	for _, directoryName := range []string{"one", "two", "three", "four"} {
		require.NoError(testFramework, fileSystem.MkdirAll(filepath.Join(rootPath, directoryName), 0o755))
	}

	var progressReports []scan.ScanProgress
	service := scan.NewService(scan.Dependencies{
		Clock:        fixedClock{currentTime: time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)},
		ProgressSink: func(progress scan.ScanProgress) { progressReports = append(progressReports, progress) },
	})

	result, executionError := service.Execute(context.Background(), scan.Options{
		RootPath: rootPath,
		Strategy: ownerStrategy(testFramework, "alice", "carol"),
	})

	require.NoError(testFramework, executionError)
	require.Equal(testFramework, 5, result.DirectoriesVisited)

	// A frozen clock keeps every interior report inside the throttle window, so
	// only the first visit and the unconditional terminal report come through.
	require.Len(testFramework, progressReports, 2)
	finalReport := progressReports[len(progressReports)-1]
	require.Equal(testFramework, result.DirectoriesVisited, finalReport.DirectoriesVisited)
	require.Equal(testFramework, rootPath, finalReport.CurrentPath)
}

func TestExecuteValidatesOptions(testFramework *testing.T) {
	testScenarios := []struct {
		name    string
		options scan.Options
	}{
		{name: "rejectsBlankRootPath", options: scan.Options{RootPath: "   ", Strategy: remoteurl.OwnerRenameStrategy{OldOwner: "alice", NewOwner: "carol"}}},
		{name: "rejectsMissingStrategy", options: scan.Options{RootPath: "/tmp"}},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.name, func(testFramework *testing.T) {
			service := scan.NewService(scan.Dependencies{})
			_, executionError := service.Execute(context.Background(), testScenario.options)

			var invalidInputError scan.InvalidInputError
			require.ErrorAs(testFramework, executionError, &invalidInputError)
		})
	}
}
