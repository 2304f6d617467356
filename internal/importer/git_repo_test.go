package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOwnerFromURL(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		hasError bool
	}{
		{url: "https://github.com/user/repo.git", expected: "user"},
		{url: "https://github.com/AlmostReliable/kubejs-creates.git", expected: "AlmostReliable"},
		{url: "git@github.com:user/repo.git", expected: "user"},
		{url: "git@gitlab.com:team/project.git", expected: "team"},
		{url: "https://gitlab.com/group/subgroup/project.git", expected: "group"},
		{url: "invalid-url", hasError: true},
		{url: "https://github.com/", hasError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			owner, err := extractOwnerFromURL(tc.url)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, owner)
		})
	}
}

func TestImportFromGitRepo(t *testing.T) {
	writer := &memoryWriter{}
	g := NewGitRepoImporter(NewScriptImporter(stubCatalog{}, writer))

	var gotArgs []string
	g.git = func(ctx context.Context, args ...string) ([]byte, error) {
		gotArgs = args
		clonePath := args[len(args)-1]
		writeScript(t, filepath.Join(clonePath, "kubejs", "server_scripts", "ores.js"), "// Ore tags\nServerEvents.tags('item', e => {})\n")
		return nil, nil
	}

	result, err := g.ImportFromGitRepo(context.Background(), GitImportOptions{
		RepoURL: "https://github.com/someone/pack.git",
		Branch:  "main",
		Depth:   1,
		TempDir: t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"clone", "--depth", "1", "--branch", "main", "--", "https://github.com/someone/pack.git"}, gotArgs[:len(gotArgs)-1])
	assert.Equal(t, "someone", result.Owner)
	require.Len(t, result.Templates, 1)
	assert.Equal(t, "someoneServerScriptsOres", result.Templates[0].ID)
	assert.Equal(t, "Ore tags", result.Templates[0].Name)
	assert.Len(t, writer.saved, 1)

	// The clone is removed afterwards
	_, statErr := os.Stat(gotArgs[len(gotArgs)-1])
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportFromGitRepoCloneFailure(t *testing.T) {
	g := NewGitRepoImporter(NewScriptImporter(stubCatalog{}, &memoryWriter{}))
	g.git = func(ctx context.Context, args ...string) ([]byte, error) {
		return []byte("fatal: repository not found"), errors.New("exit status 128")
	}

	_, err := g.ImportFromGitRepo(context.Background(), GitImportOptions{RepoURL: "https://github.com/someone/missing.git"})
	assert.ErrorContains(t, err, "repository not found")

	_, err = g.ImportFromGitRepo(context.Background(), GitImportOptions{})
	assert.ErrorContains(t, err, "repository URL is required")
}
