package importer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// GitRepoImporter imports scripts from a public git repository, such as a
// published modpack
type GitRepoImporter struct {
	scripts *ScriptImporter
	git     func(ctx context.Context, args ...string) ([]byte, error)
}

// NewGitRepoImporter creates a git importer on top of scripts
func NewGitRepoImporter(scripts *ScriptImporter) *GitRepoImporter {
	return &GitRepoImporter{
		scripts: scripts,
		git: func(ctx context.Context, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, "git", args...).CombinedOutput()
		},
	}
}

// GitImportOptions extends ImportOptions with git-specific settings
type GitImportOptions struct {
	ImportOptions        // Embed base import options; Path is a subdirectory of the repository
	RepoURL       string // Git repository URL
	Branch        string // Specific branch to import (default: repository default)
	Depth         int    // Shallow clone depth (0 = full clone)
	TempDir       string // Directory for cloning (default: system temp)
}

// GitImportResult contains the results of a git repository import
type GitImportResult struct {
	*ImportResult        // Embed base import result
	RepoURL       string // The repository URL that was imported
	Branch        string // The branch that was imported
	Owner         string // Repository owner, used as the default id prefix
}

var sshPattern = regexp.MustCompile(`^git@([^:]+):([^/]+)/`)

// ImportFromGitRepo clones the repository and imports its scripts
func (g *GitRepoImporter) ImportFromGitRepo(ctx context.Context, options GitImportOptions) (*GitImportResult, error) {
	result := &GitImportResult{
		ImportResult: &ImportResult{},
		RepoURL:      options.RepoURL,
		Branch:       options.Branch,
	}

	if options.RepoURL == "" {
		return result, fmt.Errorf("repository URL is required")
	}

	owner, err := extractOwnerFromURL(options.RepoURL)
	if err != nil {
		return result, fmt.Errorf("failed to extract owner from URL: %w", err)
	}
	result.Owner = owner

	tempDir, err := setupTempDir(options.TempDir)
	if err != nil {
		return result, fmt.Errorf("failed to setup temporary directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	clonePath, err := g.cloneRepository(ctx, options.RepoURL, tempDir, options.Branch, options.Depth)
	if err != nil {
		return result, fmt.Errorf("failed to clone repository: %w", err)
	}

	scriptOptions := options.ImportOptions
	scriptOptions.Path = filepath.Join(clonePath, filepath.Clean("/"+options.Path))
	if scriptOptions.Prefix == "" {
		scriptOptions.Prefix = owner
	}

	imported, err := g.scripts.Import(scriptOptions)
	result.ImportResult = imported
	if err != nil {
		return result, fmt.Errorf("failed to import from cloned repository: %w", err)
	}
	return result, nil
}

// extractOwnerFromURL extracts the owner/username from a git repository URL
func extractOwnerFromURL(repoURL string) (string, error) {
	// Handle SSH URLs (git@github.com:user/repo.git)
	if matches := sshPattern.FindStringSubmatch(repoURL); len(matches) > 2 {
		return matches[2], nil
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL: %w", err)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("invalid repository URL format")
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) < 2 {
		return "", fmt.Errorf("invalid repository URL format")
	}
	return pathParts[0], nil
}

// setupTempDir creates or validates the clone directory
func setupTempDir(customTempDir string) (string, error) {
	if customTempDir != "" {
		if err := os.MkdirAll(customTempDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create custom temp directory: %w", err)
		}
		return os.MkdirTemp(customTempDir, "clone-")
	}
	return os.MkdirTemp("", "kubejs-editor-git-import-")
}

// cloneRepository clones the git repository into tempDir/repo
func (g *GitRepoImporter) cloneRepository(ctx context.Context, repoURL, tempDir, branch string, depth int) (string, error) {
	clonePath := filepath.Join(tempDir, "repo")

	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", depth))
	}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, "--", repoURL, clonePath)

	output, err := g.git(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("git clone failed: %w\nOutput: %s", err, string(output))
	}
	return clonePath, nil
}
