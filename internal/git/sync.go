// Package git keeps the data directory (overlay templates and saved scripts)
// under version control so a modpack team can share it through a remote.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const commandTimeout = 10 * time.Second

// ignored keeps local-only files out of the repository
const ignored = "logs/\n"

// Runner executes git with args inside dir and returns the combined output
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// LibrarySync commits and pushes changes in the data directory
type LibrarySync struct {
	baseDir string
	run     Runner
	now     func() time.Time
}

// NewLibrarySync creates a syncer for baseDir using the git binary
func NewLibrarySync(baseDir string) *LibrarySync {
	return &LibrarySync{
		baseDir: baseDir,
		run:     execGit,
		now:     time.Now,
	}
}

func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %v", strings.Join(args, " "), commandTimeout)
		}
		return string(output), fmt.Errorf("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// IsRepository reports whether the data directory has been set up for git
func (g *LibrarySync) IsRepository() bool {
	info, err := os.Stat(filepath.Join(g.baseDir, ".git"))
	return err == nil && info.IsDir()
}

// HasRemote reports whether an origin remote is configured
func (g *LibrarySync) HasRemote(ctx context.Context) bool {
	out, err := g.run(ctx, g.baseDir, "remote")
	if err != nil {
		return false
	}
	for _, name := range strings.Fields(out) {
		if name == "origin" {
			return true
		}
	}
	return false
}

// Setup initializes the repository, points origin at repoURL when one is
// given and records an initial commit
func (g *LibrarySync) Setup(ctx context.Context, repoURL string) error {
	if !g.IsRepository() {
		if _, err := g.run(ctx, g.baseDir, "init"); err != nil {
			return fmt.Errorf("failed to initialize git repository: %w", err)
		}
	}

	ignorePath := filepath.Join(g.baseDir, ".gitignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte(ignored), 0644); err != nil {
			return fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}

	if repoURL != "" {
		if g.HasRemote(ctx) {
			current, err := g.run(ctx, g.baseDir, "remote", "get-url", "origin")
			if err == nil && strings.TrimSpace(current) != repoURL {
				if _, err := g.run(ctx, g.baseDir, "remote", "set-url", "origin", repoURL); err != nil {
					return fmt.Errorf("failed to update remote URL: %w", err)
				}
				slog.Info("Updated library remote", "url", repoURL)
			}
		} else {
			if _, err := g.run(ctx, g.baseDir, "remote", "add", "origin", repoURL); err != nil {
				return fmt.Errorf("failed to add remote repository: %w", err)
			}
			slog.Info("Added library remote", "url", repoURL)
		}
	}

	if _, err := g.commitAll(ctx, "Initial KubeJS editor library commit"); err != nil {
		return err
	}
	return nil
}

// SyncChanges commits every change under a timestamped message and pushes
// when a remote exists. It does nothing outside a repository. A failed push
// keeps the local commit and returns an error.
func (g *LibrarySync) SyncChanges(ctx context.Context, message string) (bool, error) {
	if !g.IsRepository() {
		return false, nil
	}

	committed, err := g.commitAll(ctx, fmt.Sprintf("%s - %s", message, g.now().Format("2006-01-02 15:04:05")))
	if err != nil || !committed {
		return committed, err
	}

	if !g.HasRemote(ctx) {
		return true, nil
	}
	if _, err := g.run(ctx, g.baseDir, "push", "-u", "origin", "HEAD"); err != nil {
		return true, fmt.Errorf("committed locally but failed to push: %w", err)
	}
	return true, nil
}

func (g *LibrarySync) commitAll(ctx context.Context, message string) (bool, error) {
	if _, err := g.run(ctx, g.baseDir, "add", "-A"); err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	staged, err := g.run(ctx, g.baseDir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check for changes: %w", err)
	}
	if strings.TrimSpace(staged) == "" {
		return false, nil
	}

	if _, err := g.run(ctx, g.baseDir, "commit", "-m", message); err != nil {
		return false, fmt.Errorf("failed to commit changes: %w", err)
	}
	return true, nil
}

// PullChanges rebases local commits onto the remote
func (g *LibrarySync) PullChanges(ctx context.Context) error {
	if !g.IsRepository() {
		return fmt.Errorf("library is not a git repository")
	}
	if !g.HasRemote(ctx) {
		return fmt.Errorf("no remote configured")
	}
	if _, err := g.run(ctx, g.baseDir, "pull", "--rebase", "--autostash", "origin"); err != nil {
		// Leave the working tree as it was before the pull
		if _, abortErr := g.run(ctx, g.baseDir, "rebase", "--abort"); abortErr != nil {
			slog.Debug("No rebase to abort", "error", abortErr)
		}
		return fmt.Errorf("failed to pull changes: %w", err)
	}
	return nil
}

// Status summarises the repository state in a few words
func (g *LibrarySync) Status(ctx context.Context) (string, error) {
	if !g.IsRepository() {
		return "Git not initialized", nil
	}

	out, err := g.run(ctx, g.baseDir, "status", "--porcelain", "--branch")
	if err != nil {
		return "Git status unknown", err
	}
	return summarizeStatus(out, g.HasRemote(ctx)), nil
}

// summarizeStatus reads `git status --porcelain --branch` output
func summarizeStatus(out string, hasRemote bool) string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) > 1 {
		return "Uncommitted changes"
	}
	if !hasRemote {
		return "No remote configured"
	}

	branch := lines[0]
	switch {
	case strings.Contains(branch, "[ahead") && strings.Contains(branch, "behind"):
		return "Diverged from remote"
	case strings.Contains(branch, "[ahead"):
		return "Changes need to be pushed"
	case strings.Contains(branch, "[behind"):
		return "Remote has new changes"
	}
	return "In sync"
}
