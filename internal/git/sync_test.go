package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit records commands and answers from canned output keyed by the
// first two arguments
type fakeGit struct {
	calls   []string
	outputs map[string]string
	fail    map[string]bool
	onInit  func()
}

func (f *fakeGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := strings.Join(args, " ")
	f.calls = append(f.calls, cmd)

	key := args[0]
	if len(args) > 1 {
		key += " " + args[1]
	}
	if args[0] == "init" && f.onInit != nil {
		f.onInit()
	}
	if f.fail[key] || f.fail[args[0]] {
		return "", errors.New("git " + cmd + " failed")
	}
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return f.outputs[args[0]], nil
}

func newTestSync(t *testing.T, repo bool) (*LibrarySync, *fakeGit) {
	t.Helper()
	dir := t.TempDir()
	if repo {
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	}

	fake := &fakeGit{outputs: map[string]string{}, fail: map[string]bool{}}
	fake.onInit = func() { _ = os.Mkdir(filepath.Join(dir, ".git"), 0755) }

	s := NewLibrarySync(dir)
	s.run = fake.run
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s, fake
}

func TestSyncChangesOutsideRepository(t *testing.T) {
	s, fake := newTestSync(t, false)

	committed, err := s.SyncChanges(context.Background(), "Save script")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Empty(t, fake.calls)
}

func TestSyncChangesCommitsAndPushes(t *testing.T) {
	s, fake := newTestSync(t, true)
	fake.outputs["status --porcelain"] = "A  templates/packOres.tmpl\n"
	fake.outputs["remote"] = "origin\n"

	committed, err := s.SyncChanges(context.Background(), "Import scripts")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, []string{
		"add -A",
		"status --porcelain",
		"commit -m Import scripts - 2024-05-01 12:00:00",
		"remote",
		"push -u origin HEAD",
	}, fake.calls)
}

func TestSyncChangesNothingToCommit(t *testing.T) {
	s, fake := newTestSync(t, true)

	committed, err := s.SyncChanges(context.Background(), "Save script")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, []string{"add -A", "status --porcelain"}, fake.calls)
}

func TestSyncChangesPushFailureKeepsCommit(t *testing.T) {
	s, fake := newTestSync(t, true)
	fake.outputs["status --porcelain"] = "M  scripts/a.js\n"
	fake.outputs["remote"] = "origin\n"
	fake.fail["push"] = true

	committed, err := s.SyncChanges(context.Background(), "Save script")
	assert.True(t, committed)
	assert.ErrorContains(t, err, "committed locally")
}

func TestSetup(t *testing.T) {
	s, fake := newTestSync(t, false)
	fake.outputs["status --porcelain"] = "A  .gitignore\n"

	require.NoError(t, s.Setup(context.Background(), "git@github.com:team/pack-scripts.git"))
	assert.True(t, s.IsRepository())
	assert.FileExists(t, filepath.Join(s.baseDir, ".gitignore"))
	assert.Equal(t, []string{
		"init",
		"remote",
		"remote add origin git@github.com:team/pack-scripts.git",
		"add -A",
		"status --porcelain",
		"commit -m Initial KubeJS editor library commit",
	}, fake.calls)
}

func TestSetupUpdatesRemote(t *testing.T) {
	s, fake := newTestSync(t, true)
	fake.outputs["remote"] = "origin\n"
	fake.outputs["remote get-url"] = "https://old.example/pack.git\n"

	require.NoError(t, s.Setup(context.Background(), "https://new.example/pack.git"))
	assert.Contains(t, fake.calls, "remote set-url origin https://new.example/pack.git")
	assert.NotContains(t, fake.calls, "init")
}

func TestPullChanges(t *testing.T) {
	s, fake := newTestSync(t, true)
	assert.ErrorContains(t, s.PullChanges(context.Background()), "no remote")

	fake.outputs["remote"] = "origin\n"
	fake.fail["pull"] = true
	assert.ErrorContains(t, s.PullChanges(context.Background()), "failed to pull")
	assert.Contains(t, fake.calls, "rebase --abort")

	outside, _ := newTestSync(t, false)
	assert.Error(t, outside.PullChanges(context.Background()))
}

func TestStatus(t *testing.T) {
	outside, _ := newTestSync(t, false)
	status, err := outside.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Git not initialized", status)

	s, fake := newTestSync(t, true)
	fake.outputs["status --porcelain"] = "## master...origin/master [behind 2]\n"
	fake.outputs["remote"] = "origin\n"
	status, err = s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Remote has new changes", status)
}

func TestSummarizeStatus(t *testing.T) {
	assert.Equal(t, "In sync", summarizeStatus("## master...origin/master\n", true))
	assert.Equal(t, "Changes need to be pushed", summarizeStatus("## master...origin/master [ahead 1]\n", true))
	assert.Equal(t, "Diverged from remote", summarizeStatus("## master...origin/master [ahead 1, behind 3]\n", true))
	assert.Equal(t, "Uncommitted changes", summarizeStatus("## master\n M scripts/a.js\n", true))
	assert.Equal(t, "No remote configured", summarizeStatus("## master\n", false))
}
