package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes a command in dir and returns its trimmed output.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "command %v failed: %s", args, string(out))
	return strings.TrimSpace(string(out))
}

// initGitRepo creates a repository on branch master with one commit.
func initGitRepo(t *testing.T, dir string) {
	t.Helper()

	// Mark directory as safe (needed for WSL / temp dirs with different ownership)
	safeDirCmd := exec.Command("git", "config", "--global", "--add", "safe.directory", dir)
	_ = safeDirCmd.Run() // best effort

	run(t, dir, "git", "init")
	run(t, dir, "git", "symbolic-ref", "HEAD", "refs/heads/master")
	run(t, dir, "git", "config", "user.email", "test@test.com")
	run(t, dir, "git", "config", "user.name", "Test")
	run(t, dir, "git", "commit", "--allow-empty", "-m", "initial")
}

// commitFile writes name and commits it, returning the new head sha.
func commitFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	run(t, dir, "git", "add", name)
	run(t, dir, "git", "commit", "-m", "add "+name)
	return run(t, dir, "git", "rev-parse", "HEAD")
}

func newTestGateway(t *testing.T) (*Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	initGitRepo(t, dir)
	g, err := NewGateway(t.Context(), dir)
	require.NoError(t, err)
	return g, dir
}

func TestNewGateway_NotARepo(t *testing.T) {
	_, err := NewGateway(t.Context(), t.TempDir())
	require.Error(t, err)

	var shellErr *ShellCommandError
	assert.ErrorAs(t, err, &shellErr)
}

func TestCurrentBranchAndCheckout(t *testing.T) {
	g, dir := newTestGateway(t)
	ctx := t.Context()

	branch, err := g.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	run(t, dir, "git", "branch", "feature")
	require.NoError(t, g.Checkout(ctx, "feature"))

	branch, err = g.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)
}

func TestCurrentBranch_Detached(t *testing.T) {
	g, dir := newTestGateway(t)
	ctx := t.Context()

	sha := commitFile(t, dir, "a.txt", "a")
	run(t, dir, "git", "checkout", "--detach", sha)

	got, err := g.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, sha, got)
}

func TestCheckout_Unknown(t *testing.T) {
	g, _ := newTestGateway(t)

	err := g.Checkout(t.Context(), "does-not-exist")
	require.Error(t, err)

	var shellErr *ShellCommandError
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, []string{"checkout", "does-not-exist"}, shellErr.Args)
	assert.Contains(t, shellErr.Output, "does-not-exist")
	assert.Contains(t, err.Error(), "git checkout does-not-exist")
}

func TestMergeBaseAndDiff(t *testing.T) {
	g, dir := newTestGateway(t)
	ctx := t.Context()

	base := commitFile(t, dir, "base.txt", "base")
	run(t, dir, "git", "checkout", "-b", "feature")
	head := commitFile(t, dir, "feature.txt", "feature")
	run(t, dir, "git", "checkout", "master")
	master := commitFile(t, dir, "master.txt", "master")

	mb, err := g.MergeBase(ctx, master, head)
	require.NoError(t, err)
	assert.Equal(t, base, mb)

	mb, err = g.MergeBase(ctx, base, head)
	require.NoError(t, err)
	assert.Equal(t, base, mb)

	changes, err := g.DiffNameStatus(ctx, base, head)
	require.NoError(t, err)
	assert.Equal(t, []FileChange{{Status: "A", Path: "feature.txt"}}, changes)
}

func TestMergeBase_UnknownRevision(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.MergeBase(t.Context(), "master", "0123456789abcdef0123456789abcdef01234567")
	require.Error(t, err)

	var mbErr *MergeBaseError
	require.ErrorAs(t, err, &mbErr)
	assert.Equal(t, "master", mbErr.A)

	var shellErr *ShellCommandError
	assert.ErrorAs(t, err, &shellErr)
}

func TestPullAndFetch(t *testing.T) {
	root := t.TempDir()
	upstream := filepath.Join(root, "upstream")
	require.NoError(t, os.MkdirAll(upstream, 0755))
	initGitRepo(t, upstream)

	work := filepath.Join(root, "work")
	run(t, root, "git", "clone", upstream, work)
	run(t, work, "git", "config", "user.email", "test@test.com")
	run(t, work, "git", "config", "user.name", "Test")

	newSHA := commitFile(t, upstream, "late.txt", "late")

	g, err := NewGateway(t.Context(), work)
	require.NoError(t, err)

	require.NoError(t, g.Fetch(t.Context(), "origin", "master"))
	require.NoError(t, g.Pull(t.Context(), "origin", "master"))
	assert.Equal(t, newSHA, run(t, work, "git", "rev-parse", "HEAD"))
}

func TestParseNameStatus(t *testing.T) {
	out := "M\tsrc/a.go\nA\tnew.go\nR100\told.go\trenamed.go\n\nbogus\n"
	assert.Equal(t, []FileChange{
		{Status: "M", Path: "src/a.go"},
		{Status: "A", Path: "new.go"},
		{Status: "R100", Path: "renamed.go"},
	}, parseNameStatus(out))
}

func TestLock_Serializes(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := t.Context()

	var inside atomic.Int32
	var maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Lock(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
}

func TestLock_ContextCancelled(t *testing.T) {
	g, _ := newTestGateway(t)

	release, err := g.Lock(t.Context())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Lock(ctx)
	assert.Error(t, err)
}
