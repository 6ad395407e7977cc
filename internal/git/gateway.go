package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 30 * time.Second

// Gateway runs git porcelain commands in a single working copy.
type Gateway struct {
	dir         string
	gitDir      string
	lockTimeout time.Duration
}

// FileChange is one line of `git diff --name-status`.
type FileChange struct {
	Status string
	Path   string
}

// NewGateway builds a gateway for the working copy at dir.
func NewGateway(ctx context.Context, dir string) (*Gateway, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine absolute path of %v: %w", dir, err)
	}

	g := &Gateway{dir: abs, lockTimeout: DefaultLockTimeout}
	gitDir, err := g.output(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("could not find git repository at %v: %w", abs, err)
	}
	g.gitDir = gitDir
	return g, nil
}

// Dir returns the working copy root.
func (g *Gateway) Dir() string {
	return g.dir
}

// CurrentBranch returns the checked-out branch name. On a detached HEAD it
// returns the commit sha so that checking it out restores the same state.
func (g *Gateway) CurrentBranch(ctx context.Context) (string, error) {
	name, err := g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if name != "HEAD" {
		return name, nil
	}
	return g.output(ctx, "rev-parse", "HEAD")
}

// Checkout checks the given branch or revision out.
func (g *Gateway) Checkout(ctx context.Context, ref string) error {
	_, err := g.output(ctx, "checkout", ref)
	return err
}

// Pull pulls branch from remote into the current branch.
func (g *Gateway) Pull(ctx context.Context, remote, branch string) error {
	_, err := g.output(ctx, "pull", remote, branch)
	return err
}

// Fetch fetches ref from remote.
func (g *Gateway) Fetch(ctx context.Context, remote, ref string) error {
	_, err := g.output(ctx, "fetch", remote, ref)
	return err
}

// MergeBase returns the best common ancestor of a and b.
func (g *Gateway) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := g.output(ctx, "merge-base", a, b)
	if err != nil {
		return "", &MergeBaseError{A: a, B: b, Err: err}
	}
	return out, nil
}

// DiffNameStatus lists the files changed between a and b.
func (g *Gateway) DiffNameStatus(ctx context.Context, a, b string) ([]FileChange, error) {
	out, err := g.output(ctx, "diff", "--name-status", a, b)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// Lock takes the working-copy lock. The returned function releases it.
func (g *Gateway) Lock(ctx context.Context) (func(), error) {
	return acquire(ctx, filepath.Join(g.gitDir, "pullstatus.lock"), g.lockTimeout)
}

func parseNameStatus(out string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		// Renames and copies list the old and new path; keep the new one.
		changes = append(changes, FileChange{Status: fields[0], Path: fields[len(fields)-1]})
	}
	return changes
}

// output runs git with args and returns its trimmed output.
func (g *Gateway) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &ShellCommandError{Args: args, Dir: g.dir, Output: string(out), Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}
