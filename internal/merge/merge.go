// Package merge decides whether a pull request can be fast-forwarded onto its
// target branch by consulting a local working copy.
package merge

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultRemote is the remote refreshed when the merge-base cannot be computed.
const DefaultRemote = "origin"

//go:generate mockgen -destination=mergetest/mock_git.go -package=mergetest github.com/alanmeadows/pullstatus/internal/merge Git

// Git is the part of the working copy the reconciler drives.
type Git interface {
	// Lock takes exclusive ownership of the working copy; call the returned
	// function to release it.
	Lock(ctx context.Context) (func(), error)
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, ref string) error
	Pull(ctx context.Context, remote, branch string) error
	Fetch(ctx context.Context, remote, ref string) error
	MergeBase(ctx context.Context, a, b string) (string, error)
}

// Request describes the pull request head and the target branch state.
type Request struct {
	// MasterBranch is the target branch name.
	MasterBranch string
	// MasterSHA is the target branch's current sha according to the hosting service.
	MasterSHA string
	// HeadSHA is the pull request head sha.
	HeadSHA string
	// HeadRef, when set, is fetched during refresh so HeadSHA becomes known locally
	// (e.g. "pull/42/head").
	HeadRef string
	// Remote defaults to DefaultRemote.
	Remote string
}

// Result is the outcome of a reconciliation.
type Result struct {
	MergeBase       string
	MasterSHA       string
	FastForwardable bool
}

// Reconciler computes merge-bases in a working copy shared by the process.
type Reconciler struct {
	git Git
}

// NewReconciler creates a reconciler over git.
func NewReconciler(git Git) *Reconciler {
	return &Reconciler{git: git}
}

// Reconcile computes the merge-base of the target branch and the pull request
// head. If that fails it checks out the target branch, pulls it, and tries
// exactly once more; a second failure is returned as is. The working copy is
// locked for the duration and the branch checked out on entry is restored on
// every exit path.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (result *Result, err error) {
	if req.Remote == "" {
		req.Remote = DefaultRemote
	}

	release, err := r.git.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	original, err := r.git.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Restore even when ctx is already cancelled.
		rerr := r.git.Checkout(context.WithoutCancel(ctx), original)
		switch {
		case rerr == nil:
			slog.Debug("restored branch", "branch", original)
		case err == nil:
			result, err = nil, fmt.Errorf("restoring branch %s: %w", original, rerr)
		default:
			slog.Warn("failed to restore branch", "branch", original, "error", rerr)
		}
	}()

	mergeBase, err := r.mergeBase(ctx, req)
	if err != nil {
		return nil, err
	}

	result = &Result{
		MergeBase:       mergeBase,
		MasterSHA:       req.MasterSHA,
		FastForwardable: mergeBase == req.MasterSHA,
	}
	return result, nil
}

func (r *Reconciler) mergeBase(ctx context.Context, req Request) (string, error) {
	retried := false
	for {
		mb, err := r.git.MergeBase(ctx, req.MasterSHA, req.HeadSHA)
		if err == nil {
			return mb, nil
		}
		if retried {
			return "", err
		}

		slog.Info("merge-base failed, refreshing target branch",
			"branch", req.MasterBranch, "remote", req.Remote, "error", err)
		if err := r.refresh(ctx, req); err != nil {
			return "", err
		}
		retried = true
	}
}

// refresh brings the target branch and, if known, the pull request head up to date.
func (r *Reconciler) refresh(ctx context.Context, req Request) error {
	if err := r.git.Checkout(ctx, req.MasterBranch); err != nil {
		return err
	}
	if err := r.git.Pull(ctx, req.Remote, req.MasterBranch); err != nil {
		return err
	}
	if req.HeadRef != "" {
		if err := r.git.Fetch(ctx, req.Remote, req.HeadRef); err != nil {
			return err
		}
	}
	return nil
}
