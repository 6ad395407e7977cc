// Package status evaluates a single pull request: review state, review
// deadline, mergeability against the target branch and CI reports.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanmeadows/pullstatus/internal/cruise"
	"github.com/alanmeadows/pullstatus/internal/merge"
	"github.com/alanmeadows/pullstatus/internal/provider"
	"github.com/alanmeadows/pullstatus/internal/review"
	"github.com/alanmeadows/pullstatus/internal/sla"
)

// Reconciler decides whether a pull request head fast-forwards onto its target.
type Reconciler interface {
	Reconcile(ctx context.Context, req merge.Request) (*merge.Result, error)
}

// Aggregator buckets the CI reports referenced by a pull request.
type Aggregator interface {
	Aggregate(ctx context.Context, in cruise.Input) (*cruise.Summary, error)
}

// Verdict summarizes the authoritative review state for the report.
type Verdict string

const (
	VerdictNeverReviewed     Verdict = "never reviewed"
	VerdictUnreviewedCommits Verdict = "unreviewed commits"
	VerdictReviewed          Verdict = "reviewed"
)

// Report is the evaluated status of one pull request.
type Report struct {
	Project string `yaml:"project"`
	Number  int    `yaml:"number"`
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
	HeadSHA string `yaml:"head_sha"`

	Verdict       Verdict  `yaml:"verdict"`
	CurrentReview string   `yaml:"current_review,omitempty"`
	LastStatus    string   `yaml:"last_status,omitempty"`
	NeedsReview   bool     `yaml:"needs_review"`
	PreOK         bool     `yaml:"pre_ok"`
	Maintainers   []string `yaml:"maintainers"`
	// LastMaintainerComment is set for pull requests that were never reviewed.
	LastMaintainerComment string `yaml:"last_maintainer_comment,omitempty"`
	// LastFeedback is the body of the current review's comment when commits
	// were pushed after it.
	LastFeedback     string   `yaml:"last_feedback,omitempty"`
	ReviewCompareURL string   `yaml:"review_compare_url,omitempty"`
	Choices          []string `yaml:"choices,omitempty"`

	RequestedAt time.Time `yaml:"requested_at"`
	Due         time.Time `yaml:"due"`
	Urgency     string    `yaml:"urgency"`

	Merge  MergeStatus     `yaml:"merge"`
	Cruise *cruise.Summary `yaml:"cruise"`
}

// MergeStatus is the mergeability part of a report.
type MergeStatus struct {
	MasterBranch    string `yaml:"master_branch"`
	MasterSHA       string `yaml:"master_sha"`
	MergeBase       string `yaml:"merge_base"`
	FastForwardable bool   `yaml:"fast_forwardable"`
	CompareURL      string `yaml:"compare_url,omitempty"`
}

// Options configures an Evaluator.
type Options struct {
	API         provider.HostingAPI
	Maintainers review.MaintainerSource
	Merge       Reconciler
	Cruise      Aggregator
	Policy      sla.Policy
	// Remote is the working copy remote refreshed on merge-base failure.
	Remote string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Evaluator produces status reports.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates an evaluator.
func NewEvaluator(opts Options) *Evaluator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == (sla.Policy{}) {
		opts.Policy = sla.DefaultPolicy()
	}
	return &Evaluator{opts: opts}
}

// Evaluate fetches the pull request and everything derived from it. Any
// failure aborts the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, project string, number int) (*Report, error) {
	var (
		pr          *provider.PRInfo
		maintainers review.MaintainerSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pr, err = e.opts.API.GetPR(gctx, project, number)
		return err
	})
	g.Go(func() error {
		var err error
		maintainers, err = e.opts.Maintainers.Maintainers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		comments []provider.Comment
		master   *provider.Branch
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = e.opts.API.GetComments(gctx, pr)
		return err
	})
	g.Go(func() error {
		var err error
		master, err = e.opts.API.GetBranch(gctx, pr.Project, pr.DefaultBranch)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Debug("fetched pull request", "project", pr.Project, "number", pr.Number,
		"comments", len(comments), "master", master.SHA)

	var (
		merged  *merge.Result
		summary *cruise.Summary
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		merged, err = e.opts.Merge.Reconcile(gctx, merge.Request{
			MasterBranch: master.Name,
			MasterSHA:    master.SHA,
			HeadSHA:      pr.HeadSHA,
			HeadRef:      fmt.Sprintf("pull/%d/head", pr.Number),
			Remote:       e.opts.Remote,
		})
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = e.opts.Cruise.Aggregate(gctx, cruise.Input{
			HeadSHA:     pr.HeadSHA,
			Description: pr.Description,
			Comments:    comments,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.build(pr, comments, maintainers, master, merged, summary), nil
}

// build assembles the report from fetched data. It performs no I/O.
func (e *Evaluator) build(
	pr *provider.PRInfo,
	comments []provider.Comment,
	maintainers review.MaintainerSet,
	master *provider.Branch,
	merged *merge.Result,
	summary *cruise.Summary,
) *Report {
	head := review.ShortSHA(pr.HeadSHA)
	state := review.Evaluate(comments, maintainers, pr.HeadSHA)
	schedule := e.opts.Policy.Compute(pr.CreatedAt, state)

	r := &Report{
		Project:     pr.Project,
		Number:      pr.Number,
		Title:       pr.Title,
		URL:         pr.URL,
		HeadSHA:     head,
		LastStatus:  string(state.LastStatus),
		NeedsReview: state.NeedsReview,
		PreOK:       state.PreOK,
		Maintainers: maintainers.Logins(),
		RequestedAt: schedule.RequestedAt,
		Due:         schedule.Due,
		Urgency:     schedule.Urgency(e.opts.Now()).String(),
		Cruise:      summary,
	}

	choices := []string{
		review.Review{Status: review.StatusOK, SHA: head}.String(),
		review.Review{Status: review.StatusFeedback, SHA: head}.String(),
	}

	switch {
	case state.NeverReviewed:
		r.Verdict = VerdictNeverReviewed
		if c := review.LastMaintainerComment(comments, maintainers); c != nil {
			r.LastMaintainerComment = c.Body
		}
		r.Choices = choices
	case state.UnreviewedCommits:
		r.Verdict = VerdictUnreviewedCommits
		r.CurrentReview = state.CurrentReview.String()
		r.ReviewCompareURL = CompareURL(pr.RepoURL, state.CurrentReview.SHA, head)
		if c := review.LastReviewComment(comments, maintainers); c != nil {
			r.LastFeedback = c.Body
		}
		r.Choices = choices
	default:
		r.Verdict = VerdictReviewed
		r.CurrentReview = state.CurrentReview.String()
	}

	r.Merge = MergeStatus{
		MasterBranch:    master.Name,
		MasterSHA:       merged.MasterSHA,
		MergeBase:       merged.MergeBase,
		FastForwardable: merged.FastForwardable,
	}
	if !merged.FastForwardable {
		r.Merge.CompareURL = CompareURL(pr.RepoURL, merged.MergeBase, master.Name)
	}
	return r
}

// CompareURL returns the web compare view between two revisions.
func CompareURL(repoURL, from, to string) string {
	return fmt.Sprintf("%s/compare/%s...%s", repoURL, from, to)
}
