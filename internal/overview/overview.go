// Package overview evaluates every open pull request of a set of
// repositories and orders the ones waiting on a maintainer by due date.
package overview

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/alanmeadows/pullstatus/internal/provider"
	"github.com/alanmeadows/pullstatus/internal/review"
	"github.com/alanmeadows/pullstatus/internal/sla"
)

const (
	// DefaultMaxAge drops pull requests not updated within two weeks.
	DefaultMaxAge = 14 * 24 * time.Hour
	// DefaultParallelism bounds concurrent API requests.
	DefaultParallelism = 8
)

// Flags printed next to an entry.
const (
	FlagNotDue   = "NOT DUE"
	FlagReReview = "RE-REVIEW"
	FlagPreOK    = "PRE-OK"
	FlagOverdue  = "OVERDUE"
)

// Options configures a Builder.
type Options struct {
	API         provider.HostingAPI
	Maintainers review.MaintainerSource
	Policy      sla.Policy
	// MaxAge defaults to DefaultMaxAge.
	MaxAge time.Duration
	// Parallelism defaults to DefaultParallelism.
	Parallelism int
	// All keeps pull requests that do not need review.
	All bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Entry is one pull request in the overview.
type Entry struct {
	Project       string    `yaml:"project"`
	Number        int       `yaml:"number"`
	Title         string    `yaml:"title"`
	Author        string    `yaml:"author"`
	URL           string    `yaml:"url"`
	ChangedLines  int       `yaml:"changed_lines"`
	Files         []string  `yaml:"files,omitempty"`
	NeedsReview   bool      `yaml:"needs_review"`
	NeverReviewed bool      `yaml:"never_reviewed"`
	PreOK         bool      `yaml:"pre_ok"`
	Due           time.Time `yaml:"due"`
	Urgency       string    `yaml:"urgency"`
	Flags         []string  `yaml:"flags,omitempty"`
}

// Failure is a repository or pull request that could not be evaluated.
type Failure struct {
	Project string `yaml:"project"`
	// Number is zero when listing the repository failed.
	Number int    `yaml:"number,omitempty"`
	URL    string `yaml:"url,omitempty"`
	Err    error  `yaml:"-"`
	Error  string `yaml:"error"`
}

// Result is the outcome of an overview run.
type Result struct {
	Entries  []Entry   `yaml:"entries"`
	Failures []Failure `yaml:"failures,omitempty"`
}

// Builder runs overviews.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == (sla.Policy{}) {
		opts.Policy = sla.DefaultPolicy()
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = DefaultParallelism
	}
	return &Builder{opts: opts}
}

// slot holds the pre-fetched data of one pull request. Each field is written
// by exactly one task.
type slot struct {
	pr          *provider.PRInfo
	comments    []provider.Comment
	commentsErr error
	cmp         *provider.Comparison
	cmpErr      error
}

// Build lists the open pull requests of repos, pre-fetches comments and
// comparisons in parallel, then classifies and sorts by due date. A failure
// for one repository or pull request does not stop the others: it is
// recorded in Result.Failures and included in the returned error, which is
// non-nil whenever any failure occurred.
func (b *Builder) Build(ctx context.Context, repos []string) (*Result, error) {
	maintainers, err := b.opts.Maintainers.Maintainers(ctx)
	if err != nil {
		return nil, err
	}

	now := b.opts.Now()
	result := &Result{}

	prs, listFailures := b.list(ctx, repos)
	result.Failures = append(result.Failures, listFailures...)

	var slots []*slot
	for _, pr := range prs {
		if pr.BaseBranch != pr.DefaultBranch {
			slog.Debug("skipping pull request against non-default branch",
				"project", pr.Project, "number", pr.Number, "base", pr.BaseBranch)
			continue
		}
		if pr.UpdatedAt.Before(now.Add(-b.opts.MaxAge)) {
			slog.Debug("skipping stale pull request", "project", pr.Project, "number", pr.Number)
			continue
		}
		slots = append(slots, &slot{pr: pr})
	}

	b.prefetch(ctx, slots)

	for _, s := range slots {
		if err := multierr.Append(s.commentsErr, s.cmpErr); err != nil {
			result.Failures = append(result.Failures, newFailure(s.pr.Project, s.pr.Number, s.pr.URL, err))
			continue
		}
		e := b.entry(s, maintainers, now)
		if !e.NeedsReview && !b.opts.All {
			continue
		}
		result.Entries = append(result.Entries, e)
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].Due.Before(result.Entries[j].Due)
	})

	var errs error
	for _, f := range result.Failures {
		errs = multierr.Append(errs, f.Err)
	}
	return result, errs
}

// list fetches the open pull requests of every repository.
func (b *Builder) list(ctx context.Context, repos []string) ([]*provider.PRInfo, []Failure) {
	lists := make([][]*provider.PRInfo, len(repos))
	errs := make([]error, len(repos))

	var g errgroup.Group
	g.SetLimit(b.opts.Parallelism)
	for i, repo := range repos {
		g.Go(func() error {
			lists[i], errs[i] = b.opts.API.ListPRs(ctx, repo)
			return nil
		})
	}
	_ = g.Wait()

	var prs []*provider.PRInfo
	var failures []Failure
	for i, repo := range repos {
		if errs[i] != nil {
			failures = append(failures, newFailure(repo, 0, "", errs[i]))
			continue
		}
		prs = append(prs, lists[i]...)
	}
	return prs, failures
}

// prefetch runs two tasks per pull request, one for its comments and one for
// its comparison, and waits for all of them.
func (b *Builder) prefetch(ctx context.Context, slots []*slot) {
	var g errgroup.Group
	g.SetLimit(b.opts.Parallelism)
	for _, s := range slots {
		g.Go(func() error {
			s.comments, s.commentsErr = b.opts.API.GetComments(ctx, s.pr)
			return nil
		})
		g.Go(func() error {
			s.cmp, s.cmpErr = b.opts.API.Compare(ctx, s.pr)
			return nil
		})
	}
	_ = g.Wait()
}

func (b *Builder) entry(s *slot, maintainers review.MaintainerSet, now time.Time) Entry {
	state := review.Evaluate(s.comments, maintainers, s.pr.HeadSHA)
	schedule := b.opts.Policy.Compute(s.pr.CreatedAt, state)
	urgency := schedule.Urgency(now)

	e := Entry{
		Project:       s.pr.Project,
		Number:        s.pr.Number,
		Title:         s.pr.Title,
		Author:        s.pr.Author,
		URL:           s.pr.URL,
		ChangedLines:  s.cmp.ChangedLines,
		Files:         s.cmp.Files,
		NeedsReview:   state.NeedsReview,
		NeverReviewed: state.NeverReviewed,
		PreOK:         state.PreOK,
		Due:           schedule.Due,
		Urgency:       urgency.String(),
	}
	e.Flags = flags(urgency, state)
	return e
}

func flags(urgency sla.Urgency, state review.State) []string {
	var out []string
	switch urgency {
	case sla.NotDue:
		out = append(out, FlagNotDue)
	case sla.Overdue:
		out = append(out, FlagOverdue)
	}
	if !state.NeverReviewed {
		out = append(out, FlagReReview)
	}
	if state.PreOK {
		out = append(out, FlagPreOK)
	}
	return out
}

func newFailure(project string, number int, url string, err error) Failure {
	if number > 0 {
		err = fmt.Errorf("%s#%d: %w", project, number, err)
	} else {
		err = fmt.Errorf("%s: %w", project, err)
	}
	return Failure{Project: project, Number: number, URL: url, Err: err, Error: err.Error()}
}
