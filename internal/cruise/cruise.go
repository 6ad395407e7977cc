// Package cruise discovers CI ("cruise") report URLs in a pull request's
// conversation, fetches the reports and buckets them by outcome for the
// current head commit.
package cruise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alanmeadows/pullstatus/internal/provider"
	"github.com/alanmeadows/pullstatus/internal/review"
)

// DefaultURLPattern matches report URLs in comment text.
const DefaultURLPattern = `http://cruise\S+`

// DefaultParallelism bounds concurrent report fetches.
const DefaultParallelism = 4

// Outcome is the classified result of a report.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFailure    Outcome = "failure"
	OutcomeInProgress Outcome = "in_progress"
)

// ErrNotFound is returned by a Fetcher when the report no longer exists.
var ErrNotFound = errors.New("report not found")

// ParseError is returned when a current report contains no known outcome.
type ParseError struct {
	URL string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s", e.URL)
}

//go:generate mockgen -destination=cruisetest/mock_fetcher.go -package=cruisetest github.com/alanmeadows/pullstatus/internal/cruise Fetcher

// Fetcher retrieves the text of a report. Missing reports yield ErrNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Report is a fetched report.
type Report struct {
	URL    string `yaml:"url"`
	Output string `yaml:"-"`
	// Outcome is empty for reports about other commits that could not be classified.
	Outcome Outcome `yaml:"outcome,omitempty"`
	// Current reports mention the pull request's head sha prefix.
	Current bool `yaml:"current"`
}

// Summary buckets the current reports of a pull request.
type Summary struct {
	Reports    []Report `yaml:"reports,omitempty"`
	Successful []string `yaml:"successful,omitempty"`
	Failing    []string `yaml:"failing,omitempty"`
}

// Empty reports whether there is no decisive current report.
func (s *Summary) Empty() bool {
	return len(s.Successful) == 0 && len(s.Failing) == 0
}

// Input is the pull request data scanned for report URLs.
type Input struct {
	HeadSHA     string
	Description string
	Comments    []provider.Comment
}

// Classify returns the outcome named in output. Priority is
// failure > in_progress > success; ok is false when none is present.
func Classify(output string) (outcome Outcome, ok bool) {
	switch {
	case strings.Contains(output, string(OutcomeFailure)):
		return OutcomeFailure, true
	case strings.Contains(output, string(OutcomeInProgress)):
		return OutcomeInProgress, true
	case strings.Contains(output, string(OutcomeSuccess)):
		return OutcomeSuccess, true
	}
	return "", false
}

// CollectURLs returns every match of pattern in texts, in order of first
// appearance and without duplicates.
func CollectURLs(pattern *regexp.Regexp, texts ...string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, text := range texts {
		for _, u := range pattern.FindAllString(text, -1) {
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// Aggregator fetches and buckets reports.
type Aggregator struct {
	fetcher     Fetcher
	pattern     *regexp.Regexp
	parallelism int
}

// NewAggregator creates an aggregator. A nil pattern uses DefaultURLPattern.
func NewAggregator(fetcher Fetcher, pattern *regexp.Regexp) *Aggregator {
	if pattern == nil {
		pattern = regexp.MustCompile(DefaultURLPattern)
	}
	return &Aggregator{
		fetcher:     fetcher,
		pattern:     pattern,
		parallelism: DefaultParallelism,
	}
}

// Aggregate scans the comments and description for report URLs, fetches them
// and buckets the reports that mention the head sha prefix. Reports that are
// gone are dropped. A current report without a known outcome fails the whole
// aggregation with a *ParseError.
func (a *Aggregator) Aggregate(ctx context.Context, in Input) (*Summary, error) {
	texts := make([]string, 0, len(in.Comments)+1)
	for _, c := range in.Comments {
		texts = append(texts, c.Body)
	}
	texts = append(texts, in.Description)
	urls := CollectURLs(a.pattern, texts...)

	outputs := make([]*string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, u := range urls {
		g.Go(func() error {
			out, err := a.fetcher.Fetch(gctx, u)
			if errors.Is(err, ErrNotFound) {
				slog.Debug("dropping missing report", "url", u)
				return nil
			}
			if err != nil {
				return err
			}
			outputs[i] = &out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prefix := review.ShortSHA(in.HeadSHA)
	summary := &Summary{}
	for i, u := range urls {
		if outputs[i] == nil {
			continue
		}
		report := Report{
			URL:     u,
			Output:  *outputs[i],
			Current: prefix != "" && strings.Contains(*outputs[i], prefix),
		}
		outcome, ok := Classify(report.Output)
		if report.Current && !ok {
			return nil, &ParseError{URL: u}
		}
		report.Outcome = outcome
		summary.Reports = append(summary.Reports, report)

		if !report.Current {
			continue
		}
		switch outcome {
		case OutcomeSuccess:
			summary.Successful = append(summary.Successful, u)
		case OutcomeFailure:
			summary.Failing = append(summary.Failing, u)
		}
	}
	return summary, nil
}
