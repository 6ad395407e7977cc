package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// CommentPageSize is the page size requested for comment listings. A page that
// comes back full means more comments exist than a single request can return.
const CommentPageSize = 100

// MaxTimeoutAttempts bounds how many times a timed-out API call is attempted.
const MaxTimeoutAttempts = 3

//go:generate mockgen -destination=providertest/mock_provider.go -package=providertest github.com/alanmeadows/pullstatus/internal/provider HostingAPI

// HostingAPI is the interface to the code hosting service.
// Implementations fetch pull request metadata, comment history, branch state
// and the identity of the authenticated caller.
type HostingAPI interface {
	// Name returns the short identifier for this backend (e.g., "github").
	Name() string

	// MatchesURL returns true if the given URL belongs to this backend's hosting service.
	MatchesURL(url string) bool

	// ListPRs returns the open pull requests of a project ("owner/repo").
	ListPRs(ctx context.Context, project string) ([]*PRInfo, error)

	// GetPR retrieves a single pull request.
	GetPR(ctx context.Context, project string, number int) (*PRInfo, error)

	// GetComments returns the pull request's comments in the order the service
	// delivers them. Returns a *PaginationLimitError when a full page comes back.
	GetComments(ctx context.Context, pr *PRInfo) ([]Comment, error)

	// GetBranch returns a branch of the project with its current head sha.
	GetBranch(ctx context.Context, project, name string) (*Branch, error)

	// CurrentUser returns the login of the authenticated caller.
	CurrentUser(ctx context.Context) (string, error)

	// Compare returns the comparison between the pull request's base branch and its head.
	Compare(ctx context.Context, pr *PRInfo) (*Comparison, error)
}

// PRInfo contains metadata about a pull request.
type PRInfo struct {
	// Number is the pull request number within its project.
	Number int
	// Project is the "owner/repo" name of the base repository.
	Project string
	// Title is the pull request title.
	Title string
	// Description is the pull request body text.
	Description string
	// Author is the login of the pull request author.
	Author string
	// HeadSHA is the full sha of the pull request head commit.
	HeadSHA string
	// HeadRef is the name of the head branch.
	HeadRef string
	// BaseBranch is the branch the pull request targets.
	BaseBranch string
	// DefaultBranch is the base repository's default ("master") branch.
	DefaultBranch string
	// URL is the web URL of the pull request.
	URL string
	// RepoURL is the web URL of the base repository.
	RepoURL string
	// CreatedAt is when the pull request was opened.
	CreatedAt time.Time
	// UpdatedAt is when the pull request was last updated.
	UpdatedAt time.Time
}

// Comment is a single comment in a pull request's conversation.
type Comment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Branch is a branch of a repository and the sha it currently points at.
type Branch struct {
	Name string
	SHA  string
}

// Comparison summarizes the difference between a pull request's base and head.
type Comparison struct {
	// ChangedLines is the sum of additions and deletions over all files.
	ChangedLines int
	// Files lists the changed file paths.
	Files []string
}

// PaginationLimitError is returned when a listing fills an entire page and
// no pagination is attempted.
type PaginationLimitError struct {
	Resource string
	Limit    int
}

func (e *PaginationLimitError) Error() string {
	return fmt.Sprintf(">= %d %s found and pagination is not implemented", e.Limit, e.Resource)
}

// APITimeoutError is returned when an API call keeps timing out.
type APITimeoutError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *APITimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *APITimeoutError) Unwrap() error {
	return e.Err
}

// ErrNotPullURL is returned by ParsePullURL for input that is not a pull request URL.
var ErrNotPullURL = errors.New("not a pull request URL")

var pullURLPattern = regexp.MustCompile(`([^/]+)/([^/]+)/pull/(\d+)`)

// ParsePullURL extracts the project ("owner/repo") and number from a URL of the
// form .../<owner>/<repo>/pull/<id>.
func ParsePullURL(rawURL string) (project string, number int, err error) {
	m := pullURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrNotPullURL, rawURL)
	}
	number, err = strconv.Atoi(m[3])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrNotPullURL, rawURL)
	}
	return m[1] + "/" + m[2], number, nil
}
