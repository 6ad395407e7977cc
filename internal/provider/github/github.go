package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alanmeadows/pullstatus/internal/provider"
)

// DefaultRequestTimeout applies when no request timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// Backend implements provider.HostingAPI for GitHub and GitHub Enterprise.
type Backend struct {
	client    *gh.Client
	gqlOnce   sync.Once
	gqlClient *githubv4.Client
	token     string
	baseURL   string // enterprise API root, or test server
	host      string // enterprise web host matched by MatchesURL
	timeout   time.Duration
}

// NewBackend creates a GitHub backend authenticated with token.
// baseURL selects a GitHub Enterprise API root ("https://host/api/v3/"); empty
// means github.com. Uses go-github-ratelimit middleware for automatic rate
// limit handling and bounds every request by timeout.
func NewBackend(token, baseURL string, timeout time.Duration) (*Backend, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rateLimiter := github_ratelimit.NewClient(nil)
	rateLimiter.Timeout = timeout
	client := gh.NewClient(rateLimiter).WithAuthToken(token)

	b := &Backend{
		token:   token,
		timeout: timeout,
	}

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %q: %w", baseURL, err)
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing enterprise URL %q: %w", baseURL, err)
		}
		b.baseURL = baseURL
		b.host = strings.ToLower(u.Hostname())
	}

	b.client = client
	return b, nil
}

// Name returns "github".
func (b *Backend) Name() string {
	return "github"
}

// MatchesURL returns true if the URL belongs to GitHub or the configured enterprise host.
func (b *Backend) MatchesURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if b.host != "" && host == b.host {
		return true
	}
	return host == "github.com" || host == "www.github.com"
}

// ListPRs returns the open pull requests of project.
func (b *Backend) ListPRs(ctx context.Context, project string) ([]*provider.PRInfo, error) {
	owner, repo, err := splitProject(project)
	if err != nil {
		return nil, err
	}

	var prs []*provider.PRInfo
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		type page struct {
			prs  []*gh.PullRequest
			next int
		}
		p, err := retryOnTimeout(ctx, "list pull requests", func() (page, error) {
			list, resp, err := b.client.PullRequests.List(ctx, owner, repo, opts)
			if err != nil {
				return page{}, err
			}
			return page{prs: list, next: resp.NextPage}, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", project, err)
		}
		for _, pr := range p.prs {
			prs = append(prs, mapPR(pr, project))
		}
		if p.next == 0 {
			break
		}
		opts.Page = p.next
	}

	return prs, nil
}

// GetPR retrieves a single pull request.
func (b *Backend) GetPR(ctx context.Context, project string, number int) (*provider.PRInfo, error) {
	owner, repo, err := splitProject(project)
	if err != nil {
		return nil, err
	}

	pr, err := retryOnTimeout(ctx, "get pull request", func() (*gh.PullRequest, error) {
		pr, _, err := b.client.PullRequests.Get(ctx, owner, repo, number)
		return pr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get PR %s#%d: %w", project, number, err)
	}

	return mapPR(pr, project), nil
}

// GetComments retrieves the conversation comments of a pull request in the
// order GitHub returns them (creation order). Only a single page is read: a
// full page is reported as *provider.PaginationLimitError.
func (b *Backend) GetComments(ctx context.Context, pr *provider.PRInfo) ([]provider.Comment, error) {
	owner, repo, err := splitProject(pr.Project)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: provider.CommentPageSize},
	}
	issueComments, err := retryOnTimeout(ctx, "list comments", func() ([]*gh.IssueComment, error) {
		list, _, err := b.client.Issues.ListComments(ctx, owner, repo, pr.Number, opts)
		return list, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for %s#%d: %w", pr.Project, pr.Number, err)
	}

	if len(issueComments) >= provider.CommentPageSize {
		return nil, &provider.PaginationLimitError{Resource: "comments", Limit: provider.CommentPageSize}
	}

	comments := make([]provider.Comment, 0, len(issueComments))
	for _, c := range issueComments {
		comments = append(comments, provider.Comment{
			ID:        strconv.FormatInt(c.GetID(), 10),
			Author:    c.GetUser().GetLogin(),
			Body:      c.GetBody(),
			CreatedAt: c.GetCreatedAt().Time,
		})
	}
	return comments, nil
}

// GetBranch returns the named branch and its current head sha.
func (b *Backend) GetBranch(ctx context.Context, project, name string) (*provider.Branch, error) {
	owner, repo, err := splitProject(project)
	if err != nil {
		return nil, err
	}

	branch, err := retryOnTimeout(ctx, "get branch", func() (*gh.Branch, error) {
		br, _, err := b.client.Repositories.GetBranch(ctx, owner, repo, name, 1)
		return br, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s of %s: %w", name, project, err)
	}

	sha := branch.GetCommit().GetSHA()
	if sha == "" {
		return nil, fmt.Errorf("branch %s of %s has no commit sha", name, project)
	}
	return &provider.Branch{Name: branch.GetName(), SHA: sha}, nil
}

// CurrentUser returns the login of the token owner using the GraphQL viewer query.
func (b *Backend) CurrentUser(ctx context.Context) (string, error) {
	gql := b.getGraphQLClient()

	login, err := retryOnTimeout(ctx, "get authenticated user", func() (string, error) {
		var query struct {
			Viewer struct {
				Login githubv4.String
			}
		}
		if err := gql.Query(ctx, &query, nil); err != nil {
			return "", err
		}
		return string(query.Viewer.Login), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	if login == "" {
		return "", errors.New("authenticated user has an empty login")
	}
	return login, nil
}

// Compare returns the files changed between the pull request's base branch and head.
func (b *Backend) Compare(ctx context.Context, pr *provider.PRInfo) (*provider.Comparison, error) {
	owner, repo, err := splitProject(pr.Project)
	if err != nil {
		return nil, err
	}

	cmp, err := retryOnTimeout(ctx, "compare commits", func() (*gh.CommitsComparison, error) {
		cmp, _, err := b.client.Repositories.CompareCommits(ctx, owner, repo, pr.BaseBranch, pr.HeadSHA, nil)
		return cmp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s: %w", pr.BaseBranch, pr.HeadSHA, err)
	}

	result := &provider.Comparison{}
	for _, f := range cmp.Files {
		result.ChangedLines += f.GetChanges()
		result.Files = append(result.Files, f.GetFilename())
	}
	return result, nil
}

// --- Internal helpers ---

// retryOnTimeout runs fn up to provider.MaxTimeoutAttempts times while it fails
// with a timeout. There is no backoff between attempts. Any other error, or a
// cancelled caller context, is returned immediately.
func retryOnTimeout[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= provider.MaxTimeoutAttempts; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !isTimeout(ctx, err) {
			return zero, err
		}
		lastErr = err
		slog.Warn("API request timed out", "op", op, "attempt", attempt, "error", err)
	}
	return zero, &provider.APITimeoutError{Op: op, Attempts: provider.MaxTimeoutAttempts, Err: lastErr}
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded)
}

// splitProject splits "owner/repo".
func splitProject(project string) (string, string, error) {
	owner, repo, ok := strings.Cut(project, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid project %q, expected owner/repo", project)
	}
	return owner, repo, nil
}

// mapPR converts a GitHub PullRequest to provider.PRInfo.
func mapPR(pr *gh.PullRequest, project string) *provider.PRInfo {
	base := pr.GetBase()
	if name := base.GetRepo().GetFullName(); name != "" {
		project = name
	}

	return &provider.PRInfo{
		Number:        pr.GetNumber(),
		Project:       project,
		Title:         pr.GetTitle(),
		Description:   pr.GetBody(),
		Author:        pr.GetUser().GetLogin(),
		HeadSHA:       pr.GetHead().GetSHA(),
		HeadRef:       pr.GetHead().GetRef(),
		BaseBranch:    base.GetRef(),
		DefaultBranch: base.GetRepo().GetDefaultBranch(),
		URL:           pr.GetHTMLURL(),
		RepoURL:       base.GetRepo().GetHTMLURL(),
		CreatedAt:     pr.GetCreatedAt().Time,
		UpdatedAt:     pr.GetUpdatedAt().Time,
	}
}

// getGraphQLClient returns (and lazily creates) the GitHub GraphQL client.
// Thread-safe via sync.Once.
func (b *Backend) getGraphQLClient() *githubv4.Client {
	b.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.token})
		httpClient := oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = b.timeout
		if endpoint := b.graphQLEndpoint(); endpoint != "" {
			b.gqlClient = githubv4.NewEnterpriseClient(endpoint, httpClient)
		} else {
			b.gqlClient = githubv4.NewClient(httpClient)
		}
	})
	return b.gqlClient
}

// graphQLEndpoint derives the enterprise GraphQL endpoint from the REST root.
// Returns "" for github.com.
func (b *Backend) graphQLEndpoint() string {
	if b.baseURL == "" {
		return ""
	}
	root := strings.TrimSuffix(b.baseURL, "/")
	root = strings.TrimSuffix(root, "/api/v3")
	return root + "/api/graphql"
}

// Verify Backend implements HostingAPI at compile time.
var _ provider.HostingAPI = (*Backend)(nil)

