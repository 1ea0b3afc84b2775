// Package gateway provides a gateway to the GitHub API, abstracting away
// the underlying REST client and its pagination.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/contriborg/contribsync/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	RateLimit(ctx context.Context) (domain.RateLimit, error)
	ListRepositories(ctx context.Context, org string) ([]string, error)
	ListCommits(ctx context.Context, org, repo string, since time.Time) ([]domain.Event, error)
	ListPullRequests(ctx context.Context, org, repo string, since time.Time) ([]domain.Event, error)
	ListIssues(ctx context.Context, org, repo string, since time.Time) ([]domain.Event, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// All list methods page through their collection with a fixed page size
// of 100, following the Link rel="next" continuation until it is absent,
// and return the order-preserving concatenation of every page.
type GitHubGateway struct {
	client  *github.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

const perPage = 100

// NewGitHubGateway creates a gateway authenticated with the given token.
// The HTTP transport chains the oauth2 bearer source over a secondary
// rate limit waiter, and individual page requests are paced by a client
// side limiter so a long run does not burn the quota in a burst.
func NewGitHubGateway(token string, logger *logrus.Logger) (*GitHubGateway, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client:  github.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		logger:  logger,
	}, nil
}

// RateLimit reads the remaining core quota. It is probed once per run as
// a precondition gate.
func (g *GitHubGateway) RateLimit(ctx context.Context) (domain.RateLimit, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.RateLimit{}, err
	}
	limits, _, err := g.client.RateLimit.Get(ctx)
	if err != nil {
		return domain.RateLimit{}, upstreamErr("fetch rate limit", err)
	}
	core := limits.GetCore()
	return domain.RateLimit{
		Remaining: core.Remaining,
		ResetAt:   core.Reset.Time,
	}, nil
}

// ListRepositories returns the names of every repository owned by the
// organization.
func (g *GitHubGateway) ListRepositories(ctx context.Context, org string) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var names []string
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := g.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, upstreamErr("list repositories", err)
		}
		for _, repo := range repos {
			names = append(names, repo.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithField("page", opts.Page).Debug("fetching next page of repositories")
	}
	g.logger.WithField("count", len(names)).Debug("completed repository enumeration")
	return names, nil
}

// ListCommits returns one commit event per commit on the default branch
// since the window start. A commit whose author date is missing upstream
// yields an event with a zero timestamp.
func (g *GitHubGateway) ListCommits(ctx context.Context, org, repo string, since time.Time) ([]domain.Event, error) {
	opts := &github.CommitsListOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var events []domain.Event
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		commits, resp, err := g.client.Repositories.ListCommits(ctx, org, repo, opts)
		if err != nil {
			return nil, upstreamErr("list commits", err)
		}
		for _, commit := range commits {
			events = append(events, domain.Event{
				Kind:      domain.KindCommit,
				CreatedAt: commit.GetCommit().GetAuthor().GetDate().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithFields(logrus.Fields{"repo": repo, "page": opts.Page}).Debug("fetching next page of commits")
	}
	return events, nil
}

// ListPullRequests returns one pull-request event per pull request in any
// state. The upstream list endpoint has no since filter; out-of-window
// items are dropped during normalization.
func (g *GitHubGateway) ListPullRequests(ctx context.Context, org, repo string, _ time.Time) ([]domain.Event, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var events []domain.Event
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		prs, resp, err := g.client.PullRequests.List(ctx, org, repo, opts)
		if err != nil {
			return nil, upstreamErr("list pull requests", err)
		}
		for _, pr := range prs {
			events = append(events, domain.Event{
				Kind:      domain.KindPullRequest,
				CreatedAt: pr.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithFields(logrus.Fields{"repo": repo, "page": opts.Page}).Debug("fetching next page of pull requests")
	}
	return events, nil
}

// ListIssues returns one issue event per issue updated since the window
// start, in any state. Issues that carry a pull-request back-reference
// are flagged so normalization can exclude them.
func (g *GitHubGateway) ListIssues(ctx context.Context, org, repo string, since time.Time) ([]domain.Event, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var events []domain.Event
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		issues, resp, err := g.client.Issues.ListByRepo(ctx, org, repo, opts)
		if err != nil {
			return nil, upstreamErr("list issues", err)
		}
		for _, issue := range issues {
			events = append(events, domain.Event{
				Kind:           domain.KindIssue,
				CreatedAt:      issue.GetCreatedAt().Time,
				PullRequestRef: issue.IsPullRequest(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithFields(logrus.Fields{"repo": repo, "page": opts.Page}).Debug("fetching next page of issues")
	}
	return events, nil
}

// upstreamErr maps a non-success page response to a domain.UpstreamError
// carrying the status code. Transport-level failures are wrapped as-is.
func upstreamErr(op string, err error) error {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return fmt.Errorf("%s: %w", op, &domain.UpstreamError{StatusCode: er.Response.StatusCode})
	}
	var rl *github.RateLimitError
	if errors.As(err, &rl) && rl.Response != nil {
		return fmt.Errorf("%s: %w", op, &domain.UpstreamError{StatusCode: rl.Response.StatusCode})
	}
	return fmt.Errorf("%s: %w", op, err)
}
