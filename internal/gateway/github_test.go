package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/contriborg/contribsync/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := &GitHubGateway{
		client:  restClient,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logger,
	}
	return gateway, server
}

// nextLink writes the Link continuation header pointing at the given page.
func nextLink(w http.ResponseWriter, r *http.Request, page int) {
	w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=%d>; rel="next"`, r.Host, r.URL.Path, page))
}

func TestGitHubGateway_ListRepositories_Pagination(t *testing.T) {
	pageSizes := []int{100, 100, 37}

	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/test-org/repos", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}
		require.LessOrEqual(t, page, len(pageSizes), "fetched past the last page")

		// The continuation header is present on every page but the last.
		if page < len(pageSizes) {
			nextLink(w, r, page+1)
		}
		var items []string
		for i := 0; i < pageSizes[page-1]; i++ {
			items = append(items, fmt.Sprintf(`{"name": "repo-%d-%d"}`, page, i))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(items, ","))
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	repos, err := gateway.ListRepositories(t.Context(), "test-org")

	require.NoError(t, err)
	assert.Len(t, repos, 237)
	assert.Equal(t, "repo-1-0", repos[0])
	assert.Equal(t, "repo-3-36", repos[236], "page order must be preserved")
}

func TestGitHubGateway_ListCommits(t *testing.T) {
	since := time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC)

	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/test-org/repo-a/commits", r.URL.Path)
		assert.Equal(t, "2024-08-28T00:00:00Z", r.URL.Query().Get("since"))
		fmt.Fprint(w, `[
			{"sha": "a1", "commit": {"author": {"date": "2025-06-15T09:30:00Z"}}},
			{"sha": "a2", "commit": {"author": {}}}
		]`)
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	events, err := gateway.ListCommits(t.Context(), "test-org", "repo-a", since)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.KindCommit, events[0].Kind)
	assert.Equal(t, time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC), events[0].CreatedAt)
	assert.True(t, events[1].CreatedAt.IsZero(), "missing author date maps to the zero time")
}

func TestGitHubGateway_ListPullRequests(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/test-org/repo-a/pulls", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[{"number": 7, "created_at": "2025-05-01T12:00:00Z"}]`)
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	events, err := gateway.ListPullRequests(t.Context(), "test-org", "repo-a", time.Time{})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.KindPullRequest, events[0].Kind)
	assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), events[0].CreatedAt)
}

func TestGitHubGateway_ListIssues(t *testing.T) {
	since := time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC)

	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/test-org/repo-a/issues", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "2024-08-28T00:00:00Z", r.URL.Query().Get("since"))
		fmt.Fprint(w, `[
			{"number": 1, "created_at": "2025-04-02T08:00:00Z"},
			{"number": 2, "created_at": "2025-04-03T08:00:00Z", "pull_request": {"url": "https://api.github.com/repos/test-org/repo-a/pulls/2"}}
		]`)
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	events, err := gateway.ListIssues(t.Context(), "test-org", "repo-a", since)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].PullRequestRef)
	assert.True(t, events[1].PullRequestRef, "issues cross-listed as pull requests must be flagged")
}

func TestGitHubGateway_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rate_limit", r.URL.Path)
		fmt.Fprint(w, `{"resources": {"core": {"limit": 5000, "remaining": 4321, "reset": 1735689600}}}`)
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	limit, err := gateway.RateLimit(t.Context())

	require.NoError(t, err)
	assert.Equal(t, 4321, limit.Remaining)
	assert.Equal(t, time.Unix(1735689600, 0).UTC(), limit.ResetAt.UTC())
}

func TestGitHubGateway_UpstreamError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message": "upstream broke"}`)
	}

	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	_, err := gateway.ListCommits(t.Context(), "test-org", "repo-a", time.Time{})

	require.Error(t, err)
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}
