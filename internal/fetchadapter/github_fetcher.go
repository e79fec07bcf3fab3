package fetchadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// DiscussionPost is a single community thread reduced to the fields the
// community worker's Score/Extract steps need.
type DiscussionPost struct {
	Author     string
	Title      string
	Body       string
	URL        string
	Repository string
	CreatedAt  time.Time
}

// GitHubCommunityFetcher implements the community slice of
// interfaces.SourceFetcher over GitHub issue search (open issues), the
// nearest community-discussion surface the examples carry a client for
// (no Reddit client exists in the retrieval pack). Grounded on the
// teacher's githublogs connector's use of go-github, adapted from
// commit-activity polling to issue search.
type GitHubCommunityFetcher struct {
	client   *github.Client
	throttle *Throttler
	logger   arbor.ILogger
}

// NewGitHubCommunityFetcher builds a fetcher authenticated with a
// personal access token.
func NewGitHubCommunityFetcher(token string, ratePerSecond float64, logger arbor.ILogger) *GitHubCommunityFetcher {
	var httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))
	return &GitHubCommunityFetcher{
		client:   github.NewClient(httpClient),
		throttle: NewThrottler(ratePerSecond),
		logger:   logger,
	}
}

// SourceFetch implements interfaces.SourceFetcher for kind == community.
// querySlice is the ordered list of free-text queries from the
// Strategy; each query is run as a GitHub search for open issues (20
// newest per query) and results are flattened into one RawBatch.
func (f *GitHubCommunityFetcher) SourceFetch(ctx context.Context, kind interfaces.SourceKind, querySlice []string) (interfaces.RawBatch, error) {
	if kind != interfaces.SourceCommunity {
		return interfaces.RawBatch{}, fmt.Errorf("github community fetcher: unsupported kind %q", kind)
	}

	var items []interface{}
	for _, q := range querySlice {
		if err := f.throttle.Wait(ctx); err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("github community fetcher: rate limit wait: %w", err)
		}

		result, _, err := f.client.Search.Issues(ctx, q+" type:issue is:open", &github.SearchOptions{
			Sort:        "created",
			Order:       "desc",
			ListOptions: github.ListOptions{PerPage: 20},
		})
		if err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("github community fetcher: search %q: %w", q, err)
		}

		for _, issue := range result.Issues {
			post := DiscussionPost{
				Title: issue.GetTitle(),
				Body:  issue.GetBody(),
				URL:   issue.GetHTMLURL(),
			}
			if issue.GetUser() != nil {
				post.Author = issue.GetUser().GetLogin()
			}
			if issue.Repository != nil {
				post.Repository = issue.Repository.GetFullName()
			}
			post.CreatedAt = issue.GetCreatedAt().Time
			items = append(items, post)
		}
	}

	return interfaces.RawBatch{Kind: interfaces.SourceCommunity, Items: items}, nil
}
