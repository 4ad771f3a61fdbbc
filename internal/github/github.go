// Package github collects repository metadata and weekly commit activity
// from the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	gh "github.com/google/go-github/v67/github"
	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/pkghealth/client"
	"github.com/git-pkgs/pkghealth/internal/core"
)

const DefaultURL = "https://api.github.com"

// Host fetches repository data from a GitHub API endpoint.
type Host struct {
	api *gh.Client
}

// New creates a Host for baseURL. If baseURL is empty, api.github.com is used.
func New(baseURL string, c *client.Client) (*Host, error) {
	if c == nil {
		c = client.DefaultClient()
	}
	api := gh.NewClient(c.HTTPClient())
	api.UserAgent = c.UserAgent()

	if baseURL != "" && strings.TrimSuffix(baseURL, "/") != DefaultURL {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing host url: %w", err)
		}
		api.BaseURL = u
	}
	return &Host{api: api}, nil
}

// FetchRepository fetches the repository and its commit-activity series
// concurrently. Both requests must succeed.
func (h *Host) FetchRepository(ctx context.Context, ownerRepo string) (*core.RepoMetadata, error) {
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository identifier %q", ownerRepo)
	}

	log := logr.FromContextOrDiscard(ctx).WithValues("repository", ownerRepo)
	log.V(1).Info("fetching repository")

	var (
		ghRepo   *gh.Repository
		activity []*gh.WeeklyCommitActivity
		g        errgroup.Group
	)

	g.Go(func() error {
		r, _, err := h.api.Repositories.Get(ctx, owner, repo)
		if err != nil {
			return fmt.Errorf("fetching repository %s: %w", ownerRepo, err)
		}
		ghRepo = r
		return nil
	})

	g.Go(func() error {
		weeks, _, err := h.api.Repositories.ListCommitActivity(ctx, owner, repo)
		var accepted *gh.AcceptedError
		if errors.As(err, &accepted) {
			// GitHub is still computing the statistics.
			log.V(1).Info("commit activity not ready")
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetching commit activity %s: %w", ownerRepo, err)
		}
		activity = weeks
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return toRepoMetadata(ghRepo, activity), nil
}

func toRepoMetadata(r *gh.Repository, weeks []*gh.WeeklyCommitActivity) *core.RepoMetadata {
	meta := &core.RepoMetadata{}
	if r != nil {
		if r.License != nil {
			meta.License = r.License.SPDXID
		}
		meta.OpenIssuesCount = r.OpenIssuesCount
		meta.Size = r.Size
		meta.WatchersCount = r.WatchersCount
		meta.StargazersCount = r.StargazersCount
		meta.ForksCount = r.ForksCount
		meta.SubscribersCount = r.SubscribersCount
	}

	if weeks != nil {
		meta.CommitActivity = make([]core.WeeklyActivity, 0, len(weeks))
		for _, w := range weeks {
			if w == nil {
				continue
			}
			week := core.WeeklyActivity{Total: w.Total, Days: w.Days}
			if w.Week != nil {
				week.Week = w.Week.Unix()
			}
			meta.CommitActivity = append(meta.CommitActivity, week)
		}
	}
	return meta
}
