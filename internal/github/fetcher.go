package github

import (
	"context"
	"fmt"
	"time"

	goGithub "github.com/google/go-github/v72/github"
	"golang.org/x/sync/errgroup"

	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/metrics"
)

const (
	defaultDescription   = "No description available"
	defaultLanguage      = "Unknown"
	defaultDefaultBranch = "main"
)

type fetcher struct {
	rest     *restClient
	log      *logger.Logger
	recorder metrics.Recorder
}

// Fetch loads base repository metadata and enriches it with the README and
// auxiliary counts. Only the base request can fail the fetch; every
// enrichment failure degrades to its default value.
func (f *fetcher) Fetch(ctx context.Context, ref RepoRef) (RepoData, error) {
	repo, err := f.rest.getRepository(ctx, ref)
	if err != nil {
		return RepoData{}, err
	}

	meta := mapRepository(repo, ref)
	var readme string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		readme = withFallback(f, "readme", NoReadmeText, func() (string, error) {
			return f.rest.getReadme(egCtx, ref, func(name string, err error) {
				f.log.Debug().Err(err).Str("repo", ref.FullName()).Str("candidate", name).Msg("readme candidate missed")
			})
		})
		return nil
	})
	eg.Go(func() error {
		meta.Contributors = withFallback(f, "contributors", 0, func() (int, error) {
			return f.rest.countContributors(egCtx, ref)
		})
		return nil
	})
	eg.Go(func() error {
		meta.Languages = withFallback(f, "languages", map[string]int{}, func() (map[string]int, error) {
			return f.rest.listLanguages(egCtx, ref)
		})
		return nil
	})
	eg.Go(func() error {
		meta.PullRequests = withFallback(f, "pull_requests", 0, func() (int, error) {
			return f.rest.countPullRequests(egCtx, ref)
		})
		return nil
	})
	eg.Go(func() error {
		meta.Releases = withFallback(f, "releases", 0, func() (int, error) {
			return f.rest.countReleases(egCtx, ref)
		})
		return nil
	})
	if err := eg.Wait(); err != nil {
		return RepoData{}, fmt.Errorf("enrich repository: %w", err)
	}

	meta.Commits = withFallback(f, "commits", 0, func() (int, error) {
		return f.rest.countCommits(ctx, ref)
	})

	if err := ctx.Err(); err != nil {
		return RepoData{}, fmt.Errorf("fetch repository: %w", err)
	}

	return RepoData{Meta: meta, Readme: readme}, nil
}

func withFallback[T any](f *fetcher, resource string, def T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		f.log.Warn().Err(err).Str("resource", resource).Msg("enrichment failed, using default")
		f.recorder.IncEnrichmentFallback(resource)
		return def
	}
	return v
}

func mapRepository(repo *goGithub.Repository, ref RepoRef) RepositoryMetadata {
	meta := RepositoryMetadata{
		Name:          repo.GetName(),
		Description:   repo.GetDescription(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Language:      repo.GetLanguage(),
		Topics:        repo.Topics,
		CreatedAt:     timestampPtr(repo.CreatedAt),
		UpdatedAt:     timestampPtr(repo.UpdatedAt),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Watchers:      repo.GetWatchersCount(),
		SizeKB:        repo.GetSize(),
		DefaultBranch: repo.GetDefaultBranch(),
		Owner: Owner{
			Login:     repo.GetOwner().GetLogin(),
			AvatarURL: repo.GetOwner().GetAvatarURL(),
		},
		URL:       repo.GetHTMLURL(),
		Languages: map[string]int{},
	}
	if meta.Name == "" {
		meta.Name = ref.Name
	}
	if meta.Description == "" {
		meta.Description = defaultDescription
	}
	if meta.Language == "" {
		meta.Language = defaultLanguage
	}
	if meta.DefaultBranch == "" {
		meta.DefaultBranch = defaultDefaultBranch
	}
	if meta.Topics == nil {
		meta.Topics = []string{}
	}
	if meta.URL == "" {
		meta.URL = "https://github.com/" + ref.FullName()
	}
	return meta
}

func timestampPtr(ts *goGithub.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}
