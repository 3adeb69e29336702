package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goGithub "github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"
)

const defaultRESTBaseURL = "https://api.github.com/"

type restClient struct {
	client *goGithub.Client
}

func newRESTClient(cfg Config) (*restClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		baseTransport := httpClient.Transport
		if baseTransport == nil {
			baseTransport = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   baseTransport,
			},
			Timeout: httpClient.Timeout,
		}
	}

	client := goGithub.NewClient(httpClient)
	client.UserAgent = cfg.UserAgent

	baseURL := cfg.RESTBaseURL
	if baseURL == "" {
		baseURL = defaultRESTBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse REST base URL %q: %w", baseURL, err)
	}
	client.BaseURL = parsed

	return &restClient{client: client}, nil
}

func (c *restClient) getRepository(ctx context.Context, ref RepoRef) (*goGithub.Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, classifyRepositoryError(err)
	}
	return repo, nil
}

// getReadme returns the first README candidate that resolves. Candidates after
// the first success are never requested.
func (c *restClient) getReadme(ctx context.Context, ref RepoRef, onMiss func(name string, err error)) (string, error) {
	for _, name := range ReadmeCandidates {
		file, _, _, err := c.client.Repositories.GetContents(ctx, ref.Owner, ref.Name, name, nil)
		if err != nil {
			onMiss(name, wrapRESTError("get "+name, err))
			continue
		}
		if file == nil || file.Content == nil || *file.Content == "" {
			onMiss(name, fmt.Errorf("get %s: empty content", name))
			continue
		}
		text, err := decodeContent(file.Content)
		if err != nil {
			onMiss(name, fmt.Errorf("decode %s: %w", name, err))
			continue
		}
		return text, nil
	}
	return "", errNoReadme
}

func (c *restClient) countContributors(ctx context.Context, ref RepoRef) (int, error) {
	opts := &goGithub.ListContributorsOptions{ListOptions: goGithub.ListOptions{PerPage: 1}}
	contributors, resp, err := c.client.Repositories.ListContributors(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return 0, wrapRESTError("list contributors", err)
	}
	return countFromPage(resp, len(contributors)), nil
}

func (c *restClient) listLanguages(ctx context.Context, ref RepoRef) (map[string]int, error) {
	languages, _, err := c.client.Repositories.ListLanguages(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, wrapRESTError("list languages", err)
	}
	if languages == nil {
		languages = map[string]int{}
	}
	return languages, nil
}

func (c *restClient) countPullRequests(ctx context.Context, ref RepoRef) (int, error) {
	opts := &goGithub.PullRequestListOptions{
		State:       "all",
		ListOptions: goGithub.ListOptions{PerPage: 1},
	}
	prs, resp, err := c.client.PullRequests.List(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return 0, wrapRESTError("list pull requests", err)
	}
	return countFromPage(resp, len(prs)), nil
}

func (c *restClient) countReleases(ctx context.Context, ref RepoRef) (int, error) {
	releases, _, err := c.client.Repositories.ListReleases(ctx, ref.Owner, ref.Name, nil)
	if err != nil {
		return 0, wrapRESTError("list releases", err)
	}
	return len(releases), nil
}

// countCommits reads the commit total from the pagination header of a
// single-item page. A one-item body says nothing about the total, so without
// the header a second unpaged request is counted instead.
func (c *restClient) countCommits(ctx context.Context, ref RepoRef) (int, error) {
	opts := &goGithub.CommitsListOptions{ListOptions: goGithub.ListOptions{PerPage: 1}}
	_, resp, err := c.client.Repositories.ListCommits(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return 0, wrapRESTError("list commits", err)
	}
	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage, nil
	}

	commits, _, err := c.client.Repositories.ListCommits(ctx, ref.Owner, ref.Name, nil)
	if err != nil {
		return 0, wrapRESTError("list all commits", err)
	}
	return len(commits), nil
}

// countFromPage prefers the last page number from the Link header
// (`page=<N>>; rel="last"`); with per_page=1 it equals the total.
func countFromPage(resp *goGithub.Response, items int) int {
	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage
	}
	return items
}

// decodeContent decodes a base64 contents payload. GitHub wraps the encoded
// text at a fixed width, so newlines are stripped first.
func decodeContent(encoded *string) (string, error) {
	if encoded == nil {
		return "", fmt.Errorf("content is null")
	}
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(*encoded)
	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("decode base64 content: %w", err)
	}
	return string(raw), nil
}
