package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	gh "github.com/johnqtcg/spoon/internal/github"
)

// ErrInvalidGitHubURL indicates an input is not a GitHub repository URL.
var ErrInvalidGitHubURL = errors.New("invalid GitHub URL")

// URLParser parses a raw GitHub URL into a normalized repository reference.
type URLParser interface {
	Parse(rawURL string) (gh.RepoRef, error)
}

// New creates the default URL parser implementation.
func New() URLParser {
	return &defaultParser{}
}

type defaultParser struct{}

// Parse accepts any github.com URL whose path starts with /{owner}/{repo}.
// Extra path segments (tree/main, issues/1, ...) are ignored and a trailing
// ".git" is dropped. The scheme may be omitted.
func (p *defaultParser) Parse(rawURL string) (gh.RepoRef, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return gh.RepoRef{}, invalid("empty URL")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return gh.RepoRef{}, fmt.Errorf("parse URL %q: %w", rawURL, invalid(err.Error()))
	}

	host := strings.ToLower(parsedURL.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return gh.RepoRef{}, fmt.Errorf("validate URL host %q: %w", host, invalid("unsupported host"))
	}

	owner, repo, err := splitOwnerRepo(parsedURL.Path)
	if err != nil {
		return gh.RepoRef{}, fmt.Errorf("parse URL path %q: %w", parsedURL.Path, err)
	}

	return gh.RepoRef{
		Owner: owner,
		Name:  repo,
		URL:   fmt.Sprintf("https://github.com/%s/%s", owner, repo),
	}, nil
}

func splitOwnerRepo(rawPath string) (owner, repo string, err error) {
	segments := splitPathSegments(rawPath)
	if len(segments) < 2 {
		return "", "", fmt.Errorf("validate path segments: %w", invalid("path must start with /{owner}/{repo}"))
	}

	owner = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("validate owner/repo: %w", invalid("owner/repo must not be empty"))
	}
	return owner, repo, nil
}

func splitPathSegments(rawPath string) []string {
	trimmed := strings.Trim(rawPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidGitHubURL, reason)
}
