package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/metrics"
)

const (
	// DefaultTimeout bounds each GitHub API request.
	DefaultTimeout = 30 * time.Second
	// NoReadmeText replaces README content when no candidate file resolves.
	NoReadmeText = "No README found"
)

// ErrNotFound indicates the requested repository does not exist.
var ErrNotFound = errors.New("repository not found")

// ErrRateLimited indicates GitHub refused the request with a rate limit response.
var ErrRateLimited = errors.New("github api rate limit exceeded")

// errNoReadme indicates none of the README candidates resolved.
var errNoReadme = errors.New("no readme candidate resolved")

// ReadmeCandidates lists README file names in lookup order.
var ReadmeCandidates = []string{"README.md", "readme.md", "README.txt", "readme.txt", "README"}

// Fetcher defines the contract for fetching and normalizing one repository.
type Fetcher interface {
	Fetch(ctx context.Context, ref RepoRef) (RepoData, error)
}

// Config configures the GitHub fetcher client.
type Config struct {
	Token       string
	HTTPClient  *http.Client
	RESTBaseURL string
	UserAgent   string
	Logger      *logger.Logger
	Recorder    metrics.Recorder
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = "spoon"
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Recorder == nil {
		c.Recorder = metrics.NoopRecorder{}
	}
	return c
}

// NewFetcher constructs a fetcher instance.
func NewFetcher(cfg Config) (Fetcher, error) {
	cfg = cfg.WithDefaults()

	restClient, err := newRESTClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create REST client: %w", err)
	}

	return &fetcher{
		rest:     restClient,
		log:      cfg.Logger,
		recorder: cfg.Recorder,
	}, nil
}
