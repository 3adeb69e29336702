package analyzer

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/johnqtcg/spoon/internal/augment"
	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/document"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/metrics"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, ref gh.RepoRef) (gh.RepoData, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(gh.RepoData), args.Error(1)
}

type mockAugmenter struct {
	mock.Mock
}

func (m *mockAugmenter) Augment(ctx context.Context, p augment.Prompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type stubExtractor struct {
	doc document.Document
	err error
}

func (s stubExtractor) Extract(context.Context, document.Upload) (document.Document, error) {
	return s.doc, s.err
}

type analysisEvent struct {
	kind    string
	outcome metrics.Outcome
}

type fakeRecorder struct {
	mu       sync.Mutex
	analyses []analysisEvent
	augments []string
}

func (f *fakeRecorder) IncAnalysis(kind string, outcome metrics.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, analysisEvent{kind: kind, outcome: outcome})
}

func (f *fakeRecorder) ObserveAnalysisDuration(string, time.Duration) {}
func (f *fakeRecorder) IncEnrichmentFallback(string)                  {}

func (f *fakeRecorder) IncAugmentResult(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.augments = append(f.augments, result)
}

var spoonRef = gh.RepoRef{Owner: "octo", Name: "spoon", URL: "https://github.com/octo/spoon"}

func spoonData() gh.RepoData {
	updated := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return gh.RepoData{
		Meta: gh.RepositoryMetadata{
			Name:        "spoon",
			Description: "Insights for projects",
			Stars:       40,
			Forks:       5,
			Owner:       gh.Owner{Login: "octo"},
			Languages:   map[string]int{"Go": 1200},
			UpdatedAt:   &updated,
		},
		Readme: "A React dashboard with jest tests. Demo: https://spoon.vercel.app",
	}
}

func fixedOptions() []insight.Option {
	return []insight.Option{
		insight.WithClock(func() time.Time { return time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC) }),
		insight.WithRand(rand.New(rand.NewPCG(1, 2))),
	}
}

func TestAnalyzeRepository(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, spoonRef).Return(spoonData(), nil).Once()
	aug := &mockAugmenter{}
	aug.On("Augment", mock.Anything, augment.Prompt{
		Name:        "spoon",
		Description: "Insights for projects",
		Text:        spoonData().Readme,
	}).Return("Looks tasty.", nil).Once()
	rec := &fakeRecorder{}

	a, err := New(Config{
		Fetcher:         fetcher,
		Extractor:       stubExtractor{},
		Augmenter:       aug,
		Recorder:        rec,
		ClassifyOptions: fixedOptions(),
	})
	require.NoError(t, err)

	res, err := a.AnalyzeRepository(context.Background(), "github.com/octo/spoon.git")
	require.NoError(t, err)

	assert.Equal(t, insight.KindRepository, res.Input.Kind)
	assert.Equal(t, "octo/spoon", res.Input.Source())
	assert.Equal(t, "Looks tasty.", res.Report.AIInsight)
	assert.Equal(t, "https://spoon.vercel.app", res.Report.LiveDemo)
	assert.Equal(t, insight.DeploymentLive, res.Report.DeploymentStatus)
	assert.Equal(t, insight.ActivityVeryActive, res.Report.ActivityLevel)
	assert.True(t, res.Report.Analytics.Available)
	assert.Equal(t, []analysisEvent{{kind: "repository", outcome: metrics.OutcomeSuccess}}, rec.analyses)
	assert.Equal(t, []string{augmentOK}, rec.augments)
	fetcher.AssertExpectations(t)
	aug.AssertExpectations(t)
}

func TestAnalyzeRepositoryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		fetch   error
		wantErr error
	}{
		{name: "invalid url", raw: "https://gitlab.com/octo/spoon", wantErr: nil},
		{name: "not found", raw: "https://github.com/octo/spoon", fetch: gh.ErrNotFound, wantErr: gh.ErrNotFound},
		{name: "rate limited", raw: "https://github.com/octo/spoon", fetch: gh.ErrRateLimited, wantErr: gh.ErrRateLimited},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &mockFetcher{}
			fetcher.On("Fetch", mock.Anything, spoonRef).Return(gh.RepoData{}, tc.fetch)
			rec := &fakeRecorder{}
			a, err := New(Config{Fetcher: fetcher, Extractor: stubExtractor{}, Recorder: rec})
			require.NoError(t, err)

			_, err = a.AnalyzeRepository(context.Background(), tc.raw)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
			}
			assert.Equal(t, []analysisEvent{{kind: "repository", outcome: metrics.OutcomeFailed}}, rec.analyses)
		})
	}
}

func TestAugmentFailuresAreAbsorbed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		err     error
		outcome string
	}{
		{name: "provider error", err: errors.New("boom"), outcome: augmentFailed},
		{name: "missing config", err: augment.ErrConfigurationMissing, outcome: augmentSkipped},
		{name: "blank text", text: "  \n", outcome: augmentEmpty},
		{name: "deadline", err: context.DeadlineExceeded, outcome: augmentFailed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &mockFetcher{}
			fetcher.On("Fetch", mock.Anything, spoonRef).Return(spoonData(), nil)
			aug := &mockAugmenter{}
			aug.On("Augment", mock.Anything, mock.Anything).Return(tc.text, tc.err)
			rec := &fakeRecorder{}

			a, err := New(Config{Fetcher: fetcher, Extractor: stubExtractor{}, Augmenter: aug, Recorder: rec})
			require.NoError(t, err)

			res, err := a.AnalyzeRepository(context.Background(), spoonRef.URL)
			require.NoError(t, err)
			assert.Empty(t, res.Report.AIInsight)
			assert.Equal(t, []string{tc.outcome}, rec.augments)
		})
	}
}

func TestAugmentTimeoutApplied(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, spoonRef).Return(spoonData(), nil)
	aug := &mockAugmenter{}
	aug.On("Augment", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 50*time.Millisecond
	}), mock.Anything).Return("ok", nil).Once()

	a, err := New(Config{
		Fetcher:        fetcher,
		Extractor:      stubExtractor{},
		Augmenter:      aug,
		AugmentTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	res, err := a.AnalyzeRepository(context.Background(), spoonRef.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Report.AIInsight)
	aug.AssertExpectations(t)
}

func TestAnalyzeDocument(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	a, err := New(Config{
		Fetcher: &mockFetcher{},
		Extractor: stubExtractor{doc: document.Document{
			Name:        "notes.md",
			Text:        "A python flask api with docker.",
			Format:      document.FormatMarkdown,
			SizeDisplay: "31 B",
		}},
		Recorder: rec,
	})
	require.NoError(t, err)

	res, err := a.AnalyzeDocument(context.Background(), document.Upload{Name: "notes.md", Body: strings.NewReader("ignored")})
	require.NoError(t, err)

	assert.Equal(t, insight.KindDocument, res.Input.Kind)
	assert.Equal(t, "notes.md", res.Input.Source())
	assert.Equal(t, "31 B", res.Input.SourceSize)
	assert.Nil(t, res.Input.Metadata)
	assert.False(t, res.Report.Analytics.Available)
	assert.Contains(t, res.Report.TechStack, "Python")
	assert.Contains(t, res.Report.TechStack, "Docker")
	assert.Equal(t, []string{augmentSkipped}, rec.augments)
	assert.Equal(t, []analysisEvent{{kind: "document", outcome: metrics.OutcomeSuccess}}, rec.analyses)
}

func TestAnalyzeDocumentExtractError(t *testing.T) {
	t.Parallel()

	a, err := New(Config{
		Fetcher:   &mockFetcher{},
		Extractor: stubExtractor{err: document.ErrUnsupportedFormat},
	})
	require.NoError(t, err)

	_, err = a.AnalyzeDocument(context.Background(), document.Upload{Name: "image.png"})
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestRegenerate(t *testing.T) {
	t.Parallel()

	a, err := New(Config{Fetcher: &mockFetcher{}, Extractor: stubExtractor{}, ClassifyOptions: fixedOptions()})
	require.NoError(t, err)

	data := spoonData()
	in := insight.Input{Kind: insight.KindRepository, Text: data.Readme, Metadata: &data.Meta}

	first, err := a.Regenerate(context.Background(), in)
	require.NoError(t, err)
	second, err := a.Regenerate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Report.TechStack, second.Report.TechStack)
	assert.Equal(t, first.Report.Features, second.Report.Features)
	assert.Equal(t, in, second.Input)

	_, err = a.Regenerate(context.Background(), insight.Input{Kind: insight.KindDocument})
	assert.ErrorIs(t, err, insight.ErrInvalidInput)
}

func TestProbeDemo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   insight.DeploymentStatus
	}{
		{name: "reachable", status: http.StatusOK, want: insight.DeploymentLive},
		{name: "no content", status: http.StatusNoContent, want: insight.DeploymentLive},
		{name: "gone", status: http.StatusNotFound, want: insight.DeploymentInactive},
		{name: "server error", status: http.StatusBadGateway, want: insight.DeploymentInactive},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodHead, r.Method)
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			a, err := New(Config{
				Fetcher: &mockFetcher{},
				Extractor: stubExtractor{doc: document.Document{
					Name: "site.md",
					Text: "Demo: " + srv.URL + "/app",
				}},
				ProbeDemo:   true,
				ProbeClient: srv.Client(),
			})
			require.NoError(t, err)

			res, err := a.AnalyzeDocument(context.Background(), document.Upload{Name: "site.md"})
			require.NoError(t, err)
			assert.Equal(t, srv.URL+"/app", res.Report.LiveDemo)
			assert.Equal(t, tc.want, res.Report.DeploymentStatus)
		})
	}
}

func TestProbeUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a, err := New(Config{
		Fetcher:      &mockFetcher{},
		Extractor:    stubExtractor{doc: document.Document{Name: "site.md", Text: "live: " + url}},
		ProbeDemo:    true,
		ProbeTimeout: time.Second,
	})
	require.NoError(t, err)

	res, err := a.AnalyzeDocument(context.Background(), document.Upload{Name: "site.md"})
	require.NoError(t, err)
	assert.Equal(t, insight.DeploymentInactive, res.Report.DeploymentStatus)
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Extractor: stubExtractor{}})
	assert.ErrorIs(t, err, ErrMissingDependency)
	_, err = New(Config{Fetcher: &mockFetcher{}})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Config
		wantAug bool
		wantErr bool
	}{
		{name: "no augmentation", cfg: config.Config{AIProvider: augment.ProviderHuggingFace}},
		{name: "huggingface", cfg: config.Config{AIProvider: augment.ProviderHuggingFace, AIURL: "https://hf.example/models/x"}, wantAug: true},
		{name: "openai without key", cfg: config.Config{AIProvider: augment.ProviderOpenAI}},
		{name: "openai", cfg: config.Config{AIProvider: augment.ProviderOpenAI, AIToken: "sk-test"}, wantAug: true},
		{name: "unknown provider", cfg: config.Config{AIProvider: "bard", AIURL: "https://x.example"}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, err := NewFromConfig(tc.cfg, nil, nil)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, a.cfg.Fetcher)
			assert.NotNil(t, a.cfg.Extractor)
			assert.Equal(t, tc.wantAug, a.cfg.Augmenter != nil)
		})
	}
}
