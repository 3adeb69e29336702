// Package analyzer runs the repository and document analysis pipelines.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/johnqtcg/spoon/internal/augment"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/document"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/metrics"
	"github.com/johnqtcg/spoon/internal/parser"
)

const (
	augmentOK      = "ok"
	augmentEmpty   = "empty"
	augmentFailed  = "failed"
	augmentSkipped = "skipped"
)

// ErrMissingDependency indicates a Config without a required collaborator.
var ErrMissingDependency = errors.New("analyzer dependency is missing")

// Config wires the analyzer collaborators. Augmenter may be nil, in which
// case reports carry no AI insight.
type Config struct {
	Fetcher   gh.Fetcher
	Parser    parser.URLParser
	Extractor document.Extractor
	Augmenter augment.Augmenter

	AugmentTimeout time.Duration
	ProbeDemo      bool
	ProbeTimeout   time.Duration
	ProbeClient    *http.Client

	Logger          *logger.Logger
	Recorder        metrics.Recorder
	ClassifyOptions []insight.Option
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.Parser == nil {
		c.Parser = parser.New()
	}
	if c.AugmentTimeout <= 0 {
		c.AugmentTimeout = augment.DefaultTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.ProbeClient == nil {
		c.ProbeClient = &http.Client{Timeout: c.ProbeTimeout}
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Recorder == nil {
		c.Recorder = metrics.NoopRecorder{}
	}
	return c
}

// Analyzer turns repository URLs and uploads into insight results.
type Analyzer struct {
	cfg Config
}

// New validates cfg and creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("create analyzer: fetcher: %w", ErrMissingDependency)
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("create analyzer: extractor: %w", ErrMissingDependency)
	}
	return &Analyzer{cfg: cfg.WithDefaults()}, nil
}

// AnalyzeRepository fetches the repository behind rawURL and classifies its README.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, rawURL string) (res insight.Result, err error) {
	start := time.Now()
	defer a.observe(insight.KindRepository, start, &err)

	ref, err := a.cfg.Parser.Parse(rawURL)
	if err != nil {
		return insight.Result{}, fmt.Errorf("parse repository url: %w", err)
	}

	data, err := a.cfg.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return insight.Result{}, fmt.Errorf("fetch %s: %w", ref.FullName(), err)
	}

	meta := data.Meta
	return a.run(ctx, insight.Input{
		Kind:     insight.KindRepository,
		Text:     data.Readme,
		Metadata: &meta,
	})
}

// AnalyzeDocument extracts an upload and classifies its text.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, up document.Upload) (res insight.Result, err error) {
	start := time.Now()
	defer a.observe(insight.KindDocument, start, &err)

	doc, err := a.cfg.Extractor.Extract(ctx, up)
	if err != nil {
		return insight.Result{}, fmt.Errorf("extract %q: %w", up.Name, err)
	}

	return a.run(ctx, insight.Input{
		Kind:       insight.KindDocument,
		Text:       doc.Text,
		SourceName: doc.Name,
		SourceSize: doc.SizeDisplay,
	})
}

// Regenerate classifies a previously gathered input again. The humor pick
// and the activity level may differ from the earlier run.
func (a *Analyzer) Regenerate(ctx context.Context, in insight.Input) (res insight.Result, err error) {
	start := time.Now()
	defer a.observe(in.Kind, start, &err)
	return a.run(ctx, in)
}

func (a *Analyzer) run(ctx context.Context, in insight.Input) (insight.Result, error) {
	if err := in.Validate(); err != nil {
		return insight.Result{}, err
	}

	report := insight.Classify(in, a.cfg.ClassifyOptions...)
	report.AIInsight = a.augment(ctx, in)

	if a.cfg.ProbeDemo && report.LiveDemo != "" {
		if !a.probe(ctx, report.LiveDemo) {
			report.DeploymentStatus = insight.DeploymentInactive
		}
	}

	if err := ctx.Err(); err != nil {
		return insight.Result{}, err
	}
	return insight.Result{Input: in, Report: report}, nil
}

// augment never fails the analysis; every error leaves the insight empty.
func (a *Analyzer) augment(ctx context.Context, in insight.Input) string {
	if a.cfg.Augmenter == nil {
		a.cfg.Recorder.IncAugmentResult(augmentSkipped)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.AugmentTimeout)
	defer cancel()

	prompt := augment.Prompt{Text: in.Text}
	if in.Metadata != nil {
		prompt.Name = in.Metadata.Name
		prompt.Description = in.Metadata.Description
	}

	text, err := a.cfg.Augmenter.Augment(ctx, prompt)
	switch {
	case errors.Is(err, augment.ErrConfigurationMissing):
		a.cfg.Logger.Debug().Msg("augmentation not configured")
		a.cfg.Recorder.IncAugmentResult(augmentSkipped)
		return ""
	case err != nil:
		a.cfg.Logger.Warn().Err(err).Msg("augmentation failed, continuing without ai insight")
		a.cfg.Recorder.IncAugmentResult(augmentFailed)
		return ""
	case strings.TrimSpace(text) == "":
		a.cfg.Recorder.IncAugmentResult(augmentEmpty)
		return ""
	}
	a.cfg.Recorder.IncAugmentResult(augmentOK)
	return text
}

func (a *Analyzer) observe(kind insight.Kind, start time.Time, errp *error) {
	elapsed := time.Since(start)
	outcome := metrics.OutcomeSuccess
	if *errp != nil {
		outcome = metrics.OutcomeFailed
	}
	a.cfg.Recorder.IncAnalysis(string(kind), outcome)
	a.cfg.Recorder.ObserveAnalysisDuration(string(kind), elapsed)

	ev := a.cfg.Logger.Info()
	if *errp != nil {
		ev = a.cfg.Logger.Warn().Err(*errp)
	}
	ev.Str("kind", string(kind)).Dur("elapsed", elapsed).Str("outcome", string(outcome)).Msg("analysis finished")
}
