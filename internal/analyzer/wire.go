package analyzer

import (
	"fmt"

	"github.com/johnqtcg/spoon/internal/augment"
	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/document"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/metrics"
)

// NewFromConfig wires the production collaborators for cfg. The CLI and the
// web server share it. rec may be nil.
func NewFromConfig(cfg config.Config, log *logger.Logger, rec metrics.Recorder) (*Analyzer, error) {
	if log == nil {
		log = logger.Nop()
	}

	fetcher, err := gh.NewFetcher(gh.Config{
		Token:    cfg.Token,
		Logger:   logger.Named(log, "github"),
		Recorder: rec,
	})
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	var aug augment.Augmenter
	if augmentConfigured(cfg) {
		if aug, err = augment.New(cfg.Augment()); err != nil {
			return nil, fmt.Errorf("create augmenter: %w", err)
		}
	}

	// The extractor reads a zero delay as "use the default".
	pdfDelay := cfg.PDFDelay
	if pdfDelay == 0 {
		pdfDelay = -1
	}

	return New(Config{
		Fetcher: fetcher,
		Extractor: document.New(document.Config{
			PDFDelay: pdfDelay,
			Logger:   logger.Named(log, "document"),
		}),
		Augmenter:      aug,
		AugmentTimeout: cfg.AITimeout,
		ProbeDemo:      cfg.ProbeDemo,
		Logger:         logger.Named(log, "analyzer"),
		Recorder:       rec,
	})
}

func augmentConfigured(cfg config.Config) bool {
	if cfg.AIProvider == augment.ProviderOpenAI {
		return cfg.AIToken != ""
	}
	return cfg.AIURL != ""
}
