// Package augment requests an optional free-text project analysis from a
// remote text-generation service.
package augment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds one augmentation call.
	DefaultTimeout = 20 * time.Second

	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"

	maxPromptChars = 1000
	maxNewTokens   = 200
	temperature    = 0.7
)

// ErrConfigurationMissing indicates the provider has no endpoint or credentials.
var ErrConfigurationMissing = errors.New("augmentation endpoint is not configured")

// Prompt is the input of one augmentation request.
type Prompt struct {
	Name        string
	Description string
	Text        string
}

// Augmenter produces a free-text analysis for a prompt.
type Augmenter interface {
	Augment(ctx context.Context, p Prompt) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	URL        string
	Token      string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderHuggingFace
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// New creates the augmenter for cfg.Provider.
func New(cfg Config) (Augmenter, error) {
	cfg = cfg.WithDefaults()
	switch strings.ToLower(cfg.Provider) {
	case ProviderHuggingFace:
		return newHuggingFace(cfg), nil
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("create augmenter: unknown provider %q", cfg.Provider)
	}
}

// BuildPrompt renders the analysis request sent to every provider. Only the
// first 1000 code points of the text are included.
func BuildPrompt(p Prompt) string {
	name := p.Name
	if name == "" {
		name = "Unknown Project"
	}
	desc := p.Description
	if desc == "" {
		desc = "No description"
	}
	content := p.Text
	if runes := []rune(content); len(runes) > maxPromptChars {
		content = string(runes[:maxPromptChars])
	}
	return fmt.Sprintf(`Analyze this project and provide insights:

Project: %s
Description: %s
Content: %s...

Please provide a brief analysis of this project including its purpose, features, and quality.`, name, desc, content)
}
