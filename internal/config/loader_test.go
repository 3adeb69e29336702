package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/johnqtcg/spoon/internal/augment"
)

func newTestLoader() Loader {
	return NewLoader(WithEnvFiles())
}

func TestLoaderTokenPriority(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := newTestLoader().Load([]string{"--token", "flag-token"})
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}
	if cfg.Token != "flag-token" {
		t.Fatalf("Token = %q, want flag-token", cfg.Token)
	}
}

func TestLoaderTokenFallbackToEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := newTestLoader().Load(nil)
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("Token = %q, want env-token", cfg.Token)
	}
}

func TestLoaderDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := newTestLoader().Load([]string{"https://github.com/octo/spoon"})
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}
	if cfg.Format != FormatMarkdown {
		t.Fatalf("Format = %q, want %q", cfg.Format, FormatMarkdown)
	}
	if cfg.AIProvider != augment.ProviderHuggingFace {
		t.Fatalf("AIProvider = %q, want %q", cfg.AIProvider, augment.ProviderHuggingFace)
	}
	if cfg.AITimeout != augment.DefaultTimeout {
		t.Fatalf("AITimeout = %v, want %v", cfg.AITimeout, augment.DefaultTimeout)
	}
	if cfg.PDFDelay != time.Second {
		t.Fatalf("PDFDelay = %v, want 1s", cfg.PDFDelay)
	}
	if cfg.ProbeDemo {
		t.Fatal("ProbeDemo = true, want false")
	}
	if cfg.WebAddr != DefaultWebAddr {
		t.Fatalf("WebAddr = %q, want %q", cfg.WebAddr, DefaultWebAddr)
	}
}

func TestLoaderAcceptsJSONFormat(t *testing.T) {
	t.Parallel()

	cfg, err := newTestLoader().Load([]string{"--format", "json", "-o", "out"})
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}
	if cfg.Format != FormatJSON {
		t.Fatalf("Format = %q, want json", cfg.Format)
	}
	if cfg.OutputPath != "out" {
		t.Fatalf("OutputPath = %q, want out", cfg.OutputPath)
	}
}

func TestLoaderRejectsInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader().Load([]string{"--format", "html"})
	if err == nil {
		t.Fatal("Load error = nil, want error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Load error = %T, want *ValidationError", err)
	}
	if vErr.Field != "format" {
		t.Fatalf("ValidationError.Field = %q, want format", vErr.Field)
	}
	if err.Error() == vErr.Error() {
		t.Fatalf("Load error = %q, want wrapped error context", err)
	}
}

func TestLoaderRejectsStdoutWithInputFile(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader().Load([]string{"--stdout", "--input-file", "urls.txt"})
	if err == nil {
		t.Fatal("Load error = nil, want error")
	}

	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("Load error = %T, want *ConflictError", err)
	}
	if err.Error() == cErr.Error() {
		t.Fatalf("Load error = %q, want wrapped error context", err)
	}
}

func TestLoaderStoresPositionalArgs(t *testing.T) {
	t.Parallel()

	cfg, err := newTestLoader().Load([]string{"--force", "https://github.com/octo/spoon", "notes.md"})
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}
	if len(cfg.Positional) != 2 {
		t.Fatalf("Positional len = %d, want 2", len(cfg.Positional))
	}
	if cfg.Positional[1] != "notes.md" {
		t.Fatalf("Positional[1] = %q, want notes.md", cfg.Positional[1])
	}
	if !cfg.Force {
		t.Fatal("Force = false, want true")
	}
}

func TestLoaderUnknownFlag(t *testing.T) {
	t.Parallel()

	if _, err := newTestLoader().Load([]string{"--lang", "zh"}); err == nil {
		t.Fatal("Load error = nil, want error for unknown flag")
	}
}

func TestLoaderReadsEnvSettings(t *testing.T) {
	t.Setenv("SPOON_AI_PROVIDER", "OpenAI")
	t.Setenv("SPOON_AI_INSIGHTS_URL", "https://llm.example/v1")
	t.Setenv("SPOON_AI_INSIGHTS_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SPOON_AI_MODEL", "gpt-test")
	t.Setenv("SPOON_AI_TIMEOUT", "3s")
	t.Setenv("SPOON_PDF_DELAY", "0s")
	t.Setenv("SPOON_PROBE_DEMO", "true")
	t.Setenv("SPOON_WEB_ADDR", "127.0.0.1:9090")

	cfg, err := newTestLoader().Load(nil)
	if err != nil {
		t.Fatalf("Load error = %v, want nil", err)
	}

	aug := cfg.Augment()
	if aug.Provider != augment.ProviderOpenAI || aug.Token != "sk-test" || aug.Model != "gpt-test" {
		t.Fatalf("Augment() = %+v, want openai provider with OPENAI_API_KEY", aug)
	}
	if aug.URL != "https://llm.example/v1" {
		t.Fatalf("Augment().URL = %q, want https://llm.example/v1", aug.URL)
	}
	if cfg.AITimeout != 3*time.Second {
		t.Fatalf("AITimeout = %v, want 3s", cfg.AITimeout)
	}
	if cfg.PDFDelay != 0 {
		t.Fatalf("PDFDelay = %v, want 0", cfg.PDFDelay)
	}
	if !cfg.ProbeDemo {
		t.Fatal("ProbeDemo = false, want true")
	}
	if cfg.WebAddr != "127.0.0.1:9090" {
		t.Fatalf("WebAddr = %q, want 127.0.0.1:9090", cfg.WebAddr)
	}
}

func TestLoaderRejectsInvalidEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "SPOON_AI_PROVIDER", value: "bard"},
		{key: "SPOON_AI_TIMEOUT", value: "soon"},
		{key: "SPOON_PDF_DELAY", value: "-1s"},
		{key: "SPOON_PROBE_DEMO", value: "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := newTestLoader().Load(nil)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Load error = %v, want *ValidationError", err)
			}
			if vErr.Field != tc.key {
				t.Fatalf("ValidationError.Field = %q, want %q", vErr.Field, tc.key)
			}
		})
	}
}

func TestLoadEnvReadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SPOON_WEB_ADDR=:7070\n"), 0o600); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	t.Setenv("SPOON_WEB_ADDR", "")
	os.Unsetenv("SPOON_WEB_ADDR")

	cfg, err := LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv error = %v, want nil", err)
	}
	if cfg.WebAddr != ":7070" {
		t.Fatalf("WebAddr = %q, want :7070", cfg.WebAddr)
	}
}
