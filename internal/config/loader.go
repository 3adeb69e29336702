package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/johnqtcg/spoon/internal/augment"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"

	DefaultWebAddr = ":8080"
)

// Config represents normalized runtime configuration for the CLI and web server.
type Config struct {
	OutputPath string
	Format     string
	Stdout     bool
	Force      bool
	InputFile  string
	Positional []string
	Token      string

	AIProvider string
	AIURL      string
	AIToken    string
	AIModel    string
	AITimeout  time.Duration

	PDFDelay  time.Duration
	ProbeDemo bool
	WebAddr   string
}

// Augment returns the augmentation provider settings.
func (c Config) Augment() augment.Config {
	return augment.Config{
		Provider: c.AIProvider,
		URL:      c.AIURL,
		Token:    c.AIToken,
		Model:    c.AIModel,
		Timeout:  c.AITimeout,
	}
}

// Loader loads configuration from CLI args and environment variables.
type Loader interface {
	Load(args []string) (Config, error)
}

// LoaderOption customizes a Loader.
type LoaderOption func(*flagLoader)

// WithEnvFiles sets the dotenv files read before the environment. Missing
// files are ignored; already-set variables win.
func WithEnvFiles(paths ...string) LoaderOption {
	return func(l *flagLoader) {
		l.envFiles = paths
	}
}

// NewLoader constructs the default configuration loader.
func NewLoader(opts ...LoaderOption) Loader {
	l := &flagLoader{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type flagLoader struct {
	envFiles []string
}

func (l *flagLoader) Load(args []string) (Config, error) {
	if err := loadEnvFiles(l.envFiles); err != nil {
		return Config{}, WrapError("load env file", err)
	}

	cfg := Config{}
	flags := pflag.NewFlagSet("spoon", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "output path")
	flags.StringVar(&cfg.Format, "format", FormatMarkdown, "output format (markdown|json)")
	flags.StringVar(&cfg.InputFile, "input-file", "", "batch input file")
	flags.BoolVar(&cfg.Stdout, "stdout", false, "write the report to stdout")
	flags.BoolVar(&cfg.Force, "force", false, "overwrite existing files")

	var tokenFlag string
	flags.StringVar(&tokenFlag, "token", "", "GitHub token")

	if err := flags.Parse(args); err != nil {
		return Config{}, WrapError("parse flags", err)
	}

	if cfg.Format != FormatMarkdown && cfg.Format != FormatJSON {
		return Config{}, WrapError("validate flags", NewValidationError("format", "must be markdown or json"))
	}
	if cfg.Stdout && cfg.InputFile != "" {
		return Config{}, WrapError("validate flags", NewConflictError("--stdout", "--input-file"))
	}
	cfg.Positional = flags.Args()

	cfg.Token = tokenFlag
	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, WrapError("validate env", err)
	}
	return cfg, nil
}

// LoadEnv loads the environment-only settings used by the web server.
func LoadEnv(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, WrapError("load env file", err)
	}
	cfg := Config{
		Format: FormatMarkdown,
		Token:  os.Getenv("GITHUB_TOKEN"),
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, WrapError("validate env", err)
	}
	return cfg, nil
}

func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(os.Getenv("SPOON_AI_PROVIDER")))
	switch cfg.AIProvider {
	case "":
		cfg.AIProvider = augment.ProviderHuggingFace
	case augment.ProviderHuggingFace, augment.ProviderOpenAI:
	default:
		return NewValidationError("SPOON_AI_PROVIDER", "must be huggingface or openai")
	}

	cfg.AIURL = os.Getenv("SPOON_AI_INSIGHTS_URL")
	cfg.AIToken = os.Getenv("SPOON_AI_INSIGHTS_TOKEN")
	cfg.AIModel = os.Getenv("SPOON_AI_MODEL")
	// The OpenAI provider falls back to OPENAI_API_KEY when no dedicated token is set.
	if cfg.AIProvider == augment.ProviderOpenAI && cfg.AIToken == "" {
		cfg.AIToken = os.Getenv("OPENAI_API_KEY")
	}

	var err error
	if cfg.AITimeout, err = durationEnv("SPOON_AI_TIMEOUT", augment.DefaultTimeout); err != nil {
		return err
	}
	if cfg.PDFDelay, err = durationEnv("SPOON_PDF_DELAY", time.Second); err != nil {
		return err
	}
	if cfg.ProbeDemo, err = boolEnv("SPOON_PROBE_DEMO"); err != nil {
		return err
	}

	cfg.WebAddr = os.Getenv("SPOON_WEB_ADDR")
	if cfg.WebAddr == "" {
		cfg.WebAddr = DefaultWebAddr
	}
	return nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, NewValidationError(key, "must be a non-negative duration such as 1s or 500ms")
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, NewValidationError(key, "must be true or false")
	}
	return v, nil
}
