package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/johnqtcg/spoon/internal/analyzer"
	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/document"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/logger"
)

// Runner executes the CLI application flow.
type Runner interface {
	Run(ctx context.Context, args []string) int
}

// Analyzer runs one repository or document analysis.
type Analyzer interface {
	AnalyzeRepository(ctx context.Context, rawURL string) (insight.Result, error)
	AnalyzeDocument(ctx context.Context, up document.Upload) (insight.Result, error)
}

// AnalyzerFactory creates analyzers from runtime config.
type AnalyzerFactory interface {
	New(cfg config.Config) (Analyzer, error)
}

// AppDeps defines dependencies for CLI app construction.
type AppDeps struct {
	Loader          config.Loader
	AnalyzerFactory AnalyzerFactory
	Writer          OutputWriter
	InputReader     InputReader
	Stdout          io.Writer
	Stderr          io.Writer
}

// App orchestrates CLI single and batch workflows.
type App struct {
	loader          config.Loader
	analyzerFactory AnalyzerFactory
	writer          OutputWriter
	inputReader     InputReader
	stdout          io.Writer
	stderr          io.Writer
}

// NewApp creates a CLI runner with injected dependencies.
func NewApp(deps AppDeps) Runner {
	app := &App{
		loader:          deps.Loader,
		analyzerFactory: deps.AnalyzerFactory,
		writer:          deps.Writer,
		inputReader:     deps.InputReader,
		stdout:          deps.Stdout,
		stderr:          deps.Stderr,
	}
	app.setDefaults()
	return app
}

func (a *App) setDefaults() {
	if a.loader == nil {
		a.loader = config.NewLoader()
	}
	if a.analyzerFactory == nil {
		a.analyzerFactory = defaultAnalyzerFactory{}
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.writer == nil {
		a.writer = NewOutputWriter(a.stdout)
	}
	if a.inputReader == nil {
		a.inputReader = NewFileInputReader()
	}
}

// Run executes the CLI workflow and returns an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cfg, err := a.loader.Load(args)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	validated, err := ValidateArgs(cfg)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	an, err := a.analyzerFactory.New(cfg)
	if err != nil {
		runErr := fmt.Errorf("build analyzer: %w", err)
		writeErrorLine(a.stderr, runErr)
		return ResolveExitCode(runErr, false, 0)
	}

	singleStatusOutput := a.stdout
	if validated.Mode == ModeSingle && cfg.Stdout {
		// Keep stdout pure report output when --stdout is used in single mode.
		singleStatusOutput = a.stderr
	}

	switch validated.Mode {
	case ModeSingle:
		item, runErr := a.runSingle(ctx, cfg, validated, an)
		if runErr != nil {
			item.Status = StatusFailed
			item.Reason = runErr.Error()
			writeStatusLine(singleStatusOutput, item)
			return ResolveExitCode(runErr, false, 0)
		}
		writeStatusLine(singleStatusOutput, item)
		return ExitOK
	case ModeBatch:
		summary, runErr := a.runBatch(ctx, cfg, an)
		if runErr != nil {
			writeErrorLine(a.stderr, runErr)
		}
		if _, writeErr := fmt.Fprintln(a.stdout, FormatSummary(summary)); writeErr != nil {
			writeErrorLine(a.stderr, fmt.Errorf("write summary output: %w", writeErr))
		}
		return ResolveExitCode(runErr, true, summary.Failed)
	default:
		err = fmt.Errorf("unsupported mode %q", validated.Mode)
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}
}

func (a *App) runSingle(ctx context.Context, cfg config.Config, args Args, an Analyzer) (ItemResult, error) {
	item, err := a.processOne(ctx, cfg, ModeSingle, args.Target, an)
	if err != nil {
		return item, fmt.Errorf("run single target %q: %w", args.Target, err)
	}
	return item, nil
}

func (a *App) processOne(ctx context.Context, cfg config.Config, mode Mode, target string, an Analyzer) (ItemResult, error) {
	item := ItemResult{
		Target: target,
		Kind:   TargetKind(target),
		Status: StatusFailed,
	}

	res, err := analyzeTarget(ctx, an, item.Kind, target)
	if err != nil {
		return item, fmt.Errorf("analyze: %w", err)
	}

	data, err := Encode(cfg.Format, res)
	if err != nil {
		return item, fmt.Errorf("encode report: %w", err)
	}

	outputPath, err := a.writer.Write(cfg, mode, res, data)
	if err != nil {
		return item, fmt.Errorf("write output: %w", err)
	}

	item.Status = StatusOK
	item.OutputPath = outputPath
	return item, nil
}

func analyzeTarget(ctx context.Context, an Analyzer, kind insight.Kind, target string) (insight.Result, error) {
	if kind == insight.KindRepository {
		return an.AnalyzeRepository(ctx, target)
	}

	file, err := os.Open(target)
	if err != nil {
		return insight.Result{}, fmt.Errorf("open document %q: %w", target, err)
	}
	defer file.Close()

	var size int64
	if info, statErr := file.Stat(); statErr == nil {
		size = info.Size()
	}
	return an.AnalyzeDocument(ctx, document.Upload{
		Name: filepath.Base(target),
		Body: file,
		Size: size,
	})
}

type defaultAnalyzerFactory struct{}

func (f defaultAnalyzerFactory) New(cfg config.Config) (Analyzer, error) {
	an, err := analyzer.NewFromConfig(cfg, logger.Get(), nil)
	if err != nil {
		return nil, err
	}
	return an, nil
}

func writeStatusLine(w io.Writer, item ItemResult) {
	switch item.Status {
	case StatusOK:
		if _, err := fmt.Fprintf(w, "OK target=%s kind=%s output=%s\n", item.Target, item.Kind, item.OutputPath); err != nil {
			return
		}
	default:
		if _, err := fmt.Fprintf(w, "FAILED target=%s kind=%s reason=%s\n", item.Target, item.Kind, item.Reason); err != nil {
			return
		}
	}
}

func writeErrorLine(w io.Writer, err error) {
	if _, writeErr := fmt.Fprintf(w, "error: %v\n", err); writeErr != nil {
		return
	}
}
