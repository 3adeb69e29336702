package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/report"
)

// ErrOutputConflict indicates the output file already exists and force mode is disabled.
var ErrOutputConflict = errors.New("output file already exists")

const outputPathStdout = "stdout"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// OutputWriter writes an encoded report to stdout or filesystem.
type OutputWriter interface {
	Write(cfg config.Config, mode Mode, res insight.Result, data []byte) (string, error)
}

type fileOutputWriter struct {
	stdout io.Writer
}

// NewOutputWriter creates an output writer with the provided stdout sink.
func NewOutputWriter(stdout io.Writer) OutputWriter {
	return &fileOutputWriter{stdout: stdout}
}

func (w *fileOutputWriter) Write(cfg config.Config, mode Mode, res insight.Result, data []byte) (string, error) {
	if cfg.Stdout {
		if _, err := w.stdout.Write(data); err != nil {
			return "", fmt.Errorf("write report to stdout: %w", err)
		}
		return outputPathStdout, nil
	}

	targetPath, err := resolveOutputPath(cfg, mode, res)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	if err := ensureWritable(targetPath, cfg.Force); err != nil {
		return "", fmt.Errorf("validate output path %q: %w", targetPath, err)
	}

	parentDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", parentDir, err)
	}

	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file %q: %w", targetPath, err)
	}
	return targetPath, nil
}

func resolveOutputPath(cfg config.Config, mode Mode, res insight.Result) (string, error) {
	if mode == ModeBatch {
		if cfg.OutputPath == "" {
			return "", fmt.Errorf("batch output path is empty")
		}
		return filepath.Join(cfg.OutputPath, batchFileName(res, cfg.Format)), nil
	}

	defaultName := singleFileName(cfg.Format)
	if cfg.OutputPath == "" {
		return defaultName, nil
	}

	info, err := os.Stat(cfg.OutputPath)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(cfg.OutputPath, defaultName), nil
	case err == nil:
		return cfg.OutputPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("stat output path %q: %w", cfg.OutputPath, err)
	}

	switch strings.ToLower(filepath.Ext(cfg.OutputPath)) {
	case ".md", ".json":
		return cfg.OutputPath, nil
	}
	return filepath.Join(cfg.OutputPath, defaultName), nil
}

// singleFileName is the export name used by the web download as well.
func singleFileName(format string) string {
	if format == config.FormatJSON {
		return strings.TrimSuffix(report.FileName, ".md") + ".json"
	}
	return report.FileName
}

// batchFileName prefixes the export name with the analyzed source so batch
// outputs never collide. Document extensions stay in the prefix, so notes.md
// and notes.pdf map to different files.
func batchFileName(res insight.Result, format string) string {
	source := res.Input.Source()
	ext := ""
	if res.Input.Kind == insight.KindDocument {
		ext = strings.TrimPrefix(filepath.Ext(source), ".")
		source = strings.TrimSuffix(source, filepath.Ext(source))
	}
	slug := slugify(source)
	if slug == "" {
		slug = string(res.Input.Kind)
	}
	if ext = slugify(ext); ext != "" {
		slug += "-" + ext
	}
	return slug + "-" + singleFileName(format)
}

func slugify(s string) string {
	return strings.Trim(unsafeNameChars.ReplaceAllString(strings.ReplaceAll(s, "/", "-"), "-"), "-")
}

func ensureWritable(path string, force bool) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}
	if !force {
		return ErrOutputConflict
	}
	return nil
}
