package cli

import (
	"os"

	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/insight"
)

// Mode identifies the command execution mode.
type Mode string

const (
	// ModeSingle processes one target from positional args.
	ModeSingle Mode = "single"
	// ModeBatch processes many targets from --input-file.
	ModeBatch Mode = "batch"
)

// Args contains validated and normalized command mode inputs.
type Args struct {
	Mode   Mode
	Target string
}

// ValidateArgs validates single-vs-batch mode constraints from config.
func ValidateArgs(cfg config.Config) (Args, error) {
	if cfg.InputFile != "" {
		if cfg.OutputPath == "" {
			return Args{}, config.NewValidationError("output", "--output is required when --input-file is set")
		}
		if cfg.Stdout {
			return Args{}, config.NewConflictError("--stdout", "--input-file")
		}
		if len(cfg.Positional) > 0 {
			return Args{}, config.NewValidationError("target", "positional target is not allowed when --input-file is set")
		}
		return Args{Mode: ModeBatch}, nil
	}

	if len(cfg.Positional) != 1 {
		return Args{}, config.NewValidationError("target", "exactly one GitHub URL or file is required in single mode")
	}

	return Args{
		Mode:   ModeSingle,
		Target: cfg.Positional[0],
	}, nil
}

// TargetKind reports whether target names a local document or a repository
// URL. Anything that is not an existing regular file is treated as a URL.
func TargetKind(target string) insight.Kind {
	info, err := os.Stat(target)
	if err == nil && info.Mode().IsRegular() {
		return insight.KindDocument
	}
	return insight.KindRepository
}
