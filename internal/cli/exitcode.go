package cli

import (
	"errors"
	"net/http"

	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/document"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/parser"
)

const (
	// ExitOK indicates all items completed successfully.
	ExitOK = 0
	// ExitRuntime indicates generic runtime failure.
	ExitRuntime = 1
	// ExitInvalidArguments indicates invalid CLI arguments or inputs.
	ExitInvalidArguments = 2
	// ExitUpstream indicates GitHub refused the request: missing repository,
	// rate limit or bad credentials.
	ExitUpstream = 3
	// ExitPartialSuccess indicates at least one failure in batch mode.
	ExitPartialSuccess = 4
	// ExitOutputConflict indicates output file conflict without force mode.
	ExitOutputConflict = 5
)

// ResolveExitCode maps run error state to CLI exit codes.
func ResolveExitCode(err error, isBatch bool, failed int) int {
	if isBatch && failed > 0 {
		return ExitPartialSuccess
	}
	if err == nil {
		return ExitOK
	}

	var vErr *config.ValidationError
	if errors.As(err, &vErr) {
		return ExitInvalidArguments
	}

	var cErr *config.ConflictError
	if errors.As(err, &cErr) {
		return ExitInvalidArguments
	}
	if errors.Is(err, parser.ErrInvalidGitHubURL) || errors.Is(err, document.ErrUnsupportedFormat) {
		return ExitInvalidArguments
	}

	if errors.Is(err, ErrOutputConflict) {
		return ExitOutputConflict
	}

	if errors.Is(err, gh.ErrNotFound) || errors.Is(err, gh.ErrRateLimited) {
		return ExitUpstream
	}
	if code, ok := gh.StatusCode(err); ok && code == http.StatusUnauthorized {
		return ExitUpstream
	}

	return ExitRuntime
}
