package github

import (
	"errors"
	"fmt"
	"net/http"

	goGithub "github.com/google/go-github/v72/github"
)

// RemoteError carries the HTTP status of a failed GitHub call that is neither
// not-found nor rate-limited.
type RemoteError struct {
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("github api error: %d: %v", e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode extracts the wrapped HTTP status code when available.
func StatusCode(err error) (int, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode, true
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, ErrRateLimited):
		return http.StatusForbidden, true
	}
	return 0, false
}

// classifyRepositoryError maps a failed base repository request onto the
// package sentinels. Only 403 counts as rate limiting; other statuses keep
// their code in a RemoteError.
func classifyRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	resp := responseOf(err)
	if resp == nil {
		return fmt.Errorf("get repository: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrRateLimited
	default:
		return &RemoteError{StatusCode: resp.StatusCode, Err: err}
	}
}

func wrapRESTError(op string, err error) error {
	if err == nil {
		return nil
	}
	if resp := responseOf(err); resp != nil {
		return fmt.Errorf("%s: %w", op, &RemoteError{
			StatusCode: resp.StatusCode,
			Err:        err,
		})
	}
	return fmt.Errorf("%s: %w", op, err)
}

func responseOf(err error) *http.Response {
	var respErr *goGithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response
	}
	var rateErr *goGithub.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response
	}
	var abuseErr *goGithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response
	}
	return nil
}
