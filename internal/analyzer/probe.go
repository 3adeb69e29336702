package analyzer

import (
	"context"
	"net/http"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

// probe reports whether a demo URL answers a HEAD request below 400.
func (a *Analyzer) probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		a.cfg.Logger.Debug().Err(err).Str("url", url).Msg("demo probe request invalid")
		return false
	}
	resp, err := a.cfg.ProbeClient.Do(req)
	if err != nil {
		a.cfg.Logger.Debug().Err(err).Str("url", url).Msg("demo probe failed")
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}
