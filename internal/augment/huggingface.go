package augment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type huggingFace struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func newHuggingFace(cfg Config) *huggingFace {
	return &huggingFace{
		httpClient: cfg.HTTPClient,
		endpoint:   cfg.URL,
		token:      cfg.Token,
	}
}

func (h *huggingFace) Augment(ctx context.Context, p Prompt) (string, error) {
	if h.endpoint == "" {
		return "", ErrConfigurationMissing
	}

	body, err := json.Marshal(hfRequest{
		Inputs:     BuildPrompt(p),
		Parameters: hfParameters{MaxLength: maxNewTokens, Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal augmentation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create augmentation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute augmentation request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", fmt.Errorf("augmentation request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode augmentation response: %w", err)
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0].GeneratedText, nil
}
