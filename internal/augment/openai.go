package augment

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAI struct {
	client *openai.Client
	model  string
	hasKey bool
}

func newOpenAI(cfg Config) *openAI {
	oc := openai.DefaultConfig(cfg.Token)
	if cfg.URL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.URL, "/")
	}
	oc.HTTPClient = cfg.HTTPClient

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAI{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		hasKey: cfg.Token != "",
	}
}

func (o *openAI) Augment(ctx context.Context, p Prompt) (string, error) {
	if !o.hasKey {
		return "", ErrConfigurationMissing
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(p)},
		},
		MaxTokens:   maxNewTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return stripCodeFences(resp.Choices[0].Message.Content), nil
}

// stripCodeFences removes a markdown fence some models wrap around replies.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
