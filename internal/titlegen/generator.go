// Package titlegen wraps the single request/response exchange with the
// language-model service.
package titlegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/mydehq/plextitler/internal/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator produces titles from file paths using a chat-completion
// service. Exactly one request is sent per call: no retries, no
// streaming, no conversation state.
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	prompt      string
}

// New builds a Generator from the loaded AI configuration.
func New(cfg *types.AIConfig) *Generator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &Generator{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		prompt:      cfg.SystemPrompt,
	}
}

// Generate asks the model for a title for the given relative path. The
// system instruction is fixed; the path is the only user content.
func (g *Generator) Generate(ctx context.Context, filename string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(g.temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(g.prompt),
			openai.UserMessage(filename),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from %s", g.model)
	}
	title := strings.TrimSpace(resp.Choices[0].Message.Content)
	if title == "" {
		return "", fmt.Errorf("empty completion from %s", g.model)
	}
	return title, nil
}
