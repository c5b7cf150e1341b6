package chat

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/docchat/docchat/internal/history"
)

// OpenAICompleter is a Completer backed by the OpenAI chat completions API.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter creates a completer for the given model.
func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	return &OpenAICompleter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete sends the prompt sequence and returns the model's reply text.
func (c *OpenAICompleter) Complete(ctx context.Context, prompts []Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompts))
	for _, p := range prompts {
		switch p.Role {
		case history.RoleSystem:
			messages = append(messages, openai.SystemMessage(p.Content))
		case history.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(p.Content))
		case history.RoleUser:
			messages = append(messages, openai.UserMessage(p.Content))
		default:
			return "", fmt.Errorf("unknown prompt role %q", p.Role)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
