// Package llm adapts a langchaingo model to chat.Provider.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deepraj21/bhashabandhu-hackathon/chat"
	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"
)

// Default models per provider when none is configured.
var defaultModels = map[string]string{
	config.ProviderGoogleAI:  "gemini-pro",
	config.ProviderOpenAI:    "gpt-4o-mini",
	config.ProviderAnthropic: "claude-3-sonnet-20240229",
}

// historyEntry is how one turn of the provider history is stored.
type historyEntry struct {
	Type    llms.ChatMessageType `json:"type"`
	Content string               `json:"content"`
}

func (e historyEntry) chatMessage() llms.ChatMessage {
	switch e.Type {
	case llms.ChatMessageTypeHuman:
		return llms.HumanChatMessage{Content: e.Content}
	case llms.ChatMessageTypeAI:
		return llms.AIChatMessage{Content: e.Content}
	case llms.ChatMessageTypeSystem:
		return llms.SystemChatMessage{Content: e.Content}
	default:
		return llms.GenericChatMessage{Role: string(e.Type), Content: e.Content}
	}
}

// Provider sends conversation turns to a langchaingo model.
type Provider struct {
	model   llms.Model
	options []llms.CallOption
}

func NewProvider(model llms.Model, options ...llms.CallOption) *Provider {
	return &Provider{model: model, options: options}
}

// New builds the model selected by cfg.
func New(ctx context.Context, cfg config.LLMConfig) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModels[cfg.Provider]
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case config.ProviderGoogleAI:
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(modelName),
		)
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(modelName),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case config.ProviderAzure:
		model, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(cfg.APIKey),
			openai.WithModel(modelName),
			// langchaingo requires an embedding model for the azure api type
			openai.WithEmbeddingModel("dummy_value"),
		)
	case config.ProviderAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(modelName),
		)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s llm: %w", cfg.Provider, err)
	}

	return NewProvider(model), nil
}

// SendMessage resumes the conversation in history with prompt as the next
// human turn. Every returned choice is one reply fragment; the updated history
// ends with the prompt and the joined reply.
func (p *Provider) SendMessage(ctx context.Context, history store.ProviderHistory, prompt string) (*chat.Response, error) {
	previous := make([]llms.ChatMessage, 0, len(history))
	for i, raw := range history {
		var entry historyEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode provider history entry %d: %w", i, err)
		}
		previous = append(previous, entry.chatMessage())
	}

	conversation := memory.NewChatMessageHistory(memory.WithPreviousMessages(previous))
	if err := conversation.AddUserMessage(ctx, prompt); err != nil {
		return nil, err
	}

	messages, err := conversation.Messages(ctx)
	if err != nil {
		return nil, err
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(m.GetType(), m.GetContent()))
	}

	resp, err := p.model.GenerateContent(ctx, content, p.options...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	fragments := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		fragments = append(fragments, choice.Content)
	}

	if err := conversation.AddAIMessage(ctx, strings.Join(fragments, " ")); err != nil {
		return nil, err
	}

	messages, err = conversation.Messages(ctx)
	if err != nil {
		return nil, err
	}

	updated := make(store.ProviderHistory, 0, len(messages))
	for _, m := range messages {
		raw, err := json.Marshal(historyEntry{Type: m.GetType(), Content: m.GetContent()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode provider history: %w", err)
		}
		updated = append(updated, raw)
	}

	return &chat.Response{Fragments: fragments, History: updated}, nil
}
