package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is an llms.Model that records the messages it receives.
type fakeModel struct {
	received [][]llms.MessageContent
	choices  []string
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.received = append(f.received, messages)
	if f.err != nil {
		return nil, f.err
	}

	resp := &llms.ContentResponse{}
	for _, c := range f.choices {
		resp.Choices = append(resp.Choices, &llms.ContentChoice{Content: c})
	}
	return resp, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok, "expected a text part, got %T", m.Parts[0])
	return part.Text
}

func decode(t *testing.T, history store.ProviderHistory) []historyEntry {
	t.Helper()
	entries := make([]historyEntry, 0, len(history))
	for _, raw := range history {
		var e historyEntry
		require.NoError(t, json.Unmarshal(raw, &e))
		entries = append(entries, e)
	}
	return entries
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("First turn", func(t *testing.T) {
		model := &fakeModel{choices: []string{"Bail is the conditional release of an accused."}}
		p := NewProvider(model)

		resp, err := p.SendMessage(ctx, store.ProviderHistory{}, "User: what is bail?")
		require.NoError(t, err)

		require.Len(t, model.received, 1)
		require.Len(t, model.received[0], 1)
		assert.Equal(t, llms.ChatMessageTypeHuman, model.received[0][0].Role)
		assert.Equal(t, "User: what is bail?", textOf(t, model.received[0][0]))

		assert.Equal(t, []string{"Bail is the conditional release of an accused."}, resp.Fragments)
		assert.Equal(t, []historyEntry{
			{Type: llms.ChatMessageTypeHuman, Content: "User: what is bail?"},
			{Type: llms.ChatMessageTypeAI, Content: "Bail is the conditional release of an accused."},
		}, decode(t, resp.History))
	})

	t.Run("Resumes earlier turns", func(t *testing.T) {
		model := &fakeModel{choices: []string{"second answer"}}
		p := NewProvider(model)

		first, err := p.SendMessage(ctx, nil, "first")
		require.NoError(t, err)

		second, err := p.SendMessage(ctx, first.History, "second")
		require.NoError(t, err)

		sent := model.received[1]
		require.Len(t, sent, 3)
		assert.Equal(t, llms.ChatMessageTypeHuman, sent[0].Role)
		assert.Equal(t, "first", textOf(t, sent[0]))
		assert.Equal(t, llms.ChatMessageTypeAI, sent[1].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, sent[2].Role)
		assert.Equal(t, "second", textOf(t, sent[2]))

		assert.Len(t, second.History, 4)
	})

	t.Run("Every choice is a fragment", func(t *testing.T) {
		model := &fakeModel{choices: []string{"part one", "part two"}}
		p := NewProvider(model)

		resp, err := p.SendMessage(ctx, nil, "hi")
		require.NoError(t, err)
		assert.Equal(t, []string{"part one", "part two"}, resp.Fragments)
		entries := decode(t, resp.History)
		assert.Equal(t, "part one part two", entries[len(entries)-1].Content)
	})

	t.Run("Model error", func(t *testing.T) {
		p := NewProvider(&fakeModel{err: errors.New("API key not valid")})

		_, err := p.SendMessage(ctx, nil, "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key not valid")
	})

	t.Run("No choices", func(t *testing.T) {
		p := NewProvider(&fakeModel{})

		_, err := p.SendMessage(ctx, nil, "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("Corrupt history entry", func(t *testing.T) {
		model := &fakeModel{choices: []string{"x"}}
		p := NewProvider(model)

		_, err := p.SendMessage(ctx, store.ProviderHistory{json.RawMessage(`"not an object"`)}, "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry 0")
		assert.Empty(t, model.received)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("OpenAI", func(t *testing.T) {
		p, err := New(ctx, config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "sk-test"})
		require.NoError(t, err)
		assert.NotNil(t, p.model)
	})

	t.Run("Azure", func(t *testing.T) {
		p, err := New(ctx, config.LLMConfig{
			Provider: config.ProviderAzure,
			APIKey:   "az-key",
			BaseURL:  "https://example.openai.azure.com",
			Model:    "gpt-4o",
		})
		require.NoError(t, err)
		assert.NotNil(t, p.model)
	})

	t.Run("Anthropic", func(t *testing.T) {
		p, err := New(ctx, config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "sk-ant-test"})
		require.NoError(t, err)
		assert.NotNil(t, p.model)
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := New(ctx, config.LLMConfig{Provider: config.ProviderGoogleAI})
		assert.Error(t, err)
	})
}
