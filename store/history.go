package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deepraj21/bhashabandhu-hackathon/blob"
)

// History is the History Store: two parallel logs per session, the display
// transcript and the provider history, each saved as one blob.
type History struct {
	blob blob.Store
}

func NewHistory(b blob.Store) *History {
	return &History{blob: b}
}

func messagesKey(id string) string { return id + "-st_messages" }
func providerKey(id string) string { return id + "-provider_messages" }

// Load returns both logs of a session. A session that has never been saved
// yields two empty logs and no error.
func (h *History) Load(ctx context.Context, id string) ([]Message, ProviderHistory, error) {
	messages := []Message{}
	if err := h.load(ctx, messagesKey(id), &messages); err != nil {
		return nil, nil, err
	}

	providerHistory := ProviderHistory{}
	if err := h.load(ctx, providerKey(id), &providerHistory); err != nil {
		return nil, nil, err
	}

	// a stored JSON null decodes to a nil slice
	if messages == nil {
		messages = []Message{}
	}
	if providerHistory == nil {
		providerHistory = ProviderHistory{}
	}
	return messages, providerHistory, nil
}

func (h *History) load(ctx context.Context, key string, v any) error {
	data, err := h.blob.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Save overwrites both logs of a session.
func (h *History) Save(ctx context.Context, id string, messages []Message, providerHistory ProviderHistory) error {
	if err := h.save(ctx, messagesKey(id), messages); err != nil {
		return err
	}
	return h.save(ctx, providerKey(id), providerHistory)
}

func (h *History) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := h.blob.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
