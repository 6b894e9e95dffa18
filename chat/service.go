// Package chat runs one conversation turn: it frames the user's message with
// the system prompt, forwards it to the AI provider together with the stored
// provider history and records both sides of the exchange.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/tmc/langchaingo/prompts"
)

// AssistantAvatar decorates every assistant message of the transcript.
const AssistantAvatar = "✨"

// Provider is the hosted model. SendMessage resumes the conversation described
// by history with prompt as the next user turn.
type Provider interface {
	SendMessage(ctx context.Context, history store.ProviderHistory, prompt string) (*Response, error)
}

// Response is what the provider produced for one turn.
type Response struct {
	// Fragments are the pieces of reply text in emission order.
	Fragments []string
	// History is the provider's canonical history including the new turn.
	History store.ProviderHistory
}

// ProviderError wraps any failure of the provider call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

type SessionStore interface {
	Get(id string) (store.Session, error)
	MarkTitled(ctx context.Context, id, title string) (bool, error)
}

type HistoryStore interface {
	Load(ctx context.Context, id string) ([]store.Message, store.ProviderHistory, error)
	Save(ctx context.Context, id string, messages []store.Message, providerHistory store.ProviderHistory) error
}

// Reply is the result of a successful Send.
type Reply struct {
	Response string
	Messages []store.Message
}

type Service struct {
	sessions SessionStore
	history  HistoryStore
	provider Provider
	prompt   prompts.PromptTemplate
	logger   *slog.Logger

	// one mutex per session id; sessions are never deleted
	locks sync.Map
}

type Option func(*Service)

// WithPromptTemplate replaces DefaultPromptTemplate. The template is a Go
// template referencing {{.user_message}}.
func WithPromptTemplate(template string) Option {
	return func(s *Service) {
		s.prompt = newPromptTemplate(template)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(sessions SessionStore, history HistoryStore, provider Provider, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		history:  history,
		provider: provider,
		prompt:   newPromptTemplate(DefaultPromptTemplate),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Prompt renders the text sent to the provider for userText.
func (s *Service) Prompt(userText string) (string, error) {
	return s.prompt.Format(map[string]any{UserMessageVar: userText})
}

// Send runs one turn of session id. Turns of the same session are serialized.
//
// The first message of a session becomes its title as soon as it is received;
// that update is kept even when the turn later fails. The transcript and the
// provider history are only written after the provider has answered.
func (s *Service) Send(ctx context.Context, id, userText string) (*Reply, error) {
	start := time.Now()

	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(id)
	defer unlock()

	messages, providerHistory, err := s.history.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	messages = append(messages, store.Message{Role: store.RoleUser, Content: userText})

	if !session.FirstMessageReceived {
		if _, err := s.sessions.MarkTitled(ctx, id, userText); err != nil {
			return nil, err
		}
	}

	prompt, err := s.Prompt(userText)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	resp, err := s.provider.SendMessage(ctx, providerHistory, prompt)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	reply := strings.Join(resp.Fragments, " ")
	messages = append(messages, store.Message{Role: store.RoleAssistant, Content: reply, Avatar: AssistantAvatar})

	if err := s.history.Save(ctx, id, messages, resp.History); err != nil {
		return nil, err
	}

	s.logger.Debug("chat turn completed",
		"chat_id", id,
		"messages", len(messages),
		"provider_history", len(resp.History),
		"elapsed", time.Since(start))

	return &Reply{Response: reply, Messages: messages}, nil
}

// Transcript returns the current title and display transcript of session id.
func (s *Service) Transcript(ctx context.Context, id string) (string, []store.Message, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return "", nil, err
	}

	messages, _, err := s.history.Load(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return session.Title, messages, nil
}
