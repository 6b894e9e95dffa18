// Package store keeps the session registry and the per-session transcripts on
// top of a blob.Store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/deepraj21/bhashabandhu-hackathon/blob"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for identifiers missing from the registry.
var ErrSessionNotFound = errors.New("chat not found")

const registryKey = "past_chats_list"

// Registry is the Session Store. The full id -> session mapping lives in
// memory and is rewritten to the blob store as a whole after every mutation.
// A Registry must be the only writer of its blob store.
type Registry struct {
	blob     blob.Store
	mu       sync.RWMutex
	sessions map[string]Session
	newID    func() (string, error)
}

// OpenRegistry loads the registry, starting empty when none was saved yet.
func OpenRegistry(ctx context.Context, b blob.Store) (*Registry, error) {
	r := &Registry{
		blob:     b,
		sessions: make(map[string]Session),
		newID:    newSessionID,
	}

	data, err := b.Get(ctx, registryKey)
	if errors.Is(err, blob.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session registry: %w", err)
	}

	if err := json.Unmarshal(data, &r.sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session registry: %w", err)
	}
	for id, s := range r.sessions {
		s.ID = id
		r.sessions[id] = s
	}
	return r, nil
}

// newSessionID returns a UUIDv7: its leading bits are the creation time in
// milliseconds and the rest is random, so ids created in the same instant differ.
func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// persist must be called with mu held.
func (r *Registry) persist(ctx context.Context) error {
	data, err := json.Marshal(r.sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal session registry: %w", err)
	}
	if err := r.blob.Put(ctx, registryKey, data); err != nil {
		return fmt.Errorf("failed to save session registry: %w", err)
	}
	return nil
}

// Create registers a new session with the default title.
func (r *Registry) Create(ctx context.Context) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for {
		var err error
		if id, err = r.newID(); err != nil {
			return Session{}, fmt.Errorf("failed to generate session id: %w", err)
		}
		if _, taken := r.sessions[id]; !taken {
			break
		}
	}

	session := Session{ID: id, Title: DefaultTitle}
	r.sessions[id] = session

	if err := r.persist(ctx); err != nil {
		delete(r.sessions, id)
		return Session{}, err
	}
	return session, nil
}

// List returns every known session id with its current title.
func (r *Registry) List() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make(map[string]string, len(r.sessions))
	for id, s := range r.sessions {
		titles[id] = s.Title
	}
	return titles
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[id]
	return ok
}

func (r *Registry) Get(id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// MarkTitled sets the title and the first-message flag of a session that has
// not received a message yet. It reports whether anything changed; once the
// flag is set later calls are no-ops.
func (r *Registry) MarkTitled(ctx context.Context, id, title string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	if prev.FirstMessageReceived {
		return false, nil
	}

	r.sessions[id] = Session{ID: id, Title: title, FirstMessageReceived: true}
	if err := r.persist(ctx); err != nil {
		r.sessions[id] = prev
		return false, err
	}
	return true, nil
}
