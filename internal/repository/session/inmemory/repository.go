package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/playerctl/internal/repository/session"
)

// repo holds live sessions by id.
type repo[T any] struct {
	sessions map[string]T
	mu       sync.RWMutex
}

func NewRepo[T any]() *repo[T] {
	return &repo[T]{
		sessions: make(map[string]T),
	}
}

func (r *repo[T]) Add(id string, s T) error {
	funcName := "session.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", id)
	if _, ok := r.sessions[id]; ok {
		slog.Info(funcName, "error", session.ErrAlreadyExists)
		return session.ErrAlreadyExists
	}

	r.sessions[id] = s

	return nil
}

func (r *repo[T]) Get(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		var zero T
		return zero, session.ErrNotFound
	}

	return s, nil
}

// Remove deletes the session and returns it.
func (r *repo[T]) Remove(id string) (T, error) {
	funcName := "session.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", id)
	s, ok := r.sessions[id]
	if !ok {
		slog.Info(funcName, "error", session.ErrNotFound)
		var zero T
		return zero, session.ErrNotFound
	}

	delete(r.sessions, id)

	return s, nil
}

func (r *repo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
