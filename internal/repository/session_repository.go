package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

// ErrSessionNotFound is returned when no session exists for an id
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the interface for session state access.
// Sessions live only as long as the running deployment keeps them.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int64, error)
}

// memorySessionRepository keeps sessions in process memory
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewMemorySessionRepository creates an in-process SessionRepository
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *memorySessionRepository) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteIdleSince removes sessions not updated since cutoff
func (r *memorySessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memorySessionRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.sessions)), nil
}
