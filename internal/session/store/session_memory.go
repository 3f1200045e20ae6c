package store

import (
	"context"
	"sync"

	"navshell/internal/session/models"
	"navshell/pkg/domain"
	"navshell/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in process. Stored values are copied
// on the way in and out so callers never share mutable state.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]models.Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[domain.SessionID]models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id domain.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}

// UpdateFunc applies fn to the stored session while holding the store lock,
// so concurrent updates of one session never overwrite each other. fn
// works on a copy; when it returns an error nothing is written and the
// error is returned as is.
func (s *InMemorySessionStore) UpdateFunc(_ context.Context, id domain.SessionID, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := fn(&session); err != nil {
		return nil, err
	}
	s.sessions[id] = session
	return &session, nil
}

// ListActive returns every session that has not been revoked.
func (s *InMemorySessionStore) ListActive(_ context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, session := range s.sessions {
		if session.IsActive() {
			session := session
			out = append(out, &session)
		}
	}
	return out, nil
}
