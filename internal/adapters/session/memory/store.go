package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

// Store is a single-slot session store. Put replaces any previous session.
type Store struct {
	mu      sync.RWMutex
	session *domain.ExternalSession
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get(ctx context.Context) (domain.ExternalSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExternalSession{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return domain.ExternalSession{}, domain.ErrSessionNotFound
	}

	return cloneSession(*s.session), nil
}

func (s *Store) Put(ctx context.Context, session domain.ExternalSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := cloneSession(session)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &stored
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}

func (s *Store) IsValid(ctx context.Context, now time.Time) bool {
	if ctx.Err() != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session != nil && s.session.ValidAt(now)
}

func cloneSession(session domain.ExternalSession) domain.ExternalSession {
	if session.Payload == nil {
		return session
	}

	payload := make(map[string]any, len(session.Payload))
	for key, value := range session.Payload {
		payload[key] = value
	}
	session.Payload = payload

	return session
}
