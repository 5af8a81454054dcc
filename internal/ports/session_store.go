package ports

import (
	"context"
	"time"

	"github.com/bnema/pulse/internal/domain"
)

// SessionStore holds at most one external session. Get returns
// domain.ErrSessionNotFound when the slot is empty.
type SessionStore interface {
	Get(ctx context.Context) (domain.ExternalSession, error)
	Put(ctx context.Context, session domain.ExternalSession) error
	Clear(ctx context.Context) error
	IsValid(ctx context.Context, now time.Time) bool
}
