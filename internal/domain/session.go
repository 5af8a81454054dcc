package domain

import "time"

// DefaultSessionTTL applies when a connect payload carries no expires_at.
const DefaultSessionTTL = 4 * time.Hour

type SessionMethod string

const (
	SessionMethodAuto        SessionMethod = "auto"
	SessionMethodSSO         SessionMethod = "sso"
	SessionMethodCredentials SessionMethod = "credentials"
	SessionMethodSkipped     SessionMethod = "skipped"
)

type ExternalSession struct {
	ID          string
	Method      SessionMethod
	Payload     map[string]any
	ConnectedAt time.Time
	ExpiresAt   time.Time
}

func (s ExternalSession) ValidAt(now time.Time) bool {
	return s.ID != "" && now.Before(s.ExpiresAt)
}

// Degraded is true for sessions the operator skipped: callers get best effort
// results, usually mock data.
func (s ExternalSession) Degraded() bool {
	return len(s.Payload) == 0
}

func (s ExternalSession) PayloadString(key string) string {
	value, _ := s.Payload[key].(string)
	return value
}

type SessionState string

const (
	SessionDisconnected SessionState = "disconnected"
	SessionConnected    SessionState = "connected"
	SessionExpired      SessionState = "expired"
	SessionDegraded     SessionState = "degraded"
)

type SessionStatus struct {
	State   SessionState
	Session ExternalSession
	Now     time.Time
}

func (s SessionStatus) Remaining() time.Duration {
	if s.State != SessionConnected && s.State != SessionDegraded {
		return 0
	}

	return s.Session.ExpiresAt.Sub(s.Now)
}
