package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	snowflakeAutoCapability        = "connect_snowflake_auto"
	snowflakeSSOCapability         = "connect_snowflake_sso"
	snowflakeCredentialsCapability = "connect_snowflake_credentials"
	snowflakeHostSuffix            = ".snowflakecomputing.com"
)

var (
	ssoKeywords        = []string{"sso", "single sign-on", "single sign on", "saml", "oauth", "browser auth"}
	credentialKeywords = []string{"password", "username", "credentials", "login", "user pass"}
)

type SessionResult struct {
	Success bool
	Session domain.ExternalSession
	Reused  bool
	Error   string
}

func sessionFailure(format string, args ...any) SessionResult {
	return SessionResult{Error: fmt.Sprintf(format, args...)}
}

// SessionManager keeps the Snowflake session alive across questions. It
// reuses a valid session, then tries environment based auto-connect, then
// falls back to interactive setup.
type SessionManager struct {
	store    ports.SessionStore
	invoker  Invoker
	prompter ports.Prompter
	clock    ports.Clock
	logger   *zap.Logger
	ttl      time.Duration
	newID    func() string
}

func NewSessionManager(store ports.SessionStore, invoker Invoker, prompter ports.Prompter, clock ports.Clock, logger *zap.Logger) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionManager{
		store:    store,
		invoker:  invoker,
		prompter: prompter,
		clock:    clock,
		logger:   logger,
		ttl:      domain.DefaultSessionTTL,
		newID:    uuid.NewString,
	}
}

// WithTTL overrides the lifetime of sessions whose payload has no expires_at.
func (m *SessionManager) WithTTL(ttl time.Duration) *SessionManager {
	if ttl > 0 {
		m.ttl = ttl
	}

	return m
}

func (m *SessionManager) EnsureConnected(ctx context.Context, question string) SessionResult {
	if m.store.IsValid(ctx, m.clock.Now()) {
		session, err := m.store.Get(ctx)
		if err == nil {
			return SessionResult{Success: true, Session: session, Reused: true}
		}
	}

	if result, ok := m.connectAuto(ctx); ok {
		return result
	}

	switch detectConnectionPreference(question) {
	case domain.SessionMethodSSO:
		return m.connectSSO(ctx)
	case domain.SessionMethodCredentials:
		return m.connectCredentials(ctx)
	default:
		return m.chooseMethod(ctx)
	}
}

func (m *SessionManager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

func (m *SessionManager) Status(ctx context.Context) domain.SessionStatus {
	now := m.clock.Now()
	session, err := m.store.Get(ctx)
	if err != nil {
		return domain.SessionStatus{State: domain.SessionDisconnected, Now: now}
	}

	status := domain.SessionStatus{Session: session, Now: now}
	switch {
	case !session.ValidAt(now):
		status.State = domain.SessionExpired
	case session.Degraded():
		status.State = domain.SessionDegraded
	default:
		status.State = domain.SessionConnected
	}

	return status
}

func (m *SessionManager) connectAuto(ctx context.Context) (SessionResult, bool) {
	result := m.invoker.Invoke(ctx, snowflakeAutoCapability, map[string]any{})
	if !result.Succeeded() {
		m.logger.Debug("snowflake auto-connect unavailable", zap.String("reason", connectFailureMessage(result)))
		return SessionResult{}, false
	}

	m.prompter.Notify("✅ Connected to Snowflake using environment configuration")
	return m.save(ctx, domain.SessionMethodAuto, result.Data), true
}

func (m *SessionManager) connectSSO(ctx context.Context) SessionResult {
	account, err := m.requiredInput(ctx, "Snowflake URL or Account: ", "account")
	if err != nil {
		return sessionFailure("%v", err)
	}
	user, err := m.requiredInput(ctx, "Snowflake Username: ", "username")
	if err != nil {
		return sessionFailure("%v", err)
	}

	m.prompter.Notify("🌐 Opening browser for SSO authentication...")
	result := m.invoker.Invoke(ctx, snowflakeSSOCapability, map[string]any{
		"account": ParseSnowflakeAccount(account),
		"user":    user,
	})

	return m.complete(ctx, domain.SessionMethodSSO, result)
}

func (m *SessionManager) connectCredentials(ctx context.Context) SessionResult {
	account, err := m.requiredInput(ctx, "Snowflake URL or Account: ", "account")
	if err != nil {
		return sessionFailure("%v", err)
	}
	user, err := m.requiredInput(ctx, "Snowflake Username: ", "username")
	if err != nil {
		return sessionFailure("%v", err)
	}

	password, err := m.prompter.PromptSecret(ctx, "Snowflake Password: ")
	if err != nil {
		return sessionFailure("read password: %v", err)
	}
	if password == "" {
		return sessionFailure("password is required")
	}

	params := map[string]any{
		"account":  ParseSnowflakeAccount(account),
		"user":     user,
		"password": password,
	}

	for _, optional := range []struct{ key, label string }{
		{key: "role", label: "Role (optional, press Enter to skip): "},
		{key: "warehouse", label: "Warehouse (optional, press Enter to skip): "},
	} {
		value, err := m.prompter.Prompt(ctx, optional.label)
		if err != nil {
			return sessionFailure("read %s: %v", optional.key, err)
		}
		if value = strings.TrimSpace(value); value != "" {
			params[optional.key] = value
		}
	}

	result := m.invoker.Invoke(ctx, snowflakeCredentialsCapability, params)
	return m.complete(ctx, domain.SessionMethodCredentials, result)
}

func (m *SessionManager) chooseMethod(ctx context.Context) SessionResult {
	m.prompter.Notify("🔐 Snowflake connection required. Choose a connection method:\n" +
		"  1. SSO (browser authentication)\n" +
		"  2. Username/Password\n" +
		"  3. Skip (use mock data)")

	for {
		choice, err := m.prompter.Prompt(ctx, "Enter choice (1-3): ")
		if err != nil {
			return sessionFailure("choose connection method: %v", err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			return m.connectSSO(ctx)
		case "2":
			return m.connectCredentials(ctx)
		case "3":
			m.prompter.Notify("⚠️  Skipping Snowflake connection. Results may use mock data.")
			return m.save(ctx, domain.SessionMethodSkipped, nil)
		default:
			m.prompter.Notify(fmt.Sprintf("❌ %v: please enter 1, 2, or 3", domain.ErrInvalidChoice))
		}
	}
}

func (m *SessionManager) complete(ctx context.Context, method domain.SessionMethod, result domain.Result) SessionResult {
	if !result.Succeeded() {
		message := connectFailureMessage(result)
		m.logger.Warn("snowflake connect failed", zap.String("method", string(method)), zap.String("error", message))
		return sessionFailure("%s", message)
	}

	return m.save(ctx, method, result.Data)
}

func (m *SessionManager) save(ctx context.Context, method domain.SessionMethod, payload map[string]any) SessionResult {
	now := m.clock.Now()
	session := domain.ExternalSession{
		ID:          m.newID(),
		Method:      method,
		Payload:     payload,
		ConnectedAt: now,
		ExpiresAt:   sessionExpiry(payload, now, m.ttl),
	}

	if err := m.store.Put(ctx, session); err != nil {
		return sessionFailure("store session: %v", err)
	}

	m.logger.Info("snowflake session stored",
		zap.String("session_id", session.ID),
		zap.String("method", string(method)),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return SessionResult{Success: true, Session: session}
}

func (m *SessionManager) requiredInput(ctx context.Context, label string, field string) (string, error) {
	value, err := m.prompter.Prompt(ctx, label)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", field)
	}

	return value, nil
}

func detectConnectionPreference(question string) domain.SessionMethod {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, ssoKeywords):
		return domain.SessionMethodSSO
	case containsAny(lower, credentialKeywords):
		return domain.SessionMethodCredentials
	default:
		return ""
	}
}

// ParseSnowflakeAccount accepts an account identifier or a full account URL
// and returns the account identifier.
func ParseSnowflakeAccount(input string) string {
	account := strings.TrimSpace(input)
	if strings.HasPrefix(account, "https://") || strings.HasPrefix(account, "http://") {
		if parsed, err := url.Parse(account); err == nil && parsed.Host != "" {
			account = parsed.Hostname()
		}
	}

	return strings.TrimSuffix(account, snowflakeHostSuffix)
}

func sessionExpiry(payload map[string]any, now time.Time, ttl time.Duration) time.Time {
	switch value := payload["expires_at"].(type) {
	case string:
		if expiresAt, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return expiresAt
		}
	case float64:
		return time.Unix(int64(value), 0).UTC()
	case int64:
		return time.Unix(value, 0).UTC()
	case int:
		return time.Unix(int64(value), 0).UTC()
	case time.Time:
		return value
	}

	return now.Add(ttl)
}

func connectFailureMessage(result domain.Result) string {
	if message, ok := result.ErrorMessage(); ok && message != "" {
		return message
	}
	if result.Kind == domain.ResultText && strings.TrimSpace(result.Text) != "" {
		return result.Text
	}

	return "Unknown error"
}
