package application

import (
	"context"
	"strings"
	"sync"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxInvocations = 3

type ResponseFormatter interface {
	Report(question string, invocations []domain.ToolInvocation) string
	UnknownIntent() string
	ConnectionFailed(message string) string
}

type AgentConfig struct {
	Registry       *Registry
	Invoker        Invoker
	Sessions       *SessionManager
	Formatter      ResponseFormatter
	Clock          ports.Clock
	Logger         *zap.Logger
	MaxInvocations int
}

// Agent answers free-text questions by routing them to capabilities. It owns
// the conversation history for the lifetime of the process.
type Agent struct {
	registry   *Registry
	classifier *Classifier
	suggester  *Suggester
	extractor  *Extractor
	invoker    Invoker
	sessions   *SessionManager
	formatter  ResponseFormatter
	clock      ports.Clock
	logger     *zap.Logger
	maxInvoke  int
	newID      func() string

	mu      sync.Mutex
	history []domain.HistoryEntry
}

func NewAgent(cfg AgentConfig) *Agent {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxInvocations <= 0 {
		cfg.MaxInvocations = DefaultMaxInvocations
	}

	return &Agent{
		registry:   cfg.Registry,
		classifier: NewClassifier(),
		suggester:  NewSuggester(),
		extractor:  NewExtractor(),
		invoker:    cfg.Invoker,
		sessions:   cfg.Sessions,
		formatter:  cfg.Formatter,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		maxInvoke:  cfg.MaxInvocations,
		newID:      uuid.NewString,
	}
}

func (a *Agent) HandleQuestion(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	logger := a.logger.With(zap.String("question_id", a.newID()))
	a.record(domain.EntryQuestion, question, nil)

	analysis := a.classifier.Classify(question)
	logger.Info("question classified",
		zap.Strings("intents", intentNames(analysis.Intents)),
		zap.Strings("actions", actionNames(analysis.Actions)),
	)

	suggestions := a.suggester.Suggest(analysis)
	if len(suggestions) == 0 {
		response := a.formatter.UnknownIntent()
		a.record(domain.EntryResponse, response, nil)
		return response, nil
	}
	if len(suggestions) > a.maxInvoke {
		suggestions = suggestions[:a.maxInvoke]
	}

	var (
		connectionFailure string
		ready             *domain.ExternalSession
	)
	if analysis.HasIntent(domain.IntentSnowflake) && a.sessions != nil {
		session := a.sessions.EnsureConnected(ctx, question)
		if !session.Success {
			connectionFailure = session.Error
			logger.Warn("snowflake session unavailable", zap.String("error", session.Error))
		} else {
			ready = &session.Session
			logger.Debug("snowflake session ready", zap.Bool("reused", session.Reused), zap.String("method", string(session.Session.Method)))
		}
	}

	invocations := make([]domain.ToolInvocation, 0, len(suggestions))
	for _, name := range suggestions {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !a.registry.Has(name) {
			logger.Debug("skipping unregistered capability", zap.String("tool", name))
			continue
		}
		if connectionFailure != "" && a.needsSession(name) {
			continue
		}
		// The session is already open; report it once rather than connecting
		// again with no credentials.
		if ready != nil && domain.IsConnectCapability(name) && a.needsSession(name) {
			if !hasConnectInvocation(invocations) {
				invocations = append(invocations, domain.ToolInvocation{
					CapabilityName: name,
					Parameters:     map[string]any{},
					Result:         domain.StructuredResult(ready.Payload),
				})
			}
			continue
		}

		params := a.extractor.Extract(question, name)
		logger.Info("invoking capability", zap.String("tool", name), zap.Any("params", redact(params)))
		invocations = append(invocations, domain.ToolInvocation{
			CapabilityName: name,
			Parameters:     params,
			Result:         a.invoker.Invoke(ctx, name, params),
		})
	}

	response := a.compose(question, connectionFailure, invocations)
	a.record(domain.EntryResponse, response, invocationNames(invocations))

	return response, nil
}

func (a *Agent) compose(question string, connectionFailure string, invocations []domain.ToolInvocation) string {
	if connectionFailure == "" {
		return a.formatter.Report(question, invocations)
	}

	failure := a.formatter.ConnectionFailed(connectionFailure)
	if len(invocations) == 0 {
		return failure
	}

	return failure + "\n" + a.formatter.Report(question, invocations)
}

func hasConnectInvocation(invocations []domain.ToolInvocation) bool {
	for _, invocation := range invocations {
		if domain.IsConnectCapability(invocation.CapabilityName) {
			return true
		}
	}

	return false
}

func (a *Agent) needsSession(name string) bool {
	descriptor, err := a.registry.Get(name)
	if err != nil {
		return false
	}

	return descriptor.Category == domain.CategorySnowflake
}

func (a *Agent) History() []domain.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := make([]domain.HistoryEntry, len(a.history))
	copy(history, a.history)
	return history
}

func (a *Agent) Capabilities() *Registry {
	return a.registry
}

func (a *Agent) SessionStatus(ctx context.Context) domain.SessionStatus {
	if a.sessions == nil {
		return domain.SessionStatus{State: domain.SessionDisconnected, Now: a.clock.Now()}
	}

	return a.sessions.Status(ctx)
}

func (a *Agent) ClearSession(ctx context.Context) error {
	if a.sessions == nil {
		return nil
	}

	return a.sessions.Clear(ctx)
}

func (a *Agent) record(entryType domain.EntryType, content string, tools []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, domain.HistoryEntry{
		Timestamp: a.clock.Now(),
		Type:      entryType,
		Content:   content,
		ToolsUsed: tools,
	})
}

func invocationNames(invocations []domain.ToolInvocation) []string {
	names := make([]string, 0, len(invocations))
	for _, invocation := range invocations {
		names = append(names, invocation.CapabilityName)
	}

	return names
}

func intentNames(intents []domain.Intent) []string {
	names := make([]string, 0, len(intents))
	for _, intent := range intents {
		names = append(names, string(intent))
	}

	return names
}

func actionNames(actions []domain.Action) []string {
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, string(action))
	}

	return names
}

// redact hides secrets before parameters reach the log.
func redact(params map[string]any) map[string]any {
	if _, ok := params["password"]; !ok {
		return params
	}

	copied := make(map[string]any, len(params))
	for key, value := range params {
		copied[key] = value
	}
	copied["password"] = "***"

	return copied
}
