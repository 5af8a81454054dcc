package application

import (
	"context"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func mockAnyContext() interface{} {
	return mock.Anything
}

// scriptedInvoker replays canned results by capability name and records calls.
type scriptedInvoker struct {
	results map[string]domain.Result
	calls   []invokerCall
}

type invokerCall struct {
	name   string
	params map[string]any
}

func (s *scriptedInvoker) Invoke(_ context.Context, name string, params map[string]any) domain.Result {
	s.calls = append(s.calls, invokerCall{name: name, params: params})
	if result, ok := s.results[name]; ok {
		return result
	}

	return domain.ErrorResult("Error executing " + name + ": not scripted")
}

func (s *scriptedInvoker) names() []string {
	names := make([]string, 0, len(s.calls))
	for _, call := range s.calls {
		names = append(names, call.name)
	}

	return names
}
