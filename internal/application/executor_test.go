package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
)

func TestExecutorInvokeDecodesEnvelope(t *testing.T) {
	client := mocks.NewMockToolClient(t)
	client.EXPECT().CallTool(mockAnyContext(), "connect_snowflake_auto", map[string]any{}).
		Return([]domain.TextEnvelope{{Type: "text", Text: `{"success": true}`}}, nil)

	result := NewExecutor(client, nil).Invoke(context.Background(), "connect_snowflake_auto", nil)

	assert.Equal(t, domain.ResultStructured, result.Kind)
	assert.Equal(t, map[string]any{"success": true}, result.Data)
	assert.True(t, result.Succeeded())
}

func TestExecutorInvokeWrapsTransportError(t *testing.T) {
	client := mocks.NewMockToolClient(t)
	client.EXPECT().CallTool(mockAnyContext(), "get_weather", map[string]any{"city": "paris"}).
		Return(nil, errors.New("connection reset"))

	result := NewExecutor(client, nil).Invoke(context.Background(), "get_weather", map[string]any{"city": "paris"})

	assert.Equal(t, domain.ErrorResult("Error executing get_weather: connection reset"), result)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want domain.Result
	}{
		{name: "nil", raw: nil, want: domain.TextResult("")},
		{name: "map", raw: map[string]any{"temperature": 21.5}, want: domain.StructuredResult(map[string]any{"temperature": 21.5})},
		{name: "string", raw: "plain", want: domain.TextResult("plain")},
		{name: "result passes through", raw: domain.ErrorResult("boom"), want: domain.ErrorResult("boom")},
		{name: "single envelope object", raw: domain.TextEnvelope{Type: "text", Text: `{"result": 60}`}, want: domain.StructuredResult(map[string]any{"result": float64(60)})},
		{name: "envelope list uses first", raw: []domain.TextEnvelope{{Text: `{"a": 1}`}, {Text: `{"b": 2}`}}, want: domain.StructuredResult(map[string]any{"a": float64(1)})},
		{name: "envelope array is pretty printed", raw: []domain.TextEnvelope{{Text: `[1,2]`}}, want: domain.TextResult("[\n  1,\n  2\n]")},
		{name: "envelope non json", raw: []domain.TextEnvelope{{Text: "Snowflake report"}}, want: domain.TextResult("Snowflake report")},
		{name: "envelope scalar json", raw: []domain.TextEnvelope{{Text: "42"}}, want: domain.TextResult("42")},
		{name: "empty envelope list", raw: []domain.TextEnvelope{}, want: domain.TextResult("")},
		{name: "other values are printed", raw: 42, want: domain.TextResult("42")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}
