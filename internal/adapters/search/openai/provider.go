// Package openai answers search queries from a chat model when the web
// sources come back empty.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = "gpt-4o-mini"
	maxTokens    = 500
	systemPrompt = "You are a helpful search assistant. Provide accurate, concise information about the user's query. " +
		"If the topic is time-sensitive, say that the information may be outdated."
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

type Provider struct {
	client chatCompleter
	model  string
}

var _ ports.SearchProvider = (*Provider)(nil)

// NewProvider returns nil when apiKey is empty, so callers can skip the source.
func NewProvider(apiKey string, baseURL string, model string) *Provider {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Provider{client: goopenai.NewClientWithConfig(cfg), model: model}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: "Provide information about: " + query},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, nil
	}

	return []domain.SearchHit{{
		Title:     "Information about: " + query,
		URL:       "https://duckduckgo.com/?q=" + url.QueryEscape(query),
		Snippet:   content,
		Source:    "AI Knowledge Base",
		Relevance: 0.6,
	}}, nil
}
