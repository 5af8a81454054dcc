// Package duckduckgo searches through the DuckDuckGo instant-answer API and
// its HTML results page.
package duckduckgo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

const (
	DefaultInstantURL = "https://api.duckduckgo.com/"
	DefaultHTMLURL    = "https://html.duckduckgo.com/html/"
)

type InstantAnswer struct {
	BaseURL string
	HTTP    httpapi.Client
}

var _ ports.SearchProvider = (*InstantAnswer)(nil)

type instantResponse struct {
	Heading        string         `json:"Heading"`
	AbstractText   string         `json:"AbstractText"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Name     string         `json:"Name"`
	Topics   []relatedTopic `json:"Topics"`
}

func (s *InstantAnswer) Name() string {
	return "duckduckgo"
}

func (s *InstantAnswer) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	base := s.BaseURL
	if base == "" {
		base = DefaultInstantURL
	}
	endpoint, err := httpapi.BuildURL(base, "", url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	})
	if err != nil {
		return nil, err
	}

	var payload instantResponse
	if err := s.HTTP.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("duckduckgo instant answer: %w", err)
	}

	hits := make([]domain.SearchHit, 0, limit)
	if payload.AbstractText != "" {
		title := payload.Heading
		if title == "" {
			title = query
		}
		hits = append(hits, domain.SearchHit{
			Title:     title,
			URL:       payload.AbstractURL,
			Snippet:   payload.AbstractText,
			Source:    "DuckDuckGo Abstract",
			Relevance: 1,
		})
	}
	for _, topic := range flattenTopics(payload.RelatedTopics) {
		if len(hits) >= limit {
			break
		}
		hits = append(hits, domain.SearchHit{
			Title:     topicTitle(topic.Text),
			URL:       topic.FirstURL,
			Snippet:   topic.Text,
			Source:    "DuckDuckGo Related",
			Relevance: 0.8,
		})
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}

// flattenTopics expands grouped topics in place and drops entries without text.
func flattenTopics(topics []relatedTopic) []relatedTopic {
	out := make([]relatedTopic, 0, len(topics))
	for _, topic := range topics {
		if len(topic.Topics) > 0 {
			out = append(out, flattenTopics(topic.Topics)...)
			continue
		}
		if topic.Text != "" {
			out = append(out, topic)
		}
	}
	return out
}

func topicTitle(text string) string {
	if head, _, found := strings.Cut(text, " - "); found {
		return head
	}
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}
