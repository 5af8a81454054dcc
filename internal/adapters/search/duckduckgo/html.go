package duckduckgo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"golang.org/x/net/html"
)

// HTML scrapes the no-javascript results page.
type HTML struct {
	BaseURL string
	HTTP    httpapi.Client
}

var _ ports.SearchProvider = (*HTML)(nil)

func (s *HTML) Name() string {
	return "duckduckgo-html"
}

func (s *HTML) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	endpoint := s.BaseURL
	if endpoint == "" {
		endpoint = DefaultHTMLURL
	}
	body, err := s.HTTP.PostForm(ctx, endpoint, url.Values{"q": {query}})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo html search: %w", err)
	}

	hits, err := ParseResults(body, limit)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo results: %w", err)
	}

	return hits, nil
}

// ParseResults extracts result links and snippets from a results page.
func ParseResults(page []byte, limit int) ([]domain.SearchHit, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var hits []domain.SearchHit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result__body") {
			if hit, ok := resultFrom(n); ok {
				hit.Relevance = 0.7
				hits = append(hits, hit)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return hits, nil
}

func resultFrom(body *html.Node) (domain.SearchHit, bool) {
	hit := domain.SearchHit{Source: "DuckDuckGo"}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a") && hit.Title == "":
				hit.Title = textOf(n)
				hit.URL = resolveLink(attr(n, "href"))
				return
			case hasClass(n, "result__snippet") && hit.Snippet == "":
				hit.Snippet = textOf(n)
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(body)

	return hit, hit.Title != "" && hit.URL != ""
}

// resolveLink unwraps the redirect links the results page uses.
func resolveLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return parsed.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}
