// Package httpapi holds the request plumbing shared by the HTTP providers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	MaxResponseBytes      = 4 << 20
	DefaultRequestTimeout = 30 * time.Second
	userAgent             = "Mozilla/5.0 (X11; Linux x86_64) pulse"
)

// StatusError is returned for non-2xx responses. Body is truncated.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type Client struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Header         http.Header
}

func BuildURL(baseURL string, path string, query url.Values) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint := parsed
	if path != "" {
		if !strings.HasSuffix(parsed.Path, "/") {
			parsed.Path += "/"
		}
		endpoint, err = parsed.Parse(strings.TrimPrefix(path, "/"))
		if err != nil {
			return "", fmt.Errorf("parse api path: %w", err)
		}
	}
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	return endpoint.String(), nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c Client) GetJSON(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, "", func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// PostForm submits form values and returns the raw body.
func (c Client) PostForm(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	var data []byte
	err := c.do(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", func(body io.Reader) error {
		var err error
		data, err = io.ReadAll(body)
		return err
	})

	return data, err
}

func (c Client) do(ctx context.Context, method string, endpoint string, payload io.Reader, contentType string, decode func(io.Reader) error) error {
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")
	for key, values := range c.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%s %s: %w", method, redactQuery(endpoint), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, MaxResponseBytes)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	return decode(body)
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

// redactQuery drops the query string so API keys never reach error text.
func redactQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
