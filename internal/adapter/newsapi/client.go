package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"factcheck/backend/internal/evidence"
)

const (
	DefaultEndpoint = "https://newsapi.org/v2/everything"
	DefaultPageSize = 3

	maxAttempts     = 3
	initialBackoff  = 1 * time.Second
	maxBackoff      = 8 * time.Second
	removedArticle  = "[Removed]"
	requestTimeout  = 15 * time.Second
	userAgentHeader = "factcheck-backend/1.0"
)

var (
	ErrMissingAPIKey = errors.New("news api key is missing")
	ErrUnauthorized  = errors.New("news api rejected the api key")
	ErrBadRequest    = errors.New("news api rejected the request")
)

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	pageSize   int
	backoff    time.Duration
}

func NewClient(apiKey, endpoint string, pageSize int) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		pageSize:   pageSize,
		backoff:    initialBackoff,
	}
}

// Search returns the most relevant articles for query, already converted to
// evidence items. Rate limiting and server errors are retried with a doubling
// backoff; other non-200 answers fail immediately.
func (c *Client) Search(ctx context.Context, query string) ([]evidence.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, retry, err := c.do(ctx, reqURL)
		if err == nil {
			items := toNewsItems(resp.Articles)
			slog.InfoContext(ctx, "news articles fetched", "query", query, "total", resp.TotalResults, "kept", len(items))
			return items, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		slog.WarnContext(ctx, "news api request failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, fmt.Errorf("news api search failed: %w", lastErr)
}

func (c *Client) buildURL(query string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid news api endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// do performs one attempt. The bool result reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, reqURL string) (*EverythingResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgentHeader)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusOK:
		var parsed EverythingResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, false, fmt.Errorf("failed to parse response: %w", err)
		}
		return &parsed, false, nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, false, ErrUnauthorized
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, true, fmt.Errorf("news api status %d", res.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: status %d: %s", ErrBadRequest, res.StatusCode, errorMessage(body))
	}
}

func errorMessage(body []byte) string {
	var parsed EverythingResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		return "unknown error"
	}
	return parsed.Message
}

// toNewsItems applies the boundary defaults: a null description becomes the
// empty string and placeholder or untitled articles are dropped.
func toNewsItems(articles []Article) []evidence.NewsItem {
	items := make([]evidence.NewsItem, 0, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == removedArticle {
			continue
		}
		var description string
		if a.Description != nil {
			description = strings.TrimSpace(*a.Description)
		}
		items = append(items, evidence.NewsItem{
			Title:       title,
			Description: description,
			SourceURL:   a.URL,
		})
	}
	return items
}
