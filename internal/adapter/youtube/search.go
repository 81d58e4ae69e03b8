package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"factcheck/backend/internal/ranking"
)

const DefaultMaxResults = 3

var ErrMissingAPIKey = errors.New("youtube api key is missing")

type SearchClient struct {
	service    *yt.Service
	maxResults int64
}

func NewSearchClient(ctx context.Context, apiKey string, maxResults int, opts ...option.ClientOption) (*SearchClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	svc, err := yt.NewService(ctx, append(opts, option.WithAPIKey(apiKey))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &SearchClient{service: svc, maxResults: int64(maxResults)}, nil
}

// Search returns video candidates for query in the order the API ranked them.
func (c *SearchClient) Search(ctx context.Context, query string) ([]ranking.VideoCandidate, error) {
	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	candidates := make([]ranking.VideoCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		var title string
		if item.Snippet != nil {
			title = strings.TrimSpace(item.Snippet.Title)
		}
		candidates = append(candidates, ranking.VideoCandidate{
			VideoID: item.Id.VideoId,
			Title:   title,
			URL:     ranking.WatchURL(item.Id.VideoId),
		})
	}

	slog.InfoContext(ctx, "video candidates fetched", "query", query, "count", len(candidates))
	return candidates, nil
}
