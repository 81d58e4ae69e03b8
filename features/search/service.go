package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/ranking"
)

var (
	ErrEmptyQuery      = errors.New("query is empty")
	ErrSummaryDisabled = errors.New("summaries are disabled")
)

type Service struct {
	news       NewsSource
	videos     VideoSource
	ranker     Ranker
	summarizer Summarizer
}

func NewService(n NewsSource, v VideoSource, r Ranker, s Summarizer) *Service {
	if s == nil {
		s = NoSummary{}
	}
	return &Service{news: n, videos: v, ranker: r, summarizer: s}
}

// Search fetches news and videos for query concurrently, ranks the videos
// against the news and asks for a summary. A failing collaborator degrades to
// an empty set; only an expired context fails the whole search.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	res := &Result{
		Query:  query,
		News:   []evidence.NewsItem{},
		Videos: []ranking.VideoCandidate{},
	}

	var g errgroup.Group
	g.Go(func() error {
		items, err := s.news.Search(ctx, query)
		if err != nil {
			slog.WarnContext(ctx, "news search failed", "query", query, "error", err)
			return nil
		}
		if items != nil {
			res.News = items
		}
		return nil
	})
	g.Go(func() error {
		videos, err := s.videos.Search(ctx, query)
		if err != nil {
			slog.WarnContext(ctx, "video search failed", "query", query, "error", err)
			return nil
		}
		if videos != nil {
			res.Videos = videos
		}
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Ranked = s.ranker.Rank(ctx, res.News, res.Videos)
	if res.Ranked == nil {
		res.Ranked = []ranking.RankedVideo{}
	}

	summary, err := s.summarizer.Summarize(ctx, BuildPrompt(query, res.News, res.Ranked))
	switch {
	case errors.Is(err, ErrSummaryDisabled):
	case err != nil:
		slog.WarnContext(ctx, "summary generation failed", "error", err)
	default:
		res.Summary = &summary
	}

	slog.InfoContext(ctx, "search completed",
		"query", query,
		"news", len(res.News),
		"videos", len(res.Videos),
		"ranked", len(res.Ranked),
	)
	return res, nil
}
