package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"factcheck/backend/internal/middleware"
)

const (
	descriptionLimit = 150
	maxBodyBytes     = 1 << 20

	msgMissingQuery = "JSON body is missing or 'query' field is missing"
	msgNoNews       = "No relevant news articles found."
	msgNoVideos     = "No YouTube videos found."
)

type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}

type Handler struct {
	service Searcher
	timeout time.Duration
}

func NewHandler(s Searcher, timeout time.Duration) *Handler {
	return &Handler{service: s, timeout: timeout}
}

type SearchRequest struct {
	Query json.RawMessage `json:"query"`
}

// QueryText returns the query as text. Non-string scalars are taken in their
// JSON form, so {"query": 5} searches for "5". A missing or null query is
// reported as absent.
func (r SearchRequest) QueryText() (string, bool) {
	raw := strings.TrimSpace(string(r.Query))
	if raw == "" || raw == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Query, &s); err == nil {
		return s, true
	}
	return raw, true
}

type NewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type Video struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Message struct {
	Message string `json:"message"`
}

// SearchResponse keeps the field layout the web client expects: the news and
// video lists collapse to a Message object when empty.
type SearchResponse struct {
	NewsArticles  any                   `json:"news_articles"`
	YoutubeVideos any                   `json:"youtube_videos"`
	RankedVideos  []rankedVideoResponse `json:"ranked_videos"`
	LLMResponse   *string               `json:"llm_response"`
}

type rankedVideoResponse struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(ctx, w, "INVALID_ARGUMENT", msgMissingQuery, http.StatusBadRequest)
		return
	}
	query, ok := req.QueryText()
	if !ok {
		h.writeError(ctx, w, "INVALID_ARGUMENT", msgMissingQuery, http.StatusBadRequest)
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.service.Search(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuery):
			h.writeError(ctx, w, "INVALID_ARGUMENT", msgMissingQuery, http.StatusBadRequest)
		case errors.Is(err, context.DeadlineExceeded):
			slog.ErrorContext(ctx, "search timed out", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "TIMEOUT", "search timed out", http.StatusGatewayTimeout)
		default:
			slog.ErrorContext(ctx, "search failed", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "search failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponse(res)); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func toResponse(res *Result) SearchResponse {
	resp := SearchResponse{
		NewsArticles:  Message{Message: msgNoNews},
		YoutubeVideos: Message{Message: msgNoVideos},
		RankedVideos:  make([]rankedVideoResponse, len(res.Ranked)),
		LLMResponse:   res.Summary,
	}

	if len(res.News) > 0 {
		articles := make([]NewsArticle, len(res.News))
		for i, n := range res.News {
			articles[i] = NewsArticle{Title: n.Title, Description: truncate(n.Description, descriptionLimit), URL: n.SourceURL}
		}
		resp.NewsArticles = articles
	}

	if len(res.Videos) > 0 {
		videos := make([]Video, len(res.Videos))
		for i, v := range res.Videos {
			videos[i] = Video{Title: v.Title, URL: v.URL}
		}
		resp.YoutubeVideos = videos
	}

	for i, v := range res.Ranked {
		resp.RankedVideos[i] = rankedVideoResponse(v)
	}
	return resp
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
