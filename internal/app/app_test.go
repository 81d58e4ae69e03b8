package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factcheck/backend/features/search"
	"factcheck/backend/internal/config"
	"factcheck/backend/internal/embedding"
	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/ranking"
	"factcheck/backend/internal/transcript"
)

type newsFunc func(ctx context.Context, query string) ([]evidence.NewsItem, error)

func (f newsFunc) Search(ctx context.Context, query string) ([]evidence.NewsItem, error) {
	return f(ctx, query)
}

type videosFunc func(ctx context.Context, query string) ([]ranking.VideoCandidate, error)

func (f videosFunc) Search(ctx context.Context, query string) ([]ranking.VideoCandidate, error) {
	return f(ctx, query)
}

func testDeps() *Dependencies {
	return &Dependencies{
		Encoder: embedding.NewLexicalEncoder(0),
		Resolver: transcript.ResolverFunc(func(_ context.Context, id string) (string, bool, error) {
			switch id {
			case "storm":
				return "Severe flooding and storm damage reported along coast", true, nil
			case "pasta":
				return "Cooking pasta tutorial", true, nil
			}
			return "", false, nil
		}),
		News: newsFunc(func(context.Context, string) ([]evidence.NewsItem, error) {
			return []evidence.NewsItem{{Title: "Storm hits coast", Description: "Flooding reported", SourceURL: "https://news.example/1"}}, nil
		}),
		Videos: videosFunc(func(context.Context, string) ([]ranking.VideoCandidate, error) {
			return []ranking.VideoCandidate{
				{VideoID: "pasta", Title: "Pasta night", URL: "https://www.youtube.com/watch?v=pasta"},
				{VideoID: "none", Title: "No captions", URL: "https://www.youtube.com/watch?v=none"},
				{VideoID: "storm", Title: "Storm footage", URL: "https://www.youtube.com/watch?v=storm"},
			}, nil
		}),
		Summarizer: search.NoSummary{},
	}
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ServerPort:      0,
		RequestTimeout:  5 * time.Second,
		RankConcurrency: 2,
		RankLogPath:     filepath.Join(t.TempDir(), "rank.log"),
	}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app, err := New(testConfig(t), testDeps(), logger)
	require.NoError(t, err)
	assert.NotNil(t, app.Handler)
	assert.NotNil(t, app.Pipeline)

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("Search", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"storm"}`))
		app.Handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		var body struct {
			RankedVideos []ranking.RankedVideo `json:"ranked_videos"`
			LLMResponse  *string               `json:"llm_response"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.RankedVideos, 2)
		assert.Equal(t, "Storm footage", body.RankedVideos[0].Title)
		assert.Equal(t, "Pasta night", body.RankedVideos[1].Title)
		assert.Nil(t, body.LLMResponse)
	})

	t.Run("Search Bad Request", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/search", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("MCP", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"factcheck_search","arguments":{"query":"storm"}}}`
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Storm footage")
	})

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ranking.MetricRankRequestsTotal)
		assert.Contains(t, w.Body.String(), ranking.MetricCandidatesExcludedTotal+`{reason="missing_transcript"} 2`)
	})
}

func TestApp_Run_Shutdown(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app, err := New(testConfig(t), testDeps(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
