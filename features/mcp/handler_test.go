package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factcheck/backend/features/search"
	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/ranking"
)

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Search(ctx context.Context, query string) (*search.Result, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

type MockRanker struct{ mock.Mock }

func (m *MockRanker) Rank(ctx context.Context, news []evidence.NewsItem, candidates []ranking.VideoCandidate) []ranking.RankedVideo {
	args := m.Called(ctx, news, candidates)
	return args.Get(0).([]ranking.RankedVideo)
}

func call(t *testing.T, h *Handler, body string) (int, JSONRPCResponse, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var raw map[string]interface{}
	var resp JSONRPCResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp, raw
}

func resultText(t *testing.T, raw map[string]interface{}) string {
	t.Helper()
	result := raw["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	require.Len(t, content, 1)
	return content[0].(map[string]interface{})["text"].(string)
}

func errorCode(t *testing.T, raw map[string]interface{}) float64 {
	t.Helper()
	errObj, ok := raw["error"].(map[string]interface{})
	require.True(t, ok, "expected error object")
	return errObj["code"].(float64)
}

func TestHandler_Protocol(t *testing.T) {
	h := NewHandler(new(MockSearcher), new(MockRanker), 0)

	t.Run("Initialize", func(t *testing.T) {
		code, resp, raw := call(t, h, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.EqualValues(t, 1, resp.ID)
		info := raw["result"].(map[string]interface{})["serverInfo"].(map[string]interface{})
		assert.Equal(t, "factcheck-mcp", info["name"])
	})

	t.Run("Notification", func(t *testing.T) {
		code, _, _ := call(t, h, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
		assert.Equal(t, http.StatusAccepted, code)
	})

	t.Run("List Tools", func(t *testing.T) {
		_, _, raw := call(t, h, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
		list := raw["result"].(map[string]interface{})["tools"].([]interface{})
		require.Len(t, list, 2)
		assert.Equal(t, toolSearch, list[0].(map[string]interface{})["name"])
		assert.Equal(t, toolRank, list[1].(map[string]interface{})["name"])
	})

	t.Run("Parse Error", func(t *testing.T) {
		code, _, raw := call(t, h, `{"jsonrpc":`)
		assert.Equal(t, http.StatusOK, code)
		assert.EqualValues(t, ErrParse, errorCode(t, raw))
	})

	t.Run("Wrong Version", func(t *testing.T) {
		_, _, raw := call(t, h, `{"jsonrpc":"1.0","id":3,"method":"initialize"}`)
		assert.EqualValues(t, ErrInvalidRequest, errorCode(t, raw))
	})

	t.Run("Unknown Method", func(t *testing.T) {
		_, _, raw := call(t, h, `{"jsonrpc":"2.0","id":4,"method":"resources/list"}`)
		assert.EqualValues(t, ErrMethodNotFound, errorCode(t, raw))
	})

	t.Run("Unknown Tool", func(t *testing.T) {
		_, _, raw := call(t, h, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)
		assert.EqualValues(t, ErrMethodNotFound, errorCode(t, raw))
	})
}

func TestHandler_Search(t *testing.T) {
	summary := "Coverage agrees."

	tests := []struct {
		name    string
		args    string
		setup   func(*MockSearcher)
		wantErr int
		check   func(*testing.T, map[string]interface{})
	}{
		{
			name: "Success",
			args: `{"query":"storm"}`,
			setup: func(m *MockSearcher) {
				m.On("Search", mock.Anything, "storm").Return(&search.Result{
					News:    []evidence.NewsItem{{Title: "Storm hits coast", SourceURL: "https://news.example/1"}},
					Ranked:  []ranking.RankedVideo{{Title: "Storm footage", URL: "https://www.youtube.com/watch?v=v1", Score: 0.71}},
					Summary: &summary,
				}, nil)
			},
			check: func(t *testing.T, raw map[string]interface{}) {
				text := resultText(t, raw)
				assert.Contains(t, text, "- Storm hits coast (https://news.example/1)")
				assert.Contains(t, text, "Result 1 (Score: 0.71):")
				assert.Contains(t, text, "Title: Storm footage")
				assert.Contains(t, text, "Summary:\nCoverage agrees.")
			},
		},
		{
			name: "Nothing Found",
			args: `{"query":"void"}`,
			setup: func(m *MockSearcher) {
				m.On("Search", mock.Anything, "void").Return(&search.Result{}, nil)
			},
			check: func(t *testing.T, raw map[string]interface{}) {
				text := resultText(t, raw)
				assert.Contains(t, text, "No relevant news articles found.")
				assert.Contains(t, text, "No videos could be ranked.")
			},
		},
		{
			name: "Search Failure",
			args: `{"query":"storm"}`,
			setup: func(m *MockSearcher) {
				m.On("Search", mock.Anything, "storm").Return(nil, errors.New("deadline"))
			},
			check: func(t *testing.T, raw map[string]interface{}) {
				assert.Equal(t, true, raw["result"].(map[string]interface{})["isError"])
				assert.Contains(t, resultText(t, raw), "Error: deadline")
			},
		},
		{name: "Missing Query", args: `{}`, setup: func(m *MockSearcher) {}, wantErr: ErrInvalidParams},
		{name: "Bad Arguments", args: `[1]`, setup: func(m *MockSearcher) {}, wantErr: ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(MockSearcher)
			tt.setup(s)
			h := NewHandler(s, new(MockRanker), 0)

			body := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"factcheck_search","arguments":` + tt.args + `}}`
			_, _, raw := call(t, h, body)

			if tt.wantErr != 0 {
				assert.EqualValues(t, tt.wantErr, errorCode(t, raw))
				return
			}
			tt.check(t, raw)
			s.AssertExpectations(t)
		})
	}
}

func TestHandler_Rank(t *testing.T) {
	r := new(MockRanker)
	news := []evidence.NewsItem{{Title: "Storm hits coast", Description: "Flooding reported"}}
	videos := []ranking.VideoCandidate{{VideoID: "v1", Title: "Storm footage", URL: "https://www.youtube.com/watch?v=v1"}}
	r.On("Rank", mock.Anything, news, videos).
		Return([]ranking.RankedVideo{{Title: "Storm footage", URL: "https://www.youtube.com/watch?v=v1", Score: 0.5}})

	h := NewHandler(new(MockSearcher), r, 0)
	body := `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"factcheck_rank","arguments":{
		"news":[{"title":"Storm hits coast","description":"Flooding reported"}],
		"videos":[{"videoId":"v1","title":"Storm footage"}]}}}`
	_, _, raw := call(t, h, body)

	assert.Contains(t, resultText(t, raw), "Result 1 (Score: 0.50):")
	r.AssertExpectations(t)

	_, _, raw = call(t, h, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"factcheck_rank","arguments":{"news":[],"videos":[{"title":"x"}]}}}`)
	assert.EqualValues(t, ErrInvalidParams, errorCode(t, raw))
}

func TestHandler_AppliesTimeout(t *testing.T) {
	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})

	s := new(MockSearcher)
	s.On("Search", hasDeadline, "storm").Return(&search.Result{Query: "storm", Ranked: []ranking.RankedVideo{}}, nil)
	r := new(MockRanker)
	r.On("Rank", hasDeadline, mock.Anything, mock.Anything).Return([]ranking.RankedVideo{})

	h := NewHandler(s, r, time.Second)

	_, _, raw := call(t, h, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"factcheck_search","arguments":{"query":"storm"}}}`)
	assert.Contains(t, resultText(t, raw), "No videos could be ranked.")

	_, _, raw = call(t, h, `{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"factcheck_rank","arguments":{"news":[],"videos":[{"videoId":"v1"}]}}}`)
	assert.Contains(t, resultText(t, raw), "No videos could be ranked.")

	s.AssertExpectations(t)
	r.AssertExpectations(t)
}
