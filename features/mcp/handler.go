package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"factcheck/backend/features/search"
	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/middleware"
	"factcheck/backend/internal/ranking"
)

const (
	toolSearch = "factcheck_search"
	toolRank   = "factcheck_rank"
)

// Handler serves the ranking tools over stateless JSON-RPC. Every request is
// answered on its own POST; there are no sessions.
type Handler struct {
	searcher search.Searcher
	ranker   search.Ranker
	timeout  time.Duration
}

// NewHandler bounds every tool call by timeout; zero leaves calls unbounded.
func NewHandler(s search.Searcher, r search.Ranker, timeout time.Duration) *Handler {
	return &Handler{searcher: s, ranker: r, timeout: timeout}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(ctx, h.timeout)
	}
	return ctx, func() {}
}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

type CallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type SearchArgs struct {
	Query string `json:"query"`
}

type RankArgs struct {
	News   []evidence.NewsItem      `json:"news"`
	Videos []ranking.VideoCandidate `json:"videos"`
}

type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"inputSchema"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
)

var tools = []Tool{
	{
		Name: toolSearch,
		Description: `Fact-check tool. Fetches recent news for the query, finds related videos and ranks them by how closely their transcripts match the news coverage.

USAGE EXAMPLE:
factcheck_search(query="coastal storm flooding")`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]string{
					"type":        "string",
					"description": "The topic to fact-check",
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name: toolRank,
		Description: `Ranking tool. Scores the given videos against the given news items without searching. Videos without a transcript are left out.

USAGE EXAMPLE:
factcheck_rank(news=[{"title": "Storm hits coast", "description": "Flooding reported"}], videos=[{"videoId": "abc123", "title": "Storm footage"}])`,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"news": map[string]interface{}{
					"type":        "array",
					"description": "News items with title and description",
				},
				"videos": map[string]interface{}{
					"type":        "array",
					"description": "Video candidates with videoId, title and url",
				},
			},
			"required": []string{"news", "videos"},
		},
	},
}

// processRequest returns nil for notifications.
func (h *Handler) processRequest(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"protocolVersion": "2024-11-05",
				"capabilities": map[string]interface{}{
					"tools": map[string]interface{}{},
				},
				"serverInfo": map[string]interface{}{
					"name":    "factcheck-mcp",
					"version": "1.0.0",
				},
			},
		}
	case "notifications/initialized":
		return nil
	case "tools/list":
		return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: ListToolsResult{Tools: tools}}
	case "tools/call":
		var params CallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp := makeErrorResponse(req.ID, ErrInvalidParams, "Invalid params")
			return &resp
		}
		switch params.Name {
		case toolSearch:
			return h.callSearch(ctx, req.ID, params.Arguments)
		case toolRank:
			return h.callRank(ctx, req.ID, params.Arguments)
		}
		slog.WarnContext(ctx, "tool not found", "tool", params.Name)
		resp := makeErrorResponse(req.ID, ErrMethodNotFound, "Method not found: "+params.Name)
		return &resp
	}

	slog.WarnContext(ctx, "unknown jsonrpc method", "method", req.Method)
	resp := makeErrorResponse(req.ID, ErrMethodNotFound, "Method not found")
	return &resp
}

func (h *Handler) callSearch(ctx context.Context, id interface{}, raw json.RawMessage) *JSONRPCResponse {
	var args SearchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		resp := makeErrorResponse(id, ErrInvalidParams, "Invalid search arguments")
		return &resp
	}
	if strings.TrimSpace(args.Query) == "" {
		resp := makeErrorResponse(id, ErrInvalidParams, "Query is required")
		return &resp
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	res, err := h.searcher.Search(ctx, args.Query)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "error", err)
		return toolError(id, err)
	}

	var b strings.Builder
	if len(res.News) == 0 {
		b.WriteString("No relevant news articles found.\n")
	} else {
		b.WriteString("News Articles:\n")
		for _, n := range res.News {
			fmt.Fprintf(&b, "- %s (%s)\n", n.Title, n.SourceURL)
		}
	}
	b.WriteString("\n")
	writeRanked(&b, res.Ranked)
	if res.Summary != nil {
		fmt.Fprintf(&b, "\nSummary:\n%s\n", *res.Summary)
	}

	slog.InfoContext(ctx, "tool execution completed", "tool", toolSearch, "ranked", len(res.Ranked))
	return toolText(id, b.String())
}

func (h *Handler) callRank(ctx context.Context, id interface{}, raw json.RawMessage) *JSONRPCResponse {
	var args RankArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		resp := makeErrorResponse(id, ErrInvalidParams, "Invalid rank arguments")
		return &resp
	}
	for i, v := range args.Videos {
		if v.VideoID == "" {
			resp := makeErrorResponse(id, ErrInvalidParams, fmt.Sprintf("videos[%d].videoId is required", i))
			return &resp
		}
		if v.URL == "" {
			args.Videos[i].URL = ranking.WatchURL(v.VideoID)
		}
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	ranked := h.ranker.Rank(ctx, args.News, args.Videos)

	var b strings.Builder
	writeRanked(&b, ranked)

	slog.InfoContext(ctx, "tool execution completed", "tool", toolRank, "ranked", len(ranked))
	return toolText(id, b.String())
}

func writeRanked(b *strings.Builder, ranked []ranking.RankedVideo) {
	if len(ranked) == 0 {
		b.WriteString("No videos could be ranked.\n")
		return
	}
	for i, v := range ranked {
		fmt.Fprintf(b, "Result %d (Score: %.2f):\nTitle: %s\nURL: %s\n\n---\n", i+1, v.Score, v.Title, v.URL)
	}
}

func toolText(id interface{}, text string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  ToolResult{Content: []ToolContent{{Type: "text", Text: text}}},
	}
}

func toolError(id interface{}, err error) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: ToolResult{
			Content: []ToolContent{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		},
	}
}

func makeErrorResponse(id interface{}, code int, message string) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
		},
		ID: id,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.InfoContext(ctx, "mcp request received", "correlation_id", middleware.GetCorrelationID(ctx))

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, nil, ErrParse, "Parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		h.writeError(w, req.ID, ErrInvalidRequest, "Invalid Request")
		return
	}

	resp := h.processRequest(ctx, req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// JSON-RPC errors travel in a 200 response body.
func (h *Handler) writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(makeErrorResponse(id, code, message)); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
