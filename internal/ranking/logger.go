package ranking

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type RankLogEntry struct {
	Timestamp     time.Time      `json:"timestamp"`
	NewsItems     int            `json:"news_items"`
	Candidates    int            `json:"candidates"`
	Ranked        int            `json:"ranked"`
	Excluded      map[string]int `json:"excluded,omitempty"`
	TopScore      float64        `json:"top_score,omitempty"`
	Duration      time.Duration  `json:"duration_ns"`
	LatencyMs     int64          `json:"latency_ms"`
	CorrelationID string         `json:"correlation_id"`
}

// RankLogger writes one JSON line per ranking run.
type RankLogger struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewRankLogger(w io.Writer) *RankLogger {
	return &RankLogger{writer: w}
}

func NewFileRankLogger(path string) (*RankLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(path)
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, err
	}
	return NewRankLogger(io.MultiWriter(os.Stdout, f)), nil
}

func (l *RankLogger) Log(entry RankLogEntry) {
	if l == nil {
		return
	}
	entry.Timestamp = time.Now()
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write rank log entry", "error", err)
	}
}
