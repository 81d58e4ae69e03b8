package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"factcheck/backend/features/mcp"
	"factcheck/backend/features/search"
	"factcheck/backend/internal/config"
	"factcheck/backend/internal/middleware"
	"factcheck/backend/internal/ranking"
)

type App struct {
	Handler  http.Handler
	Pipeline *ranking.Pipeline
	Registry *prometheus.Registry
	port     int
}

func New(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*App, error) {
	// Metrics
	reg := prometheus.NewRegistry()
	metrics := ranking.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}

	// Ranking log
	rankLogger := ranking.NewRankLogger(os.Stdout)
	if cfg.RankLogPath != "" {
		fileLogger, err := ranking.NewFileRankLogger(cfg.RankLogPath)
		if err != nil {
			logger.Warn("failed to create rank logger, falling back to stdout", "error", err)
		} else {
			rankLogger = fileLogger
		}
	}

	// Feature: Search
	pipeline := ranking.NewPipeline(deps.Encoder, deps.Resolver, metrics, rankLogger, cfg.RankConcurrency)
	searchService := search.NewService(deps.News, deps.Videos, pipeline, deps.Summarizer)
	searchHandler := search.NewHandler(searchService, cfg.RequestTimeout)

	// Feature: MCP tools
	mcpHandler := mcp.NewHandler(searchService, pipeline, cfg.RequestTimeout)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /search", middleware.CorrelationID(enableCORS(searchHandler.Search)))
	mux.Handle("OPTIONS /search", enableCORS(func(http.ResponseWriter, *http.Request) {}))
	mux.Handle("POST /mcp", middleware.CorrelationID(mcpHandler))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:  mux,
		Pipeline: pipeline,
		Registry: reg,
		port:     cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
