package app

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"factcheck/backend/features/search"
	"factcheck/backend/internal/adapter/gemini"
	"factcheck/backend/internal/adapter/hugot"
	"factcheck/backend/internal/adapter/newsapi"
	"factcheck/backend/internal/adapter/ollama"
	"factcheck/backend/internal/adapter/valkey"
	"factcheck/backend/internal/adapter/youtube"
	"factcheck/backend/internal/config"
	"factcheck/backend/internal/embedding"
	"factcheck/backend/internal/transcript"
)

// Dependencies are the long-lived collaborators created once at startup.
type Dependencies struct {
	Encoder    embedding.Encoder
	Resolver   transcript.Resolver
	News       search.NewsSource
	Videos     search.VideoSource
	Summarizer search.Summarizer

	closers []func() error
}

func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			slog.Warn("failed to release dependency", "error", err)
		}
	}
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	enc, err := newEncoder(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	deps.Encoder = enc

	var ytOpts []option.ClientOption
	if cfg.YouTubeEndpoint != "" {
		ytOpts = append(ytOpts, option.WithEndpoint(cfg.YouTubeEndpoint))
	}
	videos, err := youtube.NewSearchClient(ctx, cfg.YouTubeAPIKey, cfg.YouTubeMaxResults, ytOpts...)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("youtube client error: %w", err)
	}
	deps.Videos = videos
	deps.News = newsapi.NewClient(cfg.NewsAPIKey, cfg.NewsAPIURL, cfg.NewsPageSize)
	deps.Resolver = newResolver(ctx, cfg, deps)

	sum, err := newSummarizer(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("summarizer error: %w", err)
	}
	deps.Summarizer = sum

	slog.Info("dependencies ready",
		"embedding_provider", cfg.EmbeddingProvider,
		"summary_provider", cfg.SummaryProvider,
		"transcript_cache", cfg.ValkeyAddress != "",
	)
	return deps, nil
}

func newEncoder(ctx context.Context, cfg *config.Config, deps *Dependencies) (embedding.Encoder, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingLexical:
		return embedding.NewLexicalEncoder(cfg.LexicalDimension), nil
	case config.EmbeddingGemini:
		e, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, e.Close)
		return e, nil
	case config.EmbeddingHugot:
		e, err := hugot.NewEncoder(hugot.Config{
			ModelName: cfg.EmbeddingModel,
			ModelDir:  cfg.EmbeddingModelDir,
			OnnxFile:  cfg.EmbeddingOnnxFile,
		})
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, e.Close)
		return e, nil
	default:
		return nil, fmt.Errorf("%w: EMBEDDING_PROVIDER %q", config.ErrInvalid, cfg.EmbeddingProvider)
	}
}

// newResolver falls back to uncached transcript lookups when valkey is not
// configured or unreachable.
func newResolver(ctx context.Context, cfg *config.Config, deps *Dependencies) transcript.Resolver {
	client := youtube.NewTranscriptClient(cfg.TranscriptURL, cfg.TranscriptLang, cfg.TranscriptTimeout)
	if cfg.ValkeyAddress == "" {
		return client
	}

	store, err := valkey.NewStore(ctx, cfg.ValkeyAddress, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("transcript cache unavailable, continuing without it", "error", err)
		return client
	}
	deps.closers = append(deps.closers, func() error {
		store.Close()
		return nil
	})
	return transcript.NewCachedResolver(client, store, cfg.TranscriptCacheTTL)
}

func newSummarizer(ctx context.Context, cfg *config.Config, deps *Dependencies) (search.Summarizer, error) {
	switch cfg.SummaryProvider {
	case config.SummaryNone:
		return search.NoSummary{}, nil
	case config.SummaryOllama:
		return ollama.NewSummarizer(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case config.SummaryGemini:
		s, err := gemini.NewSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiGenerativeModel)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: SUMMARY_PROVIDER %q", config.ErrInvalid, cfg.SummaryProvider)
	}
}
