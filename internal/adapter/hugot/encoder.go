package hugot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const pipelineName = "factcheckEmbedder"

var ErrEmptyOutput = errors.New("feature extraction returned no embedding")

type Config struct {
	ModelName string
	ModelDir  string
	OnnxFile  string
}

// Encoder runs a sentence-transformers feature extraction model in process.
// The session and pipeline are built once and only read afterwards.
type Encoder struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	model    string
}

func NewEncoder(cfg Config) (*Encoder, error) {
	session, err := newSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}
	destroy := func() {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("failed to destroy hugot session", "error", destroyErr)
		}
	}

	modelPath, err := ensureModel(cfg)
	if err != nil {
		destroy()
		return nil, err
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      pipelineName,
	})
	if err != nil {
		destroy()
		return nil, fmt.Errorf("failed to initialize feature extraction pipeline: %w", err)
	}

	slog.Info("embedding model loaded", "model", cfg.ModelName, "path", modelPath)
	return &Encoder{session: session, pipeline: pipeline, model: cfg.ModelName}, nil
}

func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))
	out, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}
	if len(out.Embeddings) == 0 {
		return nil, ErrEmptyOutput
	}
	return out.Embeddings[0], nil
}

func (e *Encoder) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Destroy()
}

// ensureModel downloads the model on first start and reuses it afterwards.
func ensureModel(cfg Config) (string, error) {
	if err := os.MkdirAll(cfg.ModelDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	local := filepath.Join(cfg.ModelDir, strings.ReplaceAll(cfg.ModelName, "/", "_"))
	if _, err := os.Stat(local); err == nil {
		slog.Info("using existing embedding model", "path", local)
		return local, nil
	}

	slog.Info("embedding model not found, downloading", "model", cfg.ModelName)
	opts := hugot.NewDownloadOptions()
	if cfg.OnnxFile != "" {
		opts.OnnxFilePath = cfg.OnnxFile
	}
	path, err := hugot.DownloadModel(cfg.ModelName, cfg.ModelDir, opts)
	if err != nil {
		return "", fmt.Errorf("failed to download embedding model %s: %w", cfg.ModelName, err)
	}
	return path, nil
}
