package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

type Config struct {
	// Server
	ServerPort     int           `envconfig:"SERVER_PORT" default:"5000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RankLogPath    string        `envconfig:"RANK_LOG_PATH" default:"data/logs/rank.log"`

	// News
	NewsAPIKey   string `envconfig:"NEWS_API_KEY"`
	NewsAPIURL   string `envconfig:"NEWS_API_URL" default:"https://newsapi.org/v2/everything"`
	NewsPageSize int    `envconfig:"NEWS_PAGE_SIZE" default:"3"`

	// YouTube
	YouTubeAPIKey     string        `envconfig:"YOUTUBE_API_KEY"`
	YouTubeEndpoint   string        `envconfig:"YOUTUBE_ENDPOINT"`
	YouTubeMaxResults int           `envconfig:"YOUTUBE_MAX_RESULTS" default:"3"`
	TranscriptURL     string        `envconfig:"TRANSCRIPT_URL" default:"https://www.youtube.com/api/timedtext"`
	TranscriptLang    string        `envconfig:"TRANSCRIPT_LANG" default:"en"`
	TranscriptTimeout time.Duration `envconfig:"TRANSCRIPT_TIMEOUT" default:"10s"`

	// Embeddings
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"hugot"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"sentence-transformers/all-MiniLM-L6-v2"`
	EmbeddingModelDir string `envconfig:"EMBEDDING_MODEL_DIR" default:"./models"`
	EmbeddingOnnxFile string `envconfig:"EMBEDDING_ONNX_FILE" default:"onnx/model.onnx"`
	LexicalDimension  int    `envconfig:"LEXICAL_DIMENSION" default:"384"`

	// Gemini
	GeminiAPIKey          string `envconfig:"GEMINI_API_KEY"`
	GeminiEmbeddingModel  string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GeminiGenerativeModel string `envconfig:"GEMINI_GENERATIVE_MODEL" default:"gemini-1.5-flash"`

	// Summaries
	SummaryProvider string `envconfig:"SUMMARY_PROVIDER" default:"ollama"`
	OllamaBaseURL   string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434/v1/"`
	OllamaModel     string `envconfig:"OLLAMA_MODEL" default:"llama3.2"`

	// Ranking
	RankConcurrency int `envconfig:"RANK_CONCURRENCY" default:"4"`

	// Transcript cache, disabled when VALKEY_ADDRESS is empty
	ValkeyAddress      string        `envconfig:"VALKEY_ADDRESS"`
	ValkeyPassword     string        `envconfig:"VALKEY_PASSWORD"`
	TranscriptCacheTTL time.Duration `envconfig:"TRANSCRIPT_CACHE_TTL" default:"24h"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		return fmt.Errorf("%w: NEWS_API_KEY", ErrMissingRequired)
	}
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: YOUTUBE_API_KEY", ErrMissingRequired)
	}

	switch c.EmbeddingProvider {
	case EmbeddingHugot, EmbeddingLexical:
	case EmbeddingGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: EMBEDDING_PROVIDER %q", ErrInvalid, c.EmbeddingProvider)
	}

	switch c.SummaryProvider {
	case SummaryOllama, SummaryNone:
	case SummaryGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: SUMMARY_PROVIDER %q", ErrInvalid, c.SummaryProvider)
	}

	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("%w: LOG_FORMAT %q", ErrInvalid, c.LogFormat)
	}

	if c.RankConcurrency <= 0 {
		return fmt.Errorf("%w: RANK_CONCURRENCY must be positive", ErrInvalid)
	}
	if c.NewsPageSize <= 0 || c.YouTubeMaxResults <= 0 {
		return fmt.Errorf("%w: NEWS_PAGE_SIZE and YOUTUBE_MAX_RESULTS must be positive", ErrInvalid)
	}
	if c.EmbeddingProvider == EmbeddingLexical && c.LexicalDimension <= 0 {
		return fmt.Errorf("%w: LEXICAL_DIMENSION must be positive", ErrInvalid)
	}
	return nil
}
