package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "http://localhost:11434/v1/"
	DefaultModel   = "llama3.2"

	requestTimeout = 60 * time.Second
)

// Summarizer talks to Ollama through its OpenAI compatible chat endpoint.
type Summarizer struct {
	client *openai.Client
	model  string
}

func NewSummarizer(baseURL, model string, opts ...option.RequestOption) *Summarizer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	base := []option.RequestOption{
		option.WithBaseURL(baseURL),
		// ollama ignores the key but the client insists on one
		option.WithAPIKey("ollama"),
		option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
		option.WithMaxRetries(0),
	}

	slog.Info("ollama summarizer initialized", "base_url", baseURL, "model", model)
	return &Summarizer{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(openai.ChatModel(s.model)),
	})
	if err != nil {
		slog.WarnContext(ctx, "ollama completion failed", "error", err, "elapsed", time.Since(start))
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion received")
	}

	content := cleanCompletion(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion received")
	}

	slog.DebugContext(ctx, "ollama completion received", "elapsed", time.Since(start), "length", len(content))
	return content, nil
}

// cleanCompletion drops escaped newlines and stray backslashes some local
// models emit around their answer.
func cleanCompletion(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, `\`, "")
	return strings.TrimSpace(s)
}
