package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGenerativeModel = "gemini-1.5-flash"

type Summarizer struct {
	client *genai.Client
	model  string
}

func NewSummarizer(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	if model == "" {
		model = DefaultGenerativeModel
	}

	client, err := genai.NewClient(ctx, append(opts, option.WithAPIKey(apiKey))...)
	if err != nil {
		return nil, err
	}
	return &Summarizer{client: client, model: model}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.GenerativeModel(s.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("empty completion received")
	}
	return b.String(), nil
}

func (s *Summarizer) Close() error {
	return s.client.Close()
}
