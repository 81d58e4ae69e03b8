package search

import (
	"context"
	"strings"

	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/ranking"
)

type NewsSource interface {
	Search(ctx context.Context, query string) ([]evidence.NewsItem, error)
}

type VideoSource interface {
	Search(ctx context.Context, query string) ([]ranking.VideoCandidate, error)
}

type Ranker interface {
	Rank(ctx context.Context, news []evidence.NewsItem, candidates []ranking.VideoCandidate) []ranking.RankedVideo
}

type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// NoSummary is the Summarizer used when generative summaries are disabled.
type NoSummary struct{}

func (NoSummary) Summarize(context.Context, string) (string, error) {
	return "", ErrSummaryDisabled
}

// Result is everything gathered for one query. Summary is nil when no
// summary could be produced.
type Result struct {
	Query   string
	News    []evidence.NewsItem
	Videos  []ranking.VideoCandidate
	Ranked  []ranking.RankedVideo
	Summary *string
}

// BuildPrompt renders the summarizer prompt from the news titles and the
// ranked video titles.
func BuildPrompt(query string, news []evidence.NewsItem, ranked []ranking.RankedVideo) string {
	videoTitles := make([]string, len(ranked))
	for i, v := range ranked {
		videoTitles[i] = v.Title
	}

	var b strings.Builder
	b.WriteString("User Query: ")
	b.WriteString(query)
	b.WriteString("\n\nNews Articles:\n")
	b.WriteString(strings.Join(evidence.Titles(news), ", "))
	b.WriteString("\n\nYouTube Videos:\n")
	b.WriteString(strings.Join(videoTitles, ", "))
	return b.String()
}
