package ranking

import (
	"context"

	"factcheck/backend/internal/evidence"
)

var newsFixture = []evidence.NewsItem{{Title: "Storm hits coast", Description: "Flooding reported"}}

type resolverStub map[string]string

func (r resolverStub) Resolve(_ context.Context, id string) (string, bool, error) {
	text, ok := r[id]
	return text, ok, nil
}

func candidatesFixture(ids ...string) []VideoCandidate {
	out := make([]VideoCandidate, len(ids))
	for i, id := range ids {
		out[i] = VideoCandidate{VideoID: id, Title: id, URL: "https://www.youtube.com/watch?v=" + id}
	}
	return out
}

