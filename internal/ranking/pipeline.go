package ranking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"factcheck/backend/internal/embedding"
	"factcheck/backend/internal/evidence"
	"factcheck/backend/internal/middleware"
	"factcheck/backend/internal/similarity"
	"factcheck/backend/internal/transcript"
)

const DefaultConcurrency = 4

// Pipeline scores video candidates against the aggregated news narrative.
// The encoder is shared by all requests and must be safe for concurrent use.
type Pipeline struct {
	encoder     embedding.Encoder
	resolver    transcript.Resolver
	metrics     *Metrics
	logger      *RankLogger
	concurrency int
}

func NewPipeline(e embedding.Encoder, r transcript.Resolver, m *Metrics, l *RankLogger, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{encoder: e, resolver: r, metrics: m, logger: l, concurrency: concurrency}
}

type scored struct {
	video RankedVideo
	ok    bool
}

// Rank returns the candidates that have a transcript, ordered by descending
// similarity to the news set. Candidates with equal scores keep their input
// order. Failures for a single candidate only drop that candidate.
func (p *Pipeline) Rank(ctx context.Context, news []evidence.NewsItem, candidates []VideoCandidate) []RankedVideo {
	start := time.Now()
	p.metrics.incRequests()

	var (
		mu       sync.Mutex
		excluded = map[string]int{}
		ranked   = []RankedVideo{}
	)
	exclude := func(c VideoCandidate, reason string, err error) {
		mu.Lock()
		excluded[reason]++
		mu.Unlock()
		p.metrics.incExcluded(reason)

		switch reason {
		case ReasonMissingTranscript:
			slog.DebugContext(ctx, "candidate has no transcript", "video_id", c.VideoID)
		default:
			slog.WarnContext(ctx, "candidate excluded from ranking", "video_id", c.VideoID, "reason", reason, "error", err)
		}
	}

	defer func() {
		elapsed := time.Since(start)
		p.metrics.addRanked(len(ranked))
		p.metrics.observeDuration(elapsed.Seconds())

		entry := RankLogEntry{
			NewsItems:     len(news),
			Candidates:    len(candidates),
			Ranked:        len(ranked),
			Excluded:      excluded,
			Duration:      elapsed,
			CorrelationID: middleware.GetCorrelationID(ctx),
		}
		if len(ranked) > 0 {
			entry.TopScore = ranked[0].Score
		}
		p.logger.Log(entry)
	}()

	if len(news) == 0 || len(candidates) == 0 {
		return ranked
	}

	newsVec, err := p.encoder.Encode(ctx, evidence.Aggregate(news))
	if err != nil {
		slog.WarnContext(ctx, "failed to encode news evidence", "error", err)
		for _, c := range candidates {
			exclude(c, ReasonEncodeError, err)
		}
		return ranked
	}

	results := make([]scored, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			score, reason, err := p.score(ctx, newsVec, c)
			if reason != "" {
				exclude(c, reason, err)
				return nil
			}
			results[i] = scored{video: RankedVideo{Title: c.Title, URL: c.URL, Score: score}, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.ok {
			ranked = append(ranked, r.video)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// score returns a non-empty exclusion reason when c cannot be ranked.
func (p *Pipeline) score(ctx context.Context, newsVec []float32, c VideoCandidate) (float64, string, error) {
	text, ok, err := p.resolver.Resolve(ctx, c.VideoID)
	if err != nil {
		return 0, ReasonTranscriptError, err
	}
	if !ok {
		return 0, ReasonMissingTranscript, nil
	}

	vec, err := p.encoder.Encode(ctx, text)
	if err != nil {
		return 0, ReasonEncodeError, err
	}

	score, err := similarity.Cosine(newsVec, vec)
	if err != nil {
		if errors.Is(err, similarity.ErrZeroMagnitude) {
			return 0, ReasonDegenerateVector, err
		}
		return 0, ReasonEncodeError, err
	}
	return score, "", nil
}
