package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricRankRequestsTotal       = "factcheck_rank_requests_total"
	MetricCandidatesRankedTotal   = "factcheck_candidates_ranked_total"
	MetricCandidatesExcludedTotal = "factcheck_candidates_excluded_total"
	MetricRankDuration            = "factcheck_rank_duration_seconds"
)

// Exclusion reasons used as the reason label.
const (
	ReasonMissingTranscript = "missing_transcript"
	ReasonTranscriptError   = "transcript_error"
	ReasonEncodeError       = "encode_error"
	ReasonDegenerateVector  = "degenerate_vector"
)

// Metrics holds the ranking collectors. A nil *Metrics records nothing.
type Metrics struct {
	rankRequests       prometheus.Counter
	candidatesRanked   prometheus.Counter
	candidatesExcluded *prometheus.CounterVec
	rankDuration       prometheus.Histogram
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		rankRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRankRequestsTotal,
			Help: "Total number of ranking runs",
		}),
		candidatesRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCandidatesRankedTotal,
			Help: "Total number of video candidates that received a relevance score",
		}),
		candidatesExcluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCandidatesExcludedTotal,
				Help: "Total number of video candidates dropped from a ranking by reason",
			},
			[]string{"reason"},
		),
		rankDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRankDuration,
			Help:    "Histogram of ranking duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		}),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankRequests,
		m.candidatesRanked,
		m.candidatesExcluded,
		m.rankDuration,
	}
}

func (m *Metrics) incRequests() {
	if m == nil {
		return
	}
	m.rankRequests.Inc()
}

func (m *Metrics) addRanked(n int) {
	if m == nil {
		return
	}
	m.candidatesRanked.Add(float64(n))
}

func (m *Metrics) incExcluded(reason string) {
	if m == nil {
		return
	}
	m.candidatesExcluded.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeDuration(seconds float64) {
	if m == nil {
		return
	}
	m.rankDuration.Observe(seconds)
}
