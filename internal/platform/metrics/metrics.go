package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the screening counters. Each instance registers on its own
// registry so tests can build as many as they like.
type Metrics struct {
	Registry       *prometheus.Registry
	Screenings     *prometheus.CounterVec
	TribunalErrors *prometheus.CounterVec
	MatchScore     prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Screenings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctionguard_screenings_total",
			Help: "Screenings by mode (single, batch) and resulting status.",
		}, []string{"mode", "status"}),
		TribunalErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctionguard_tribunal_errors_total",
			Help: "Tribunal failures by stage.",
		}, []string{"stage"}),
		MatchScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sanctionguard_match_score",
			Help:    "Best fuzzy match score per screened name.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

func (m *Metrics) ObserveScreening(mode, status string, score float64) {
	if m == nil {
		return
	}
	m.Screenings.WithLabelValues(mode, status).Inc()
	m.MatchScore.Observe(score)
}

func (m *Metrics) ObserveTribunalError(stage string) {
	if m == nil {
		return
	}
	m.TribunalErrors.WithLabelValues(stage).Inc()
}
