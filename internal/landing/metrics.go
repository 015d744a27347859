package landing

import (
	"time"

	"gamepulse/internal/section"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sectionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamepulse_section_outcomes_total",
		Help: "Landing page section outcomes by section and final state",
	}, []string{"section", "state"})

	sectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamepulse_section_duration_seconds",
		Help:    "Time from section start to its final state",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"section"})
)

// MetricsObserver записывает итоги секций в Prometheus.
type MetricsObserver struct{}

func (MetricsObserver) SectionSettled(name string, state section.State, duration time.Duration) {
	sectionOutcomes.WithLabelValues(name, state.String()).Inc()
	sectionDuration.WithLabelValues(name).Observe(duration.Seconds())
}
