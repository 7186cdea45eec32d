// internal/metrics/aggregator.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mwiater/petit/internal/logging"
)

// Outcome label values for petit_completions_total.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
	OutcomeCanceled  = "canceled"
)

// Aggregator collects completion metrics on a private registry.
type Aggregator struct {
	registry    *prometheus.Registry
	duration    prometheus.Histogram
	completions *prometheus.CounterVec
	outputChars prometheus.Histogram
}

var (
	instance *Aggregator
	once     sync.Once
)

// GetInstance returns the process-wide Aggregator.
func GetInstance() *Aggregator {
	once.Do(func() {
		instance = NewAggregator()
	})
	return instance
}

// NewAggregator creates an Aggregator with its own registry.
func NewAggregator() *Aggregator {
	agg := &Aggregator{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "petit_completion_duration_seconds",
			Help:    "Wall-clock duration of completion requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petit_completions_total",
			Help: "Completion requests by outcome",
		}, []string{"outcome"}),
		outputChars: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "petit_output_chars",
			Help:    "Length of generated text in characters",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8),
		}),
	}
	agg.registry.MustRegister(agg.duration, agg.completions, agg.outputChars)
	return agg
}

// Record adds one completion to the collected metrics.
func (a *Aggregator) Record(seconds float64, outcome string, output string) {
	a.duration.Observe(seconds)
	a.completions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		a.outputChars.Observe(float64(len([]rune(output))))
	}
}

// Registry exposes the underlying registry as a Gatherer.
func (a *Aggregator) Registry() prometheus.Gatherer {
	return a.registry
}

// WriteTextfile writes all collected metrics to path in the text exposition
// format read by the node exporter's textfile collector.
func (a *Aggregator) WriteTextfile(path string) error {
	logging.LogEvent("[METRICS] Writing metrics to %s", path)
	return prometheus.WriteToTextfile(path, a.registry)
}
