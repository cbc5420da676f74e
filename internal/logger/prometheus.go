package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	// MetricLogEvents counts log events per level.
	MetricLogEvents = "oidc_log_events_total"
	// MetricLogWriteFailures counts events zerolog could not write.
	MetricLogWriteFailures = "oidc_log_write_failures_total"
)

//nolint:gochecknoglobals
var (
	events        *prometheus.CounterVec
	writeFailures prometheus.Counter
	metricsOnce   sync.Once
)

// LevelCounter is a zerolog hook feeding MetricLogEvents.
type LevelCounter struct{}

// Run implements zerolog.Hook.
func (LevelCounter) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || events == nil {
		return
	}

	events.WithLabelValues(level.String()).Inc()
}

// NewLevelCounter registers the logger metrics on first use.
// The service label is taken from the first call; later Init calls reuse the registered collectors.
func NewLevelCounter(service string) LevelCounter {
	metricsOnce.Do(func() {
		labels := prometheus.Labels{"service": service}

		events = promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        MetricLogEvents,
			Help:        "Number of log events, by level.",
			ConstLabels: labels,
		}, []string{"level"})

		writeFailures = promauto.NewCounter(prometheus.CounterOpts{
			Name:        MetricLogWriteFailures,
			Help:        "Number of log events dropped because the writer failed.",
			ConstLabels: labels,
		})
	})

	return LevelCounter{}
}
