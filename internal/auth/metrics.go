package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric stages.
const (
	stageInitiate = "initiate"
	stageCallback = "callback"
	resultSuccess = "success"
)

var (
	flowResults = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "oidc_flow_results_total",
			Help: "Number of authentication flow steps, by provider, stage and result.",
		},
		[]string{"provider", "stage", "result"},
	)

	providerAvailable = promauto.NewGaugeVec( //nolint:gochecknoglobals
		prometheus.GaugeOpts{
			Name: "oidc_provider_available",
			Help: "1 if the provider client was initialized, 0 otherwise.",
		},
		[]string{"provider"},
	)
)

// observe counts the outcome of a stage. Provider ids outside the supported set
// are folded into one label to keep cardinality bounded.
func observe(provider, stage string, err error) {
	result := resultSuccess
	if err != nil {
		result = string(KindOf(err))
	}

	if provider == "" {
		provider = "unknown"
	}

	flowResults.WithLabelValues(provider, stage, result).Inc()
}
