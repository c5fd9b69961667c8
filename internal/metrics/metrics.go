package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound provider instrumentation. The provider label is one of
// "completion", "transcription", "synthesis".
var (
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estudia",
		Name:      "provider_requests_total",
		Help:      "Total outbound requests per external provider capability.",
	}, []string{"provider"})

	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estudia",
		Name:      "provider_failures_total",
		Help:      "Outbound provider requests that failed or returned non-2xx.",
	}, []string{"provider"})

	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "estudia",
		Name:      "store_operations_total",
		Help:      "Session store operations by name.",
	}, []string{"operation"})
)
