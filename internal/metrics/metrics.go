// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "alumnidex"

var registerOnce sync.Once

// Register registers every collector with the default registry. Must be
// called from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpResponseBytes,
			httpInFlight,
			LLMRequestsTotal,
			LLMRequestDuration,
			LLMTokensTotal,
			LLMErrorsTotal,
			SearchTurnsTotal,
			SearchDuration,
			ExtractionTotal,
			Candidates,
			SessionCacheTotal,
		)
	})
}
