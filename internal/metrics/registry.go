package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// InitDefault registers the projector collectors on the process-wide
// prometheus registerer. Repeated calls return the same instance.
func InitDefault() *Metrics {
	once.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// GetDefault returns the shared metrics instance, initializing it on
// first use.
func GetDefault() *Metrics {
	if defaultMetrics == nil {
		return InitDefault()
	}
	return defaultMetrics
}
