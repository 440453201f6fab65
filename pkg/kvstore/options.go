package kvstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures store behavior using the functional options pattern.
type Option func(*storeOptions)

// storeOptions holds internal configuration for store instances.
// Stats are ALWAYS collected - they are not optional.
// Prometheus metrics are optional and enabled via WithMetrics().
type storeOptions struct {
	metricsReg    prometheus.Registerer
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for store statistics.
// If reg is nil or prefix is empty, this option is ignored.
func WithMetrics(reg prometheus.Registerer, prefix string) Option {
	return func(opts *storeOptions) {
		if reg != nil && prefix != "" {
			opts.metricsReg = reg
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options to create the final configuration.
func applyOptions(options ...Option) *storeOptions {
	opts := &storeOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
