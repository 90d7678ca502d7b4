package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "bfhl",
	Subsystem: "backend",
	Name:      "request_duration_seconds",
	Help:      "Time taken by requests to the BFHL endpoint, failed ones included.",
	Buckets:   prometheus.DefBuckets,
})
