package form

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK             = "ok"
	outcomeInvalidInput   = "invalid_input"
	outcomeTransportError = "transport_error"
	outcomeStale          = "stale"
)

var submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bfhl",
	Subsystem: "form",
	Name:      "submissions_total",
	Help:      "Form submissions by outcome.",
}, []string{"outcome"})
