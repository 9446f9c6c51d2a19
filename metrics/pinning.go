package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type PinningMetrics struct {
	UploadsTotal metrics.Counter
}

func PromPinningMetrics() *PinningMetrics {
	return &PinningMetrics{
		UploadsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PinningSubsystem,
			Name:      "uploads_total",
			Help:      "Files sent to the pinning service.",
		}, []string{"result"}),
	}
}

func NopPinningMetrics() *PinningMetrics {
	return &PinningMetrics{
		UploadsTotal: discard.NewCounter(),
	}
}
