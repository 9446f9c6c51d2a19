package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type QueueMetrics struct {
	Size          metrics.Gauge
	RejectedTotal metrics.Counter
}

func (m *QueueMetrics) AddSize(delta int) {
	m.Size.Add(float64(delta))
}

func PromQueueMetrics() *QueueMetrics {
	return &QueueMetrics{
		Size: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: QueueSubsystem,
			Name:      "size",
			Help:      "Number of operations waiting in the queue.",
		}, []string{}),
		RejectedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: QueueSubsystem,
			Name:      "rejected_total",
			Help:      "Operations refused because the queue was full or stopped.",
		}, []string{"reason"}),
	}
}

func NopQueueMetrics() *QueueMetrics {
	return &QueueMetrics{
		Size:          discard.NewGauge(),
		RejectedTotal: discard.NewCounter(),
	}
}
