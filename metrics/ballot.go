package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type BallotMetrics struct {
	OperationsTotal          metrics.Counter
	OperationDurationSeconds metrics.Histogram
	Members                  metrics.Gauge
	Nominees                 metrics.Gauge
	Votes                    metrics.Gauge
	SessionActive            metrics.Gauge
}

// Observe records one executed operation.
func (m *BallotMetrics) Observe(opType, result string, seconds float64) {
	m.OperationsTotal.With("type", opType, "result", result).Add(1)
	m.OperationDurationSeconds.With("type", opType).Observe(seconds)
}

func (m *BallotMetrics) SetState(members, nominees, votes int, active bool) {
	m.Members.Set(float64(members))
	m.Nominees.Set(float64(nominees))
	m.Votes.Set(float64(votes))
	if active {
		m.SessionActive.Set(1)
	} else {
		m.SessionActive.Set(0)
	}
}

func PromBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		OperationsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "operations_total",
			Help:      "Total number of executed operations.",
		}, []string{"type", "result"}),
		OperationDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing an operation, ledger append included.",
		}, []string{"type"}),
		Members: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "members",
			Help:      "Number of registered members.",
		}, []string{}),
		Nominees: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "nominees",
			Help:      "Number of nominated members.",
		}, []string{}),
		Votes: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "votes",
			Help:      "Number of votes cast.",
		}, []string{}),
		SessionActive: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "session_active",
			Help:      "1 while the voting session is active.",
		}, []string{}),
	}
}

func NopBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		OperationsTotal:          discard.NewCounter(),
		OperationDurationSeconds: discard.NewHistogram(),
		Members:                  discard.NewGauge(),
		Nominees:                 discard.NewGauge(),
		Votes:                    discard.NewGauge(),
		SessionActive:            discard.NewGauge(),
	}
}
