package metrics

// InitPrometheusMetrics swaps every collector for one registered with the
// default prometheus registry. Call it once, before serving.
func InitPrometheusMetrics() {
	Ballot = PromBallotMetrics()
	Queue = PromQueueMetrics()
	API = PromAPIMetrics()
	Pinning = PromPinningMetrics()
}
