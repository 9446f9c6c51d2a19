package metrics

var (
	Ballot  = NopBallotMetrics()
	Queue   = NopQueueMetrics()
	API     = NopAPIMetrics()
	Pinning = NopPinningMetrics()
)
