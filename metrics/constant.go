package metrics

const (
	Namespace        = "balloting"
	BallotSubsystem  = "ballot"
	QueueSubsystem   = "queue"
	APISubsystem     = "api"
	PinningSubsystem = "pinning"
)

const (
	ResultCommitted = "committed"
	ResultRejected  = "rejected"
)
