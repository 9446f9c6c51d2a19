package errors

// balloting engine
var (
	Unauthorized      = NewError(100, "caller is not authorized for this action")
	AlreadyRegistered = NewError(101, "member is already registered")
	NotAMember        = NewError(102, "nominee must be a registered member")
	SelfNomination    = NewError(103, "member cannot nominate themselves")
	AlreadyNominated  = NewError(104, "nominee is already nominated")
	VotingNotActive   = NewError(105, "voting is not active")
	AlreadyVoted      = NewError(106, "member has already voted")
	NotNominated      = NewError(107, "can only vote for nominated members")
	AlreadyActive     = NewError(108, "voting is already active")
	NotActive         = NewError(109, "voting is not active")
	SessionClosed     = NewError(110, "voting session has ended and cannot be reopened")
)

// service
var (
	InvalidOperation = NewError(200, "invalid operation")
	InvalidSignature = NewError(201, "signature does not match caller")
	ReplayedNonce    = NewError(202, "nonce was already used by this caller")
	StaleRequest     = NewError(203, "request timestamp is outside of the accepted window")
	AdminMismatch    = NewError(204, "ledger was deployed by a different admin")
	LedgerCorrupted  = NewError(205, "ledger failed validation")
	QueueFull        = NewError(206, "operation queue is full")
	StorageFailure   = NewError(207, "storage failure")
	QueueStopped     = NewError(208, "operation queue is stopped")
)

// api and collaborators
var (
	BadRequestParameter = NewError(300, "bad request parameter")
	InvalidConfig       = NewError(301, "invalid configuration")
	PinningFailed       = NewError(302, "pinning service rejected the upload")
	BlockNotFound       = NewError(303, "ledger block not found")
)

// IsDomain reports whether err is one of the engine's precondition
// violations.
func IsDomain(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code >= 100 && e.Code < 200
}
