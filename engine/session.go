package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"balloting-backend/errors"
	"balloting-backend/models"
)

// StartVoting opens the session. An election runs once: a session that was
// ended cannot be opened again.
func (e *Engine) StartVoting(caller common.Address) error {
	return e.Apply(models.Operation{Type: models.OpStartVoting, Caller: caller})
}

// EndVoting closes the session and decides the winner.
func (e *Engine) EndVoting(caller common.Address) error {
	return e.Apply(models.Operation{Type: models.OpEndVoting, Caller: caller})
}

func (e *Engine) VotingActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state == models.Active
}

func (e *Engine) State() models.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state
}

// Closed reports whether the session has been ended.
func (e *Engine) Closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.closed
}

// Winner returns the decided winner, or the zero address when voting has not
// ended or nobody was nominated.
func (e *Engine) Winner() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.winner
}

func (e *Engine) checkStart(caller common.Address) error {
	if caller != e.admin {
		return unauthorized("admin", caller)
	}
	if e.state == models.Active {
		return errors.AlreadyActive.Clone()
	}
	if e.closed {
		return errors.SessionClosed.Clone()
	}
	return nil
}

func (e *Engine) commitStart() {
	e.state = models.Active
}

func (e *Engine) checkEnd(caller common.Address) error {
	if caller != e.admin {
		return unauthorized("admin", caller)
	}
	if e.state != models.Active {
		return errors.NotActive.Clone()
	}
	return nil
}

func (e *Engine) commitEnd() {
	e.state = models.Inactive
	e.closed = true
	e.winner = e.leader()
}

// leader scans nominees in nomination order and keeps the first one to reach
// a new strict maximum, so ties go to the earliest nominee.
func (e *Engine) leader() common.Address {
	var (
		winner common.Address
		best   uint64
		found  bool
	)
	for pair := e.nominees.Oldest(); pair != nil; pair = pair.Next() {
		nominee := pair.Key.(common.Address)
		if votes := e.votes[nominee]; !found || votes > best {
			winner, best, found = nominee, votes, true
		}
	}
	return winner
}
