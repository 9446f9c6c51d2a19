// Package engine implements the balloting state machine: an admin-gated
// member registry, member nominations, one vote per member and winner
// selection when the admin closes the session.
//
// Every exported method runs under a single lock, and every mutating method
// checks all of its preconditions before it changes anything, so a rejected
// call never leaves partial state behind.
package engine

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	orderedmap "github.com/wk8/go-ordered-map"

	"balloting-backend/errors"
	"balloting-backend/models"
)

type Engine struct {
	mu sync.RWMutex

	admin common.Address

	members  *orderedmap.OrderedMap // common.Address -> models.Member
	nominees *orderedmap.OrderedMap // common.Address -> nominator common.Address
	votes    map[common.Address]uint64
	voted    *orderedmap.OrderedMap // common.Address -> nominee common.Address

	state  models.SessionState
	closed bool
	winner common.Address
}

// New deploys an engine whose admin is fixed to the given identity.
func New(admin common.Address) *Engine {
	return &Engine{
		admin:    admin,
		members:  orderedmap.New(),
		nominees: orderedmap.New(),
		votes:    map[common.Address]uint64{},
		voted:    orderedmap.New(),
		state:    models.Inactive,
	}
}

func (e *Engine) Admin() common.Address {
	return e.admin
}

// Validate runs the preconditions of op without changing any state.
func (e *Engine) Validate(op models.Operation) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.check(op)
}

// Apply validates op and, when every precondition holds, commits it.
func (e *Engine) Apply(op models.Operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.check(op); err != nil {
		return err
	}
	e.commit(op)

	log.Debug("operation applied", "op", op)
	return nil
}

func (e *Engine) check(op models.Operation) error {
	switch op.Type {
	case models.OpRegisterMember:
		return e.checkRegister(op.Caller, op.Target)
	case models.OpNominateMember:
		return e.checkNominate(op.Caller, op.Target)
	case models.OpVote:
		return e.checkVote(op.Caller, op.Target)
	case models.OpStartVoting:
		return e.checkStart(op.Caller)
	case models.OpEndVoting:
		return e.checkEnd(op.Caller)
	default:
		return errors.InvalidOperation.Clone().SetData("type", string(op.Type))
	}
}

func (e *Engine) commit(op models.Operation) {
	switch op.Type {
	case models.OpRegisterMember:
		e.commitRegister(op.Target)
	case models.OpNominateMember:
		e.commitNominate(op.Caller, op.Target)
	case models.OpVote:
		e.commitVote(op.Caller, op.Target)
	case models.OpStartVoting:
		e.commitStart()
	case models.OpEndVoting:
		e.commitEnd()
	default:
		panic(fmt.Sprintf("commit of unchecked operation %q", op.Type))
	}
}

// Snapshot returns a consistent copy of the whole state.
func (e *Engine) Snapshot() models.EngineSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return models.EngineSnapshot{
		Admin:    e.admin,
		Members:  addresses(e.members),
		Nominees: e.tallies(),
		Voters:   addresses(e.voted),
		State:    e.state,
		Closed:   e.closed,
		Winner:   e.winner,
	}
}

func unauthorized(required string, caller common.Address) error {
	return errors.Unauthorized.Clone().
		SetData("required", required).
		SetData("caller", caller.Hex())
}

func addresses(m *orderedmap.OrderedMap) []common.Address {
	list := make([]common.Address, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Key.(common.Address))
	}
	return list
}
