package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"balloting-backend/errors"
	"balloting-backend/models"
)

// NominateMember puts nominee forward as a candidate. Any registered member
// may nominate another registered member, once.
func (e *Engine) NominateMember(nominator, nominee common.Address) error {
	return e.Apply(models.Operation{Type: models.OpNominateMember, Caller: nominator, Target: nominee})
}

// GetNominees returns the nominees in nomination order.
func (e *Engine) GetNominees() []common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return addresses(e.nominees)
}

func (e *Engine) IsNominated(identity common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, found := e.nominees.Get(identity)
	return found
}

// NominatedBy returns the member who nominated identity.
func (e *Engine) NominatedBy(identity common.Address) (common.Address, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, found := e.nominees.Get(identity)
	if !found {
		return common.Address{}, false
	}
	return v.(common.Address), true
}

// checkNominate looks at the nominee before the nominator, so an
// unregistered nominee is NotAMember whoever asks.
func (e *Engine) checkNominate(nominator, nominee common.Address) error {
	if nominator == nominee {
		return errors.SelfNomination.Clone().SetData("nominator", nominator.Hex())
	}
	if !e.isMember(nominee) {
		return errors.NotAMember.Clone().SetData("nominee", nominee.Hex())
	}
	if !e.isMember(nominator) {
		return unauthorized("member", nominator)
	}
	if _, found := e.nominees.Get(nominee); found {
		return errors.AlreadyNominated.Clone().SetData("nominee", nominee.Hex())
	}
	return nil
}

func (e *Engine) commitNominate(nominator, nominee common.Address) {
	e.nominees.Set(nominee, nominator)
	e.votes[nominee] = 0
}
