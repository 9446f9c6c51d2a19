package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"balloting-backend/errors"
	"balloting-backend/models"
)

// RegisterMember registers identity as a member. Only the admin may call it.
func (e *Engine) RegisterMember(caller, identity common.Address) error {
	return e.Apply(models.Operation{Type: models.OpRegisterMember, Caller: caller, Target: identity})
}

// GetMembers returns the members in registration order.
func (e *Engine) GetMembers() []common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return addresses(e.members)
}

func (e *Engine) IsMember(identity common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.isMember(identity)
}

// Member returns the registry record of identity; unknown identities come
// back unregistered.
func (e *Engine) Member(identity common.Address) models.Member {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, found := e.members.Get(identity); found {
		return v.(models.Member)
	}
	return models.Member{Address: identity}
}

func (e *Engine) isMember(identity common.Address) bool {
	v, found := e.members.Get(identity)
	return found && v.(models.Member).Registered
}

func (e *Engine) checkRegister(caller, identity common.Address) error {
	if caller != e.admin {
		return unauthorized("admin", caller)
	}
	if e.isMember(identity) {
		return errors.AlreadyRegistered.Clone().SetData("member", identity.Hex())
	}
	return nil
}

func (e *Engine) commitRegister(identity common.Address) {
	e.members.Set(identity, models.Member{Address: identity, Registered: true})
}
