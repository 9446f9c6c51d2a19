package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"balloting-backend/errors"
	"balloting-backend/models"
)

// Vote casts voter's single vote for nominee.
func (e *Engine) Vote(voter, nominee common.Address) error {
	return e.Apply(models.Operation{Type: models.OpVote, Caller: voter, Target: nominee})
}

// GetVotes returns the tally of nominee, 0 for anyone not nominated.
func (e *Engine) GetVotes(nominee common.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.votes[nominee]
}

func (e *Engine) HasVoted(voter common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, found := e.voted.Get(voter)
	return found
}

func (e *Engine) tallies() []models.Tally {
	list := make([]models.Tally, 0, e.nominees.Len())
	for pair := e.nominees.Oldest(); pair != nil; pair = pair.Next() {
		nominee := pair.Key.(common.Address)
		list = append(list, models.Tally{Nominee: nominee, Votes: e.votes[nominee]})
	}
	return list
}

func (e *Engine) checkVote(voter, nominee common.Address) error {
	if !e.isMember(voter) {
		return unauthorized("member", voter)
	}
	if e.state != models.Active {
		return errors.VotingNotActive.Clone()
	}
	if _, found := e.voted.Get(voter); found {
		return errors.AlreadyVoted.Clone().SetData("voter", voter.Hex())
	}
	if _, found := e.nominees.Get(nominee); !found {
		return errors.NotNominated.Clone().SetData("nominee", nominee.Hex())
	}
	return nil
}

func (e *Engine) commitVote(voter, nominee common.Address) {
	e.votes[nominee]++
	e.voted.Set(voter, nominee)
}
