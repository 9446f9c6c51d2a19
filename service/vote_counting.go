package service

import (
	"time"

	"balloting-backend/models"
)

// CountVotes builds the results report out of an engine snapshot.
func CountVotes(snapshot models.EngineSnapshot, at time.Time) *models.VotingResults {
	results := &models.VotingResults{
		Tallies:     make([]models.Tally, len(snapshot.Nominees)),
		VotersCount: len(snapshot.Voters),
		Winner:      snapshot.Winner,
		Decided:     snapshot.Closed && len(snapshot.Nominees) > 0,
		State:       snapshot.State,
		GeneratedAt: at.Unix(),
	}

	copy(results.Tallies, snapshot.Nominees)
	for _, tally := range snapshot.Nominees {
		results.TotalVotes += tally.Votes
	}

	return results
}

// VerifyVoteCount checks that every voter flag is backed by exactly one
// tallied vote and that no more members voted than are registered.
func VerifyVoteCount(snapshot models.EngineSnapshot) *models.VoteVerification {
	var tallied uint64
	for _, tally := range snapshot.Nominees {
		tallied += tally.Votes
	}

	return &models.VoteVerification{
		RegisteredMembers: len(snapshot.Members),
		VotersCount:       len(snapshot.Voters),
		TalliedVotes:      tallied,
		IsValid:           tallied == uint64(len(snapshot.Voters)) && len(snapshot.Voters) <= len(snapshot.Members),
	}
}
