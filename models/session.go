package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type SessionState uint8

const (
	Inactive SessionState = iota
	Active
)

func (s SessionState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("SessionState(%d)", uint8(s))
	}
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "inactive":
		*s = Inactive
	case "active":
		*s = Active
	default:
		return fmt.Errorf("unknown session state %q", string(b))
	}
	return nil
}

type Tally struct {
	Nominee common.Address `json:"nominee"`
	Votes   uint64         `json:"votes"`
}

// EngineSnapshot is a consistent read of the whole engine state.
type EngineSnapshot struct {
	Admin    common.Address   `json:"admin"`
	Members  []common.Address `json:"members"`
	Nominees []Tally          `json:"nominees"`
	Voters   []common.Address `json:"voters"`
	State    SessionState     `json:"state"`
	Closed   bool             `json:"closed"`
	Winner   common.Address   `json:"winner"`
}

type VotingResults struct {
	Tallies     []Tally        `json:"tallies"`
	TotalVotes  uint64         `json:"total_votes"`
	VotersCount int            `json:"voters_count"`
	Winner      common.Address `json:"winner"`
	Decided     bool           `json:"decided"`
	State       SessionState   `json:"state"`
	GeneratedAt int64          `json:"generated_at"`
}

type VoteVerification struct {
	RegisteredMembers int    `json:"registered_members"`
	VotersCount       int    `json:"voters_count"`
	TalliedVotes      uint64 `json:"tallied_votes"`
	IsValid           bool   `json:"is_valid"`
}
