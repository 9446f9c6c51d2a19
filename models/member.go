package models

import "github.com/ethereum/go-ethereum/common"

// Member mirrors the public `members(address)` getter: the zero value is an
// unregistered identity.
type Member struct {
	Address    common.Address `json:"address"`
	Registered bool           `json:"registered"`
}

type MemberStatus struct {
	Member
	HasVoted    bool            `json:"has_voted"`
	Nominated   bool            `json:"nominated"`
	NominatedBy *common.Address `json:"nominated_by,omitempty"`
}

// Deployment is the payload of the genesis block. The admin it names is
// fixed for the lifetime of the ledger.
type Deployment struct {
	Admin     common.Address `json:"admin"`
	Timestamp int64          `json:"timestamp"`
}
