package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
)

type OperationType string

const (
	OpRegisterMember OperationType = "register_member"
	OpNominateMember OperationType = "nominate_member"
	OpVote           OperationType = "vote"
	OpStartVoting    OperationType = "start_voting"
	OpEndVoting      OperationType = "end_voting"
)

func (t OperationType) IsValid() bool {
	switch t {
	case OpRegisterMember, OpNominateMember, OpVote, OpStartVoting, OpEndVoting:
		return true
	}
	return false
}

// HasTarget reports whether the operation acts on a second identity.
func (t OperationType) HasTarget() bool {
	return t == OpRegisterMember || t == OpNominateMember || t == OpVote
}

// Operation is one state-mutating call against the engine. ID is assigned
// when the operation is committed to the ledger.
type Operation struct {
	ID        string         `json:"id,omitempty"`
	Type      OperationType  `json:"type"`
	Caller    common.Address `json:"caller"`
	Target    common.Address `json:"target"`
	Nonce     uint64         `json:"nonce"`
	Timestamp int64          `json:"timestamp"`
}

func (op Operation) String() string {
	if op.Type.HasTarget() {
		return fmt.Sprintf("%s(%s -> %s)", op.Type, op.Caller.Hex(), op.Target.Hex())
	}
	return fmt.Sprintf("%s(%s)", op.Type, op.Caller.Hex())
}

// SigningBytes is the RLP encoding of every field covered by the caller's
// signature.
func (op Operation) SigningBytes() ([]byte, error) {
	return rlp.EncodeToBytes(struct {
		Type      string
		Caller    common.Address
		Target    common.Address
		Nonce     uint64
		Timestamp uint64
	}{
		Type:      string(op.Type),
		Caller:    op.Caller,
		Target:    op.Target,
		Nonce:     op.Nonce,
		Timestamp: uint64(op.Timestamp),
	})
}

type SignedOperation struct {
	Operation Operation     `json:"operation"`
	Signature hexutil.Bytes `json:"signature"`
}

// Receipt is returned for every committed operation.
type Receipt struct {
	OperationID string         `json:"operation_id"`
	BlockIndex  uint64         `json:"block_index"`
	BlockHash   hexutil.Bytes  `json:"block_hash"`
	Type        OperationType  `json:"type"`
	Caller      common.Address `json:"caller"`
	Winner      common.Address `json:"winner"`
}
