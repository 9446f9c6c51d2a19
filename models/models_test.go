package models

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestBlockSealAndValidate(t *testing.T) {
	genesis := NewBlock(0, 1, []byte("genesis"), make([]byte, 32), 1)
	require.True(t, genesis.Validate())
	require.Equal(t, byte(0), genesis.Hash[0])

	next := NewBlock(1, 2, []byte("next"), genesis.Hash, 1)
	require.NoError(t, ValidateChain([]*Block{genesis, next}))

	next.Data = []byte("tampered")
	require.False(t, next.Validate())
	require.Error(t, ValidateChain([]*Block{genesis, next}))
}

func TestValidateChainLinks(t *testing.T) {
	genesis := NewBlock(0, 10, []byte("a"), make([]byte, 32), 0)

	{ // broken link
		b := NewBlock(1, 11, []byte("b"), make([]byte, 32), 0)
		require.Error(t, ValidateChain([]*Block{genesis, b}))
	}
	{ // timestamp not increasing
		b := NewBlock(1, 10, []byte("b"), genesis.Hash, 0)
		require.Error(t, ValidateChain([]*Block{genesis, b}))
	}
	{ // skipped index
		b := NewBlock(2, 11, []byte("b"), genesis.Hash, 0)
		require.Error(t, ValidateChain([]*Block{genesis, b}))
	}
	require.NoError(t, ValidateChain(nil))
}

func TestOperationSigningBytes(t *testing.T) {
	op := Operation{
		Type:      OpVote,
		Caller:    common.HexToAddress("0x01"),
		Target:    common.HexToAddress("0x02"),
		Nonce:     7,
		Timestamp: 1700000000,
	}
	a, err := op.SigningBytes()
	require.NoError(t, err)

	op.ID = "assigned-later"
	b, err := op.SigningBytes()
	require.NoError(t, err)
	require.Equal(t, a, b)

	op.Nonce = 8
	c, err := op.SigningBytes()
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestSessionStateText(t *testing.T) {
	b, err := json.Marshal(struct {
		State SessionState `json:"state"`
	}{Active})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"active"}`, string(b))

	var s SessionState
	require.NoError(t, s.UnmarshalText([]byte("inactive")))
	require.Equal(t, Inactive, s)
	require.Error(t, s.UnmarshalText([]byte("paused")))
}
