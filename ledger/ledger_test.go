package ledger

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"balloting-backend/errors"
	"balloting-backend/models"
	"balloting-backend/storage"
)

var (
	admin   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	member1 = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func newTestLedger(t *testing.T) (*Ledger, storage.BlockStore) {
	st, err := storage.NewMemoryLevelDBStore()
	require.NoError(t, err)

	l, err := Open(st, 0)
	require.NoError(t, err)
	return l, st
}

func TestLedgerInit(t *testing.T) {
	l, _ := newTestLedger(t)
	require.False(t, l.Initialized())

	_, err := l.Deployment()
	require.Error(t, err)

	_, _, err = l.Append(models.Operation{Type: models.OpStartVoting, Caller: admin})
	require.Error(t, err)

	genesis, err := l.Init(admin)
	require.NoError(t, err)
	require.Equal(t, uint64(0), genesis.Index)
	require.True(t, l.Initialized())

	deployment, err := l.Deployment()
	require.NoError(t, err)
	require.Equal(t, admin, deployment.Admin)

	_, err = l.Init(member1)
	require.Error(t, err)
}

func TestLedgerAppend(t *testing.T) {
	l, st := newTestLedger(t)
	_, err := l.Init(admin)
	require.NoError(t, err)

	// a frozen clock still gives strictly increasing block timestamps
	frozen := time.Unix(1700000000, 0)
	l.now = func() time.Time { return frozen }

	ops := []models.Operation{
		{Type: models.OpRegisterMember, Caller: admin, Target: member1},
		{ID: "fixed-id", Type: models.OpStartVoting, Caller: admin},
	}
	for _, op := range ops {
		stored, block, err := l.Append(op)
		require.NoError(t, err)
		require.NotEmpty(t, stored.ID)
		require.Equal(t, uint64(l.Height()-1), block.Index)
	}
	require.Equal(t, 3, l.Height())
	require.NoError(t, l.Validate())

	block, err := l.Block(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), block.Index)
	_, err = l.Block(3)
	require.ErrorIs(t, err, errors.BlockNotFound)

	loaded, err := l.Operations()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, models.OpRegisterMember, loaded[0].Type)
	require.Equal(t, member1, loaded[0].Target)
	require.Equal(t, "fixed-id", loaded[1].ID)

	reopened, err := Open(st, 0)
	require.NoError(t, err)
	require.Equal(t, 3, reopened.Height())

	replayed, err := reopened.Operations()
	require.NoError(t, err)
	require.Equal(t, loaded, replayed)
}

func TestLedgerValidateDetectsTampering(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.Init(admin)
	require.NoError(t, err)
	_, _, err = l.Append(models.Operation{Type: models.OpStartVoting, Caller: admin})
	require.NoError(t, err)

	l.blocks[1].Data = []byte(`{"type":"end_voting"}`)

	err = l.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, errors.LedgerCorrupted)
}

func TestOpenRejectsCorruptedChain(t *testing.T) {
	st, err := storage.NewMemoryLevelDBStore()
	require.NoError(t, err)

	genesis := models.NewBlock(0, 1, []byte(`{}`), nil, 0)
	require.NoError(t, st.SaveBlock(ChainName, genesis))
	broken := models.NewBlock(1, 2, []byte(`{}`), []byte("not-the-genesis-hash"), 0)
	require.NoError(t, st.SaveBlock(ChainName, broken))

	_, err = Open(st, 0)
	require.ErrorIs(t, err, errors.LedgerCorrupted)
}
