package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"balloting-backend/models"
)

func testChain(n int) []*models.Block {
	blocks := make([]*models.Block, 0, n)
	var prev []byte
	for i := 0; i < n; i++ {
		b := models.NewBlock(uint64(i), int64(1000+i), []byte{byte(i)}, prev, 0)
		blocks = append(blocks, b)
		prev = b.Hash
	}
	return blocks
}

func testBlockStore(t *testing.T, st BlockStore) {
	blocks, err := st.LoadChain("ledger")
	require.NoError(t, err)
	require.Empty(t, blocks)

	chain := testChain(3)
	for _, b := range chain {
		require.NoError(t, st.SaveBlock("ledger", b))
	}

	// out of order
	require.Error(t, st.SaveBlock("ledger", models.NewBlock(7, 2000, nil, nil, 0)))

	loaded, err := st.LoadChain("ledger")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i, b := range loaded {
		require.Equal(t, chain[i].Hash, b.Hash)
		require.Equal(t, chain[i].Data, b.Data)
	}
	require.NoError(t, models.ValidateChain(loaded))

	other, err := st.LoadChain("other")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestJSONStore(t *testing.T) {
	dir := t.TempDir()
	st, err := NewJSONStore(dir)
	require.NoError(t, err)
	testBlockStore(t, st)
	require.NoError(t, st.Close())

	_, err = os.Stat(filepath.Join(dir, "ledger_chain.json"))
	require.NoError(t, err)

	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)
	loaded, err := reopened.LoadChain("ledger")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
}

func TestLevelDBStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	st, err := NewLevelDBStore(dir)
	require.NoError(t, err)
	testBlockStore(t, st)
	require.NoError(t, st.Close())

	reopened, err := NewLevelDBStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	loaded, err := reopened.LoadChain("ledger")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
}

func TestMemoryLevelDBStore(t *testing.T) {
	st, err := NewMemoryLevelDBStore()
	require.NoError(t, err)
	defer st.Close()
	testBlockStore(t, st)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open("file://" + filepath.Join(dir, "json"))
	require.NoError(t, err)
	require.IsType(t, &JSONStore{}, st)

	st, err = Open("leveldb://" + filepath.Join(dir, "level"))
	require.NoError(t, err)
	require.IsType(t, &LevelDBStore{}, st)
	require.NoError(t, st.Close())

	st, err = Open("memory://")
	require.NoError(t, err)
	require.IsType(t, &LevelDBStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open("s3://bucket")
	require.Error(t, err)
}

func TestResultsArchive(t *testing.T) {
	archive, err := NewResultsArchive(t.TempDir(), 2)
	require.NoError(t, err)

	latest, err := archive.LoadLatest()
	require.NoError(t, err)
	require.Nil(t, latest)

	_, err = archive.Save(nil)
	require.Error(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 4; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		archive.now = func() time.Time { return now }

		_, err := archive.Save(&models.VotingResults{
			TotalVotes: uint64(i),
			Winner:     common.BigToAddress(common.Big1),
		})
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(archive.Dir(), resultsPattern))
	require.NoError(t, err)
	require.Len(t, files, 2)

	latest, err = archive.LoadLatest()
	require.NoError(t, err)
	require.Equal(t, uint64(3), latest.TotalVotes)
	require.Equal(t, common.BigToAddress(common.Big1), latest.Winner)
}
