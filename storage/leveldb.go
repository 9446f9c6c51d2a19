package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"balloting-backend/models"
)

// LevelDBStore keeps blocks under "<chain>/<big-endian index>" keys so an
// ordered prefix scan returns the chain in order.
type LevelDBStore struct {
	DB *leveldb.DB
}

func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb %s: %w", path, err)
	}
	return &LevelDBStore{DB: db}, nil
}

func NewMemoryLevelDBStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory leveldb: %w", err)
	}
	return &LevelDBStore{DB: db}, nil
}

func blockKey(chainType string, index uint64) []byte {
	key := make([]byte, len(chainType)+1+8)
	copy(key, chainType)
	key[len(chainType)] = '/'
	binary.BigEndian.PutUint64(key[len(chainType)+1:], index)
	return key
}

func (st *LevelDBStore) SaveBlock(chainType string, block *models.Block) error {
	key := blockKey(chainType, block.Index)

	exists, err := st.DB.Has(key, nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("block %d already exists in chain %s", block.Index, chainType)
	}
	if block.Index > 0 {
		if ok, err := st.DB.Has(blockKey(chainType, block.Index-1), nil); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("block index %d does not follow chain %s", block.Index, chainType)
		}
	}

	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	return st.DB.Put(key, data, nil)
}

func (st *LevelDBStore) LoadChain(chainType string) ([]*models.Block, error) {
	iter := st.DB.NewIterator(leveldbUtil.BytesPrefix([]byte(chainType+"/")), nil)
	defer iter.Release()

	blocks := make([]*models.Block, 0)
	for iter.Next() {
		var block models.Block
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block: %w", err)
		}
		blocks = append(blocks, &block)
	}

	return blocks, iter.Error()
}

func (st *LevelDBStore) Close() error {
	return st.DB.Close()
}
