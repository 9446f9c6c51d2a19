package storage

import (
	"fmt"
	"net/url"
	"path/filepath"

	"balloting-backend/models"
)

type BlockStore interface {
	SaveBlock(chainType string, block *models.Block) error
	LoadChain(chainType string) ([]*models.Block, error)
	Close() error
}

// Open returns the block store named by uri:
//
//	file://<dir>      JSON chain files under dir
//	leveldb://<dir>   LevelDB database at dir
//	memory://         in-memory LevelDB
func Open(uri string) (BlockStore, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid storage uri %q: %w", uri, err)
	}

	path := filepath.Join(parsed.Host, parsed.Path)

	switch parsed.Scheme {
	case "file":
		return NewJSONStore(path)
	case "leveldb":
		return NewLevelDBStore(path)
	case "memory":
		return NewMemoryLevelDBStore()
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", parsed.Scheme)
	}
}
