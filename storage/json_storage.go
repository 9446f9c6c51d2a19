package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"balloting-backend/models"
)

// Chain represents the entire blockchain
type Chain struct {
	Blocks []*models.Block `json:"blocks"`
}

// JSONStore keeps each chain in one JSON file, rewritten atomically on
// every append.
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
	chains   map[string]*Chain
}

func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &JSONStore{
		basePath: basePath,
		chains:   make(map[string]*Chain),
	}, nil
}

func (s *JSONStore) SaveBlock(chainType string, block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, err := s.chain(chainType)
	if err != nil {
		return err
	}
	if block.Index != uint64(len(chain.Blocks)) {
		return fmt.Errorf("block index %d does not follow chain height %d", block.Index, len(chain.Blocks))
	}

	next := &Chain{Blocks: append(chain.Blocks[:len(chain.Blocks):len(chain.Blocks)], block)}
	if err := s.saveChainToFile(chainType, next); err != nil {
		return err
	}
	s.chains[chainType] = next

	return nil
}

func (s *JSONStore) LoadChain(chainType string) ([]*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, err := s.chain(chainType)
	if err != nil {
		return nil, err
	}

	// Return a copy of the blocks to prevent modification
	blocks := make([]*models.Block, len(chain.Blocks))
	copy(blocks, chain.Blocks)
	return blocks, nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) chain(chainType string) (*Chain, error) {
	if chain, exists := s.chains[chainType]; exists {
		return chain, nil
	}

	chain, err := s.loadChainFromFile(chainType)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain %s: %w", chainType, err)
	}
	s.chains[chainType] = chain
	return chain, nil
}

func (s *JSONStore) chainPath(chainType string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s_chain.json", chainType))
}

func (s *JSONStore) loadChainFromFile(chainType string) (*Chain, error) {
	data, err := os.ReadFile(s.chainPath(chainType))
	if err != nil {
		if os.IsNotExist(err) {
			return &Chain{Blocks: make([]*models.Block, 0)}, nil
		}
		return nil, err
	}

	var chain Chain
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chain: %w", err)
	}

	return &chain, nil
}

func (s *JSONStore) saveChainToFile(chainType string, chain *Chain) error {
	path := s.chainPath(chainType)

	data, err := json.MarshalIndent(chain, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chain: %w", err)
	}

	// Write to temporary file first
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write chain file: %w", err)
	}

	// Atomic rename to ensure consistency
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save chain file: %w", err)
	}

	return nil
}
