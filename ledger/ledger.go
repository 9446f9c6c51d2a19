// Package ledger keeps the append-only hash chain of committed operations.
// Block 0 records the deployment; every later block carries exactly one
// operation, in commit order.
package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"balloting-backend/errors"
	"balloting-backend/models"
	"balloting-backend/storage"
)

const ChainName = "ledger"

type Ledger struct {
	mu sync.RWMutex

	store      storage.BlockStore
	blocks     []*models.Block
	difficulty uint8

	now func() time.Time
}

// Open loads and validates the chain kept in store.
func Open(store storage.BlockStore, difficulty uint8) (*Ledger, error) {
	blocks, err := store.LoadChain(ChainName)
	if err != nil {
		return nil, errors.StorageFailure.Clone().SetData("error", err.Error())
	}
	if err := models.ValidateChain(blocks); err != nil {
		return nil, errors.LedgerCorrupted.Clone().SetData("error", err.Error())
	}

	log.Debug("ledger loaded", "height", len(blocks))

	return &Ledger{
		store:      store,
		blocks:     blocks,
		difficulty: difficulty,
		now:        time.Now,
	}, nil
}

func (l *Ledger) Initialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks) > 0
}

func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// Init writes the genesis block naming admin. It fails if the ledger already
// has a genesis block.
func (l *Ledger) Init(admin common.Address) (*models.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) > 0 {
		return nil, fmt.Errorf("ledger is already initialized")
	}

	deployment := models.Deployment{
		Admin:     admin,
		Timestamp: l.now().Unix(),
	}
	data, err := json.Marshal(deployment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deployment: %w", err)
	}

	block, err := l.append(data)
	if err != nil {
		return nil, err
	}

	log.Info("ledger initialized", "admin", admin.Hex(), "hash", common.BytesToHash(block.Hash).Hex())
	return block, nil
}

func (l *Ledger) Deployment() (models.Deployment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var deployment models.Deployment
	if len(l.blocks) < 1 {
		return deployment, fmt.Errorf("ledger is not initialized")
	}
	if err := json.Unmarshal(l.blocks[0].Data, &deployment); err != nil {
		return deployment, errors.LedgerCorrupted.Clone().SetData("error", err.Error())
	}
	return deployment, nil
}

// Append records op in a new block. The operation gets a fresh ID when it
// has none; the stored copy is returned with the block.
func (l *Ledger) Append(op models.Operation) (models.Operation, *models.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) < 1 {
		return op, nil, fmt.Errorf("ledger is not initialized")
	}

	if len(op.ID) < 1 {
		op.ID = uuid.New().String()
	}

	data, err := json.Marshal(op)
	if err != nil {
		return op, nil, fmt.Errorf("failed to marshal operation: %w", err)
	}

	block, err := l.append(data)
	if err != nil {
		return op, nil, err
	}

	log.Debug("operation appended", "id", op.ID, "op", op.String(), "index", block.Index)
	return op, block, nil
}

func (l *Ledger) append(data []byte) (*models.Block, error) {
	var prevHash []byte
	var lastTimestamp int64
	if len(l.blocks) > 0 {
		last := l.blocks[len(l.blocks)-1]
		prevHash = last.Hash
		lastTimestamp = last.Timestamp
	}

	block := models.NewBlock(
		uint64(len(l.blocks)),
		l.ensureUniqueTimestamp(lastTimestamp),
		data,
		prevHash,
		l.difficulty,
	)

	if err := l.store.SaveBlock(ChainName, block); err != nil {
		return nil, errors.StorageFailure.Clone().SetData("error", err.Error())
	}

	l.blocks = append(l.blocks, block)
	return block, nil
}

func (l *Ledger) ensureUniqueTimestamp(lastTimestamp int64) int64 {
	currentTime := l.now().UnixNano()
	if currentTime <= lastTimestamp {
		return lastTimestamp + 1
	}
	return currentTime
}

func (l *Ledger) Blocks() []*models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]*models.Block, len(l.blocks))
	copy(blocks, l.blocks)
	return blocks
}

// Block returns the block at index.
func (l *Ledger) Block(index uint64) (*models.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= uint64(len(l.blocks)) {
		return nil, errors.BlockNotFound.Clone().SetData("index", index).SetData("height", len(l.blocks))
	}
	return l.blocks[index], nil
}

func (l *Ledger) Validate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := models.ValidateChain(l.blocks); err != nil {
		return errors.LedgerCorrupted.Clone().SetData("error", err.Error())
	}
	return nil
}

// Operations decodes every operation block in commit order.
func (l *Ledger) Operations() ([]models.Operation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.blocks) < 2 {
		return nil, nil
	}

	ops := make([]models.Operation, 0, len(l.blocks)-1)
	for _, block := range l.blocks[1:] {
		var op models.Operation
		if err := json.Unmarshal(block.Data, &op); err != nil {
			return nil, errors.LedgerCorrupted.Clone().SetData("block", block.Index).SetData("error", err.Error())
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (l *Ledger) Close() error {
	return l.store.Close()
}
