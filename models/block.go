package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

type Block struct {
	Index      uint64 `json:"index"`
	Timestamp  int64  `json:"timestamp"`
	Data       []byte `json:"data"`
	PrevHash   []byte `json:"prev_hash"`
	Hash       []byte `json:"hash"`
	Nonce      uint64 `json:"nonce"`
	Difficulty uint8  `json:"difficulty"` // Number of leading zero bytes required
}

func NewBlock(index uint64, timestamp int64, data []byte, prevHash []byte, difficulty uint8) *Block {
	block := &Block{
		Index:      index,
		Timestamp:  timestamp,
		Data:       data,
		PrevHash:   prevHash,
		Difficulty: difficulty,
	}

	block.Seal()
	return block
}

// Seal searches for a nonce whose hash satisfies the block difficulty.
func (b *Block) Seal() {
	target := make([]byte, b.Difficulty)
	var nonce uint64
	for {
		b.Nonce = nonce
		b.Hash = b.calculateHash()

		if bytes.HasPrefix(b.Hash, target) {
			return
		}

		nonce++
		if nonce%1000 == 0 {
			time.Sleep(time.Microsecond) // Prevent CPU hogging
		}
	}
}

func (b *Block) calculateHash() []byte {
	buffer := new(bytes.Buffer)
	binary.Write(buffer, binary.BigEndian, b.Index)
	binary.Write(buffer, binary.BigEndian, b.Timestamp)
	buffer.Write(b.Data)
	buffer.Write(b.PrevHash)
	binary.Write(buffer, binary.BigEndian, b.Nonce)

	return crypto.Keccak256(buffer.Bytes())
}

func (b *Block) Validate() bool {
	calculatedHash := b.calculateHash()
	if !bytes.Equal(calculatedHash, b.Hash) {
		return false
	}

	target := make([]byte, b.Difficulty)
	return bytes.HasPrefix(calculatedHash, target)
}

// ValidateChain checks every block hash and the links between blocks. It
// returns the index of the first offending block along with the reason.
func ValidateChain(blocks []*Block) error {
	if len(blocks) == 0 {
		return nil
	}

	if !blocks[0].Validate() {
		return fmt.Errorf("block 0: invalid hash %x", blocks[0].Hash)
	}

	for i := 1; i < len(blocks); i++ {
		currentBlock := blocks[i]
		previousBlock := blocks[i-1]

		if !currentBlock.Validate() {
			return fmt.Errorf("block %d: invalid hash", i)
		}
		if !bytes.Equal(currentBlock.PrevHash, previousBlock.Hash) {
			return fmt.Errorf("block %d: invalid previous hash link", i)
		}
		if currentBlock.Index != previousBlock.Index+1 {
			return fmt.Errorf("block %d: invalid index %d", i, currentBlock.Index)
		}
		if currentBlock.Timestamp <= previousBlock.Timestamp {
			return fmt.Errorf("block %d: timestamp is not after previous block", i)
		}
	}

	return nil
}
