package encryption

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"balloting-backend/models"
)

type CryptoService struct{}

func NewCryptoService() *CryptoService {
	return &CryptoService{}
}

// GenerateKeyPair generates a new secp256k1 key pair
func (cs *CryptoService) GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// Address derives the account identity of a public key
func (cs *CryptoService) Address(pub *ecdsa.PublicKey) common.Address {
	return crypto.PubkeyToAddress(*pub)
}

// Sign creates a recoverable signature over the Keccak256 hash of data
func (cs *CryptoService) Sign(data []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	hash := cs.Keccak256(data)
	return crypto.Sign(hash, privateKey)
}

// SignOperation signs the signing bytes of op. The caller of op is set to
// the address of privateKey.
func (cs *CryptoService) SignOperation(op models.Operation, privateKey *ecdsa.PrivateKey) (models.SignedOperation, error) {
	op.Caller = cs.Address(&privateKey.PublicKey)

	payload, err := op.SigningBytes()
	if err != nil {
		return models.SignedOperation{}, err
	}

	signature, err := cs.Sign(payload, privateKey)
	if err != nil {
		return models.SignedOperation{}, err
	}

	return models.SignedOperation{Operation: op, Signature: signature}, nil
}

// RecoverAddress returns the identity that produced signature over data
func (cs *CryptoService) RecoverAddress(data, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	hash := cs.Keccak256(data)
	pub, err := crypto.SigToPub(hash, signature)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature verifies the signature of data using public key
func (cs *CryptoService) VerifySignature(data, signature []byte, publicKey *ecdsa.PublicKey) bool {
	signer, err := cs.RecoverAddress(data, signature)
	if err != nil {
		return false
	}
	return signer == crypto.PubkeyToAddress(*publicKey)
}

// Keccak256 computes Keccak-256 hash
func (cs *CryptoService) Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// FromECDSAPub serializes public key to bytes
func (cs *CryptoService) FromECDSAPub(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return crypto.FromECDSAPub(pub)
}

// ParsePrivateKey decodes a hex private key, with or without "0x" prefix
func ParsePrivateKey(keyStr string) (*ecdsa.PrivateKey, error) {
	keyStr = strings.TrimPrefix(strings.TrimSpace(keyStr), "0x")

	keyBytes, err := hex.DecodeString(keyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key hex string: %w", err)
	}

	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return privateKey, nil
}
