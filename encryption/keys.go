package encryption

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type Credentials struct {
	Address    common.Address `json:"address"`
	PublicKey  string         `json:"public_key"`
	PrivateKey string         `json:"private_key"`
}

func NewCredentials(privateKey *ecdsa.PrivateKey) *Credentials {
	cs := NewCryptoService()
	return &Credentials{
		Address:    cs.Address(&privateKey.PublicKey),
		PublicKey:  hexutil.Encode(cs.FromECDSAPub(&privateKey.PublicKey)),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(privateKey)),
	}
}

// LoadOrGenerateKey restores the key stored at path, or generates one and
// stores it there with owner-only permissions.
func LoadOrGenerateKey(path string) (*ecdsa.PrivateKey, bool, error) {
	if data, err := os.ReadFile(path); err == nil {
		var creds Credentials
		if err := json.Unmarshal(data, &creds); err != nil {
			return nil, false, fmt.Errorf("failed to parse credentials: %w", err)
		}

		privateKey, err := ParsePrivateKey(creds.PrivateKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to restore private key: %w", err)
		}
		return privateKey, false, nil
	} else if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("failed to read credentials: %w", err)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate key: %w", err)
	}

	data, err := json.MarshalIndent(NewCredentials(privateKey), "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, false, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, false, fmt.Errorf("failed to save credentials: %w", err)
	}

	return privateKey, true, nil
}
