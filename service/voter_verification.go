package service

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	cache "github.com/patrickmn/go-cache"

	"balloting-backend/encryption"
	"balloting-backend/errors"
	"balloting-backend/models"
)

const (
	DefaultNonceTTL = 10 * time.Minute
	MaxClockDrift   = 5 * time.Minute
)

// RequestVerifier authenticates signed operations: the signature must
// recover to the claimed caller, the request must be fresh and each
// (caller, nonce) pair is accepted once within the nonce TTL.
type RequestVerifier struct {
	cryptoService *encryption.CryptoService
	nonceTTL      time.Duration
	seen          *cache.Cache

	now func() time.Time
}

func NewRequestVerifier(cryptoService *encryption.CryptoService, nonceTTL time.Duration) *RequestVerifier {
	if nonceTTL <= 0 {
		nonceTTL = DefaultNonceTTL
	}
	return &RequestVerifier{
		cryptoService: cryptoService,
		nonceTTL:      nonceTTL,
		seen:          cache.New(nonceTTL, nonceTTL*2),
		now:           time.Now,
	}
}

// VerifySignature checks freshness and the signature of a request. It does
// not consume the nonce.
func (rv *RequestVerifier) VerifySignature(signed models.SignedOperation) error {
	op := signed.Operation

	if !op.Type.IsValid() {
		return errors.InvalidOperation.Clone().SetData("type", string(op.Type))
	}

	if err := rv.verifyTimestamp(op.Timestamp); err != nil {
		return err
	}

	payload, err := op.SigningBytes()
	if err != nil {
		return errors.InvalidOperation.Clone().SetData("error", err.Error())
	}

	signer, err := rv.cryptoService.RecoverAddress(payload, signed.Signature)
	if err != nil {
		return errors.InvalidSignature.Clone().SetData("error", err.Error())
	}
	if signer != op.Caller {
		return errors.InvalidSignature.Clone().
			SetData("caller", op.Caller.Hex()).
			SetData("signer", signer.Hex())
	}

	return nil
}

func (rv *RequestVerifier) verifyTimestamp(timestamp int64) error {
	now := rv.now()
	issued := time.Unix(timestamp, 0)

	if issued.Before(now.Add(-rv.nonceTTL)) || issued.After(now.Add(MaxClockDrift)) {
		return errors.StaleRequest.Clone().
			SetData("timestamp", timestamp).
			SetData("now", now.Unix())
	}
	return nil
}

func nonceKey(caller common.Address, nonce uint64) string {
	return fmt.Sprintf("%s/%d", caller.Hex(), nonce)
}

func (rv *RequestVerifier) CheckNonce(caller common.Address, nonce uint64) error {
	if _, found := rv.seen.Get(nonceKey(caller, nonce)); found {
		return errors.ReplayedNonce.Clone().
			SetData("caller", caller.Hex()).
			SetData("nonce", nonce)
	}
	return nil
}

// Remember marks the nonce as used.
func (rv *RequestVerifier) Remember(caller common.Address, nonce uint64) {
	rv.seen.Set(nonceKey(caller, nonce), struct{}{}, cache.DefaultExpiration)
}
