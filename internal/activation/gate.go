// Package activation gates which tokens may be traded through this
// front end. Records are created lazily on first activation and only
// ever flip inactive -> active.
package activation

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/storage"
	"github.com/blinkforge/blinkforge/internal/storage/models"
)

var (
	ErrInvalidAddress = errors.New("invalid token address")
	ErrProofRejected  = errors.New("activation proof rejected")
)

// Proof is a signed statement that the holder of Signer authorizes
// activating a token. The signature covers the ASCII token address.
type Proof struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// Gate wraps the activation store with validation and proof checking.
type Gate struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewGate(store storage.Storage, logger *zap.Logger) *Gate {
	return &Gate{
		storage: store,
		logger:  logger.Named("activation"),
	}
}

// IsActive reports whether the token has an active record. Tokens
// without a record are inactive.
func (g *Gate) IsActive(ctx context.Context, address string) (bool, *models.Token, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	token, err := g.storage.GetToken(ctx, address)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return false, nil, nil
	}
	return token.IsActive, token, nil
}

// Activate creates the record for address if absent (active from the
// start) or flips an inactive record to active. Re-activating an
// already-active token is a no-op returning the stored record.
func (g *Gate) Activate(ctx context.Context, address string, proof Proof) (*models.Token, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	if err := verifyProof(address, proof); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofRejected, err)
	}

	existing, err := g.storage.GetToken(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if existing != nil {
		if existing.IsActive {
			return existing, nil
		}
		if err := g.storage.SetTokenActive(ctx, address, true); err != nil {
			return nil, fmt.Errorf("failed to activate token: %w", err)
		}
		existing.IsActive = true
		g.logger.Info("Token re-activated", zap.String("address", address))
		return existing, nil
	}

	token := &models.Token{
		Address:  address,
		IsActive: true,
	}
	if err := g.storage.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to create token record: %w", err)
	}

	g.logger.Info("Token activated", zap.String("address", address))
	return token, nil
}

// verifyProof checks the ed25519 signature over the ASCII address
// against the claimed signer key.
func verifyProof(address string, proof Proof) error {
	signer, err := solana.PublicKeyFromBase58(proof.Signer)
	if err != nil {
		return fmt.Errorf("invalid signer key: %w", err)
	}

	sig, err := solana.SignatureFromBase58(proof.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	if !ed25519.Verify(ed25519.PublicKey(signer.Bytes()), []byte(address), sig[:]) {
		return fmt.Errorf("signature does not match signer")
	}

	return nil
}
