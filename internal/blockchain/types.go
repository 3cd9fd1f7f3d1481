// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client captures the ledger reads this service performs. Transactions are
// returned to callers unsigned, so no submission methods belong here.
type Client interface {
	// GetAccountInfo reads raw account state by address.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)

	// GetRecentBlockhash returns a blockhash fresh enough to anchor a new
	// transaction.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}
