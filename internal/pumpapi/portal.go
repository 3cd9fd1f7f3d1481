// =============================
// File: internal/pumpapi/portal.go
// =============================

// Package pumpapi holds the HTTP clients for the launch platform's off-chain
// APIs: the pumpportal transaction builder and the pump.fun IPFS endpoint.
package pumpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// PortalClient requests prebuilt transactions from the pumpportal
// trade-local API.
type PortalClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// CreateRequest describes a token-create call to the builder. Amount is
// denominated in tokens, not SOL.
type CreateRequest struct {
	Payer  solana.PublicKey
	Mint   solana.PublicKey
	Name   string
	Symbol string
	URI    string
	Amount float64
}

// NewPortalClient creates a client for the given pumpportal API base URL.
func NewPortalClient(baseURL string, logger *zap.Logger) *PortalClient {
	return &PortalClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.Named("pumpportal"),
	}
}

// BuildCreateTransaction asks the builder for a serialized create
// transaction for the new mint. The response bytes are a full transaction
// assembled for the builder's own signing convenience; callers extract the
// instruction they need with ExtractInstructionForProgram.
func (c *PortalClient) BuildCreateTransaction(ctx context.Context, create CreateRequest) ([]byte, error) {
	payload := map[string]any{
		"publicKey": create.Payer.String(),
		"action":    "create",
		"tokenMetadata": map[string]string{
			"name":   create.Name,
			"symbol": create.Symbol,
			"uri":    create.URI,
		},
		"mint":             create.Mint.String(),
		"denominatedInSol": "false",
		"amount":           create.Amount,
		"slippage":         5,
		"priorityFee":      0.0005,
		"pool":             "pump",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/trade-local", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create builder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute builder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trade-local returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read builder response: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("trade-local returned empty transaction")
	}

	c.logger.Debug("Received create transaction from builder",
		zap.String("mint", create.Mint.String()),
		zap.Int("bytes", len(raw)))

	return raw, nil
}

// ExtractInstructionForProgram deserializes a builder transaction and pulls
// out the single instruction targeting programID. The builder pads its
// response with instructions this service rebuilds itself, so everything
// else is discarded.
func ExtractInstructionForProgram(rawTx []byte, programID solana.PublicKey) (solana.Instruction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return nil, fmt.Errorf("failed to decode builder transaction: %w", err)
	}

	msg := tx.Message
	for i := range msg.Instructions {
		compiled := msg.Instructions[i]
		if int(compiled.ProgramIDIndex) >= len(msg.AccountKeys) {
			continue
		}
		if !msg.AccountKeys[compiled.ProgramIDIndex].Equals(programID) {
			continue
		}

		accounts := make([]*solana.AccountMeta, 0, len(compiled.Accounts))
		for _, accountIndex := range compiled.Accounts {
			if int(accountIndex) >= len(msg.AccountKeys) {
				return nil, fmt.Errorf("instruction references lookup-table account %d", accountIndex)
			}
			key := msg.AccountKeys[accountIndex]
			writable, err := msg.IsWritable(key)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve writability of %s: %w", key.String(), err)
			}
			accounts = append(accounts, &solana.AccountMeta{
				PublicKey:  key,
				IsSigner:   msg.IsSigner(key),
				IsWritable: writable,
			})
		}

		return solana.NewInstruction(programID, accounts, compiled.Data), nil
	}

	return nil, fmt.Errorf("no instruction for program %s in builder transaction", programID.String())
}
