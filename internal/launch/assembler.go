// =============================
// File: internal/launch/assembler.go
// =============================

// Package launch assembles token-create transactions: metadata upload,
// create-instruction extraction from the off-chain builder, and an
// optional initial developer buy.
package launch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/blockchain"
	"github.com/blinkforge/blinkforge/internal/blockchain/solana/programs/computebudget"
	"github.com/blinkforge/blinkforge/internal/pumpapi"
	"github.com/blinkforge/blinkforge/internal/pumpfun"
	"github.com/blinkforge/blinkforge/internal/types"
)

// ErrCurveAddressTimeout is returned when the bonding curve account for
// a fresh mint never became queryable within the poll budget.
var ErrCurveAddressTimeout = errors.New("bonding curve account did not appear in time")

// tokenBaseUnits converts whole pump.fun tokens to base units (6 decimals).
const tokenBaseUnits = 1_000_000

// Config bounds the bonding-curve readiness poll. Tests shrink both.
type Config struct {
	CurvePollTries uint
	CurvePollDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		CurvePollTries: 20,
		CurvePollDelay: 500 * time.Millisecond,
	}
}

// MetadataUploader pushes the token image and metadata to content
// storage. Satisfied by pumpapi.IPFSClient.
type MetadataUploader interface {
	UploadMetadata(ctx context.Context, meta pumpapi.TokenMetadata, image []byte) (string, error)
}

// CreateBuilder requests prebuilt create transactions from the
// off-chain builder. Satisfied by pumpapi.PortalClient.
type CreateBuilder interface {
	BuildCreateTransaction(ctx context.Context, create pumpapi.CreateRequest) ([]byte, error)
}

// Params describes one token launch.
type Params struct {
	Creator     solana.PublicKey
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
	Image       []byte
	// DevBuyTokens is the creator's initial buy, denominated in whole
	// tokens. Zero skips the buy entirely.
	DevBuyTokens float64
}

// Result is an assembled, unsigned launch transaction. The mint key
// must countersign before the creator does; the transaction is not
// valid without both signatures.
type Result struct {
	TransactionBase64      string
	Mint                   solana.PrivateKey
	AssociatedTokenAccount solana.PublicKey
	MetadataURI            string
}

// Assembler builds launch transactions against injected dependencies.
type Assembler struct {
	client   blockchain.Client
	uploader MetadataUploader
	builder  CreateBuilder
	config   Config
	logger   *zap.Logger
}

func NewAssembler(client blockchain.Client, uploader MetadataUploader, builder CreateBuilder, config Config, logger *zap.Logger) *Assembler {
	if config.CurvePollTries == 0 {
		config = DefaultConfig()
	}
	return &Assembler{
		client:   client,
		uploader: uploader,
		builder:  builder,
		config:   config,
		logger:   logger.Named("launch"),
	}
}

// Assemble runs the launch pipeline. Each step is a hard dependency on
// the previous one succeeding; there are no fallbacks.
func (a *Assembler) Assemble(ctx context.Context, params Params) (*Result, error) {
	uri, err := a.uploader.UploadMetadata(ctx, pumpapi.TokenMetadata{
		Name:        params.Name,
		Symbol:      params.Symbol,
		Description: params.Description,
		Twitter:     params.Twitter,
		Telegram:    params.Telegram,
		Website:     params.Website,
	}, params.Image)
	if err != nil {
		return nil, fmt.Errorf("metadata upload failed: %w", err)
	}

	mint, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint identity: %w", err)
	}
	mintPub := mint.PublicKey()

	rawTx, err := a.builder.BuildCreateTransaction(ctx, pumpapi.CreateRequest{
		Payer:  params.Creator,
		Mint:   mintPub,
		Name:   params.Name,
		Symbol: params.Symbol,
		URI:    uri,
		Amount: params.DevBuyTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction build failed: %w", err)
	}

	createInstruction, err := pumpapi.ExtractInstructionForProgram(rawTx, pumpfun.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to extract create instruction: %w", err)
	}

	budget, err := computebudget.BuildComputeBudgetInstructions(computebudget.NewLaunchConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build compute budget: %w", err)
	}

	instructions := make([]solana.Instruction, 0, 6)
	instructions = append(instructions, budget...)
	instructions = append(instructions, createInstruction)

	if params.DevBuyTokens > 0 {
		buyInstructions, err := a.buildDevBuy(ctx, mintPub, params)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, buyInstructions...)
	}

	serialized, err := a.buildUnsigned(ctx, instructions, params.Creator)
	if err != nil {
		return nil, err
	}

	ata, _, err := solana.FindAssociatedTokenAddress(params.Creator, mintPub)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token account: %w", err)
	}

	a.logger.Info("Launch assembled",
		zap.String("mint", mintPub.String()),
		zap.String("symbol", params.Symbol),
		zap.Float64("dev_buy_tokens", params.DevBuyTokens))

	return &Result{
		TransactionBase64:      serialized,
		Mint:                   mint,
		AssociatedTokenAccount: ata,
		MetadataURI:            uri,
	}, nil
}

// buildDevBuy waits for the mint's bonding curve to become queryable,
// then builds the creator's token-account and buy instructions.
func (a *Assembler) buildDevBuy(ctx context.Context, mint solana.PublicKey, params Params) ([]solana.Instruction, error) {
	if err := a.waitForCurveAccount(ctx, mint); err != nil {
		return nil, err
	}

	createATA, err := pumpfun.BuildCreateUserATAInstruction(params.Creator, params.Creator, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to build token account instruction: %w", err)
	}

	tokenAmount := uint64(params.DevBuyTokens * tokenBaseUnits)
	buy, err := pumpfun.BuildBuyInstruction(mint, params.Creator, tokenAmount, maxSolCostFor(params.DevBuyTokens))
	if err != nil {
		return nil, fmt.Errorf("failed to build buy instruction: %w", err)
	}

	return []solana.Instruction{createATA, buy}, nil
}

// waitForCurveAccount polls the derived bonding curve address until its
// backing account is queryable. The address is deterministic but the
// account only exists once the create instruction lands, so this is a
// bounded readiness check, not a blocking wait.
func (a *Assembler) waitForCurveAccount(ctx context.Context, mint solana.PublicKey) error {
	bondingCurve, _, err := pumpfun.DeriveBondingCurve(mint)
	if err != nil {
		return err
	}

	notify := func(err error, duration time.Duration) {
		a.logger.Debug("Bonding curve not ready, retrying",
			zap.String("curve", bondingCurve.String()),
			zap.Duration("backoff", duration))
	}

	operation := func() (struct{}, error) {
		info, err := a.client.GetAccountInfo(ctx, bondingCurve)
		if err != nil {
			return struct{}{}, err
		}
		if info == nil || info.Value == nil {
			return struct{}{}, fmt.Errorf("bonding curve account %s not found", bondingCurve.String())
		}
		return struct{}{}, nil
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.config.CurvePollDelay)),
		backoff.WithMaxTries(a.config.CurvePollTries),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCurveAddressTimeout, err)
	}
	return nil
}

// maxSolCostFor prices the initial buy at roughly 0.01 SOL per 10,000
// tokens, inflated 5% for slippage and floored at 0.01 SOL.
func maxSolCostFor(tokens float64) uint64 {
	sol := tokens / 10_000 * 0.01 * 1.05
	if sol < 0.01 {
		sol = 0.01
	}
	return types.SolToLamports(sol)
}

func (a *Assembler) buildUnsigned(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (string, error) {
	blockhash, err := a.client.GetRecentBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	serialized, err := tx.ToBase64()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return serialized, nil
}
