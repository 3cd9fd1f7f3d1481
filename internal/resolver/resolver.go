// =============================
// File: internal/resolver/resolver.go
// =============================

// Package resolver turns a buy request into an unsigned transaction,
// routing through the Pump.fun bonding curve while it is open and
// through Jupiter once the curve has migrated.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/blockchain"
	"github.com/blinkforge/blinkforge/internal/blockchain/solbc"
	"github.com/blinkforge/blinkforge/internal/jupiter"
	"github.com/blinkforge/blinkforge/internal/pumpfun"
	"github.com/blinkforge/blinkforge/internal/types"
)

// Route identifies which venue produced the transaction.
type Route string

const (
	RouteBondingCurve Route = "bonding_curve"
	RouteJupiter      Route = "jupiter"
)

// commissionDivisor yields a 1% commission, floored.
const commissionDivisor = 100

// QuoteService is the aggregator surface the resolver needs. Satisfied
// by jupiter.Client.
type QuoteService interface {
	GetQuote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippage types.BasisPoints) (*jupiter.Quote, error)
	BuildSwapTransaction(ctx context.Context, quote *jupiter.Quote, user solana.PublicKey) (string, error)
}

// RouteResult is a resolved, serialized, unsigned buy transaction.
type RouteResult struct {
	TransactionBase64  string
	Route              Route
	GrossLamports      uint64
	CommissionLamports uint64
	NetLamports        uint64
	// TokenAmount is the post-slippage token amount encoded into the buy
	// instruction. Zero on the Jupiter route, where the aggregator owns
	// the quote.
	TokenAmount uint64
}

// Resolver builds buy transactions for a fixed commission wallet.
type Resolver struct {
	client           blockchain.Client
	quotes           QuoteService
	commissionWallet solana.PublicKey
	logger           *zap.Logger
}

func New(client blockchain.Client, quotes QuoteService, commissionWallet solana.PublicKey, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:           client,
		quotes:           quotes,
		commissionWallet: commissionWallet,
		logger:           logger.Named("resolver"),
	}
}

// Resolve produces an unsigned buy transaction for solAmount SOL of the
// given token, paid by buyer. The commission is taken on the bonding
// curve route only; Jupiter swaps pass the full amount through.
func (r *Resolver) Resolve(ctx context.Context, tokenAddress, buyerAddress string, solAmount float64) (*RouteResult, error) {
	mint, err := solana.PublicKeyFromBase58(tokenAddress)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid token address", err)
	}

	buyer, err := solana.PublicKeyFromBase58(buyerAddress)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid buyer address", err)
	}

	gross := types.SolToLamports(solAmount)
	if gross == 0 {
		return nil, newError(KindInvalidInput, "amount must be positive", nil)
	}

	commission := gross / commissionDivisor
	net := gross - commission

	curve, err := pumpfun.FetchBondingCurve(ctx, r.client, mint)
	switch {
	case errors.Is(err, pumpfun.ErrCurveComplete):
		r.logger.Debug("Bonding curve complete, routing through Jupiter",
			zap.String("mint", mint.String()))
		return r.resolveJupiter(ctx, mint, buyer, gross)
	case solbc.IsAccountNotFoundError(err):
		return nil, newError(KindNotTradable, "no bonding curve for token", err)
	case err != nil:
		return nil, newError(KindUpstream, "failed to read bonding curve", err)
	}

	return r.resolveCurve(ctx, curve, mint, buyer, gross, commission, net)
}

func (r *Resolver) resolveCurve(ctx context.Context, curve *pumpfun.BondingCurveAccount, mint, buyer solana.PublicKey, gross, commission, net uint64) (*RouteResult, error) {
	tokens := curve.TokensForSol(net)
	if tokens == 0 {
		return nil, newError(KindInvalidInput, "amount too small to buy any tokens", nil)
	}
	minTokens := types.CurveBuySlippage.ApplyFloor(tokens)

	createATA, err := pumpfun.BuildCreateUserATAInstruction(buyer, buyer, mint)
	if err != nil {
		return nil, newError(KindUpstream, "failed to build token account instruction", err)
	}

	buy, err := pumpfun.BuildBuyInstruction(mint, buyer, minTokens, net)
	if err != nil {
		return nil, newError(KindUpstream, "failed to build buy instruction", err)
	}

	instructions := []solana.Instruction{
		createATA,
		buy,
		system.NewTransferInstruction(commission, buyer, r.commissionWallet).Build(),
	}

	serialized, err := r.buildUnsigned(ctx, instructions, buyer)
	if err != nil {
		return nil, newError(KindUpstream, "failed to assemble transaction", err)
	}

	r.logger.Info("Resolved bonding curve buy",
		zap.String("mint", mint.String()),
		zap.Uint64("gross_lamports", gross),
		zap.Uint64("commission_lamports", commission),
		zap.Uint64("min_tokens", minTokens))

	return &RouteResult{
		TransactionBase64:  serialized,
		Route:              RouteBondingCurve,
		GrossLamports:      gross,
		CommissionLamports: commission,
		NetLamports:        net,
		TokenAmount:        minTokens,
	}, nil
}

func (r *Resolver) resolveJupiter(ctx context.Context, mint, buyer solana.PublicKey, gross uint64) (*RouteResult, error) {
	quote, err := r.quotes.GetQuote(ctx, pumpfun.WrappedSOL, mint, gross, types.QuoteSlippage)
	if err != nil {
		return nil, newError(KindUpstream, "failed to quote swap", err)
	}

	swap, err := r.quotes.BuildSwapTransaction(ctx, quote, buyer)
	if err != nil {
		return nil, newError(KindUpstream, "failed to build swap transaction", err)
	}

	r.logger.Info("Resolved Jupiter swap",
		zap.String("mint", mint.String()),
		zap.Uint64("gross_lamports", gross),
		zap.String("out_amount", quote.OutAmount))

	// The aggregator transaction is returned exactly as built; no
	// commission transfer can be appended to a compiled v0 message.
	return &RouteResult{
		TransactionBase64:  swap,
		Route:              RouteJupiter,
		GrossLamports:      gross,
		CommissionLamports: 0,
		NetLamports:        gross,
	}, nil
}

// buildUnsigned assembles and serializes a transaction with placeholder
// signatures, leaving signing to the buyer's wallet.
func (r *Resolver) buildUnsigned(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (string, error) {
	blockhash, err := r.client.GetRecentBlockhash(ctx)
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
