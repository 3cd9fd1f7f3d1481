// =============================
// File: internal/pumpfun/accounts.go
// =============================
package pumpfun

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/blinkforge/blinkforge/internal/blockchain"
	"github.com/blinkforge/blinkforge/internal/blockchain/solbc"
)

// DeriveBondingCurve computes the bonding curve PDA and its associated token
// account for a mint. The derivation is deterministic; the backing account
// may not exist yet for a freshly created mint.
func DeriveBondingCurve(mint solana.PublicKey) (bondingCurve, associatedBondingCurve solana.PublicKey, err error) {
	bondingCurve, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	associatedBondingCurve, _, err = solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}

	return bondingCurve, associatedBondingCurve, nil
}

// FetchBondingCurve reads and parses the bonding curve account for a mint.
// Returns ErrCurveComplete when the curve exists but has migrated.
func FetchBondingCurve(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (*BondingCurveAccount, error) {
	bondingCurve, _, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}

	accountInfo, err := client.GetAccountInfo(ctx, bondingCurve)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, solbc.ErrAccountNotFound
	}

	account, err := ParseBondingCurve(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	if account.Complete {
		return account, ErrCurveComplete
	}
	return account, nil
}

// ParseBondingCurve decodes raw bonding curve account data.
//
// Layout: 8-byte anchor discriminator, five little-endian u64 reserve and
// supply fields, then the complete flag.
func ParseBondingCurve(data []byte) (*BondingCurveAccount, error) {
	if len(data) < 49 {
		return nil, fmt.Errorf("invalid bonding curve data: insufficient length %d", len(data))
	}

	return &BondingCurveAccount{
		VirtualTokenReserves: binary.LittleEndian.Uint64(data[8:16]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(data[16:24]),
		RealTokenReserves:    binary.LittleEndian.Uint64(data[24:32]),
		RealSolReserves:      binary.LittleEndian.Uint64(data[32:40]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(data[40:48]),
		Complete:             data[48] != 0,
	}, nil
}
