// =============================
// File: internal/pumpfun/instructions.go
// =============================
package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BuyDiscriminator is the anchor method discriminator for buy(amount, max_sol_cost).
var BuyDiscriminator = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}

// BuildBuyInstruction builds a Pump.fun buy instruction for the given buyer.
// amount is the token amount in base units, maxSolCost the lamport ceiling
// the buyer accepts to pay.
func BuildBuyInstruction(mint, buyer solana.PublicKey, amount, maxSolCost uint64) (solana.Instruction, error) {
	bondingCurve, associatedBondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}

	associatedUser, _, err := solana.FindAssociatedTokenAddress(buyer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get associated token account: %w", err)
	}

	data := make([]byte, len(BuyDiscriminator))
	copy(data, BuyDiscriminator)

	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, amount)
	data = append(data, amountBytes...)

	maxSolBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(maxSolBytes, maxSolCost)
	data = append(data, maxSolBytes...)

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: GlobalAccount, IsSigner: false, IsWritable: false},
		{PublicKey: FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: buyer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: SysvarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data), nil
}

// BuildCreateUserATAInstruction creates the buyer's associated token account.
// The instruction is idempotent at the program level when the account exists.
func BuildCreateUserATAInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	associatedAddress, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get associated token address: %w", err)
	}

	keys := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: associatedAddress, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
	}

	// Instruction 1 on the ATA program is create-idempotent.
	return solana.NewInstruction(AssociatedTokenProgramID, keys, []byte{1}), nil
}
