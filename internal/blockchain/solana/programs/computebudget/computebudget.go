// internal/blockchain/solana/programs/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3
)

type SetComputeUnitLimitInstruction struct {
	Units uint32
}

type SetComputeUnitPriceInstruction struct {
	MicroLamports uint64
}

// Launch bundles request the maximum unit limit so the create and initial
// buy land in one transaction.
const (
	LaunchUnits     uint32 = 1_400_000
	LaunchUnitPrice uint64 = 1_000_000
)

// ComputeBudgetConfig holds the budget settings for one transaction.
type ComputeBudgetConfig struct {
	Units     uint32
	UnitPrice uint64
}

// NewLaunchConfig returns the budget used for token-launch bundles.
func NewLaunchConfig() ComputeBudgetConfig {
	return ComputeBudgetConfig{
		Units:     LaunchUnits,
		UnitPrice: LaunchUnitPrice,
	}
}

// BuildComputeBudgetInstructions creates the price and limit instructions.
func BuildComputeBudgetInstructions(config ComputeBudgetConfig) ([]solana.Instruction, error) {
	if config.Units == 0 {
		config = NewLaunchConfig()
	}

	var instructions []solana.Instruction

	if config.UnitPrice > 0 {
		priceInstruction, err := (&SetComputeUnitPriceInstruction{
			MicroLamports: config.UnitPrice,
		}).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, priceInstruction)
	}

	limitInstruction, err := (&SetComputeUnitLimitInstruction{
		Units: config.Units,
	}).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
	}
	instructions = append(instructions, limitInstruction)

	return instructions, nil
}

// Build encodes the set-compute-unit-limit instruction.
func (instr *SetComputeUnitLimitInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitLimit); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.Units); err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		[]*solana.AccountMeta{},
		buf.Bytes(),
	), nil
}

// Build encodes the set-compute-unit-price instruction.
func (instr *SetComputeUnitPriceInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitPrice); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.MicroLamports); err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		[]*solana.AccountMeta{},
		buf.Bytes(),
	), nil
}
