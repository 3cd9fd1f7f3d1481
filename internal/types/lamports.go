// internal/types/lamports.go
package types

import "math"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// SolToLamports converts a decimal SOL amount to lamports, rounding down.
func SolToLamports(sol float64) uint64 {
	return uint64(math.Floor(sol * LamportsPerSOL))
}

// LamportsToSol converts lamports to a decimal SOL amount.
func LamportsToSol(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}
