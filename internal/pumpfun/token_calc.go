// =============================
// File: internal/pumpfun/token_calc.go
// =============================
package pumpfun

import "math/big"

// TokensForSol quotes how many base units of the token the curve returns for
// solLamports, using the constant-product virtual reserves.
func (a *BondingCurveAccount) TokensForSol(solLamports uint64) uint64 {
	if solLamports == 0 || a.VirtualSolReserves == 0 || a.VirtualTokenReserves == 0 {
		return 0
	}

	// tokens = lamports * virtualTokenReserves / (virtualSolReserves + lamports),
	// computed in big.Int because the intermediate product overflows uint64.
	amount := new(big.Int).SetUint64(solLamports)
	tokenReserves := new(big.Int).SetUint64(a.VirtualTokenReserves)
	solReserves := new(big.Int).SetUint64(a.VirtualSolReserves)

	numerator := new(big.Int).Mul(amount, tokenReserves)
	denominator := new(big.Int).Add(solReserves, amount)

	out := new(big.Int).Quo(numerator, denominator)
	if out.Cmp(new(big.Int).SetUint64(a.RealTokenReserves)) > 0 && a.RealTokenReserves > 0 {
		return a.RealTokenReserves
	}
	return out.Uint64()
}
