// internal/types/slippage.go
package types

import "math/big"

// BasisPoints expresses a slippage tolerance in hundredths of a percent.
type BasisPoints uint64

const (
	// CurveBuySlippage is the tolerance applied to the token amount of a
	// bonding-curve buy.
	CurveBuySlippage BasisPoints = 500

	// QuoteSlippage is the tolerance passed to the aggregator when
	// requesting a swap route.
	QuoteSlippage BasisPoints = 50
)

// ApplyFloor reduces amount by the tolerance, rounding down. The product is
// computed in big.Int because it overflows uint64 for large amounts.
func (bps BasisPoints) ApplyFloor(amount uint64) uint64 {
	scaled := new(big.Int).Mul(
		new(big.Int).SetUint64(amount),
		new(big.Int).SetUint64(10_000-uint64(bps)),
	)
	return new(big.Int).Quo(scaled, big.NewInt(10_000)).Uint64()
}
