// =============================
// File: internal/pumpfun/types.go
// =============================
package pumpfun

import "errors"

// ErrCurveComplete marks a bonding curve whose liquidity has migrated; the
// token is no longer tradable through the curve.
var ErrCurveComplete = errors.New("bonding curve is complete")

// BondingCurveAccount is the on-chain state of a token's bonding curve.
type BondingCurveAccount struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}
