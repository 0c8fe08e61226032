package common

import "math/big"

// BpsDenominator is the basis-point scale shared by fees and the liquidity
// floor.
const BpsDenominator = 10_000

// FeeAmount computes the platform cut of a gross amount at the given basis
// points. Division rounds down, so dust stays with the paying side.
func FeeAmount(gross *big.Int, bps uint64) *big.Int {
	if gross == nil || gross.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(bps))
	return fee.Div(fee, big.NewInt(BpsDenominator))
}
