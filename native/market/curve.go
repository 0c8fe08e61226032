package market

import "math/big"

// The pool prices shares on a linear curve: the n-th share issued (1-indexed)
// costs BasePrice + Slope*(n-1). The cumulative reserve backing supply S is
// the exact integer sum
//
//	R(S) = S*BasePrice + Slope*S*(S-1)/2
//
// S*(S-1) is always even, so the curve involves no rounding at all and
// Reserve == R(Supply) is an exact invariant. Buys pay R(S+q)-R(S); sells
// refund R(S)-R(S-q) from the identical formula.
const (
	// BasePrice is the cost of the first share, in the ledger's base unit.
	BasePrice = 10_000_000
	// Slope is the per-share price increment.
	Slope = 1_000_000
)

// ReserveAt returns the exact reserve backing the given supply.
func ReserveAt(supply uint64) *big.Int {
	if supply == 0 {
		return big.NewInt(0)
	}
	s := new(big.Int).SetUint64(supply)
	reserve := new(big.Int).Mul(s, big.NewInt(BasePrice))
	tri := new(big.Int).Mul(s, new(big.Int).SetUint64(supply-1))
	tri.Mul(tri, big.NewInt(Slope))
	tri.Rsh(tri, 1)
	return reserve.Add(reserve, tri)
}

// BuyCost returns the cost of moving supply from S to S+quantity.
func BuyCost(supply, quantity uint64) *big.Int {
	after := ReserveAt(supply + quantity)
	return after.Sub(after, ReserveAt(supply))
}

// SellRefund returns the refund for moving supply from S down to S-quantity.
// The caller guarantees quantity <= supply.
func SellRefund(supply, quantity uint64) *big.Int {
	before := ReserveAt(supply)
	return before.Sub(before, ReserveAt(supply-quantity))
}
