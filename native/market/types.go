package market

import "math/big"

// ModuleName tags market records and pause checks.
const ModuleName = "market"

// MaxSupply caps a pool's share supply so curve arithmetic stays well inside
// integer range.
const MaxSupply = 1_000_000

// Pool is the per-creator share pool. Reserve always equals the curve
// integral over the current supply.
type Pool struct {
	Creator      [20]byte `json:"creator"`
	Supply       uint64   `json:"supply"`
	Reserve      *big.Int `json:"reserve"`
	HoldersCount uint64   `json:"holdersCount"`
	TotalVolume  *big.Int `json:"totalVolume"`
	CreatedAt    int64    `json:"createdAt"`
}

// Clone returns a deep copy of the pool.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Reserve != nil {
		clone.Reserve = new(big.Int).Set(p.Reserve)
	}
	if p.TotalVolume != nil {
		clone.TotalVolume = new(big.Int).Set(p.TotalVolume)
	}
	return &clone
}

// Holding records the shares a holder owns in one creator's pool. The
// (holder, creator) tuple is the key; a holding is deleted when it reaches
// zero shares.
type Holding struct {
	Holder    [20]byte `json:"holder"`
	Creator   [20]byte `json:"creator"`
	Shares    uint64   `json:"shares"`
	CreatedAt int64    `json:"createdAt"`
}

// Clone returns a copy of the holding.
func (h *Holding) Clone() *Holding {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}
