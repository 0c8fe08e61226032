package state

import (
	"math/big"

	"creatorledger/native/market"
)

type storedPool struct {
	Creator      [20]byte
	Supply       uint64
	Reserve      *big.Int
	HoldersCount uint64
	TotalVolume  *big.Int
	CreatedAt    uint64
}

type storedHolding struct {
	Holder    [20]byte
	Creator   [20]byte
	Shares    uint64
	CreatedAt uint64
}

// MarketPoolGet loads the share pool for a creator.
func (m *Manager) MarketPoolGet(creator [20]byte) (*market.Pool, bool, error) {
	stored := new(storedPool)
	ok, err := m.getRecord(poolKey(creator), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &market.Pool{
		Creator:      stored.Creator,
		Supply:       stored.Supply,
		Reserve:      bigOrZero(stored.Reserve),
		HoldersCount: stored.HoldersCount,
		TotalVolume:  bigOrZero(stored.TotalVolume),
		CreatedAt:    int64(stored.CreatedAt),
	}, true, nil
}

// MarketPoolPut persists the share pool for a creator.
func (m *Manager) MarketPoolPut(pool *market.Pool) error {
	return m.putRecord(poolKey(pool.Creator), &storedPool{
		Creator:      pool.Creator,
		Supply:       pool.Supply,
		Reserve:      bigOrZero(pool.Reserve),
		HoldersCount: pool.HoldersCount,
		TotalVolume:  bigOrZero(pool.TotalVolume),
		CreatedAt:    uint64(pool.CreatedAt),
	})
}

// MarketHoldingGet loads a holder's position in one creator's pool.
func (m *Manager) MarketHoldingGet(holder, creator [20]byte) (*market.Holding, bool, error) {
	stored := new(storedHolding)
	ok, err := m.getRecord(holdingKey(holder, creator), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &market.Holding{
		Holder:    stored.Holder,
		Creator:   stored.Creator,
		Shares:    stored.Shares,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// MarketHoldingPut persists a holder's position.
func (m *Manager) MarketHoldingPut(holding *market.Holding) error {
	return m.putRecord(holdingKey(holding.Holder, holding.Creator), &storedHolding{
		Holder:    holding.Holder,
		Creator:   holding.Creator,
		Shares:    holding.Shares,
		CreatedAt: uint64(holding.CreatedAt),
	})
}

// MarketHoldingDelete removes an emptied position.
func (m *Manager) MarketHoldingDelete(holder, creator [20]byte) error {
	m.deleteRecord(holdingKey(holder, creator))
	return nil
}
