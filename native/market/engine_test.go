package market

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"creatorledger/core/types"
	"creatorledger/native/common"
	"creatorledger/native/platform"
)

type mockState struct {
	pools    map[[20]byte]*Pool
	holdings map[[40]byte]*Holding
	accounts map[[20]byte]*types.Account
	cfg      *platform.Config
}

func newMockState() *mockState {
	return &mockState{
		pools:    make(map[[20]byte]*Pool),
		holdings: make(map[[40]byte]*Holding),
		accounts: make(map[[20]byte]*types.Account),
		cfg: &platform.Config{
			Admin:           newTestAddress(0x01),
			FeeCollector:    newTestAddress(0x02),
			MinLiquidityBps: platform.DefaultMinLiquidityBps,
		},
	}
}

func holdingID(holder, creator [20]byte) [40]byte {
	var id [40]byte
	copy(id[:20], holder[:])
	copy(id[20:], creator[:])
	return id
}

func (m *mockState) MarketPoolGet(creator [20]byte) (*Pool, bool, error) {
	pool, ok := m.pools[creator]
	if !ok {
		return nil, false, nil
	}
	return pool.Clone(), true, nil
}

func (m *mockState) MarketPoolPut(pool *Pool) error {
	m.pools[pool.Creator] = pool.Clone()
	return nil
}

func (m *mockState) MarketHoldingGet(holder, creator [20]byte) (*Holding, bool, error) {
	holding, ok := m.holdings[holdingID(holder, creator)]
	if !ok {
		return nil, false, nil
	}
	return holding.Clone(), true, nil
}

func (m *mockState) MarketHoldingPut(holding *Holding) error {
	m.holdings[holdingID(holding.Holder, holding.Creator)] = holding.Clone()
	return nil
}

func (m *mockState) MarketHoldingDelete(holder, creator [20]byte) error {
	delete(m.holdings, holdingID(holder, creator))
	return nil
}

func (m *mockState) PlatformConfigGet() (*platform.Config, bool, error) {
	if m.cfg == nil {
		return nil, false, nil
	}
	return m.cfg.Clone(), true, nil
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	var key [20]byte
	copy(key[:], addr)
	account, ok := m.accounts[key]
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	return &types.Account{Nonce: account.Nonce, Balance: new(big.Int).Set(account.Balance)}, nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	var key [20]byte
	copy(key[:], addr)
	m.accounts[key] = &types.Account{Nonce: account.Nonce, Balance: new(big.Int).Set(account.Balance)}
	return nil
}

func (m *mockState) fund(addr [20]byte, amount int64) {
	m.accounts[addr] = &types.Account{Balance: big.NewInt(amount)}
}

func (m *mockState) balance(addr [20]byte) *big.Int {
	account, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(account.Balance)
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

type stubPauses struct {
	paused bool
}

func (s stubPauses) IsPaused(string) bool { return s.paused }

func newTestEngine(state *mockState) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetVault(newTestAddress(0xEE))
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine
}

func TestInitializePoolOnce(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)

	pool, err := engine.InitializePool(creator)
	if err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if pool.Supply != 0 || pool.Reserve.Sign() != 0 {
		t.Fatalf("fresh pool not empty: supply %d reserve %s", pool.Supply, pool.Reserve)
	}
	if _, err := engine.InitializePool(creator); !errors.Is(err, errPoolExists) {
		t.Fatalf("second initialize: got %v, want %v", err, errPoolExists)
	}
}

func TestBuyThenSellLeavesRemainingShares(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, 5); err != nil {
		t.Fatalf("buy 5: %v", err)
	}
	holding, _, err := engine.Sell(buyer, creator, 2)
	if err != nil {
		t.Fatalf("sell 2: %v", err)
	}
	if holding.Shares != 3 {
		t.Fatalf("remaining shares = %d, want 3", holding.Shares)
	}
	pool, err := engine.Pool(creator)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.Supply != 3 {
		t.Fatalf("pool supply = %d, want 3", pool.Supply)
	}
	if pool.Reserve.Cmp(ReserveAt(3)) != 0 {
		t.Fatalf("pool reserve = %s, want %s", pool.Reserve, ReserveAt(3))
	}
}

func TestBuyChargesCurveCostPlusFee(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	_, total, err := engine.Buy(buyer, creator, 5)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	cost := big.NewInt(60_000_000)
	fee := big.NewInt(1_500_000)
	wantTotal := new(big.Int).Add(cost, fee)
	if total.Cmp(wantTotal) != 0 {
		t.Fatalf("total charged = %s, want %s", total, wantTotal)
	}
	wantBalance := new(big.Int).Sub(big.NewInt(1_000_000_000), wantTotal)
	if got := state.balance(buyer); got.Cmp(wantBalance) != 0 {
		t.Fatalf("buyer balance = %s, want %s", got, wantBalance)
	}
	if got := state.balance(newTestAddress(0xEE)); got.Cmp(cost) != 0 {
		t.Fatalf("vault balance = %s, want %s", got, cost)
	}
	if got := state.balance(state.cfg.FeeCollector); got.Cmp(fee) != 0 {
		t.Fatalf("collector balance = %s, want %s", got, fee)
	}
}

func TestSellNetsFeeFromPayout(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, 5); err != nil {
		t.Fatalf("buy: %v", err)
	}
	_, payout, err := engine.Sell(buyer, creator, 2)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	// refund R(5)-R(3) = 27_000_000, fee 2.5% = 675_000
	want := big.NewInt(26_325_000)
	if payout.Cmp(want) != 0 {
		t.Fatalf("payout = %s, want %s", payout, want)
	}
}

func TestBuyInsufficientFundsLeavesNoResidue(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, 1); !errors.Is(err, errInsufficientFunds) {
		t.Fatalf("buy: got %v, want %v", err, errInsufficientFunds)
	}
	if got := state.balance(buyer); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("buyer balance changed on rejected buy: %s", got)
	}
	pool, err := engine.Pool(creator)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.Supply != 0 || pool.Reserve.Sign() != 0 {
		t.Fatalf("pool changed on rejected buy: supply %d reserve %s", pool.Supply, pool.Reserve)
	}
}

func TestTradesRejectedWhilePaused(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, 5); err != nil {
		t.Fatalf("buy: %v", err)
	}
	engine.SetPauses(stubPauses{paused: true})
	if _, _, err := engine.Buy(buyer, creator, 1); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("paused buy: got %v, want %v", err, common.ErrModulePaused)
	}
	if _, _, err := engine.Sell(buyer, creator, 1); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("paused sell: got %v, want %v", err, common.ErrModulePaused)
	}
	engine.SetPauses(stubPauses{})
	if _, _, err := engine.Sell(buyer, creator, 1); err != nil {
		t.Fatalf("sell after unpause: %v", err)
	}
}

func TestSellBreachingLiquidityFloor(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, 10); err != nil {
		t.Fatalf("buy 10: %v", err)
	}
	// Selling 9 of 10 leaves R(1)/R(10) ~ 6.9% of the reserve, under the
	// 10% floor.
	if _, _, err := engine.Sell(buyer, creator, 9); !errors.Is(err, errLiquidityFloor) {
		t.Fatalf("sell 9: got %v, want %v", err, errLiquidityFloor)
	}
	// Selling everything empties the pool and bypasses the floor.
	holding, _, err := engine.Sell(buyer, creator, 10)
	if err != nil {
		t.Fatalf("sell 10: %v", err)
	}
	if holding.Shares != 0 {
		t.Fatalf("shares after full exit = %d, want 0", holding.Shares)
	}
	pool, err := engine.Pool(creator)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.Supply != 0 || pool.Reserve.Sign() != 0 {
		t.Fatalf("pool not empty after full exit: supply %d reserve %s", pool.Supply, pool.Reserve)
	}
	if pool.HoldersCount != 0 {
		t.Fatalf("holders count = %d, want 0", pool.HoldersCount)
	}
}

func TestSupplyCapEnforced(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	state.fund(buyer, 1_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(buyer, creator, MaxSupply+1); !errors.Is(err, errSupplyCap) {
		t.Fatalf("oversized buy: got %v, want %v", err, errSupplyCap)
	}
}

func TestReserveTracksCurveAcrossTradeSequence(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	alice := newTestAddress(0x20)
	bob := newTestAddress(0x21)
	state.fund(alice, 10_000_000_000)
	state.fund(bob, 10_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	steps := []struct {
		actor [20]byte
		buy   bool
		qty   uint64
	}{
		{alice, true, 7},
		{bob, true, 12},
		{alice, false, 3},
		{bob, false, 5},
		{alice, true, 20},
		{alice, false, 1},
	}
	for i, step := range steps {
		var err error
		if step.buy {
			_, _, err = engine.Buy(step.actor, creator, step.qty)
		} else {
			_, _, err = engine.Sell(step.actor, creator, step.qty)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		pool, err := engine.Pool(creator)
		if err != nil {
			t.Fatalf("step %d pool: %v", i, err)
		}
		if pool.Reserve.Cmp(ReserveAt(pool.Supply)) != 0 {
			t.Fatalf("step %d: reserve %s diverged from curve %s at supply %d",
				i, pool.Reserve, ReserveAt(pool.Supply), pool.Supply)
		}
		if got := state.balance(newTestAddress(0xEE)); got.Cmp(pool.Reserve) != 0 {
			t.Fatalf("step %d: vault balance %s != reserve %s", i, got, pool.Reserve)
		}
	}
}

func TestHoldersCountTracksDistinctHolders(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	alice := newTestAddress(0x20)
	bob := newTestAddress(0x21)
	state.fund(alice, 10_000_000_000)
	state.fund(bob, 10_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(alice, creator, 2); err != nil {
		t.Fatalf("alice buy: %v", err)
	}
	if _, _, err := engine.Buy(bob, creator, 2); err != nil {
		t.Fatalf("bob buy: %v", err)
	}
	if _, _, err := engine.Buy(alice, creator, 2); err != nil {
		t.Fatalf("alice top-up: %v", err)
	}
	pool, err := engine.Pool(creator)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.HoldersCount != 2 {
		t.Fatalf("holders count = %d, want 2", pool.HoldersCount)
	}
	if _, _, err := engine.Sell(bob, creator, 2); err != nil {
		t.Fatalf("bob exit: %v", err)
	}
	pool, err = engine.Pool(creator)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.HoldersCount != 1 {
		t.Fatalf("holders count after exit = %d, want 1", pool.HoldersCount)
	}
	if _, ok, _ := state.MarketHoldingGet(bob, creator); ok {
		t.Fatal("bob's emptied holding should be deleted")
	}
}

func TestSellMoreThanHeldRejected(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	alice := newTestAddress(0x20)
	bob := newTestAddress(0x21)
	state.fund(alice, 10_000_000_000)
	state.fund(bob, 10_000_000_000)

	if _, err := engine.InitializePool(creator); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, _, err := engine.Buy(alice, creator, 5); err != nil {
		t.Fatalf("alice buy: %v", err)
	}
	if _, _, err := engine.Buy(bob, creator, 5); err != nil {
		t.Fatalf("bob buy: %v", err)
	}
	// Alice only holds 5 even though the pool supply is 10.
	if _, _, err := engine.Sell(alice, creator, 6); !errors.Is(err, errInsufficientShares) {
		t.Fatalf("oversell: got %v, want %v", err, errInsufficientShares)
	}
}
