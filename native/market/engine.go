package market

import (
	"errors"
	"math/big"
	"time"

	"creatorledger/core/events"
	"creatorledger/core/types"
	"creatorledger/native/common"
	"creatorledger/native/platform"
)

var (
	errNilState           = errors.New("market engine: state not configured")
	errVaultNotSet        = errors.New("market engine: reserve vault not configured")
	errPoolExists         = errors.New("market engine: pool already initialized")
	errPoolNotFound       = errors.New("market engine: pool not found")
	errPlatformNotReady   = errors.New("market engine: platform config not initialized")
	errInvalidQuantity    = errors.New("market engine: quantity must be positive")
	errSupplyCap          = errors.New("market engine: supply cap exceeded")
	errInsufficientFunds  = errors.New("market engine: insufficient balance")
	errInsufficientShares = errors.New("market engine: not enough shares to sell")
	errLiquidityFloor     = errors.New("market engine: sell breaches liquidity floor")
	// ErrCurveInvariant signals an internal accounting mismatch between the
	// pool reserve and the curve integral. It is fatal for the instruction and
	// must never be corrected silently.
	ErrCurveInvariant = errors.New("market engine: reserve diverged from curve integral")
)

type engineState interface {
	MarketPoolGet(creator [20]byte) (*Pool, bool, error)
	MarketPoolPut(pool *Pool) error
	MarketHoldingGet(holder, creator [20]byte) (*Holding, bool, error)
	MarketHoldingPut(holding *Holding) error
	MarketHoldingDelete(holder, creator [20]byte) error
	PlatformConfigGet() (*platform.Config, bool, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine runs the bonding-curve share market. Buys pay the curve cost plus
// the platform fee; sells refund the identical curve integral minus the fee,
// so the pool reserve tracks the curve exactly.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
	vault   [20]byte
}

// NewEngine constructs a market engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the platform pause view consulted by Buy and Sell.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetVault configures the account that physically holds pool reserves.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func (e *Engine) platformConfig() (*platform.Config, error) {
	cfg, ok, err := e.state.PlatformConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, errPlatformNotReady
	}
	return cfg, nil
}

// checkInvariant verifies Reserve == R(Supply) after a trade.
func checkInvariant(pool *Pool) error {
	if pool.Reserve == nil || pool.Reserve.Cmp(ReserveAt(pool.Supply)) != 0 {
		return ErrCurveInvariant
	}
	return nil
}

// InitializePool creates the share pool for a creator. One pool per creator.
func (e *Engine) InitializePool(creator [20]byte) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok, err := e.state.MarketPoolGet(creator); err != nil {
		return nil, err
	} else if ok {
		return nil, errPoolExists
	}
	pool := &Pool{
		Creator:     creator,
		Supply:      0,
		Reserve:     big.NewInt(0),
		TotalVolume: big.NewInt(0),
		CreatedAt:   e.now(),
	}
	if err := e.state.MarketPoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(PoolInitializedEvent(hexAddr(creator)))
	return pool.Clone(), nil
}

// Buy purchases quantity shares of the creator's pool at the curve price.
// The buyer pays cost plus the platform fee; the cost is credited to the
// reserve in full.
func (e *Engine) Buy(buyer [20]byte, creator [20]byte, quantity uint64) (*Holding, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, nil, err
	}
	if quantity == 0 {
		return nil, nil, errInvalidQuantity
	}
	if isZeroAddress(e.vault) {
		return nil, nil, errVaultNotSet
	}
	pool, ok, err := e.state.MarketPoolGet(creator)
	if err != nil {
		return nil, nil, err
	}
	if !ok || pool == nil {
		return nil, nil, errPoolNotFound
	}
	if quantity > MaxSupply || pool.Supply+quantity > MaxSupply {
		return nil, nil, errSupplyCap
	}
	cfg, err := e.platformConfig()
	if err != nil {
		return nil, nil, err
	}
	cost := BuyCost(pool.Supply, quantity)
	fee := common.FeeAmount(cost, platform.FeeBps)
	total := new(big.Int).Add(cost, fee)

	buyerAccount, err := e.state.GetAccount(buyer[:])
	if err != nil {
		return nil, nil, err
	}
	buyerAccount = buyerAccount.Ensure()
	if buyerAccount.Balance.Cmp(total) < 0 {
		return nil, nil, errInsufficientFunds
	}
	buyerAccount.Balance = new(big.Int).Sub(buyerAccount.Balance, total)
	if err := e.state.PutAccount(buyer[:], buyerAccount); err != nil {
		return nil, nil, err
	}
	vaultAccount, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return nil, nil, err
	}
	vaultAccount = vaultAccount.Ensure()
	vaultAccount.Balance = new(big.Int).Add(vaultAccount.Balance, cost)
	if err := e.state.PutAccount(e.vault[:], vaultAccount); err != nil {
		return nil, nil, err
	}
	if fee.Sign() > 0 {
		collectorAccount, err := e.state.GetAccount(cfg.FeeCollector[:])
		if err != nil {
			return nil, nil, err
		}
		collectorAccount = collectorAccount.Ensure()
		collectorAccount.Balance = new(big.Int).Add(collectorAccount.Balance, fee)
		if err := e.state.PutAccount(cfg.FeeCollector[:], collectorAccount); err != nil {
			return nil, nil, err
		}
	}

	holding, ok, err := e.state.MarketHoldingGet(buyer, creator)
	if err != nil {
		return nil, nil, err
	}
	newHolder := !ok || holding == nil || holding.Shares == 0
	if !ok || holding == nil {
		holding = &Holding{Holder: buyer, Creator: creator, CreatedAt: e.now()}
	}
	holding.Shares += quantity

	pool.Supply += quantity
	pool.Reserve = new(big.Int).Add(pool.Reserve, cost)
	pool.TotalVolume = new(big.Int).Add(pool.TotalVolume, cost)
	if newHolder {
		pool.HoldersCount++
	}
	if err := checkInvariant(pool); err != nil {
		return nil, nil, err
	}
	if err := e.state.MarketHoldingPut(holding); err != nil {
		return nil, nil, err
	}
	if err := e.state.MarketPoolPut(pool); err != nil {
		return nil, nil, err
	}
	e.emit(SharesPurchasedEvent(hexAddr(buyer), hexAddr(creator), quantity, cost.String(), fee.String()))
	return holding.Clone(), total, nil
}

// Sell redeems quantity shares against the pool reserve. The refund is the
// exact curve integral; the platform fee comes out of the seller's payout.
func (e *Engine) Sell(seller [20]byte, creator [20]byte, quantity uint64) (*Holding, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, nil, err
	}
	if quantity == 0 {
		return nil, nil, errInvalidQuantity
	}
	if isZeroAddress(e.vault) {
		return nil, nil, errVaultNotSet
	}
	pool, ok, err := e.state.MarketPoolGet(creator)
	if err != nil {
		return nil, nil, err
	}
	if !ok || pool == nil {
		return nil, nil, errPoolNotFound
	}
	holding, ok, err := e.state.MarketHoldingGet(seller, creator)
	if err != nil {
		return nil, nil, err
	}
	if !ok || holding == nil || holding.Shares < quantity {
		return nil, nil, errInsufficientShares
	}
	cfg, err := e.platformConfig()
	if err != nil {
		return nil, nil, err
	}
	refund := SellRefund(pool.Supply, quantity)
	newSupply := pool.Supply - quantity
	// Liquidity floor: unless the sell empties the pool, the remaining
	// reserve must keep at least MinLiquidityBps of the pre-trade reserve.
	if newSupply > 0 && pool.Reserve.Sign() > 0 {
		remaining := new(big.Int).Sub(pool.Reserve, refund)
		remaining.Mul(remaining, big.NewInt(common.BpsDenominator))
		floor := new(big.Int).Mul(pool.Reserve, new(big.Int).SetUint64(cfg.MinLiquidityBps))
		if remaining.Cmp(floor) < 0 {
			return nil, nil, errLiquidityFloor
		}
	}
	fee := common.FeeAmount(refund, platform.FeeBps)
	payout := new(big.Int).Sub(refund, fee)

	vaultAccount, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return nil, nil, err
	}
	vaultAccount = vaultAccount.Ensure()
	if vaultAccount.Balance.Cmp(refund) < 0 {
		return nil, nil, ErrCurveInvariant
	}
	vaultAccount.Balance = new(big.Int).Sub(vaultAccount.Balance, refund)
	if err := e.state.PutAccount(e.vault[:], vaultAccount); err != nil {
		return nil, nil, err
	}
	sellerAccount, err := e.state.GetAccount(seller[:])
	if err != nil {
		return nil, nil, err
	}
	sellerAccount = sellerAccount.Ensure()
	sellerAccount.Balance = new(big.Int).Add(sellerAccount.Balance, payout)
	if err := e.state.PutAccount(seller[:], sellerAccount); err != nil {
		return nil, nil, err
	}
	if fee.Sign() > 0 {
		collectorAccount, err := e.state.GetAccount(cfg.FeeCollector[:])
		if err != nil {
			return nil, nil, err
		}
		collectorAccount = collectorAccount.Ensure()
		collectorAccount.Balance = new(big.Int).Add(collectorAccount.Balance, fee)
		if err := e.state.PutAccount(cfg.FeeCollector[:], collectorAccount); err != nil {
			return nil, nil, err
		}
	}

	holding.Shares -= quantity
	pool.Supply = newSupply
	pool.Reserve = new(big.Int).Sub(pool.Reserve, refund)
	pool.TotalVolume = new(big.Int).Add(pool.TotalVolume, refund)
	if holding.Shares == 0 && pool.HoldersCount > 0 {
		pool.HoldersCount--
	}
	if err := checkInvariant(pool); err != nil {
		return nil, nil, err
	}
	if holding.Shares == 0 {
		if err := e.state.MarketHoldingDelete(seller, creator); err != nil {
			return nil, nil, err
		}
	} else {
		if err := e.state.MarketHoldingPut(holding); err != nil {
			return nil, nil, err
		}
	}
	if err := e.state.MarketPoolPut(pool); err != nil {
		return nil, nil, err
	}
	e.emit(SharesSoldEvent(hexAddr(seller), hexAddr(creator), quantity, refund.String(), fee.String()))
	return holding.Clone(), payout, nil
}

// Pool returns the pool for a creator without mutating state.
func (e *Engine) Pool(creator [20]byte) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, ok, err := e.state.MarketPoolGet(creator)
	if err != nil {
		return nil, err
	}
	if !ok || pool == nil {
		return nil, errPoolNotFound
	}
	return pool.Clone(), nil
}

// Holding returns the holder's position for a creator, zero-valued when the
// holder never bought in.
func (e *Engine) Holding(holder, creator [20]byte) (*Holding, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	holding, ok, err := e.state.MarketHoldingGet(holder, creator)
	if err != nil {
		return nil, err
	}
	if !ok || holding == nil {
		return &Holding{Holder: holder, Creator: creator}, nil
	}
	return holding.Clone(), nil
}
