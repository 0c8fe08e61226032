package subscription

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"creatorledger/core/events"
	"creatorledger/core/types"
	"creatorledger/native/common"
	"creatorledger/native/platform"
)

var (
	errNilState          = errors.New("subscription engine: state not configured")
	errNameRequired      = errors.New("subscription engine: tier name required")
	errNameTooLong       = errors.New("subscription engine: tier name too long")
	errDescriptionLong   = errors.New("subscription engine: description too long")
	errInvalidPrice      = errors.New("subscription engine: price must be positive")
	errInvalidDuration   = errors.New("subscription engine: duration must be positive")
	errTierNotFound      = errors.New("subscription engine: tier not found")
	errAlreadySubscribed = errors.New("subscription engine: subscription already active")
	errNotSubscribed     = errors.New("subscription engine: subscription not found")
	errNotActive         = errors.New("subscription engine: subscription expired or cancelled")
	errInsufficientFunds = errors.New("subscription engine: insufficient balance")
	errPlatformNotReady  = errors.New("subscription engine: platform config not initialized")
)

type engineState interface {
	SubscriptionTierGet(creator [20]byte, id uint64) (*Tier, bool, error)
	SubscriptionTierPut(tier *Tier) error
	SubscriptionNextTierID(creator [20]byte) (uint64, error)
	SubscriptionGet(subscriber, creator [20]byte, tierID uint64) (*Record, bool, error)
	SubscriptionPut(record *Record) error
	PlatformConfigGet() (*platform.Config, bool, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine manages creator tiers and time-boxed subscriptions.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
}

// NewEngine constructs a subscription engine with default dependencies.
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

// SetPauses wires the platform pause view consulted by Subscribe.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

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

// CreateTier registers the creator's next tier. The id comes from a
// per-creator counter incremented in the same instruction.
func (e *Engine) CreateTier(creator [20]byte, name, description string, price *big.Int, durationDays uint64) (*Tier, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errNameRequired
	}
	if len(trimmed) > MaxNameLength {
		return nil, errNameTooLong
	}
	if len(description) > MaxDescriptionLength {
		return nil, errDescriptionLong
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errInvalidPrice
	}
	if durationDays == 0 {
		return nil, errInvalidDuration
	}
	id, err := e.state.SubscriptionNextTierID(creator)
	if err != nil {
		return nil, err
	}
	tier := &Tier{
		Creator:      creator,
		ID:           id,
		Name:         trimmed,
		Description:  description,
		Price:        new(big.Int).Set(price),
		DurationDays: durationDays,
		CreatedAt:    e.now(),
	}
	if err := e.state.SubscriptionTierPut(tier); err != nil {
		return nil, err
	}
	e.emit(TierCreatedEvent(hexAddr(creator), id, trimmed, price.String()))
	return tier.Clone(), nil
}

// Subscribe opens a subscription on the tier, paying the tier price minus
// the platform fee to the creator. Re-subscribing while an active record
// exists is rejected.
func (e *Engine) Subscribe(subscriber [20]byte, creator [20]byte, tierID uint64) (*Record, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	tier, ok, err := e.state.SubscriptionTierGet(creator, tierID)
	if err != nil {
		return nil, err
	}
	if !ok || tier == nil {
		return nil, errTierNotFound
	}
	now := e.now()
	if existing, ok, err := e.state.SubscriptionGet(subscriber, creator, tierID); err != nil {
		return nil, err
	} else if ok && existing.ActiveAt(now) {
		return nil, errAlreadySubscribed
	}
	cfg, ok, err := e.state.PlatformConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, errPlatformNotReady
	}
	price := tier.Price
	fee := common.FeeAmount(price, platform.FeeBps)
	net := new(big.Int).Sub(price, fee)

	subscriberAccount, err := e.state.GetAccount(subscriber[:])
	if err != nil {
		return nil, err
	}
	subscriberAccount = subscriberAccount.Ensure()
	if subscriberAccount.Balance.Cmp(price) < 0 {
		return nil, errInsufficientFunds
	}
	subscriberAccount.Balance = new(big.Int).Sub(subscriberAccount.Balance, price)
	if err := e.state.PutAccount(subscriber[:], subscriberAccount); err != nil {
		return nil, err
	}
	creatorAccount, err := e.state.GetAccount(creator[:])
	if err != nil {
		return nil, err
	}
	creatorAccount = creatorAccount.Ensure()
	creatorAccount.Balance = new(big.Int).Add(creatorAccount.Balance, net)
	if err := e.state.PutAccount(creator[:], creatorAccount); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		collectorAccount, err := e.state.GetAccount(cfg.FeeCollector[:])
		if err != nil {
			return nil, err
		}
		collectorAccount = collectorAccount.Ensure()
		collectorAccount.Balance = new(big.Int).Add(collectorAccount.Balance, fee)
		if err := e.state.PutAccount(cfg.FeeCollector[:], collectorAccount); err != nil {
			return nil, err
		}
	}

	record := &Record{
		Subscriber:   subscriber,
		Creator:      creator,
		TierID:       tierID,
		DurationDays: tier.DurationDays,
		StartedAt:    now,
		Cancelled:    false,
	}
	if err := e.state.SubscriptionPut(record); err != nil {
		return nil, err
	}
	tier.Subscribers++
	if err := e.state.SubscriptionTierPut(tier); err != nil {
		return nil, err
	}
	e.emit(SubscribedEvent(hexAddr(subscriber), hexAddr(creator), tierID, price.String()))
	return record.Clone(), nil
}

// Cancel flips the one-way cancelled flag. No refund is issued and access is
// revoked immediately; cancelling an inactive record is a lifecycle error.
func (e *Engine) Cancel(subscriber [20]byte, creator [20]byte, tierID uint64) (*Record, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.SubscriptionGet(subscriber, creator, tierID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, errNotSubscribed
	}
	if !record.ActiveAt(e.now()) {
		return nil, errNotActive
	}
	record.Cancelled = true
	if err := e.state.SubscriptionPut(record); err != nil {
		return nil, err
	}
	e.emit(CancelledEvent(hexAddr(subscriber), hexAddr(creator), tierID))
	return record.Clone(), nil
}

// Status reports whether the subscription is active at the engine clock.
func (e *Engine) Status(subscriber [20]byte, creator [20]byte, tierID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	record, ok, err := e.state.SubscriptionGet(subscriber, creator, tierID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return record.ActiveAt(e.now()), nil
}
