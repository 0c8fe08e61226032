package profile

import (
	"errors"
	"math/big"
	"time"

	"github.com/btcsuite/btcutil/base58"

	"creatorledger/core/events"
	"creatorledger/core/types"
	"creatorledger/native/common"
)

var (
	errNilState          = errors.New("profile engine: state not configured")
	errProfileExists     = errors.New("profile engine: profile already registered")
	errProfileNotFound   = errors.New("profile engine: profile not found")
	errInvalidAmount     = errors.New("profile engine: amount must be positive")
	errSelfTip           = errors.New("profile engine: cannot tip yourself")
	errInsufficientFunds = errors.New("profile engine: insufficient balance")
)

type engineState interface {
	ProfileGet(owner [20]byte) (*Profile, bool, error)
	ProfilePut(p *Profile) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine manages user registration and direct tipping.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
}

// NewEngine constructs a profile engine with default dependencies.
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

// SetPauses wires the platform pause view consulted by Tip.
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

func referralCode(owner [20]byte) string {
	return base58.Encode(owner[:6])
}

// Register creates the caller's profile. Usernames are fixed after creation
// and one profile exists per owner.
func (e *Engine) Register(owner [20]byte, username string) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if _, ok, err := e.state.ProfileGet(owner); err != nil {
		return nil, err
	} else if ok {
		return nil, errProfileExists
	}
	p := &Profile{
		Owner:        owner,
		Username:     username,
		TipsSent:     big.NewInt(0),
		TipsReceived: big.NewInt(0),
		ReferralCode: referralCode(owner),
		CreatedAt:    e.now(),
	}
	if err := e.state.ProfilePut(p); err != nil {
		return nil, err
	}
	e.emit(RegisteredEvent(hexAddr(owner), username))
	return p.Clone(), nil
}

// Tip moves amount from the sender's balance to the recipient's and records
// the transfer on both profiles. The balance debit and counter updates either
// all land or none do.
func (e *Engine) Tip(sender [20]byte, recipient [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if sender == recipient {
		return errSelfTip
	}
	senderProfile, ok, err := e.state.ProfileGet(sender)
	if err != nil {
		return err
	}
	if !ok {
		return errProfileNotFound
	}
	recipientProfile, ok, err := e.state.ProfileGet(recipient)
	if err != nil {
		return err
	}
	if !ok {
		return errProfileNotFound
	}
	senderAccount, err := e.state.GetAccount(sender[:])
	if err != nil {
		return err
	}
	senderAccount = senderAccount.Ensure()
	if senderAccount.Balance.Cmp(amount) < 0 {
		return errInsufficientFunds
	}
	recipientAccount, err := e.state.GetAccount(recipient[:])
	if err != nil {
		return err
	}
	recipientAccount = recipientAccount.Ensure()
	senderAccount.Balance = new(big.Int).Sub(senderAccount.Balance, amount)
	recipientAccount.Balance = new(big.Int).Add(recipientAccount.Balance, amount)
	if err := e.state.PutAccount(sender[:], senderAccount); err != nil {
		return err
	}
	if err := e.state.PutAccount(recipient[:], recipientAccount); err != nil {
		return err
	}
	senderProfile.TipsSent = new(big.Int).Add(senderProfile.TipsSent, amount)
	recipientProfile.TipsReceived = new(big.Int).Add(recipientProfile.TipsReceived, amount)
	if err := e.state.ProfilePut(senderProfile); err != nil {
		return err
	}
	if err := e.state.ProfilePut(recipientProfile); err != nil {
		return err
	}
	e.emit(TippedEvent(hexAddr(sender), hexAddr(recipient), amount.String()))
	return nil
}

// Get returns the profile for an owner without mutating state.
func (e *Engine) Get(owner [20]byte) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	p, ok, err := e.state.ProfileGet(owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errProfileNotFound
	}
	return p.Clone(), nil
}
