package group

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"creatorledger/core/events"
	"creatorledger/core/types"
	"creatorledger/native/common"
)

var (
	errNilState          = errors.New("group engine: state not configured")
	errNameRequired      = errors.New("group engine: name required")
	errNameTooLong       = errors.New("group engine: name too long")
	errDescriptionLong   = errors.New("group engine: description too long")
	errInvalidPrivacy    = errors.New("group engine: invalid privacy mode")
	errInvalidEntry      = errors.New("group engine: invalid entry requirement")
	errEntryPriceMissing = errors.New("group engine: paid entry requires a price")
	errEntryPriceExtra   = errors.New("group engine: entry price only valid for paid entry")
	errGroupExists       = errors.New("group engine: group already exists")
	errGroupNotFound     = errors.New("group engine: group not found")
	errPrivateGroup      = errors.New("group engine: private group requires an invitation")
	errAlreadyMember     = errors.New("group engine: already a member")
	errNotMember         = errors.New("group engine: not a member of this group")
	errInvalidRole       = errors.New("group engine: role not assignable")
	errSelfAction        = errors.New("group engine: cannot act on yourself")
	errInsufficientRank  = errors.New("group engine: insufficient role rank")
	errInsufficientFunds = errors.New("group engine: insufficient balance")
)

type engineState interface {
	GroupDeriveID(creator [20]byte, name string) [32]byte
	GroupGet(id [32]byte) (*Group, bool, error)
	GroupPut(g *Group) error
	GroupMemberGet(id [32]byte, wallet [20]byte) (*Member, bool, error)
	GroupMemberPut(m *Member) error
	GroupMemberDelete(id [32]byte, wallet [20]byte) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine manages community groups and role-ranked membership.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
}

// NewEngine constructs a group engine with default dependencies.
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

// SetPauses wires the platform pause view consulted on paid joins.
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

// Create registers a group and inserts the creator as its owner.
func (e *Engine) Create(creator [20]byte, name, description string, privacy Privacy, entry Entry, entryPrice *big.Int) (*Group, error) {
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
	if !privacy.Valid() {
		return nil, errInvalidPrivacy
	}
	if !entry.Valid() {
		return nil, errInvalidEntry
	}
	if entry == EntryPaid {
		if entryPrice == nil || entryPrice.Sign() <= 0 {
			return nil, errEntryPriceMissing
		}
	} else if entryPrice != nil {
		return nil, errEntryPriceExtra
	}
	id := e.state.GroupDeriveID(creator, trimmed)
	if _, ok, err := e.state.GroupGet(id); err != nil {
		return nil, err
	} else if ok {
		return nil, errGroupExists
	}
	now := e.now()
	g := &Group{
		ID:          id,
		Creator:     creator,
		Name:        trimmed,
		Description: description,
		Privacy:     privacy,
		Entry:       entry,
		Members:     1,
		CreatedAt:   now,
	}
	if entryPrice != nil {
		g.EntryPrice = new(big.Int).Set(entryPrice)
	}
	if err := e.state.GroupPut(g); err != nil {
		return nil, err
	}
	owner := &Member{Group: id, Wallet: creator, Role: RoleOwner, JoinedAt: now}
	if err := e.state.GroupMemberPut(owner); err != nil {
		return nil, err
	}
	e.emit(CreatedEvent(id, hexAddr(creator), trimmed))
	e.emit(MemberJoinedEvent(id, hexAddr(creator), RoleOwner))
	return g.Clone(), nil
}

// Join admits the caller at the base rank. Paid entry moves the entry price
// to the group creator and is pause-gated; token-gated admission trusts the
// external verifier that fronts the instruction.
func (e *Engine) Join(member [20]byte, id [32]byte) (*Member, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	g, ok, err := e.state.GroupGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || g == nil {
		return nil, errGroupNotFound
	}
	if g.Privacy == PrivacyPrivate {
		return nil, errPrivateGroup
	}
	if _, ok, err := e.state.GroupMemberGet(id, member); err != nil {
		return nil, err
	} else if ok {
		return nil, errAlreadyMember
	}
	if g.Entry == EntryPaid {
		if err := common.Guard(e.pauses, ModuleName); err != nil {
			return nil, err
		}
		price := g.EntryPrice
		memberAccount, err := e.state.GetAccount(member[:])
		if err != nil {
			return nil, err
		}
		memberAccount = memberAccount.Ensure()
		if memberAccount.Balance.Cmp(price) < 0 {
			return nil, errInsufficientFunds
		}
		memberAccount.Balance = new(big.Int).Sub(memberAccount.Balance, price)
		if err := e.state.PutAccount(member[:], memberAccount); err != nil {
			return nil, err
		}
		creatorAccount, err := e.state.GetAccount(g.Creator[:])
		if err != nil {
			return nil, err
		}
		creatorAccount = creatorAccount.Ensure()
		creatorAccount.Balance = new(big.Int).Add(creatorAccount.Balance, price)
		if err := e.state.PutAccount(g.Creator[:], creatorAccount); err != nil {
			return nil, err
		}
	}
	m := &Member{Group: id, Wallet: member, Role: RoleMember, JoinedAt: e.now()}
	if err := e.state.GroupMemberPut(m); err != nil {
		return nil, err
	}
	g.Members++
	if err := e.state.GroupPut(g); err != nil {
		return nil, err
	}
	e.emit(MemberJoinedEvent(id, hexAddr(member), RoleMember))
	return m.Clone(), nil
}

// UpdateRole changes the target's rank. The actor must outrank both the
// target's current role and the requested one; peers and superiors are
// untouchable and nobody escalates themselves.
func (e *Engine) UpdateRole(actor [20]byte, id [32]byte, target [20]byte, newRole Role) (*Member, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if !newRole.Assignable() {
		return nil, errInvalidRole
	}
	if actor == target {
		return nil, errSelfAction
	}
	actingMember, ok, err := e.state.GroupMemberGet(id, actor)
	if err != nil {
		return nil, err
	}
	if !ok || actingMember == nil {
		return nil, errNotMember
	}
	targetMember, ok, err := e.state.GroupMemberGet(id, target)
	if err != nil {
		return nil, err
	}
	if !ok || targetMember == nil {
		return nil, errNotMember
	}
	if actingMember.Role <= targetMember.Role || actingMember.Role <= newRole {
		return nil, errInsufficientRank
	}
	oldRole := targetMember.Role
	targetMember.Role = newRole
	if err := e.state.GroupMemberPut(targetMember); err != nil {
		return nil, err
	}
	e.emit(RoleUpdatedEvent(id, hexAddr(target), oldRole, newRole, hexAddr(actor)))
	return targetMember.Clone(), nil
}

// Kick removes a lower-ranked member from the group.
func (e *Engine) Kick(actor [20]byte, id [32]byte, target [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if actor == target {
		return errSelfAction
	}
	g, ok, err := e.state.GroupGet(id)
	if err != nil {
		return err
	}
	if !ok || g == nil {
		return errGroupNotFound
	}
	actingMember, ok, err := e.state.GroupMemberGet(id, actor)
	if err != nil {
		return err
	}
	if !ok || actingMember == nil {
		return errNotMember
	}
	targetMember, ok, err := e.state.GroupMemberGet(id, target)
	if err != nil {
		return err
	}
	if !ok || targetMember == nil {
		return errNotMember
	}
	if actingMember.Role < RoleAdmin || actingMember.Role <= targetMember.Role {
		return errInsufficientRank
	}
	if err := e.state.GroupMemberDelete(id, target); err != nil {
		return err
	}
	if g.Members > 0 {
		g.Members--
	}
	if err := e.state.GroupPut(g); err != nil {
		return err
	}
	e.emit(MemberKickedEvent(id, hexAddr(target), hexAddr(actor)))
	return nil
}

// Get returns the group without mutating state.
func (e *Engine) Get(id [32]byte) (*Group, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	g, ok, err := e.state.GroupGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || g == nil {
		return nil, errGroupNotFound
	}
	return g.Clone(), nil
}
