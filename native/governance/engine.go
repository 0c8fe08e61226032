package governance

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
	errNilState          = errors.New("governance engine: state not configured")
	errVaultNotSet       = errors.New("governance engine: stake vault not configured")
	errInvalidAmount     = errors.New("governance engine: amount must be positive")
	errInvalidLock       = errors.New("governance engine: lock period not in allowed set")
	errInsufficientFunds = errors.New("governance engine: insufficient balance")
	errNoPosition        = errors.New("governance engine: no stake position")
	errStillLocked       = errors.New("governance engine: stake still locked")
	errInsufficientPower = errors.New("governance engine: voting power below proposal threshold")
	errTitleRequired     = errors.New("governance engine: title must not be empty")
	errTitleTooLong      = errors.New("governance engine: title too long")
	errDescriptionLong   = errors.New("governance engine: description too long")
	errInvalidCategory   = errors.New("governance engine: unknown category")
	errDelayTooShort     = errors.New("governance engine: execution delay below minimum")
	errProposalExists    = errors.New("governance engine: proposal already exists")
	errProposalNotFound  = errors.New("governance engine: proposal not found")
	errVotingClosed      = errors.New("governance engine: voting window closed")
	errVotingOpen        = errors.New("governance engine: voting window still open")
	errInvalidChoice     = errors.New("governance engine: invalid vote choice")
	errAlreadyVoted      = errors.New("governance engine: vote already cast")
	errAlreadyFinalized  = errors.New("governance engine: proposal already finalized")
	errNotFinalized      = errors.New("governance engine: proposal not finalized")
	errNotPassed         = errors.New("governance engine: proposal did not pass")
	errAlreadyExecuted   = errors.New("governance engine: proposal already executed")
	errDelayNotElapsed   = errors.New("governance engine: execution delay not elapsed")
	errVaultUnderfunded  = errors.New("governance engine: stake vault underfunded")
)

const secondsPerYear int64 = 365 * 86_400

type engineState interface {
	GovernanceStakeGet(staker [20]byte) (*StakePosition, bool, error)
	GovernanceStakePut(position *StakePosition) error
	GovernanceStakeDelete(staker [20]byte) error
	GovernanceTotalStaked() (*big.Int, error)
	GovernanceSetTotalStaked(total *big.Int) error
	GovernanceProposalGet(id [32]byte) (*Proposal, bool, error)
	GovernanceProposalPut(proposal *Proposal) error
	GovernanceVoteGet(id [32]byte, voter [20]byte) (*Vote, bool, error)
	GovernanceVotePut(vote *Vote) error
	ProposalDeriveID(proposer [20]byte, title string) [32]byte
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine runs staking and stake-weighted governance. Principal sits in the
// stake vault; rewards pay from the treasury only to the extent it is funded.
type Engine struct {
	state    engineState
	emitter  events.Emitter
	pauses   common.PauseView
	nowFn    func() int64
	vault    [20]byte
	treasury [20]byte
}

// NewEngine constructs a governance engine with default dependencies.
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

// SetPauses wires the platform pause view consulted by Stake and Unstake.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetVault configures the account holding staked principal.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetTreasury configures the account staking rewards pay from.
func (e *Engine) SetTreasury(addr [20]byte) { e.treasury = addr }

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

func votingPower(amount *big.Int, multiplierBps uint64) *big.Int {
	power := new(big.Int).Mul(amount, new(big.Int).SetUint64(multiplierBps))
	return power.Quo(power, big.NewInt(common.BpsDenominator))
}

// Stake locks amount for lockDays. A top-up folds into the existing position
// and can extend the lock but never shorten it; the voting-power multiplier
// uses the longer of the old and new locks.
func (e *Engine) Stake(staker [20]byte, amount *big.Int, lockDays uint64) (*StakePosition, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if _, ok := tierFor(lockDays); !ok {
		return nil, errInvalidLock
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	account, err := e.state.GetAccount(staker[:])
	if err != nil {
		return nil, err
	}
	account = account.Ensure()
	if account.Balance.Cmp(amount) < 0 {
		return nil, errInsufficientFunds
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)
	if err := e.state.PutAccount(staker[:], account); err != nil {
		return nil, err
	}
	vaultAccount, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return nil, err
	}
	vaultAccount = vaultAccount.Ensure()
	vaultAccount.Balance = new(big.Int).Add(vaultAccount.Balance, amount)
	if err := e.state.PutAccount(e.vault[:], vaultAccount); err != nil {
		return nil, err
	}

	now := e.now()
	position, ok, err := e.state.GovernanceStakeGet(staker)
	if err != nil {
		return nil, err
	}
	if !ok || position == nil {
		position = &StakePosition{
			Staker:   staker,
			Amount:   big.NewInt(0),
			StakedAt: now,
		}
	}
	position.Amount = new(big.Int).Add(position.Amount, amount)
	if lockDays > position.LockDays {
		position.LockDays = lockDays
	}
	if unlocks := now + int64(lockDays)*SecondsPerDay; unlocks > position.UnlocksAt {
		position.UnlocksAt = unlocks
	}
	tier, _ := tierFor(position.LockDays)
	position.VotingPower = votingPower(position.Amount, tier.MultiplierBps)
	if err := e.state.GovernanceStakePut(position); err != nil {
		return nil, err
	}

	total, err := e.state.GovernanceTotalStaked()
	if err != nil {
		return nil, err
	}
	total = new(big.Int).Add(total, amount)
	if err := e.state.GovernanceSetTotalStaked(total); err != nil {
		return nil, err
	}
	e.emit(StakedEvent(hexAddr(staker), amount.String(), position.LockDays, position.VotingPower.String()))
	return position.Clone(), nil
}

// reward computes the prorated staking reward for a fully unlocking
// position, capped by the treasury balance.
func (e *Engine) reward(position *StakePosition, now int64, treasuryBalance *big.Int) *big.Int {
	tier, ok := tierFor(position.LockDays)
	if !ok || tier.RewardAPYBps == 0 {
		return big.NewInt(0)
	}
	elapsed := now - position.StakedAt
	if elapsed <= 0 || treasuryBalance == nil || treasuryBalance.Sign() <= 0 {
		return big.NewInt(0)
	}
	reward := new(big.Int).Mul(position.Amount, new(big.Int).SetUint64(tier.RewardAPYBps))
	reward.Mul(reward, big.NewInt(elapsed))
	reward.Quo(reward, big.NewInt(common.BpsDenominator*secondsPerYear))
	if reward.Cmp(treasuryBalance) > 0 {
		reward.Set(treasuryBalance)
	}
	return reward
}

// Unstake exits the full position after the lock expires. Principal returns
// from the stake vault; the reward pays from the treasury when funded.
func (e *Engine) Unstake(staker [20]byte) (*big.Int, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, nil, err
	}
	if isZeroAddress(e.vault) {
		return nil, nil, errVaultNotSet
	}
	position, ok, err := e.state.GovernanceStakeGet(staker)
	if err != nil {
		return nil, nil, err
	}
	if !ok || position == nil || position.Amount == nil || position.Amount.Sign() == 0 {
		return nil, nil, errNoPosition
	}
	now := e.now()
	if now < position.UnlocksAt {
		return nil, nil, errStillLocked
	}

	vaultAccount, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return nil, nil, err
	}
	vaultAccount = vaultAccount.Ensure()
	if vaultAccount.Balance.Cmp(position.Amount) < 0 {
		return nil, nil, errVaultUnderfunded
	}
	vaultAccount.Balance = new(big.Int).Sub(vaultAccount.Balance, position.Amount)
	if err := e.state.PutAccount(e.vault[:], vaultAccount); err != nil {
		return nil, nil, err
	}

	reward := big.NewInt(0)
	if !isZeroAddress(e.treasury) {
		treasuryAccount, err := e.state.GetAccount(e.treasury[:])
		if err != nil {
			return nil, nil, err
		}
		treasuryAccount = treasuryAccount.Ensure()
		reward = e.reward(position, now, treasuryAccount.Balance)
		if reward.Sign() > 0 {
			treasuryAccount.Balance = new(big.Int).Sub(treasuryAccount.Balance, reward)
			if err := e.state.PutAccount(e.treasury[:], treasuryAccount); err != nil {
				return nil, nil, err
			}
		}
	}

	account, err := e.state.GetAccount(staker[:])
	if err != nil {
		return nil, nil, err
	}
	account = account.Ensure()
	account.Balance = new(big.Int).Add(account.Balance, new(big.Int).Add(position.Amount, reward))
	if err := e.state.PutAccount(staker[:], account); err != nil {
		return nil, nil, err
	}

	total, err := e.state.GovernanceTotalStaked()
	if err != nil {
		return nil, nil, err
	}
	total = new(big.Int).Sub(total, position.Amount)
	if total.Sign() < 0 {
		total.SetInt64(0)
	}
	if err := e.state.GovernanceSetTotalStaked(total); err != nil {
		return nil, nil, err
	}
	if err := e.state.GovernanceStakeDelete(staker); err != nil {
		return nil, nil, err
	}
	principal := new(big.Int).Set(position.Amount)
	e.emit(UnstakedEvent(hexAddr(staker), principal.String(), reward.String()))
	return principal, reward, nil
}

// CreateProposal opens a new stake-weighted ballot. The quorum threshold is
// frozen from the total staked amount at creation time.
func (e *Engine) CreateProposal(proposer [20]byte, title, description string, category Category, executionDelay int64) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, errTitleRequired
	}
	if len(trimmed) > MaxTitleLength {
		return nil, errTitleTooLong
	}
	if len(description) > MaxDescriptionLength {
		return nil, errDescriptionLong
	}
	if !category.Valid() {
		return nil, errInvalidCategory
	}
	if executionDelay < MinExecutionDelaySeconds {
		return nil, errDelayTooShort
	}
	position, ok, err := e.state.GovernanceStakeGet(proposer)
	if err != nil {
		return nil, err
	}
	if !ok || position == nil || position.VotingPower == nil || position.VotingPower.Cmp(MinProposalPower) < 0 {
		return nil, errInsufficientPower
	}
	id := e.state.ProposalDeriveID(proposer, trimmed)
	if _, ok, err := e.state.GovernanceProposalGet(id); err != nil {
		return nil, err
	} else if ok {
		return nil, errProposalExists
	}
	total, err := e.state.GovernanceTotalStaked()
	if err != nil {
		return nil, err
	}
	quorum := new(big.Int).Mul(total, new(big.Int).SetUint64(QuorumBps))
	quorum.Quo(quorum, big.NewInt(common.BpsDenominator))

	now := e.now()
	proposal := &Proposal{
		ID:             id,
		Proposer:       proposer,
		Title:          trimmed,
		Description:    description,
		Category:       category,
		ExecutionDelay: executionDelay,
		VotesFor:       big.NewInt(0),
		VotesAgainst:   big.NewInt(0),
		VotesAbstain:   big.NewInt(0),
		QuorumWeight:   quorum,
		CreatedAt:      now,
		VotingEndsAt:   now + VotingPeriodSeconds,
	}
	if err := e.state.GovernanceProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(ProposalCreatedEvent(id, hexAddr(proposer), trimmed, string(category)))
	return proposal.Clone(), nil
}

// CastVote records the voter's ballot. The weight is the staked amount at
// cast time; later stake changes never revisit it. One vote per proposal.
func (e *Engine) CastVote(voter [20]byte, id [32]byte, choice VoteChoice) (*Vote, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if !choice.Valid() {
		return nil, errInvalidChoice
	}
	proposal, ok, err := e.state.GovernanceProposalGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || proposal == nil {
		return nil, errProposalNotFound
	}
	now := e.now()
	if now >= proposal.VotingEndsAt || proposal.Finalized {
		return nil, errVotingClosed
	}
	position, ok, err := e.state.GovernanceStakeGet(voter)
	if err != nil {
		return nil, err
	}
	if !ok || position == nil || position.Amount == nil || position.Amount.Sign() == 0 {
		return nil, errNoPosition
	}
	if _, ok, err := e.state.GovernanceVoteGet(id, voter); err != nil {
		return nil, err
	} else if ok {
		return nil, errAlreadyVoted
	}
	weight := new(big.Int).Set(position.Amount)
	vote := &Vote{
		Proposal: id,
		Voter:    voter,
		Choice:   choice,
		Weight:   weight,
		CastAt:   now,
	}
	switch choice {
	case VoteFor:
		proposal.VotesFor = new(big.Int).Add(proposal.VotesFor, weight)
	case VoteAgainst:
		proposal.VotesAgainst = new(big.Int).Add(proposal.VotesAgainst, weight)
	case VoteAbstain:
		proposal.VotesAbstain = new(big.Int).Add(proposal.VotesAbstain, weight)
	}
	if err := e.state.GovernanceVotePut(vote); err != nil {
		return nil, err
	}
	if err := e.state.GovernanceProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(VoteCastEvent(id, hexAddr(voter), choice, weight.String()))
	return vote.Clone(), nil
}

// Finalize closes a proposal after its voting window. The outcome passes
// when the tallied weight meets quorum and for strictly exceeds against.
func (e *Engine) Finalize(id [32]byte) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	proposal, ok, err := e.state.GovernanceProposalGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || proposal == nil {
		return nil, errProposalNotFound
	}
	now := e.now()
	if now < proposal.VotingEndsAt {
		return nil, errVotingOpen
	}
	if proposal.Finalized {
		return nil, errAlreadyFinalized
	}
	tallied := new(big.Int).Add(proposal.VotesFor, proposal.VotesAgainst)
	tallied.Add(tallied, proposal.VotesAbstain)
	proposal.Finalized = true
	proposal.FinalizedAt = now
	proposal.Passed = tallied.Cmp(proposal.QuorumWeight) >= 0 &&
		proposal.VotesFor.Cmp(proposal.VotesAgainst) > 0
	if err := e.state.GovernanceProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(ProposalFinalizedEvent(id, proposal.Passed))
	return proposal.Clone(), nil
}

// Execute marks a passed proposal executed once its delay has elapsed. The
// effect payload lives off-ledger; execution stamps the flag only.
func (e *Engine) Execute(executor [20]byte, id [32]byte) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	proposal, ok, err := e.state.GovernanceProposalGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || proposal == nil {
		return nil, errProposalNotFound
	}
	if !proposal.Finalized {
		return nil, errNotFinalized
	}
	if !proposal.Passed {
		return nil, errNotPassed
	}
	if proposal.Executed {
		return nil, errAlreadyExecuted
	}
	if e.now() < proposal.FinalizedAt+proposal.ExecutionDelay {
		return nil, errDelayNotElapsed
	}
	proposal.Executed = true
	if err := e.state.GovernanceProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(ProposalExecutedEvent(id, hexAddr(executor)))
	return proposal.Clone(), nil
}

// Position returns the staker's current position without mutating state.
func (e *Engine) Position(staker [20]byte) (*StakePosition, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	position, ok, err := e.state.GovernanceStakeGet(staker)
	if err != nil {
		return nil, err
	}
	if !ok || position == nil {
		return nil, errNoPosition
	}
	return position.Clone(), nil
}

// Proposal returns a proposal by id without mutating state.
func (e *Engine) Proposal(id [32]byte) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	proposal, ok, err := e.state.GovernanceProposalGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || proposal == nil {
		return nil, errProposalNotFound
	}
	return proposal.Clone(), nil
}
