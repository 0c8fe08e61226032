package governance

import "math/big"

// ModuleName identifies governance instructions for pause checks and logs.
const ModuleName = "governance"

const (
	// VotingPeriodSeconds is how long a proposal accepts votes.
	VotingPeriodSeconds int64 = 7 * 86_400
	// MinExecutionDelaySeconds is the smallest delay between finalization
	// and execution a proposer may request.
	MinExecutionDelaySeconds int64 = 86_400
	// QuorumBps is the share of total staked weight a proposal must tally.
	QuorumBps uint64 = 1_000
	// MaxTitleLength bounds proposal titles.
	MaxTitleLength = 100
	// MaxDescriptionLength bounds proposal descriptions.
	MaxDescriptionLength = 500
	// SecondsPerDay converts lock periods into unlock timestamps.
	SecondsPerDay int64 = 86_400
)

// MinProposalPower is the voting power required to open a proposal.
var MinProposalPower = big.NewInt(1_000)

// lockTier couples a lock period with its voting-power multiplier and the
// staking reward rate, both in basis points.
type lockTier struct {
	Days          uint64
	MultiplierBps uint64
	RewardAPYBps  uint64
}

var lockTiers = []lockTier{
	{Days: 0, MultiplierBps: 10_000, RewardAPYBps: 500},
	{Days: 30, MultiplierBps: 12_000, RewardAPYBps: 1_000},
	{Days: 90, MultiplierBps: 15_000, RewardAPYBps: 1_500},
	{Days: 180, MultiplierBps: 20_000, RewardAPYBps: 2_000},
	{Days: 365, MultiplierBps: 30_000, RewardAPYBps: 3_000},
}

func tierFor(days uint64) (lockTier, bool) {
	for _, t := range lockTiers {
		if t.Days == days {
			return t, true
		}
	}
	return lockTier{}, false
}

// Category classifies what a proposal intends to change.
type Category string

const (
	CategoryProtocol  Category = "protocol"
	CategoryTreasury  Category = "treasury"
	CategoryFeature   Category = "feature"
	CategoryParameter Category = "parameter"
)

// Valid reports whether the category is one of the recognized kinds.
func (c Category) Valid() bool {
	switch c {
	case CategoryProtocol, CategoryTreasury, CategoryFeature, CategoryParameter:
		return true
	}
	return false
}

// VoteChoice is the ballot cast on a proposal.
type VoteChoice uint8

const (
	VoteFor VoteChoice = iota + 1
	VoteAgainst
	VoteAbstain
)

// Valid reports whether the choice is a recognized ballot.
func (c VoteChoice) Valid() bool {
	return c >= VoteFor && c <= VoteAbstain
}

func (c VoteChoice) String() string {
	switch c {
	case VoteFor:
		return "for"
	case VoteAgainst:
		return "against"
	case VoteAbstain:
		return "abstain"
	}
	return "unknown"
}

// StakePosition is the single lock a staker holds. Top-ups fold into the
// same position and can only lengthen the lock.
type StakePosition struct {
	Staker      [20]byte
	Amount      *big.Int
	LockDays    uint64
	StakedAt    int64
	UnlocksAt   int64
	VotingPower *big.Int
}

// Clone returns a deep copy of the position.
func (p *StakePosition) Clone() *StakePosition {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Amount != nil {
		clone.Amount = new(big.Int).Set(p.Amount)
	}
	if p.VotingPower != nil {
		clone.VotingPower = new(big.Int).Set(p.VotingPower)
	}
	return &clone
}

// Proposal is a stake-weighted ballot question. QuorumWeight is fixed at
// creation from the total staked amount at that moment.
type Proposal struct {
	ID             [32]byte
	Proposer       [20]byte
	Title          string
	Description    string
	Category       Category
	ExecutionDelay int64
	VotesFor       *big.Int
	VotesAgainst   *big.Int
	VotesAbstain   *big.Int
	QuorumWeight   *big.Int
	CreatedAt      int64
	VotingEndsAt   int64
	Finalized      bool
	FinalizedAt    int64
	Passed         bool
	Executed       bool
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	if p.VotesFor != nil {
		clone.VotesFor = new(big.Int).Set(p.VotesFor)
	}
	if p.VotesAgainst != nil {
		clone.VotesAgainst = new(big.Int).Set(p.VotesAgainst)
	}
	if p.VotesAbstain != nil {
		clone.VotesAbstain = new(big.Int).Set(p.VotesAbstain)
	}
	if p.QuorumWeight != nil {
		clone.QuorumWeight = new(big.Int).Set(p.QuorumWeight)
	}
	return &clone
}

// Vote is an immutable ballot record. Weight is the voter's staked amount
// at the time the vote was cast and is never re-evaluated.
type Vote struct {
	Proposal [32]byte
	Voter    [20]byte
	Choice   VoteChoice
	Weight   *big.Int
	CastAt   int64
}

// Clone returns a deep copy of the vote.
func (v *Vote) Clone() *Vote {
	if v == nil {
		return nil
	}
	clone := *v
	if v.Weight != nil {
		clone.Weight = new(big.Int).Set(v.Weight)
	}
	return &clone
}
