package state

import (
	"math/big"

	"creatorledger/native/governance"
)

type storedStakePosition struct {
	Staker      [20]byte
	Amount      *big.Int
	LockDays    uint64
	StakedAt    uint64
	UnlocksAt   uint64
	VotingPower *big.Int
}

type storedProposal struct {
	ID             [32]byte
	Proposer       [20]byte
	Title          string
	Description    string
	Category       string
	ExecutionDelay uint64
	VotesFor       *big.Int
	VotesAgainst   *big.Int
	VotesAbstain   *big.Int
	QuorumWeight   *big.Int
	CreatedAt      uint64
	VotingEndsAt   uint64
	Finalized      bool
	FinalizedAt    uint64
	Passed         bool
	Executed       bool
}

type storedVote struct {
	Proposal [32]byte
	Voter    [20]byte
	Choice   uint8
	Weight   *big.Int
	CastAt   uint64
}

type storedTotalStaked struct {
	Total *big.Int
}

// GovernanceStakeGet loads a staker's position.
func (m *Manager) GovernanceStakeGet(staker [20]byte) (*governance.StakePosition, bool, error) {
	stored := new(storedStakePosition)
	ok, err := m.getRecord(stakeKey(staker), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &governance.StakePosition{
		Staker:      stored.Staker,
		Amount:      bigOrZero(stored.Amount),
		LockDays:    stored.LockDays,
		StakedAt:    int64(stored.StakedAt),
		UnlocksAt:   int64(stored.UnlocksAt),
		VotingPower: bigOrZero(stored.VotingPower),
	}, true, nil
}

// GovernanceStakePut persists a staker's position.
func (m *Manager) GovernanceStakePut(position *governance.StakePosition) error {
	return m.putRecord(stakeKey(position.Staker), &storedStakePosition{
		Staker:      position.Staker,
		Amount:      bigOrZero(position.Amount),
		LockDays:    position.LockDays,
		StakedAt:    uint64(position.StakedAt),
		UnlocksAt:   uint64(position.UnlocksAt),
		VotingPower: bigOrZero(position.VotingPower),
	})
}

// GovernanceStakeDelete removes a fully exited position.
func (m *Manager) GovernanceStakeDelete(staker [20]byte) error {
	m.deleteRecord(stakeKey(staker))
	return nil
}

// GovernanceTotalStaked returns the running sum of all staked principal.
func (m *Manager) GovernanceTotalStaked() (*big.Int, error) {
	stored := new(storedTotalStaked)
	ok, err := m.getRecord(totalStakedKey(), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return bigOrZero(stored.Total), nil
}

// GovernanceSetTotalStaked persists the running staked sum.
func (m *Manager) GovernanceSetTotalStaked(total *big.Int) error {
	return m.putRecord(totalStakedKey(), &storedTotalStaked{Total: bigOrZero(total)})
}

// ProposalDeriveID computes the deterministic id for a (proposer, title)
// pair.
func (m *Manager) ProposalDeriveID(proposer [20]byte, title string) [32]byte {
	return ProposalID(proposer, title)
}

// GovernanceProposalGet loads a proposal by id.
func (m *Manager) GovernanceProposalGet(id [32]byte) (*governance.Proposal, bool, error) {
	stored := new(storedProposal)
	ok, err := m.getRecord(proposalKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &governance.Proposal{
		ID:             stored.ID,
		Proposer:       stored.Proposer,
		Title:          stored.Title,
		Description:    stored.Description,
		Category:       governance.Category(stored.Category),
		ExecutionDelay: int64(stored.ExecutionDelay),
		VotesFor:       bigOrZero(stored.VotesFor),
		VotesAgainst:   bigOrZero(stored.VotesAgainst),
		VotesAbstain:   bigOrZero(stored.VotesAbstain),
		QuorumWeight:   bigOrZero(stored.QuorumWeight),
		CreatedAt:      int64(stored.CreatedAt),
		VotingEndsAt:   int64(stored.VotingEndsAt),
		Finalized:      stored.Finalized,
		FinalizedAt:    int64(stored.FinalizedAt),
		Passed:         stored.Passed,
		Executed:       stored.Executed,
	}, true, nil
}

// GovernanceProposalPut persists a proposal.
func (m *Manager) GovernanceProposalPut(proposal *governance.Proposal) error {
	return m.putRecord(proposalKey(proposal.ID), &storedProposal{
		ID:             proposal.ID,
		Proposer:       proposal.Proposer,
		Title:          proposal.Title,
		Description:    proposal.Description,
		Category:       string(proposal.Category),
		ExecutionDelay: uint64(proposal.ExecutionDelay),
		VotesFor:       bigOrZero(proposal.VotesFor),
		VotesAgainst:   bigOrZero(proposal.VotesAgainst),
		VotesAbstain:   bigOrZero(proposal.VotesAbstain),
		QuorumWeight:   bigOrZero(proposal.QuorumWeight),
		CreatedAt:      uint64(proposal.CreatedAt),
		VotingEndsAt:   uint64(proposal.VotingEndsAt),
		Finalized:      proposal.Finalized,
		FinalizedAt:    uint64(proposal.FinalizedAt),
		Passed:         proposal.Passed,
		Executed:       proposal.Executed,
	})
}

// GovernanceVoteGet loads one voter's ballot on a proposal.
func (m *Manager) GovernanceVoteGet(id [32]byte, voter [20]byte) (*governance.Vote, bool, error) {
	stored := new(storedVote)
	ok, err := m.getRecord(voteKey(id, voter), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &governance.Vote{
		Proposal: stored.Proposal,
		Voter:    stored.Voter,
		Choice:   governance.VoteChoice(stored.Choice),
		Weight:   bigOrZero(stored.Weight),
		CastAt:   int64(stored.CastAt),
	}, true, nil
}

// GovernanceVotePut persists a ballot.
func (m *Manager) GovernanceVotePut(vote *governance.Vote) error {
	return m.putRecord(voteKey(vote.Proposal, vote.Voter), &storedVote{
		Proposal: vote.Proposal,
		Voter:    vote.Voter,
		Choice:   uint8(vote.Choice),
		Weight:   bigOrZero(vote.Weight),
		CastAt:   uint64(vote.CastAt),
	})
}
