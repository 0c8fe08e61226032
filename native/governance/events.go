package governance

import (
	"encoding/hex"
	"strconv"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	EventTypeStaked            = "governance.staked"
	EventTypeUnstaked          = "governance.unstaked"
	EventTypeProposalCreated   = "governance.proposal.created"
	EventTypeVoteCast          = "governance.vote.cast"
	EventTypeProposalFinalized = "governance.proposal.finalized"
	EventTypeProposalExecuted  = "governance.proposal.executed"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func hexID(id [32]byte) string {
	return "0x" + hex.EncodeToString(id[:])
}

// StakedEvent announces a stake creation or top-up.
func StakedEvent(staker, amount string, lockDays uint64, votingPower string) *types.Event {
	return &types.Event{
		Type: EventTypeStaked,
		Attributes: map[string]string{
			"staker":      staker,
			"amount":      amount,
			"lockDays":    strconv.FormatUint(lockDays, 10),
			"votingPower": votingPower,
		},
	}
}

// UnstakedEvent announces a full exit with its reward.
func UnstakedEvent(staker, principal, reward string) *types.Event {
	return &types.Event{
		Type: EventTypeUnstaked,
		Attributes: map[string]string{
			"staker":    staker,
			"principal": principal,
			"reward":    reward,
		},
	}
}

// ProposalCreatedEvent announces a new ballot question.
func ProposalCreatedEvent(id [32]byte, proposer, title, category string) *types.Event {
	return &types.Event{
		Type: EventTypeProposalCreated,
		Attributes: map[string]string{
			"proposal": hexID(id),
			"proposer": proposer,
			"title":    title,
			"category": category,
		},
	}
}

// VoteCastEvent announces an accepted ballot.
func VoteCastEvent(id [32]byte, voter string, choice VoteChoice, weight string) *types.Event {
	return &types.Event{
		Type: EventTypeVoteCast,
		Attributes: map[string]string{
			"proposal": hexID(id),
			"voter":    voter,
			"choice":   choice.String(),
			"weight":   weight,
		},
	}
}

// ProposalFinalizedEvent announces the tallied outcome.
func ProposalFinalizedEvent(id [32]byte, passed bool) *types.Event {
	return &types.Event{
		Type: EventTypeProposalFinalized,
		Attributes: map[string]string{
			"proposal": hexID(id),
			"passed":   strconv.FormatBool(passed),
		},
	}
}

// ProposalExecutedEvent announces execution of a passed proposal.
func ProposalExecutedEvent(id [32]byte, executor string) *types.Event {
	return &types.Event{
		Type: EventTypeProposalExecuted,
		Attributes: map[string]string{
			"proposal": hexID(id),
			"executor": executor,
		},
	}
}
