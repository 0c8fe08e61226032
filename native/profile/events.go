package profile

import (
	"encoding/hex"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	// EventTypeRegistered is emitted when a profile is created.
	EventTypeRegistered = "profile.registered"
	// EventTypeTipped is emitted when a tip settles.
	EventTypeTipped = "profile.tipped"
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

// RegisteredEvent announces a new profile.
func RegisteredEvent(owner, username string) *types.Event {
	return &types.Event{
		Type: EventTypeRegistered,
		Attributes: map[string]string{
			"owner":    owner,
			"username": username,
		},
	}
}

// TippedEvent announces a settled tip.
func TippedEvent(sender, recipient, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeTipped,
		Attributes: map[string]string{
			"sender":    sender,
			"recipient": recipient,
			"amount":    amount,
		},
	}
}
