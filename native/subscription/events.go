package subscription

import (
	"encoding/hex"
	"strconv"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	// EventTypeTierCreated is emitted when a creator publishes a tier.
	EventTypeTierCreated = "subscription.tier.created"
	// EventTypeSubscribed is emitted when a subscription opens.
	EventTypeSubscribed = "subscription.subscribed"
	// EventTypeCancelled is emitted when a subscriber cancels.
	EventTypeCancelled = "subscription.cancelled"
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

// TierCreatedEvent announces a new tier.
func TierCreatedEvent(creator string, id uint64, name, price string) *types.Event {
	return &types.Event{
		Type: EventTypeTierCreated,
		Attributes: map[string]string{
			"creator": creator,
			"tierId":  strconv.FormatUint(id, 10),
			"name":    name,
			"price":   price,
		},
	}
}

// SubscribedEvent announces an opened subscription.
func SubscribedEvent(subscriber, creator string, tierID uint64, price string) *types.Event {
	return &types.Event{
		Type: EventTypeSubscribed,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"tierId":     strconv.FormatUint(tierID, 10),
			"price":      price,
		},
	}
}

// CancelledEvent announces a cancellation.
func CancelledEvent(subscriber, creator string, tierID uint64) *types.Event {
	return &types.Event{
		Type: EventTypeCancelled,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"tierId":     strconv.FormatUint(tierID, 10),
		},
	}
}
