package market

import (
	"encoding/hex"
	"strconv"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	// EventTypePoolInitialized is emitted when a creator pool is created.
	EventTypePoolInitialized = "market.pool.initialized"
	// EventTypeSharesPurchased is emitted after a buy settles.
	EventTypeSharesPurchased = "market.shares.purchased"
	// EventTypeSharesSold is emitted after a sell settles.
	EventTypeSharesSold = "market.shares.sold"
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

// PoolInitializedEvent announces a new creator pool.
func PoolInitializedEvent(creator string) *types.Event {
	return &types.Event{
		Type:       EventTypePoolInitialized,
		Attributes: map[string]string{"creator": creator},
	}
}

// SharesPurchasedEvent announces a settled buy.
func SharesPurchasedEvent(buyer, creator string, quantity uint64, cost, fee string) *types.Event {
	return &types.Event{
		Type: EventTypeSharesPurchased,
		Attributes: map[string]string{
			"buyer":    buyer,
			"creator":  creator,
			"quantity": strconv.FormatUint(quantity, 10),
			"cost":     cost,
			"fee":      fee,
		},
	}
}

// SharesSoldEvent announces a settled sell.
func SharesSoldEvent(seller, creator string, quantity uint64, refund, fee string) *types.Event {
	return &types.Event{
		Type: EventTypeSharesSold,
		Attributes: map[string]string{
			"seller":   seller,
			"creator":  creator,
			"quantity": strconv.FormatUint(quantity, 10),
			"refund":   refund,
			"fee":      fee,
		},
	}
}
