package marketplace

import (
	"encoding/hex"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	EventTypeMinted           = "marketplace.minted"
	EventTypeListed           = "marketplace.listed"
	EventTypeOfferMade        = "marketplace.offer.made"
	EventTypeSold             = "marketplace.sold"
	EventTypeListingCancelled = "marketplace.listing.cancelled"
	EventTypeOfferCancelled   = "marketplace.offer.cancelled"
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

// MintedEvent announces a freshly minted username.
func MintedEvent(username, owner string) *types.Event {
	return &types.Event{
		Type: EventTypeMinted,
		Attributes: map[string]string{
			"username": username,
			"owner":    owner,
		},
	}
}

// ListedEvent announces a new or reactivated ask.
func ListedEvent(username, seller, price string) *types.Event {
	return &types.Event{
		Type: EventTypeListed,
		Attributes: map[string]string{
			"username": username,
			"seller":   seller,
			"price":    price,
		},
	}
}

// OfferMadeEvent announces an escrowed bid.
func OfferMadeEvent(username, buyer, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeOfferMade,
		Attributes: map[string]string{
			"username": username,
			"buyer":    buyer,
			"amount":   amount,
		},
	}
}

// SoldEvent announces a settlement, whether by accepted offer or direct buy.
func SoldEvent(username, seller, buyer, price, fee string) *types.Event {
	return &types.Event{
		Type: EventTypeSold,
		Attributes: map[string]string{
			"username": username,
			"seller":   seller,
			"buyer":    buyer,
			"price":    price,
			"fee":      fee,
		},
	}
}

// ListingCancelledEvent announces a withdrawn ask.
func ListingCancelledEvent(username, seller string) *types.Event {
	return &types.Event{
		Type: EventTypeListingCancelled,
		Attributes: map[string]string{
			"username": username,
			"seller":   seller,
		},
	}
}

// OfferCancelledEvent announces a refunded bid.
func OfferCancelledEvent(username, buyer, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeOfferCancelled,
		Attributes: map[string]string{
			"username": username,
			"buyer":    buyer,
			"amount":   amount,
		},
	}
}
