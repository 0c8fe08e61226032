package platform

import (
	"encoding/hex"
	"strconv"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	// EventTypeInitialized is emitted when the platform config is created.
	EventTypeInitialized = "platform.initialized"
	// EventTypePaused is emitted when the admin halts value movement.
	EventTypePaused = "platform.paused"
	// EventTypeUnpaused is emitted when the admin resumes value movement.
	EventTypeUnpaused = "platform.unpaused"
	// EventTypeFeeCollectorUpdated is emitted on fee collector rotation.
	EventTypeFeeCollectorUpdated = "platform.feeCollector.updated"
	// EventTypeAdminUpdated is emitted on admin handover.
	EventTypeAdminUpdated = "platform.admin.updated"
	// EventTypeMinLiquidityUpdated is emitted when the liquidity floor moves.
	EventTypeMinLiquidityUpdated = "platform.minLiquidity.updated"
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

// InitializedEvent announces platform creation.
func InitializedEvent(admin, feeCollector string) *types.Event {
	return &types.Event{
		Type: EventTypeInitialized,
		Attributes: map[string]string{
			"admin":        admin,
			"feeCollector": feeCollector,
		},
	}
}

// PausedEvent announces the pause flag being set.
func PausedEvent(admin string) *types.Event {
	return &types.Event{
		Type:       EventTypePaused,
		Attributes: map[string]string{"admin": admin},
	}
}

// UnpausedEvent announces the pause flag being cleared.
func UnpausedEvent(admin string) *types.Event {
	return &types.Event{
		Type:       EventTypeUnpaused,
		Attributes: map[string]string{"admin": admin},
	}
}

// FeeCollectorUpdatedEvent announces a fee collector rotation.
func FeeCollectorUpdatedEvent(admin, collector string) *types.Event {
	return &types.Event{
		Type: EventTypeFeeCollectorUpdated,
		Attributes: map[string]string{
			"admin":        admin,
			"feeCollector": collector,
		},
	}
}

// AdminUpdatedEvent announces an admin handover.
func AdminUpdatedEvent(admin, next string) *types.Event {
	return &types.Event{
		Type: EventTypeAdminUpdated,
		Attributes: map[string]string{
			"admin":    admin,
			"newAdmin": next,
		},
	}
}

// MinLiquidityUpdatedEvent announces a liquidity floor change.
func MinLiquidityUpdatedEvent(admin string, bps uint64) *types.Event {
	return &types.Event{
		Type: EventTypeMinLiquidityUpdated,
		Attributes: map[string]string{
			"admin": admin,
			"bps":   strconv.FormatUint(bps, 10),
		},
	}
}
