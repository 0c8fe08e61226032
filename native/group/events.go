package group

import (
	"encoding/hex"
	"strconv"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

const (
	// EventTypeCreated is emitted when a group is founded.
	EventTypeCreated = "group.created"
	// EventTypeMemberJoined is emitted when a wallet joins a group.
	EventTypeMemberJoined = "group.member.joined"
	// EventTypeRoleUpdated is emitted when a member's rank changes.
	EventTypeRoleUpdated = "group.member.roleUpdated"
	// EventTypeMemberKicked is emitted when a member is removed.
	EventTypeMemberKicked = "group.member.kicked"
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

// CreatedEvent announces a new group.
func CreatedEvent(id [32]byte, creator, name string) *types.Event {
	return &types.Event{
		Type: EventTypeCreated,
		Attributes: map[string]string{
			"group":   hexID(id),
			"creator": creator,
			"name":    name,
		},
	}
}

// MemberJoinedEvent announces a new membership.
func MemberJoinedEvent(id [32]byte, member string, role Role) *types.Event {
	return &types.Event{
		Type: EventTypeMemberJoined,
		Attributes: map[string]string{
			"group":  hexID(id),
			"member": member,
			"role":   strconv.FormatUint(uint64(role), 10),
		},
	}
}

// RoleUpdatedEvent announces a rank change.
func RoleUpdatedEvent(id [32]byte, member string, oldRole, newRole Role, updatedBy string) *types.Event {
	return &types.Event{
		Type: EventTypeRoleUpdated,
		Attributes: map[string]string{
			"group":     hexID(id),
			"member":    member,
			"oldRole":   strconv.FormatUint(uint64(oldRole), 10),
			"newRole":   strconv.FormatUint(uint64(newRole), 10),
			"updatedBy": updatedBy,
		},
	}
}

// MemberKickedEvent announces a removal.
func MemberKickedEvent(id [32]byte, member, kickedBy string) *types.Event {
	return &types.Event{
		Type: EventTypeMemberKicked,
		Attributes: map[string]string{
			"group":    hexID(id),
			"member":   member,
			"kickedBy": kickedBy,
		},
	}
}
