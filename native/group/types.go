package group

import "math/big"

// ModuleName tags group records and pause checks.
const ModuleName = "group"

const (
	// MaxNameLength bounds group names.
	MaxNameLength = 50
	// MaxDescriptionLength bounds group descriptions.
	MaxDescriptionLength = 500
)

// Privacy selects who can discover and join a group.
type Privacy uint8

const (
	// PrivacyPublic groups admit anyone satisfying the entry requirement.
	PrivacyPublic Privacy = iota
	// PrivacyPrivate groups require an invitation flow handled off-ledger.
	PrivacyPrivate
)

// Valid reports whether the privacy mode is a supported value.
func (p Privacy) Valid() bool { return p <= PrivacyPrivate }

// Entry selects the admission requirement for a group.
type Entry uint8

const (
	// EntryFree admits members without payment.
	EntryFree Entry = iota
	// EntryPaid charges the configured entry price on join.
	EntryPaid
	// EntryTokenGated defers admission proof to the external token
	// verifier.
	EntryTokenGated
)

// Valid reports whether the entry requirement is a supported value.
func (e Entry) Valid() bool { return e <= EntryTokenGated }

// Role is an ordered rank; a higher value always outranks a lower one.
type Role uint8

const (
	// RoleMember is the base rank assigned on join.
	RoleMember Role = 1
	// RoleModerator can moderate content.
	RoleModerator Role = 2
	// RoleAdmin can manage membership.
	RoleAdmin Role = 3
	// RoleOwner is held by the founding creator.
	RoleOwner Role = 4
)

// Assignable reports whether the role can be granted through role updates.
// Ownership never transfers this way.
func (r Role) Assignable() bool { return r >= RoleMember && r <= RoleAdmin }

// Group is a named community. The (creator, name) tuple derives its id.
type Group struct {
	ID          [32]byte `json:"id"`
	Creator     [20]byte `json:"creator"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privacy     Privacy  `json:"privacy"`
	Entry       Entry    `json:"entry"`
	EntryPrice  *big.Int `json:"entryPrice,omitempty"`
	Members     uint64   `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	clone := *g
	if g.EntryPrice != nil {
		clone.EntryPrice = new(big.Int).Set(g.EntryPrice)
	}
	return &clone
}

// Member is one wallet's membership in a group.
type Member struct {
	Group    [32]byte `json:"group"`
	Wallet   [20]byte `json:"wallet"`
	Role     Role     `json:"role"`
	JoinedAt int64    `json:"joinedAt"`
}

// Clone returns a copy of the membership.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}
