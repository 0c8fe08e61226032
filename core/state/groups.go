package state

import (
	"math/big"

	"creatorledger/native/group"
)

type storedGroup struct {
	ID          [32]byte
	Creator     [20]byte
	Name        string
	Description string
	Privacy     uint8
	Entry       uint8
	EntryPrice  *big.Int
	Members     uint64
	CreatedAt   uint64
}

type storedGroupMember struct {
	Group    [32]byte
	Wallet   [20]byte
	Role     uint8
	JoinedAt uint64
}

// GroupDeriveID computes the deterministic id for a (creator, name) pair.
func (m *Manager) GroupDeriveID(creator [20]byte, name string) [32]byte {
	return GroupID(creator, name)
}

// GroupGet loads a group by id.
func (m *Manager) GroupGet(id [32]byte) (*group.Group, bool, error) {
	stored := new(storedGroup)
	ok, err := m.getRecord(groupKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &group.Group{
		ID:          stored.ID,
		Creator:     stored.Creator,
		Name:        stored.Name,
		Description: stored.Description,
		Privacy:     group.Privacy(stored.Privacy),
		Entry:       group.Entry(stored.Entry),
		EntryPrice:  bigOrZero(stored.EntryPrice),
		Members:     stored.Members,
		CreatedAt:   int64(stored.CreatedAt),
	}, true, nil
}

// GroupPut persists a group.
func (m *Manager) GroupPut(g *group.Group) error {
	return m.putRecord(groupKey(g.ID), &storedGroup{
		ID:          g.ID,
		Creator:     g.Creator,
		Name:        g.Name,
		Description: g.Description,
		Privacy:     uint8(g.Privacy),
		Entry:       uint8(g.Entry),
		EntryPrice:  bigOrZero(g.EntryPrice),
		Members:     g.Members,
		CreatedAt:   uint64(g.CreatedAt),
	})
}

// GroupMemberGet loads one wallet's membership in a group.
func (m *Manager) GroupMemberGet(id [32]byte, wallet [20]byte) (*group.Member, bool, error) {
	stored := new(storedGroupMember)
	ok, err := m.getRecord(groupMemberKey(id, wallet), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &group.Member{
		Group:    stored.Group,
		Wallet:   stored.Wallet,
		Role:     group.Role(stored.Role),
		JoinedAt: int64(stored.JoinedAt),
	}, true, nil
}

// GroupMemberPut persists a membership.
func (m *Manager) GroupMemberPut(member *group.Member) error {
	return m.putRecord(groupMemberKey(member.Group, member.Wallet), &storedGroupMember{
		Group:    member.Group,
		Wallet:   member.Wallet,
		Role:     uint8(member.Role),
		JoinedAt: uint64(member.JoinedAt),
	})
}

// GroupMemberDelete removes a membership after a kick.
func (m *Manager) GroupMemberDelete(id [32]byte, wallet [20]byte) error {
	m.deleteRecord(groupMemberKey(id, wallet))
	return nil
}
