package group

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"creatorledger/core/types"
	"creatorledger/native/common"
)

type memberID struct {
	group  [32]byte
	wallet [20]byte
}

type mockState struct {
	groups   map[[32]byte]*Group
	members  map[memberID]*Member
	accounts map[[20]byte]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		groups:   make(map[[32]byte]*Group),
		members:  make(map[memberID]*Member),
		accounts: make(map[[20]byte]*types.Account),
	}
}

func (m *mockState) GroupDeriveID(creator [20]byte, name string) [32]byte {
	var id [32]byte
	copy(id[:], ethcrypto.Keccak256(creator[:], []byte(name)))
	return id
}

func (m *mockState) GroupGet(id [32]byte) (*Group, bool, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, false, nil
	}
	return g.Clone(), true, nil
}

func (m *mockState) GroupPut(g *Group) error {
	m.groups[g.ID] = g.Clone()
	return nil
}

func (m *mockState) GroupMemberGet(id [32]byte, wallet [20]byte) (*Member, bool, error) {
	member, ok := m.members[memberID{id, wallet}]
	if !ok {
		return nil, false, nil
	}
	return member.Clone(), true, nil
}

func (m *mockState) GroupMemberPut(member *Member) error {
	m.members[memberID{member.Group, member.Wallet}] = member.Clone()
	return nil
}

func (m *mockState) GroupMemberDelete(id [32]byte, wallet [20]byte) error {
	delete(m.members, memberID{id, wallet})
	return nil
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	var key [20]byte
	copy(key[:], addr)
	account, ok := m.accounts[key]
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	return &types.Account{Nonce: account.Nonce, Balance: new(big.Int).Set(account.Balance)}, nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	var key [20]byte
	copy(key[:], addr)
	m.accounts[key] = &types.Account{Nonce: account.Nonce, Balance: new(big.Int).Set(account.Balance)}
	return nil
}

func (m *mockState) fund(addr [20]byte, amount int64) {
	m.accounts[addr] = &types.Account{Balance: big.NewInt(amount)}
}

func (m *mockState) balance(addr [20]byte) *big.Int {
	account, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(account.Balance)
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

type stubPauses struct {
	paused bool
}

func (s stubPauses) IsPaused(string) bool { return s.paused }

func newTestEngine(state *mockState) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine
}

func TestCreateInsertsOwner(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)

	g, err := engine.Create(creator, "builders", "a place to build", PrivacyPublic, EntryFree, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Members != 1 {
		t.Fatalf("members = %d, want 1", g.Members)
	}
	owner, ok, err := state.GroupMemberGet(g.ID, creator)
	if err != nil || !ok {
		t.Fatalf("owner membership missing: %v", err)
	}
	if owner.Role != RoleOwner {
		t.Fatalf("owner role = %d, want %d", owner.Role, RoleOwner)
	}
	if _, err := engine.Create(creator, "builders", "again", PrivacyPublic, EntryFree, nil); !errors.Is(err, errGroupExists) {
		t.Fatalf("duplicate create: got %v, want %v", err, errGroupExists)
	}
}

func TestCreateEntryPriceValidation(t *testing.T) {
	engine := newTestEngine(newMockState())
	creator := newTestAddress(0x10)

	if _, err := engine.Create(creator, "paid", "", PrivacyPublic, EntryPaid, nil); !errors.Is(err, errEntryPriceMissing) {
		t.Fatalf("paid without price: got %v, want %v", err, errEntryPriceMissing)
	}
	if _, err := engine.Create(creator, "free", "", PrivacyPublic, EntryFree, big.NewInt(5)); !errors.Is(err, errEntryPriceExtra) {
		t.Fatalf("free with price: got %v, want %v", err, errEntryPriceExtra)
	}
}

func TestJoinFreeAndDuplicate(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	member := newTestAddress(0x20)

	g, err := engine.Create(creator, "builders", "", PrivacyPublic, EntryFree, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	joined, err := engine.Join(member, g.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Role != RoleMember {
		t.Fatalf("joined role = %d, want %d", joined.Role, RoleMember)
	}
	if _, err := engine.Join(member, g.ID); !errors.Is(err, errAlreadyMember) {
		t.Fatalf("double join: got %v, want %v", err, errAlreadyMember)
	}
	current, err := engine.Get(g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Members != 2 {
		t.Fatalf("members = %d, want 2", current.Members)
	}
}

func TestJoinPaidTransfersEntryPrice(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	member := newTestAddress(0x20)
	state.fund(member, 1_000)

	g, err := engine.Create(creator, "club", "", PrivacyPublic, EntryPaid, big.NewInt(400))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Join(member, g.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := state.balance(member); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("member balance = %s, want 600", got)
	}
	// The entry price goes to the creator in full, no platform fee.
	if got := state.balance(creator); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("creator balance = %s, want 400", got)
	}
}

func TestJoinPaidRejections(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)
	poor := newTestAddress(0x20)
	state.fund(poor, 10)

	g, err := engine.Create(creator, "club", "", PrivacyPublic, EntryPaid, big.NewInt(400))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Join(poor, g.ID); !errors.Is(err, errInsufficientFunds) {
		t.Fatalf("poor join: got %v, want %v", err, errInsufficientFunds)
	}
	engine.SetPauses(stubPauses{paused: true})
	rich := newTestAddress(0x21)
	state.fund(rich, 1_000)
	if _, err := engine.Join(rich, g.ID); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("paused paid join: got %v, want %v", err, common.ErrModulePaused)
	}
}

func TestJoinPrivateGroupRejected(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := newTestAddress(0x10)

	g, err := engine.Create(creator, "inner", "", PrivacyPrivate, EntryFree, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Join(newTestAddress(0x20), g.ID); !errors.Is(err, errPrivateGroup) {
		t.Fatalf("join private: got %v, want %v", err, errPrivateGroup)
	}
}

func TestUpdateRoleRankRules(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	owner := newTestAddress(0x10)
	alice := newTestAddress(0x20)
	bob := newTestAddress(0x21)

	g, err := engine.Create(owner, "builders", "", PrivacyPublic, EntryFree, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, w := range [][20]byte{alice, bob} {
		if _, err := engine.Join(w, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	// Owner promotes alice to admin.
	promoted, err := engine.UpdateRole(owner, g.ID, alice, RoleAdmin)
	if err != nil {
		t.Fatalf("promote alice: %v", err)
	}
	if promoted.Role != RoleAdmin {
		t.Fatalf("alice role = %d, want %d", promoted.Role, RoleAdmin)
	}
	// Admin can promote a plain member to moderator.
	if _, err := engine.UpdateRole(alice, g.ID, bob, RoleModerator); err != nil {
		t.Fatalf("alice promotes bob: %v", err)
	}
	// But an admin cannot mint another admin (rank must strictly exceed the
	// new role).
	if _, err := engine.UpdateRole(alice, g.ID, bob, RoleAdmin); !errors.Is(err, errInsufficientRank) {
		t.Fatalf("admin minting admin: got %v, want %v", err, errInsufficientRank)
	}
	// Nobody touches the owner.
	if _, err := engine.UpdateRole(alice, g.ID, owner, RoleMember); !errors.Is(err, errInsufficientRank) {
		t.Fatalf("demote owner: got %v, want %v", err, errInsufficientRank)
	}
	// Self-promotion is rejected outright.
	if _, err := engine.UpdateRole(alice, g.ID, alice, RoleAdmin); !errors.Is(err, errSelfAction) {
		t.Fatalf("self update: got %v, want %v", err, errSelfAction)
	}
	// Ownership never transfers through role updates.
	if _, err := engine.UpdateRole(owner, g.ID, alice, RoleOwner); !errors.Is(err, errInvalidRole) {
		t.Fatalf("assign owner role: got %v, want %v", err, errInvalidRole)
	}
}

func TestKickRankRules(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	owner := newTestAddress(0x10)
	admin := newTestAddress(0x20)
	mod := newTestAddress(0x21)
	pleb := newTestAddress(0x22)

	g, err := engine.Create(owner, "builders", "", PrivacyPublic, EntryFree, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, w := range [][20]byte{admin, mod, pleb} {
		if _, err := engine.Join(w, g.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	if _, err := engine.UpdateRole(owner, g.ID, admin, RoleAdmin); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	if _, err := engine.UpdateRole(owner, g.ID, mod, RoleModerator); err != nil {
		t.Fatalf("promote mod: %v", err)
	}

	// Moderators cannot kick at all.
	if err := engine.Kick(mod, g.ID, pleb); !errors.Is(err, errInsufficientRank) {
		t.Fatalf("mod kick: got %v, want %v", err, errInsufficientRank)
	}
	// Admins cannot kick peers or the owner.
	if err := engine.Kick(admin, g.ID, owner); !errors.Is(err, errInsufficientRank) {
		t.Fatalf("kick owner: got %v, want %v", err, errInsufficientRank)
	}
	// Admins kick below their rank.
	if err := engine.Kick(admin, g.ID, pleb); err != nil {
		t.Fatalf("kick pleb: %v", err)
	}
	if _, ok, _ := state.GroupMemberGet(g.ID, pleb); ok {
		t.Fatal("kicked member still present")
	}
	current, err := engine.Get(g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Members != 3 {
		t.Fatalf("members = %d, want 3", current.Members)
	}
	// The kicked wallet can rejoin at the base rank.
	rejoined, err := engine.Join(pleb, g.ID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if rejoined.Role != RoleMember {
		t.Fatalf("rejoined role = %d, want %d", rejoined.Role, RoleMember)
	}
}
