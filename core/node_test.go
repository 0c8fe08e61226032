package core

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"creatorledger/core/events"
	"creatorledger/core/state"
	"creatorledger/native/common"
	"creatorledger/native/governance"
	"creatorledger/storage"
)

type captureEmitter struct {
	types []string
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.types = append(c.types, evt.EventType())
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func newTestNode(t *testing.T) (*Node, *captureEmitter) {
	t.Helper()
	node := NewNode(storage.NewMemDB(), nil)
	sink := &captureEmitter{}
	node.SetEventSubscriber(sink)
	admin := newTestAddress(0x01)
	collector := newTestAddress(0x02)
	_, err := node.InitializePlatform(admin, collector)
	require.NoError(t, err)
	return node, sink
}

func TestTipFlowCommitsAndPublishes(t *testing.T) {
	node, sink := newTestNode(t)
	alice := newTestAddress(0x10)
	bob := newTestAddress(0x20)

	require.NoError(t, node.Credit(alice, big.NewInt(1_000)))
	_, err := node.RegisterProfile(alice, "alice")
	require.NoError(t, err)
	_, err = node.RegisterProfile(bob, "bob")
	require.NoError(t, err)

	sink.types = nil
	require.NoError(t, node.Tip(alice, bob, big.NewInt(250)))

	balance, err := node.Balance(bob)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(250)))

	profile, err := node.Profile(alice)
	require.NoError(t, err)
	require.Zero(t, profile.TipsSent.Cmp(big.NewInt(250)))

	require.Equal(t, []string{"profile.tipped"}, sink.types)
}

func TestRejectedInstructionLeavesNoResidue(t *testing.T) {
	node, sink := newTestNode(t)
	alice := newTestAddress(0x10)
	bob := newTestAddress(0x20)

	require.NoError(t, node.Credit(alice, big.NewInt(100)))
	_, err := node.RegisterProfile(alice, "alice")
	require.NoError(t, err)
	_, err = node.RegisterProfile(bob, "bob")
	require.NoError(t, err)

	sink.types = nil
	// Overdraft: the instruction must revert whole and publish nothing.
	require.Error(t, node.Tip(alice, bob, big.NewInt(500)))
	require.Empty(t, sink.types)

	balance, err := node.Balance(alice)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(100)))
	balance, err = node.Balance(bob)
	require.NoError(t, err)
	require.Zero(t, balance.Sign())
}

func TestShareTradesSettleAgainstReserveVault(t *testing.T) {
	node, _ := newTestNode(t)
	creator := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	collector := newTestAddress(0x02)
	reserveVault := state.VaultAddress("market/reserve")

	require.NoError(t, node.Credit(buyer, big.NewInt(100_000_000)))
	_, err := node.InitializePool(creator)
	require.NoError(t, err)

	holding, total, err := node.BuyShares(buyer, creator, 5)
	require.NoError(t, err)
	require.EqualValues(t, 5, holding.Shares)
	// Curve cost 60_000_000 plus the 2.5% platform fee.
	require.Zero(t, total.Cmp(big.NewInt(61_500_000)))

	pool, err := node.Pool(creator)
	require.NoError(t, err)
	require.EqualValues(t, 5, pool.Supply)

	vaultBalance, err := node.Balance(reserveVault)
	require.NoError(t, err)
	require.Zero(t, vaultBalance.Cmp(pool.Reserve))

	feeBalance, err := node.Balance(collector)
	require.NoError(t, err)
	require.Zero(t, feeBalance.Cmp(big.NewInt(1_500_000)))

	holding, payout, err := node.SellShares(buyer, creator, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, holding.Shares)
	// Curve refund 27_000_000 minus its fee.
	require.Zero(t, payout.Cmp(big.NewInt(26_325_000)))

	pool, err = node.Pool(creator)
	require.NoError(t, err)
	vaultBalance, err = node.Balance(reserveVault)
	require.NoError(t, err)
	require.Zero(t, vaultBalance.Cmp(pool.Reserve))
}

func TestPauseGatesValueMovesAcrossModules(t *testing.T) {
	node, _ := newTestNode(t)
	admin := newTestAddress(0x01)
	alice := newTestAddress(0x10)
	bob := newTestAddress(0x20)
	creator := newTestAddress(0x30)

	require.NoError(t, node.Credit(alice, big.NewInt(200_000_000)))
	_, err := node.RegisterProfile(alice, "alice")
	require.NoError(t, err)
	_, err = node.RegisterProfile(bob, "bob")
	require.NoError(t, err)
	_, err = node.InitializePool(creator)
	require.NoError(t, err)

	require.NoError(t, node.Pause(admin))

	require.ErrorIs(t, node.Tip(alice, bob, big.NewInt(10)), common.ErrModulePaused)
	_, _, err = node.BuyShares(alice, creator, 1)
	require.ErrorIs(t, err, common.ErrModulePaused)
	_, err = node.Stake(alice, big.NewInt(1_000), 0)
	require.ErrorIs(t, err, common.ErrModulePaused)

	require.NoError(t, node.Unpause(admin))
	require.NoError(t, node.Tip(alice, bob, big.NewInt(10)))
}

func TestGovernanceLifecycleThroughNode(t *testing.T) {
	node, sink := newTestNode(t)
	alice := newTestAddress(0x10)
	now := int64(1_700_000_000)
	node.SetNowFunc(func() int64 { return now })

	require.NoError(t, node.Credit(alice, big.NewInt(1_000_000)))
	treasury := state.VaultAddress("gov/treasury")
	require.NoError(t, node.Credit(treasury, big.NewInt(1_000_000)))

	_, err := node.Stake(alice, big.NewInt(10_000), 0)
	require.NoError(t, err)

	proposal, err := node.CreateProposal(alice, "upgrade", "", governance.CategoryProtocol, governance.MinExecutionDelaySeconds)
	require.NoError(t, err)
	_, err = node.CastVote(alice, proposal.ID, governance.VoteFor)
	require.NoError(t, err)

	now += governance.VotingPeriodSeconds
	finalized, err := node.FinalizeProposal(proposal.ID)
	require.NoError(t, err)
	require.True(t, finalized.Passed)

	now += governance.MinExecutionDelaySeconds
	executed, err := node.ExecuteProposal(alice, proposal.ID)
	require.NoError(t, err)
	require.True(t, executed.Executed)

	principal, reward, err := node.Unstake(alice)
	require.NoError(t, err)
	require.Zero(t, principal.Cmp(big.NewInt(10_000)))
	require.NotNil(t, reward)

	require.Contains(t, sink.types, "governance.proposal.executed")
}

func TestMarketplaceOfferSettlesThroughEscrow(t *testing.T) {
	node, sink := newTestNode(t)
	seller := newTestAddress(0x10)
	buyer := newTestAddress(0x20)
	collector := newTestAddress(0x02)
	escrow := state.VaultAddress("nft/offers")

	require.NoError(t, node.Credit(buyer, big.NewInt(1_000_000)))

	_, err := node.MintUsername(seller, "alice", "ipfs://alice")
	require.NoError(t, err)
	_, err = node.ListUsername(seller, "alice", big.NewInt(500_000))
	require.NoError(t, err)
	_, err = node.MakeOffer(buyer, "alice", big.NewInt(400_000))
	require.NoError(t, err)

	escrowBalance, err := node.Balance(escrow)
	require.NoError(t, err)
	require.Zero(t, escrowBalance.Cmp(big.NewInt(400_000)))

	sink.types = nil
	proceeds, err := node.AcceptOffer(seller, "alice", buyer)
	require.NoError(t, err)
	require.Zero(t, proceeds.Cmp(big.NewInt(390_000)))
	require.Equal(t, []string{"marketplace.sold"}, sink.types)

	nft, err := node.UsernameNFT("alice")
	require.NoError(t, err)
	require.Equal(t, buyer, nft.Owner)

	feeBalance, err := node.Balance(collector)
	require.NoError(t, err)
	require.Zero(t, feeBalance.Cmp(big.NewInt(10_000)))
	escrowBalance, err = node.Balance(escrow)
	require.NoError(t, err)
	require.Zero(t, escrowBalance.Sign())
}
