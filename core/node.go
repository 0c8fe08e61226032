package core

import (
	"log/slog"
	"math/big"
	"sync"

	"creatorledger/core/events"
	"creatorledger/core/state"
	"creatorledger/native/governance"
	"creatorledger/native/group"
	"creatorledger/native/market"
	"creatorledger/native/marketplace"
	"creatorledger/native/platform"
	"creatorledger/native/profile"
	"creatorledger/native/subscription"
	"creatorledger/observability/metrics"
	"creatorledger/storage"
)

// Vault tags. Each resolves to a key-less derived account so module funds
// can only move through instructions.
const (
	marketVaultTag   = "market/reserve"
	offerVaultTag    = "nft/offers"
	stakeVaultTag    = "gov/stake"
	treasuryVaultTag = "gov/treasury"
)

// Node wires the state manager and every module engine behind a single
// dispatch surface. Each mutating instruction runs against a snapshot and
// either commits whole or leaves no residue; events buffer until commit so
// rejected instructions never publish.
//
// Node serialises instructions with a mutex, which is the substrate's
// ordering guarantee in this deployment.
type Node struct {
	mu      sync.Mutex
	manager *state.Manager
	logger  *slog.Logger
	metrics *metrics.LedgerMetrics

	platform     *platform.Engine
	profiles     *profile.Engine
	market       *market.Engine
	subscription *subscription.Engine
	groups       *group.Engine
	governance   *governance.Engine
	marketplace  *marketplace.Engine

	subscriber events.Emitter
	pending    []events.Event
}

// NewNode constructs a node over the given database and wires every engine.
func NewNode(db storage.Database, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Node{
		manager: state.NewManager(db),
		logger:  logger.With("component", "node"),
		metrics: metrics.Ledger(),
	}

	buffer := bufferingEmitter{node: n}

	n.platform = platform.NewEngine()
	n.platform.SetState(n.manager)
	n.platform.SetEmitter(buffer)

	n.profiles = profile.NewEngine()
	n.profiles.SetState(n.manager)
	n.profiles.SetEmitter(buffer)
	n.profiles.SetPauses(n.manager)

	n.market = market.NewEngine()
	n.market.SetState(n.manager)
	n.market.SetEmitter(buffer)
	n.market.SetPauses(n.manager)
	n.market.SetVault(state.VaultAddress(marketVaultTag))

	n.subscription = subscription.NewEngine()
	n.subscription.SetState(n.manager)
	n.subscription.SetEmitter(buffer)
	n.subscription.SetPauses(n.manager)

	n.groups = group.NewEngine()
	n.groups.SetState(n.manager)
	n.groups.SetEmitter(buffer)
	n.groups.SetPauses(n.manager)

	n.governance = governance.NewEngine()
	n.governance.SetState(n.manager)
	n.governance.SetEmitter(buffer)
	n.governance.SetPauses(n.manager)
	n.governance.SetVault(state.VaultAddress(stakeVaultTag))
	n.governance.SetTreasury(state.VaultAddress(treasuryVaultTag))

	n.marketplace = marketplace.NewEngine()
	n.marketplace.SetState(n.manager)
	n.marketplace.SetEmitter(buffer)
	n.marketplace.SetPauses(n.manager)
	n.marketplace.SetVault(state.VaultAddress(offerVaultTag))

	return n
}

// SetEventSubscriber wires the downstream sink committed events flush to.
func (n *Node) SetEventSubscriber(sub events.Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscriber = sub
}

// SetNowFunc overrides the shared clock across every engine.
func (n *Node) SetNowFunc(now func() int64) {
	n.profiles.SetNowFunc(now)
	n.market.SetNowFunc(now)
	n.subscription.SetNowFunc(now)
	n.groups.SetNowFunc(now)
	n.governance.SetNowFunc(now)
	n.marketplace.SetNowFunc(now)
}

// bufferingEmitter parks events on the node until the surrounding
// instruction commits.
type bufferingEmitter struct {
	node *Node
}

func (b bufferingEmitter) Emit(evt events.Event) {
	if b.node == nil || evt == nil {
		return
	}
	b.node.pending = append(b.node.pending, evt)
}

// execute runs one mutating instruction with all-or-nothing semantics.
func (n *Node) execute(op string, fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap := n.manager.Snapshot()
	n.pending = n.pending[:0]
	err := fn()
	if err == nil {
		err = n.manager.Commit()
	}
	n.metrics.ObserveInstruction(op, err)
	if err != nil {
		n.manager.RevertToSnapshot(snap)
		n.pending = n.pending[:0]
		n.logger.Warn("instruction rejected", "op", op, "error", err)
		return err
	}
	for _, evt := range n.pending {
		n.metrics.ObserveEvent()
		if n.subscriber != nil {
			n.subscriber.Emit(evt)
		}
	}
	n.pending = n.pending[:0]
	n.logger.Info("instruction applied", "op", op)
	return nil
}

// --- Platform ---

func (n *Node) InitializePlatform(admin, feeCollector [20]byte) (*platform.Config, error) {
	var cfg *platform.Config
	err := n.execute("platform.initialize", func() error {
		var err error
		cfg, err = n.platform.Initialize(admin, feeCollector)
		return err
	})
	return cfg, err
}

func (n *Node) Pause(caller [20]byte) error {
	return n.execute("platform.pause", func() error {
		return n.platform.Pause(caller)
	})
}

func (n *Node) Unpause(caller [20]byte) error {
	return n.execute("platform.unpause", func() error {
		return n.platform.Unpause(caller)
	})
}

func (n *Node) UpdateFeeCollector(caller, collector [20]byte) error {
	return n.execute("platform.updateFeeCollector", func() error {
		return n.platform.UpdateFeeCollector(caller, collector)
	})
}

func (n *Node) UpdateAdmin(caller, admin [20]byte) error {
	return n.execute("platform.updateAdmin", func() error {
		return n.platform.UpdateAdmin(caller, admin)
	})
}

func (n *Node) UpdateMinLiquidityBps(caller [20]byte, bps uint64) error {
	return n.execute("platform.updateMinLiquidityBps", func() error {
		return n.platform.UpdateMinLiquidityBps(caller, bps)
	})
}

func (n *Node) PlatformConfig() (*platform.Config, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.platform.Config()
}

// --- Profiles ---

func (n *Node) RegisterProfile(owner [20]byte, username string) (*profile.Profile, error) {
	var p *profile.Profile
	err := n.execute("profile.register", func() error {
		var err error
		p, err = n.profiles.Register(owner, username)
		return err
	})
	return p, err
}

func (n *Node) Tip(sender, recipient [20]byte, amount *big.Int) error {
	return n.execute("profile.tip", func() error {
		return n.profiles.Tip(sender, recipient, amount)
	})
}

func (n *Node) Profile(owner [20]byte) (*profile.Profile, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.profiles.Get(owner)
}

// --- Share market ---

func (n *Node) InitializePool(creator [20]byte) (*market.Pool, error) {
	var pool *market.Pool
	err := n.execute("market.initializePool", func() error {
		var err error
		pool, err = n.market.InitializePool(creator)
		return err
	})
	return pool, err
}

func (n *Node) BuyShares(buyer, creator [20]byte, quantity uint64) (*market.Holding, *big.Int, error) {
	var (
		holding *market.Holding
		total   *big.Int
	)
	err := n.execute("market.buy", func() error {
		var err error
		holding, total, err = n.market.Buy(buyer, creator, quantity)
		return err
	})
	return holding, total, err
}

func (n *Node) SellShares(seller, creator [20]byte, quantity uint64) (*market.Holding, *big.Int, error) {
	var (
		holding *market.Holding
		payout  *big.Int
	)
	err := n.execute("market.sell", func() error {
		var err error
		holding, payout, err = n.market.Sell(seller, creator, quantity)
		return err
	})
	return holding, payout, err
}

func (n *Node) Pool(creator [20]byte) (*market.Pool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.market.Pool(creator)
}

func (n *Node) Holding(holder, creator [20]byte) (*market.Holding, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.market.Holding(holder, creator)
}

// --- Subscriptions ---

func (n *Node) CreateTier(creator [20]byte, name, description string, price *big.Int, durationDays uint64) (*subscription.Tier, error) {
	var tier *subscription.Tier
	err := n.execute("subscription.createTier", func() error {
		var err error
		tier, err = n.subscription.CreateTier(creator, name, description, price, durationDays)
		return err
	})
	return tier, err
}

func (n *Node) Subscribe(subscriber, creator [20]byte, tierID uint64) (*subscription.Record, error) {
	var record *subscription.Record
	err := n.execute("subscription.subscribe", func() error {
		var err error
		record, err = n.subscription.Subscribe(subscriber, creator, tierID)
		return err
	})
	return record, err
}

func (n *Node) CancelSubscription(subscriber, creator [20]byte, tierID uint64) (*subscription.Record, error) {
	var record *subscription.Record
	err := n.execute("subscription.cancel", func() error {
		var err error
		record, err = n.subscription.Cancel(subscriber, creator, tierID)
		return err
	})
	return record, err
}

func (n *Node) SubscriptionActive(subscriber, creator [20]byte, tierID uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subscription.Status(subscriber, creator, tierID)
}

// --- Groups ---

func (n *Node) CreateGroup(creator [20]byte, name, description string, privacy group.Privacy, entry group.Entry, entryPrice *big.Int) (*group.Group, error) {
	var g *group.Group
	err := n.execute("group.create", func() error {
		var err error
		g, err = n.groups.Create(creator, name, description, privacy, entry, entryPrice)
		return err
	})
	return g, err
}

func (n *Node) JoinGroup(member [20]byte, id [32]byte) (*group.Member, error) {
	var m *group.Member
	err := n.execute("group.join", func() error {
		var err error
		m, err = n.groups.Join(member, id)
		return err
	})
	return m, err
}

func (n *Node) UpdateGroupRole(actor [20]byte, id [32]byte, target [20]byte, role group.Role) (*group.Member, error) {
	var m *group.Member
	err := n.execute("group.updateRole", func() error {
		var err error
		m, err = n.groups.UpdateRole(actor, id, target, role)
		return err
	})
	return m, err
}

func (n *Node) KickGroupMember(actor [20]byte, id [32]byte, target [20]byte) error {
	return n.execute("group.kick", func() error {
		return n.groups.Kick(actor, id, target)
	})
}

func (n *Node) Group(id [32]byte) (*group.Group, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.groups.Get(id)
}

// --- Governance ---

func (n *Node) Stake(staker [20]byte, amount *big.Int, lockDays uint64) (*governance.StakePosition, error) {
	var position *governance.StakePosition
	err := n.execute("governance.stake", func() error {
		var err error
		position, err = n.governance.Stake(staker, amount, lockDays)
		return err
	})
	if err == nil {
		n.refreshStakedGauge()
	}
	return position, err
}

func (n *Node) Unstake(staker [20]byte) (*big.Int, *big.Int, error) {
	var principal, reward *big.Int
	err := n.execute("governance.unstake", func() error {
		var err error
		principal, reward, err = n.governance.Unstake(staker)
		return err
	})
	if err == nil {
		n.refreshStakedGauge()
	}
	return principal, reward, err
}

func (n *Node) refreshStakedGauge() {
	n.mu.Lock()
	defer n.mu.Unlock()
	total, err := n.manager.GovernanceTotalStaked()
	if err != nil {
		return
	}
	f, _ := new(big.Float).SetInt(total).Float64()
	n.metrics.SetTotalStaked(f)
}

func (n *Node) CreateProposal(proposer [20]byte, title, description string, category governance.Category, executionDelay int64) (*governance.Proposal, error) {
	var proposal *governance.Proposal
	err := n.execute("governance.createProposal", func() error {
		var err error
		proposal, err = n.governance.CreateProposal(proposer, title, description, category, executionDelay)
		return err
	})
	return proposal, err
}

func (n *Node) CastVote(voter [20]byte, id [32]byte, choice governance.VoteChoice) (*governance.Vote, error) {
	var vote *governance.Vote
	err := n.execute("governance.castVote", func() error {
		var err error
		vote, err = n.governance.CastVote(voter, id, choice)
		return err
	})
	return vote, err
}

func (n *Node) FinalizeProposal(id [32]byte) (*governance.Proposal, error) {
	var proposal *governance.Proposal
	err := n.execute("governance.finalize", func() error {
		var err error
		proposal, err = n.governance.Finalize(id)
		return err
	})
	return proposal, err
}

func (n *Node) ExecuteProposal(executor [20]byte, id [32]byte) (*governance.Proposal, error) {
	var proposal *governance.Proposal
	err := n.execute("governance.execute", func() error {
		var err error
		proposal, err = n.governance.Execute(executor, id)
		return err
	})
	return proposal, err
}

func (n *Node) StakePosition(staker [20]byte) (*governance.StakePosition, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governance.Position(staker)
}

func (n *Node) Proposal(id [32]byte) (*governance.Proposal, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governance.Proposal(id)
}

// --- Username marketplace ---

func (n *Node) MintUsername(minter [20]byte, username, metadataURI string) (*marketplace.UsernameNFT, error) {
	var nft *marketplace.UsernameNFT
	err := n.execute("marketplace.mint", func() error {
		var err error
		nft, err = n.marketplace.Mint(minter, username, metadataURI)
		return err
	})
	return nft, err
}

func (n *Node) ListUsername(owner [20]byte, username string, price *big.Int) (*marketplace.Listing, error) {
	var listing *marketplace.Listing
	err := n.execute("marketplace.list", func() error {
		var err error
		listing, err = n.marketplace.List(owner, username, price)
		return err
	})
	return listing, err
}

func (n *Node) MakeOffer(buyer [20]byte, username string, amount *big.Int) (*marketplace.Offer, error) {
	var offer *marketplace.Offer
	err := n.execute("marketplace.makeOffer", func() error {
		var err error
		offer, err = n.marketplace.MakeOffer(buyer, username, amount)
		return err
	})
	return offer, err
}

func (n *Node) AcceptOffer(seller [20]byte, username string, buyer [20]byte) (*big.Int, error) {
	var proceeds *big.Int
	err := n.execute("marketplace.acceptOffer", func() error {
		var err error
		proceeds, err = n.marketplace.AcceptOffer(seller, username, buyer)
		return err
	})
	return proceeds, err
}

func (n *Node) BuyListing(buyer [20]byte, username string) (*big.Int, error) {
	var proceeds *big.Int
	err := n.execute("marketplace.buyListing", func() error {
		var err error
		proceeds, err = n.marketplace.BuyListing(buyer, username)
		return err
	})
	return proceeds, err
}

func (n *Node) CancelListing(seller [20]byte, username string) error {
	return n.execute("marketplace.cancelListing", func() error {
		return n.marketplace.CancelListing(seller, username)
	})
}

func (n *Node) CancelOffer(buyer [20]byte, username string) (*big.Int, error) {
	var refund *big.Int
	err := n.execute("marketplace.cancelOffer", func() error {
		var err error
		refund, err = n.marketplace.CancelOffer(buyer, username)
		return err
	})
	return refund, err
}

func (n *Node) UsernameNFT(username string) (*marketplace.UsernameNFT, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketplace.NFT(username)
}

func (n *Node) Listing(username string) (*marketplace.Listing, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketplace.Listing(username)
}

func (n *Node) Offer(username string, buyer [20]byte) (*marketplace.Offer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketplace.Offer(username, buyer)
}

// Balance reads the native balance for an address.
func (n *Node) Balance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, err := n.manager.GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return account.Ensure().Balance, nil
}

// Credit mints balance onto an address. It exists for genesis funding and
// tests; production deposits arrive through the bridge, not this method.
func (n *Node) Credit(addr [20]byte, amount *big.Int) error {
	return n.execute("account.credit", func() error {
		account, err := n.manager.GetAccount(addr[:])
		if err != nil {
			return err
		}
		account = account.Ensure()
		account.Balance = new(big.Int).Add(account.Balance, amount)
		return n.manager.PutAccount(addr[:], account)
	})
}
