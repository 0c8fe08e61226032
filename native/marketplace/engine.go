package marketplace

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"creatorledger/core/events"
	"creatorledger/core/types"
	"creatorledger/native/common"
	"creatorledger/native/platform"
)

var (
	errNilState          = errors.New("marketplace engine: state not configured")
	errVaultNotSet       = errors.New("marketplace engine: escrow vault not configured")
	errPlatformNotReady  = errors.New("marketplace engine: platform config not initialized")
	errNFTExists         = errors.New("marketplace engine: username already minted")
	errNFTNotFound       = errors.New("marketplace engine: username not minted")
	errNotOwner          = errors.New("marketplace engine: caller does not own username")
	errMetadataTooLong   = errors.New("marketplace engine: metadata uri too long")
	errInvalidPrice      = errors.New("marketplace engine: price must be positive")
	errListingNotFound   = errors.New("marketplace engine: listing not found")
	errListingInactive   = errors.New("marketplace engine: listing not active")
	errNotSeller         = errors.New("marketplace engine: caller is not the seller")
	errSelfTrade         = errors.New("marketplace engine: cannot trade with yourself")
	errOfferTooSmall     = errors.New("marketplace engine: offer below minimum")
	errOfferExists       = errors.New("marketplace engine: live offer already exists")
	errOfferNotFound     = errors.New("marketplace engine: offer not found")
	errOfferInactive     = errors.New("marketplace engine: offer not active")
	errNotBuyer          = errors.New("marketplace engine: caller is not the buyer")
	errInsufficientFunds = errors.New("marketplace engine: insufficient balance")
	errEscrowUnderfunded = errors.New("marketplace engine: escrow vault underfunded")
)

type engineState interface {
	MarketplaceNFTGet(username string) (*UsernameNFT, bool, error)
	MarketplaceNFTPut(nft *UsernameNFT) error
	MarketplaceListingGet(username string) (*Listing, bool, error)
	MarketplaceListingPut(listing *Listing) error
	MarketplaceOfferGet(username string, buyer [20]byte) (*Offer, bool, error)
	MarketplaceOfferPut(offer *Offer) error
	PlatformConfigGet() (*platform.Config, bool, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine runs the username marketplace. Offers escrow their funds into the
// vault when made; settlement always happens at the offer's own amount.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
	vault   [20]byte
}

// NewEngine constructs a marketplace engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the platform pause view consulted on settlement.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetVault configures the account that holds escrowed offer funds.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func (e *Engine) platformConfig() (*platform.Config, error) {
	cfg, ok, err := e.state.PlatformConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, errPlatformNotReady
	}
	return cfg, nil
}

func (e *Engine) credit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	account, err := e.state.GetAccount(addr[:])
	if err != nil {
		return err
	}
	account = account.Ensure()
	account.Balance = new(big.Int).Add(account.Balance, amount)
	return e.state.PutAccount(addr[:], account)
}

func (e *Engine) debit(addr [20]byte, amount *big.Int, underfunded error) error {
	account, err := e.state.GetAccount(addr[:])
	if err != nil {
		return err
	}
	account = account.Ensure()
	if account.Balance.Cmp(amount) < 0 {
		return underfunded
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)
	return e.state.PutAccount(addr[:], account)
}

// Mint issues the NFT for a username. Usernames are globally unique and the
// record starts unverified.
func (e *Engine) Mint(minter [20]byte, username, metadataURI string) (*UsernameNFT, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if len(metadataURI) > MaxMetadataURILength {
		return nil, errMetadataTooLong
	}
	if _, ok, err := e.state.MarketplaceNFTGet(username); err != nil {
		return nil, err
	} else if ok {
		return nil, errNFTExists
	}
	nft := &UsernameNFT{
		Username:    username,
		Owner:       minter,
		MetadataURI: strings.TrimSpace(metadataURI),
		MintedAt:    e.now(),
	}
	if err := e.state.MarketplaceNFTPut(nft); err != nil {
		return nil, err
	}
	e.emit(MintedEvent(username, hexAddr(minter)))
	return nft.Clone(), nil
}

// List puts a username up for sale, or reactivates a retired listing.
func (e *Engine) List(owner [20]byte, username string, price *big.Int) (*Listing, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errInvalidPrice
	}
	nft, ok, err := e.state.MarketplaceNFTGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || nft == nil {
		return nil, errNFTNotFound
	}
	if nft.Owner != owner {
		return nil, errNotOwner
	}
	listing := &Listing{
		Username: username,
		Seller:   owner,
		Price:    new(big.Int).Set(price),
		Active:   true,
		ListedAt: e.now(),
	}
	if err := e.state.MarketplaceListingPut(listing); err != nil {
		return nil, err
	}
	e.emit(ListedEvent(username, hexAddr(owner), price.String()))
	return listing.Clone(), nil
}

// MakeOffer escrows the buyer's bid against an active listing. One live
// offer per (listing, buyer).
func (e *Engine) MakeOffer(buyer [20]byte, username string, amount *big.Int) (*Offer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	if amount == nil || amount.Cmp(big.NewInt(MinOffer)) < 0 {
		return nil, errOfferTooSmall
	}
	listing, ok, err := e.state.MarketplaceListingGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || listing == nil || !listing.Active {
		return nil, errListingInactive
	}
	if listing.Seller == buyer {
		return nil, errSelfTrade
	}
	if offer, ok, err := e.state.MarketplaceOfferGet(username, buyer); err != nil {
		return nil, err
	} else if ok && offer != nil && offer.Active {
		return nil, errOfferExists
	}
	if err := e.debit(buyer, amount, errInsufficientFunds); err != nil {
		return nil, err
	}
	if err := e.credit(e.vault, amount); err != nil {
		return nil, err
	}
	offer := &Offer{
		Username:  username,
		Buyer:     buyer,
		Amount:    new(big.Int).Set(amount),
		Active:    true,
		CreatedAt: e.now(),
	}
	if err := e.state.MarketplaceOfferPut(offer); err != nil {
		return nil, err
	}
	e.emit(OfferMadeEvent(username, hexAddr(buyer), amount.String()))
	return offer.Clone(), nil
}

// AcceptOffer settles an escrowed offer at the offer's amount. The seller
// receives the amount minus the platform fee, the NFT moves to the buyer,
// and both the listing and the offer retire. Other live offers on the same
// username stay refundable through CancelOffer.
func (e *Engine) AcceptOffer(seller [20]byte, username string, buyer [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	listing, ok, err := e.state.MarketplaceListingGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || listing == nil {
		return nil, errListingNotFound
	}
	if !listing.Active {
		return nil, errListingInactive
	}
	if listing.Seller != seller {
		return nil, errNotSeller
	}
	offer, ok, err := e.state.MarketplaceOfferGet(username, buyer)
	if err != nil {
		return nil, err
	}
	if !ok || offer == nil {
		return nil, errOfferNotFound
	}
	if !offer.Active {
		return nil, errOfferInactive
	}
	nft, ok, err := e.state.MarketplaceNFTGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || nft == nil {
		return nil, errNFTNotFound
	}
	if nft.Owner != seller {
		return nil, errNotOwner
	}
	cfg, err := e.platformConfig()
	if err != nil {
		return nil, err
	}
	fee := common.FeeAmount(offer.Amount, platform.FeeBps)
	proceeds := new(big.Int).Sub(offer.Amount, fee)

	if err := e.debit(e.vault, offer.Amount, errEscrowUnderfunded); err != nil {
		return nil, err
	}
	if err := e.credit(seller, proceeds); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.FeeCollector, fee); err != nil {
		return nil, err
	}

	nft.Owner = buyer
	listing.Active = false
	offer.Active = false
	if err := e.state.MarketplaceNFTPut(nft); err != nil {
		return nil, err
	}
	if err := e.state.MarketplaceListingPut(listing); err != nil {
		return nil, err
	}
	if err := e.state.MarketplaceOfferPut(offer); err != nil {
		return nil, err
	}
	e.emit(SoldEvent(username, hexAddr(seller), hexAddr(buyer), offer.Amount.String(), fee.String()))
	return proceeds, nil
}

// BuyListing purchases the username directly at the asking price, paid from
// the buyer's balance.
func (e *Engine) BuyListing(buyer [20]byte, username string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	listing, ok, err := e.state.MarketplaceListingGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || listing == nil || !listing.Active {
		return nil, errListingInactive
	}
	if listing.Seller == buyer {
		return nil, errSelfTrade
	}
	nft, ok, err := e.state.MarketplaceNFTGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || nft == nil {
		return nil, errNFTNotFound
	}
	if nft.Owner != listing.Seller {
		return nil, errNotOwner
	}
	cfg, err := e.platformConfig()
	if err != nil {
		return nil, err
	}
	fee := common.FeeAmount(listing.Price, platform.FeeBps)
	proceeds := new(big.Int).Sub(listing.Price, fee)

	if err := e.debit(buyer, listing.Price, errInsufficientFunds); err != nil {
		return nil, err
	}
	if err := e.credit(listing.Seller, proceeds); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.FeeCollector, fee); err != nil {
		return nil, err
	}

	nft.Owner = buyer
	listing.Active = false
	if err := e.state.MarketplaceNFTPut(nft); err != nil {
		return nil, err
	}
	if err := e.state.MarketplaceListingPut(listing); err != nil {
		return nil, err
	}
	e.emit(SoldEvent(username, hexAddr(listing.Seller), hexAddr(buyer), listing.Price.String(), fee.String()))
	return proceeds, nil
}

// CancelListing deactivates the seller's listing. Escrowed offers remain
// refundable.
func (e *Engine) CancelListing(seller [20]byte, username string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	listing, ok, err := e.state.MarketplaceListingGet(username)
	if err != nil {
		return err
	}
	if !ok || listing == nil {
		return errListingNotFound
	}
	if !listing.Active {
		return errListingInactive
	}
	if listing.Seller != seller {
		return errNotSeller
	}
	listing.Active = false
	if err := e.state.MarketplaceListingPut(listing); err != nil {
		return err
	}
	e.emit(ListingCancelledEvent(username, hexAddr(seller)))
	return nil
}

// CancelOffer refunds the buyer's escrow and retires the offer. This is the
// exit path for offers left behind after the listing sold or was cancelled.
func (e *Engine) CancelOffer(buyer [20]byte, username string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(e.vault) {
		return nil, errVaultNotSet
	}
	offer, ok, err := e.state.MarketplaceOfferGet(username, buyer)
	if err != nil {
		return nil, err
	}
	if !ok || offer == nil {
		return nil, errOfferNotFound
	}
	if !offer.Active {
		return nil, errOfferInactive
	}
	if offer.Buyer != buyer {
		return nil, errNotBuyer
	}
	if err := e.debit(e.vault, offer.Amount, errEscrowUnderfunded); err != nil {
		return nil, err
	}
	if err := e.credit(buyer, offer.Amount); err != nil {
		return nil, err
	}
	offer.Active = false
	if err := e.state.MarketplaceOfferPut(offer); err != nil {
		return nil, err
	}
	e.emit(OfferCancelledEvent(username, hexAddr(buyer), offer.Amount.String()))
	return new(big.Int).Set(offer.Amount), nil
}

// NFT returns the ownership record for a username without mutating state.
func (e *Engine) NFT(username string) (*UsernameNFT, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	nft, ok, err := e.state.MarketplaceNFTGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || nft == nil {
		return nil, errNFTNotFound
	}
	return nft.Clone(), nil
}

// Listing returns the listing for a username without mutating state.
func (e *Engine) Listing(username string) (*Listing, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	listing, ok, err := e.state.MarketplaceListingGet(username)
	if err != nil {
		return nil, err
	}
	if !ok || listing == nil {
		return nil, errListingNotFound
	}
	return listing.Clone(), nil
}

// Offer returns a buyer's offer on a username without mutating state.
func (e *Engine) Offer(username string, buyer [20]byte) (*Offer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	offer, ok, err := e.state.MarketplaceOfferGet(username, buyer)
	if err != nil {
		return nil, err
	}
	if !ok || offer == nil {
		return nil, errOfferNotFound
	}
	return offer.Clone(), nil
}
