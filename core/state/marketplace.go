package state

import (
	"math/big"

	"creatorledger/native/marketplace"
)

type storedNFT struct {
	Username    string
	Owner       [20]byte
	MetadataURI string
	Verified    bool
	MintedAt    uint64
}

type storedListing struct {
	Username string
	Seller   [20]byte
	Price    *big.Int
	Active   bool
	ListedAt uint64
}

type storedOffer struct {
	Username  string
	Buyer     [20]byte
	Amount    *big.Int
	Active    bool
	CreatedAt uint64
}

// MarketplaceNFTGet loads the ownership record for a username.
func (m *Manager) MarketplaceNFTGet(username string) (*marketplace.UsernameNFT, bool, error) {
	stored := new(storedNFT)
	ok, err := m.getRecord(nftKey(username), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &marketplace.UsernameNFT{
		Username:    stored.Username,
		Owner:       stored.Owner,
		MetadataURI: stored.MetadataURI,
		Verified:    stored.Verified,
		MintedAt:    int64(stored.MintedAt),
	}, true, nil
}

// MarketplaceNFTPut persists the ownership record for a username.
func (m *Manager) MarketplaceNFTPut(nft *marketplace.UsernameNFT) error {
	return m.putRecord(nftKey(nft.Username), &storedNFT{
		Username:    nft.Username,
		Owner:       nft.Owner,
		MetadataURI: nft.MetadataURI,
		Verified:    nft.Verified,
		MintedAt:    uint64(nft.MintedAt),
	})
}

// MarketplaceListingGet loads the listing for a username.
func (m *Manager) MarketplaceListingGet(username string) (*marketplace.Listing, bool, error) {
	stored := new(storedListing)
	ok, err := m.getRecord(listingKey(username), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &marketplace.Listing{
		Username: stored.Username,
		Seller:   stored.Seller,
		Price:    bigOrZero(stored.Price),
		Active:   stored.Active,
		ListedAt: int64(stored.ListedAt),
	}, true, nil
}

// MarketplaceListingPut persists the listing for a username.
func (m *Manager) MarketplaceListingPut(listing *marketplace.Listing) error {
	return m.putRecord(listingKey(listing.Username), &storedListing{
		Username: listing.Username,
		Seller:   listing.Seller,
		Price:    bigOrZero(listing.Price),
		Active:   listing.Active,
		ListedAt: uint64(listing.ListedAt),
	})
}

// MarketplaceOfferGet loads one buyer's offer on a username.
func (m *Manager) MarketplaceOfferGet(username string, buyer [20]byte) (*marketplace.Offer, bool, error) {
	stored := new(storedOffer)
	ok, err := m.getRecord(offerKey(username, buyer), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &marketplace.Offer{
		Username:  stored.Username,
		Buyer:     stored.Buyer,
		Amount:    bigOrZero(stored.Amount),
		Active:    stored.Active,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// MarketplaceOfferPut persists a buyer's offer.
func (m *Manager) MarketplaceOfferPut(offer *marketplace.Offer) error {
	return m.putRecord(offerKey(offer.Username, offer.Buyer), &storedOffer{
		Username:  offer.Username,
		Buyer:     offer.Buyer,
		Amount:    bigOrZero(offer.Amount),
		Active:    offer.Active,
		CreatedAt: uint64(offer.CreatedAt),
	})
}
