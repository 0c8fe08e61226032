package marketplace

import "math/big"

// ModuleName identifies marketplace instructions for pause checks and logs.
const ModuleName = "marketplace"

const (
	// MinOffer is the smallest amount an offer may carry.
	MinOffer int64 = 100_000
	// MaxMetadataURILength bounds the metadata pointer stored on a mint.
	MaxMetadataURILength = 200
)

// UsernameNFT is the ownership record for a minted username. The username
// itself is the global, case-sensitive key.
type UsernameNFT struct {
	Username    string
	Owner       [20]byte
	MetadataURI string
	Verified    bool
	MintedAt    int64
}

// Clone returns a deep copy of the record.
func (n *UsernameNFT) Clone() *UsernameNFT {
	if n == nil {
		return nil
	}
	clone := *n
	return &clone
}

// Listing is an active or retired ask for a username.
type Listing struct {
	Username string
	Seller   [20]byte
	Price    *big.Int
	Active   bool
	ListedAt int64
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Price != nil {
		clone.Price = new(big.Int).Set(l.Price)
	}
	return &clone
}

// Offer is a buyer's escrowed bid on a listed username, keyed by
// (username, buyer). The amount sits in the escrow vault until the offer
// settles or is cancelled.
type Offer struct {
	Username  string
	Buyer     [20]byte
	Amount    *big.Int
	Active    bool
	CreatedAt int64
}

// Clone returns a deep copy of the offer.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Amount != nil {
		clone.Amount = new(big.Int).Set(o.Amount)
	}
	return &clone
}
