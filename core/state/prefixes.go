package state

var (
	accountPrefix        = []byte("account/")
	platformConfigKeyTag = []byte("platform-config")
	profilePrefix        = []byte("profile/")
	poolPrefix           = []byte("market/pool/")
	holdingPrefix        = []byte("market/holding/")
	tierPrefix           = []byte("sub/tier/")
	tierCounterPrefix    = []byte("sub/tier-counter/")
	subscriptionPrefix   = []byte("sub/record/")
	groupPrefix          = []byte("group/")
	groupMemberPrefix    = []byte("group/member/")
	stakePrefix          = []byte("gov/stake/")
	totalStakedKeyTag    = []byte("gov/total-staked")
	proposalPrefix       = []byte("gov/proposal/")
	votePrefix           = []byte("gov/vote/")
	nftPrefix            = []byte("nft/")
	listingPrefix        = []byte("nft/listing/")
	offerPrefix          = []byte("nft/offer/")
	vaultPrefix          = []byte("vault/")
)
