package state

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// deriveKey computes the storage key for a record from its role tag and seed
// components. The derivation is pure: distinct seed tuples hash to distinct
// keys, so the same logical entity always resolves to the same slot.
func deriveKey(tag []byte, seeds ...[]byte) []byte {
	size := len(tag)
	for _, seed := range seeds {
		size += len(seed)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, tag...)
	for _, seed := range seeds {
		buf = append(buf, seed...)
	}
	return ethcrypto.Keccak256(buf)
}

func uint64Seed(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func accountKey(addr []byte) []byte {
	return deriveKey(accountPrefix, addr)
}

func platformConfigKey() []byte {
	return deriveKey(platformConfigKeyTag)
}

func profileKey(owner [20]byte) []byte {
	return deriveKey(profilePrefix, owner[:])
}

func poolKey(creator [20]byte) []byte {
	return deriveKey(poolPrefix, creator[:])
}

func holdingKey(holder, creator [20]byte) []byte {
	return deriveKey(holdingPrefix, holder[:], creator[:])
}

func tierKey(creator [20]byte, tierID uint64) []byte {
	return deriveKey(tierPrefix, creator[:], uint64Seed(tierID))
}

func tierCounterKey(creator [20]byte) []byte {
	return deriveKey(tierCounterPrefix, creator[:])
}

func subscriptionKey(subscriber, creator [20]byte, tierID uint64) []byte {
	return deriveKey(subscriptionPrefix, subscriber[:], creator[:], uint64Seed(tierID))
}

// GroupID derives the 32-byte identifier of a group from its founding
// creator and unique-per-creator name.
func GroupID(creator [20]byte, name string) [32]byte {
	var id [32]byte
	copy(id[:], deriveKey(groupPrefix, creator[:], []byte(name)))
	return id
}

func groupKey(id [32]byte) []byte {
	return deriveKey(groupPrefix, id[:])
}

func groupMemberKey(group [32]byte, wallet [20]byte) []byte {
	return deriveKey(groupMemberPrefix, group[:], wallet[:])
}

func stakeKey(staker [20]byte) []byte {
	return deriveKey(stakePrefix, staker[:])
}

func totalStakedKey() []byte {
	return deriveKey(totalStakedKeyTag)
}

// ProposalID derives the 32-byte identifier of a proposal from its proposer
// and unique-per-proposer title.
func ProposalID(proposer [20]byte, title string) [32]byte {
	var id [32]byte
	copy(id[:], deriveKey(proposalPrefix, proposer[:], []byte(title)))
	return id
}

func proposalKey(id [32]byte) []byte {
	return deriveKey(proposalPrefix, id[:])
}

func voteKey(proposal [32]byte, voter [20]byte) []byte {
	return deriveKey(votePrefix, proposal[:], voter[:])
}

func nftKey(username string) []byte {
	return deriveKey(nftPrefix, []byte(username))
}

func listingKey(username string) []byte {
	return deriveKey(listingPrefix, []byte(username))
}

func offerKey(username string, buyer [20]byte) []byte {
	return deriveKey(offerPrefix, []byte(username), buyer[:])
}

// VaultAddress derives the account address holding module-owned funds (offer
// escrow, stake principal). No private key maps to a derived vault, so the
// balance can only move through module instructions.
func VaultAddress(tag string) [20]byte {
	var addr [20]byte
	copy(addr[:], deriveKey(vaultPrefix, []byte(tag)))
	return addr
}
