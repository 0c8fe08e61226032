package state

import (
	"math/big"

	"creatorledger/native/profile"
)

type storedProfile struct {
	Owner        [20]byte
	Username     string
	TipsSent     *big.Int
	TipsReceived *big.Int
	ReferralCode string
	CreatedAt    uint64
}

// ProfileGet loads the identity record for an owner.
func (m *Manager) ProfileGet(owner [20]byte) (*profile.Profile, bool, error) {
	stored := new(storedProfile)
	ok, err := m.getRecord(profileKey(owner), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &profile.Profile{
		Owner:        stored.Owner,
		Username:     stored.Username,
		TipsSent:     bigOrZero(stored.TipsSent),
		TipsReceived: bigOrZero(stored.TipsReceived),
		ReferralCode: stored.ReferralCode,
		CreatedAt:    int64(stored.CreatedAt),
	}, true, nil
}

// ProfilePut persists the identity record for an owner.
func (m *Manager) ProfilePut(p *profile.Profile) error {
	return m.putRecord(profileKey(p.Owner), &storedProfile{
		Owner:        p.Owner,
		Username:     p.Username,
		TipsSent:     bigOrZero(p.TipsSent),
		TipsReceived: bigOrZero(p.TipsReceived),
		ReferralCode: p.ReferralCode,
		CreatedAt:    uint64(p.CreatedAt),
	})
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
