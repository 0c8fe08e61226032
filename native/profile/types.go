package profile

import "math/big"

// ModuleName tags profile records and pause checks.
const ModuleName = "profile"

// Profile is the identity record for a registered user. The username is
// fixed at registration; the tip counters only ever grow.
type Profile struct {
	Owner        [20]byte `json:"owner"`
	Username     string   `json:"username"`
	TipsSent     *big.Int `json:"tipsSent"`
	TipsReceived *big.Int `json:"tipsReceived"`
	ReferralCode string   `json:"referralCode"`
	CreatedAt    int64    `json:"createdAt"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	if p.TipsSent != nil {
		clone.TipsSent = new(big.Int).Set(p.TipsSent)
	}
	if p.TipsReceived != nil {
		clone.TipsReceived = new(big.Int).Set(p.TipsReceived)
	}
	return &clone
}
