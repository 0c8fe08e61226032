package subscription

import "math/big"

// ModuleName tags subscription records and pause checks.
const ModuleName = "subscription"

const (
	// MaxNameLength bounds tier names.
	MaxNameLength = 50
	// MaxDescriptionLength bounds tier descriptions.
	MaxDescriptionLength = 500
	// SecondsPerDay converts tier durations to expiry timestamps.
	SecondsPerDay = 86_400
)

// Tier is a creator-defined subscription offering. Tier ids are assigned
// sequentially per creator, starting at 1.
type Tier struct {
	Creator      [20]byte `json:"creator"`
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *big.Int `json:"price"`
	DurationDays uint64   `json:"durationDays"`
	Subscribers  uint64   `json:"subscribers"`
	CreatedAt    int64    `json:"createdAt"`
}

// Clone returns a deep copy of the tier.
func (t *Tier) Clone() *Tier {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Price != nil {
		clone.Price = new(big.Int).Set(t.Price)
	}
	return &clone
}

// Record is one subscriber's position on a tier. DurationDays is snapshotted
// from the tier at subscribe time so later tier edits never alter an active
// subscription. Expiry is derived, never stored.
type Record struct {
	Subscriber   [20]byte `json:"subscriber"`
	Creator      [20]byte `json:"creator"`
	TierID       uint64   `json:"tierId"`
	DurationDays uint64   `json:"durationDays"`
	StartedAt    int64    `json:"startedAt"`
	Cancelled    bool     `json:"cancelled"`
}

// ExpiresAt computes the derived expiry timestamp.
func (r *Record) ExpiresAt() int64 {
	return r.StartedAt + int64(r.DurationDays)*SecondsPerDay
}

// ActiveAt reports whether the subscription is live at the given time.
// Cancellation revokes access immediately regardless of remaining paid time.
func (r *Record) ActiveAt(now int64) bool {
	if r == nil || r.Cancelled {
		return false
	}
	return now < r.ExpiresAt()
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
