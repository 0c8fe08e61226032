package state

import (
	"math/big"

	"creatorledger/native/subscription"
)

type storedTier struct {
	Creator      [20]byte
	ID           uint64
	Name         string
	Description  string
	Price        *big.Int
	DurationDays uint64
	Subscribers  uint64
	CreatedAt    uint64
}

type storedSubscription struct {
	Subscriber   [20]byte
	Creator      [20]byte
	TierID       uint64
	DurationDays uint64
	StartedAt    uint64
	Cancelled    bool
}

type storedTierCounter struct {
	Next uint64
}

// SubscriptionTierGet loads a creator's tier by id.
func (m *Manager) SubscriptionTierGet(creator [20]byte, id uint64) (*subscription.Tier, bool, error) {
	stored := new(storedTier)
	ok, err := m.getRecord(tierKey(creator, id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &subscription.Tier{
		Creator:      stored.Creator,
		ID:           stored.ID,
		Name:         stored.Name,
		Description:  stored.Description,
		Price:        bigOrZero(stored.Price),
		DurationDays: stored.DurationDays,
		Subscribers:  stored.Subscribers,
		CreatedAt:    int64(stored.CreatedAt),
	}, true, nil
}

// SubscriptionTierPut persists a creator's tier.
func (m *Manager) SubscriptionTierPut(tier *subscription.Tier) error {
	return m.putRecord(tierKey(tier.Creator, tier.ID), &storedTier{
		Creator:      tier.Creator,
		ID:           tier.ID,
		Name:         tier.Name,
		Description:  tier.Description,
		Price:        bigOrZero(tier.Price),
		DurationDays: tier.DurationDays,
		Subscribers:  tier.Subscribers,
		CreatedAt:    uint64(tier.CreatedAt),
	})
}

// SubscriptionNextTierID advances and returns the creator's tier counter.
// Ids start at 1.
func (m *Manager) SubscriptionNextTierID(creator [20]byte) (uint64, error) {
	key := tierCounterKey(creator)
	counter := new(storedTierCounter)
	if _, err := m.getRecord(key, counter); err != nil {
		return 0, err
	}
	counter.Next++
	if err := m.putRecord(key, counter); err != nil {
		return 0, err
	}
	return counter.Next, nil
}

// SubscriptionGet loads one subscriber's record on a tier.
func (m *Manager) SubscriptionGet(subscriber, creator [20]byte, tierID uint64) (*subscription.Record, bool, error) {
	stored := new(storedSubscription)
	ok, err := m.getRecord(subscriptionKey(subscriber, creator, tierID), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &subscription.Record{
		Subscriber:   stored.Subscriber,
		Creator:      stored.Creator,
		TierID:       stored.TierID,
		DurationDays: stored.DurationDays,
		StartedAt:    int64(stored.StartedAt),
		Cancelled:    stored.Cancelled,
	}, true, nil
}

// SubscriptionPut persists a subscriber's record.
func (m *Manager) SubscriptionPut(record *subscription.Record) error {
	return m.putRecord(subscriptionKey(record.Subscriber, record.Creator, record.TierID), &storedSubscription{
		Subscriber:   record.Subscriber,
		Creator:      record.Creator,
		TierID:       record.TierID,
		DurationDays: record.DurationDays,
		StartedAt:    uint64(record.StartedAt),
		Cancelled:    record.Cancelled,
	})
}
