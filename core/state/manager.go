package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"creatorledger/core/types"
	"creatorledger/storage"
)

// Manager layers typed, deterministically-addressed records over a flat
// key-value store. Writes land in an in-memory overlay first; the node either
// commits the overlay after a successful instruction or reverts it, giving
// every instruction all-or-nothing semantics without backend transactions.
//
// Manager is not safe for concurrent use. The substrate serialises
// instructions over overlapping account sets before they reach it.
type Manager struct {
	db      storage.Database
	overlay map[string][]byte
	journal []journalEntry
}

type journalEntry struct {
	key       string
	prev      []byte
	inOverlay bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		overlay: make(map[string][]byte),
	}
}

// Snapshot marks the current journal position. RevertToSnapshot unwinds every
// write made after the mark.
func (m *Manager) Snapshot() int {
	return len(m.journal)
}

// RevertToSnapshot discards all overlay writes made since the snapshot.
func (m *Manager) RevertToSnapshot(snap int) {
	if snap < 0 || snap > len(m.journal) {
		return
	}
	for i := len(m.journal) - 1; i >= snap; i-- {
		entry := m.journal[i]
		if entry.inOverlay {
			m.overlay[entry.key] = entry.prev
		} else {
			delete(m.overlay, entry.key)
		}
	}
	m.journal = m.journal[:snap]
}

// Commit flushes the overlay into the backing store and resets the journal.
func (m *Manager) Commit() error {
	for key, value := range m.overlay {
		if err := m.db.Put([]byte(key), value); err != nil {
			return fmt.Errorf("state commit: %w", err)
		}
	}
	m.overlay = make(map[string][]byte)
	m.journal = m.journal[:0]
	return nil
}

func (m *Manager) readRaw(key []byte) ([]byte, error) {
	if value, ok := m.overlay[string(key)]; ok {
		return value, nil
	}
	ok, err := m.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return m.db.Get(key)
}

func (m *Manager) writeRaw(key []byte, value []byte) {
	skey := string(key)
	prev, inOverlay := m.overlay[skey]
	m.journal = append(m.journal, journalEntry{key: skey, prev: prev, inOverlay: inOverlay})
	m.overlay[skey] = value
}

// getRecord decodes the record stored at key into out. The second return
// reports presence: an empty value is a tombstone left by deleteRecord.
func (m *Manager) getRecord(key []byte, out interface{}) (bool, error) {
	raw, err := m.readRaw(key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state: decode record: %w", err)
	}
	return true, nil
}

func (m *Manager) putRecord(key []byte, record interface{}) error {
	encoded, err := rlp.EncodeToBytes(record)
	if err != nil {
		return fmt.Errorf("state: encode record: %w", err)
	}
	m.writeRaw(key, encoded)
	return nil
}

// deleteRecord writes a tombstone. The flat store has no delete primitive, so
// absence is represented by an empty value.
func (m *Manager) deleteRecord(key []byte) {
	m.writeRaw(key, nil)
}

// --- Accounts ---

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// GetAccount loads the native balance record for an address, returning a
// zero-value account when none exists yet.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	stored := new(storedAccount)
	ok, err := m.getRecord(accountKey(addr), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	balance := big.NewInt(0)
	if stored.Balance != nil {
		balance = new(big.Int).Set(stored.Balance)
	}
	return &types.Account{Nonce: stored.Nonce, Balance: balance}, nil
}

// PutAccount persists the native balance record for an address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	account = account.Ensure()
	return m.putRecord(accountKey(addr), &storedAccount{
		Nonce:   account.Nonce,
		Balance: new(big.Int).Set(account.Balance),
	})
}
