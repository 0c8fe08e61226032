package types

import "math/big"

// Account is the native balance record backing every identity on the ledger.
// Profiles, pools and the other typed records reference accounts by address;
// the account itself only carries transferable value and a replay nonce.
type Account struct {
	Nonce   uint64   `json:"nonce"`
	Balance *big.Int `json:"balance"`
}

// Ensure normalises a possibly-nil account into a usable zero-value record.
func (a *Account) Ensure() *Account {
	if a == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	if a.Balance == nil {
		a.Balance = big.NewInt(0)
	}
	return a
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return &clone
}
