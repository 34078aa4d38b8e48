package token

import (
	"fmt"
	"math/big"
)

// Mint describes a fungible or non-fungible asset type. A non-fungible mint
// has zero decimals and a total supply of one.
type Mint struct {
	ID        [32]byte
	Authority [20]byte
	Decimals  uint8
	Supply    *big.Int
}

// Account holds a single owner's balance of one mint.
type Account struct {
	ID      [32]byte
	Mint    [32]byte
	Owner   [20]byte
	Balance *big.Int
}

// Clone returns a deep copy of the mint.
func (m *Mint) Clone() *Mint {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Supply != nil {
		clone.Supply = new(big.Int).Set(m.Supply)
	} else {
		clone.Supply = big.NewInt(0)
	}
	return &clone
}

// Clone returns a deep copy of the token account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	} else {
		clone.Balance = big.NewInt(0)
	}
	return &clone
}

// IsNFT reports whether the mint represents a unique asset.
func (m *Mint) IsNFT() bool {
	if m == nil || m.Supply == nil {
		return false
	}
	return m.Decimals == 0 && m.Supply.Cmp(big.NewInt(1)) == 0
}

// SanitizeMint validates the mint definition and returns a cloned instance
// with a non-nil supply. The original value is not mutated.
func SanitizeMint(m *Mint) (*Mint, error) {
	if m == nil {
		return nil, fmt.Errorf("token: nil mint")
	}
	clone := m.Clone()
	if clone.ID == ([32]byte{}) {
		return nil, fmt.Errorf("token: mint id must not be zero")
	}
	if clone.Supply.Sign() < 0 {
		return nil, fmt.Errorf("token: mint supply must be non-negative")
	}
	return clone, nil
}

// SanitizeAccount validates the token account and returns a cloned instance
// with a non-nil balance. The original value is not mutated.
func SanitizeAccount(a *Account) (*Account, error) {
	if a == nil {
		return nil, fmt.Errorf("token: nil account")
	}
	clone := a.Clone()
	if clone.ID == ([32]byte{}) {
		return nil, fmt.Errorf("token: account id must not be zero")
	}
	if clone.Mint == ([32]byte{}) {
		return nil, fmt.Errorf("token: account mint must not be zero")
	}
	if clone.Balance.Sign() < 0 {
		return nil, fmt.Errorf("token: account balance must be non-negative")
	}
	return clone, nil
}
