package token

import (
	"errors"
	"math/big"
)

var errNilState = errors.New("token engine: state not configured")

// State is the persistence backend consumed by the token engine. Implemented
// by core/state.Manager for durable ledgers and by in-memory mocks in tests.
type State interface {
	MintPut(*Mint) error
	MintGet(id [32]byte) (*Mint, bool)
	TokenAccountPut(*Account) error
	TokenAccountGet(id [32]byte) (*Account, bool)
}

// Engine implements the token primitive consumed by the market protocol:
// mint creation, token accounts and balance movement. Authorization beyond
// mint authority is the calling engine's responsibility; transfers here check
// balances only, mirroring the ledger's transfer instruction.
type Engine struct {
	state State
}

// NewEngine creates a token engine without a state backend. Callers must
// configure one via SetState before use.
func NewEngine() *Engine {
	return &Engine{}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// CreateMint registers a new asset type under the given identifier.
func (e *Engine) CreateMint(id [32]byte, authority [20]byte, decimals uint8) (*Mint, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok := e.state.MintGet(id); ok {
		return nil, ErrMintExists
	}
	mint := &Mint{ID: id, Authority: authority, Decimals: decimals, Supply: big.NewInt(0)}
	sanitized, err := SanitizeMint(mint)
	if err != nil {
		return nil, err
	}
	if err := e.state.MintPut(sanitized); err != nil {
		return nil, err
	}
	return sanitized.Clone(), nil
}

// CreateAccount opens a token account for the given mint and owner.
func (e *Engine) CreateAccount(id, mintID [32]byte, owner [20]byte) (*Account, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok := e.state.MintGet(mintID); !ok {
		return nil, ErrMintNotFound
	}
	if _, ok := e.state.TokenAccountGet(id); ok {
		return nil, ErrAccountExists
	}
	acct := &Account{ID: id, Mint: mintID, Owner: owner, Balance: big.NewInt(0)}
	sanitized, err := SanitizeAccount(acct)
	if err != nil {
		return nil, err
	}
	if err := e.state.TokenAccountPut(sanitized); err != nil {
		return nil, err
	}
	return sanitized.Clone(), nil
}

// Mint returns the mint record for the given identifier.
func (e *Engine) Mint(id [32]byte) (*Mint, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	mint, ok := e.state.MintGet(id)
	if !ok {
		return nil, ErrMintNotFound
	}
	return mint.Clone(), nil
}

// Account returns the token account record for the given identifier.
func (e *Engine) Account(id [32]byte) (*Account, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	acct, ok := e.state.TokenAccountGet(id)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acct.Clone(), nil
}

// Balance returns the balance of the given token account.
func (e *Engine) Balance(id [32]byte) (*big.Int, error) {
	acct, err := e.Account(id)
	if err != nil {
		return nil, err
	}
	return acct.Balance, nil
}

// MintTo issues new supply into the destination account. Only the mint
// authority may mint.
func (e *Engine) MintTo(mintID, dest [32]byte, amount *big.Int, caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	mint, ok := e.state.MintGet(mintID)
	if !ok {
		return ErrMintNotFound
	}
	if mint.Authority != caller {
		return ErrUnauthorized
	}
	acct, ok := e.state.TokenAccountGet(dest)
	if !ok {
		return ErrAccountNotFound
	}
	if acct.Mint != mintID {
		return ErrMintMismatch
	}
	mint = mint.Clone()
	acct = acct.Clone()
	mint.Supply = new(big.Int).Add(mint.Supply, amount)
	acct.Balance = new(big.Int).Add(acct.Balance, amount)
	if err := e.state.MintPut(mint); err != nil {
		return err
	}
	return e.state.TokenAccountPut(acct)
}

// Transfer moves amount between two accounts of the same mint. A zero amount
// is a no-op.
func (e *Engine) Transfer(from, to [32]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	src, ok := e.state.TokenAccountGet(from)
	if !ok {
		return ErrAccountNotFound
	}
	dst, ok := e.state.TokenAccountGet(to)
	if !ok {
		return ErrAccountNotFound
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	src = src.Clone()
	dst = dst.Clone()
	src.Balance = new(big.Int).Sub(src.Balance, amount)
	dst.Balance = new(big.Int).Add(dst.Balance, amount)
	if err := e.state.TokenAccountPut(src); err != nil {
		return err
	}
	return e.state.TokenAccountPut(dst)
}

// CanTransfer reports whether a transfer of amount out of from would succeed,
// without mutating state. Market transitions use it to validate every leg of
// an operation before committing any of them.
func (e *Engine) CanTransfer(from [32]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	src, ok := e.state.TokenAccountGet(from)
	if !ok {
		return ErrAccountNotFound
	}
	if src.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}
