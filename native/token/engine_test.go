package token

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

type mockState struct {
	mints    map[[32]byte]*Mint
	accounts map[[32]byte]*Account
}

func newMockState() *mockState {
	return &mockState{
		mints:    make(map[[32]byte]*Mint),
		accounts: make(map[[32]byte]*Account),
	}
}

func (m *mockState) MintPut(mint *Mint) error {
	sanitized, err := SanitizeMint(mint)
	if err != nil {
		return err
	}
	m.mints[sanitized.ID] = sanitized.Clone()
	return nil
}

func (m *mockState) MintGet(id [32]byte) (*Mint, bool) {
	mint, ok := m.mints[id]
	if !ok {
		return nil, false
	}
	return mint.Clone(), true
}

func (m *mockState) TokenAccountPut(acct *Account) error {
	sanitized, err := SanitizeAccount(acct)
	if err != nil {
		return err
	}
	m.accounts[sanitized.ID] = sanitized.Clone()
	return nil
}

func (m *mockState) TokenAccountGet(id [32]byte) (*Account, bool) {
	acct, ok := m.accounts[id]
	if !ok {
		return nil, false
	}
	return acct.Clone(), true
}

func testAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func testID(fill byte) [32]byte {
	var id [32]byte
	copy(id[:], bytes.Repeat([]byte{fill}, 32))
	return id
}

func newTestEngine() *Engine {
	engine := NewEngine()
	engine.SetState(newMockState())
	return engine
}

func TestCreateMintDuplicate(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	if _, err := engine.CreateMint(testID(0x10), authority, 9); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := engine.CreateMint(testID(0x10), authority, 9); !errors.Is(err, ErrMintExists) {
		t.Fatalf("expected ErrMintExists, got %v", err)
	}
}

func TestCreateAccountRequiresMint(t *testing.T) {
	engine := newTestEngine()
	if _, err := engine.CreateAccount(testID(0x20), testID(0x10), testAddress(0x01)); !errors.Is(err, ErrMintNotFound) {
		t.Fatalf("expected ErrMintNotFound, got %v", err)
	}
}

func TestMintToAuthority(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	stranger := testAddress(0x02)
	mint := testID(0x10)
	acct := testID(0x20)
	if _, err := engine.CreateMint(mint, authority, 9); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := engine.CreateAccount(acct, mint, authority); err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := engine.MintTo(mint, acct, big.NewInt(100), stranger); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.MintTo(mint, acct, big.NewInt(100), authority); err != nil {
		t.Fatalf("mint to: %v", err)
	}
	balance, err := engine.Balance(acct)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("balance = %s, want 100", balance)
	}
	stored, err := engine.Mint(mint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if stored.Supply.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("supply = %s, want 100", stored.Supply)
	}
}

func TestTransfer(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	mint := testID(0x10)
	src := testID(0x20)
	dst := testID(0x21)
	if _, err := engine.CreateMint(mint, authority, 9); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := engine.CreateAccount(src, mint, authority); err != nil {
		t.Fatalf("create src: %v", err)
	}
	if _, err := engine.CreateAccount(dst, mint, testAddress(0x02)); err != nil {
		t.Fatalf("create dst: %v", err)
	}
	if err := engine.MintTo(mint, src, big.NewInt(100), authority); err != nil {
		t.Fatalf("fund src: %v", err)
	}

	if err := engine.Transfer(src, dst, big.NewInt(150)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := engine.Transfer(src, dst, big.NewInt(60)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	srcBal, _ := engine.Balance(src)
	dstBal, _ := engine.Balance(dst)
	if srcBal.Cmp(big.NewInt(40)) != 0 || dstBal.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("balances = %s/%s, want 40/60", srcBal, dstBal)
	}

	// Zero amount moves nothing and succeeds.
	if err := engine.Transfer(src, dst, big.NewInt(0)); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	srcBal, _ = engine.Balance(src)
	if srcBal.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("zero transfer moved funds: %s", srcBal)
	}
}

func TestTransferMintMismatch(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	if _, err := engine.CreateMint(testID(0x10), authority, 9); err != nil {
		t.Fatalf("create mint a: %v", err)
	}
	if _, err := engine.CreateMint(testID(0x11), authority, 9); err != nil {
		t.Fatalf("create mint b: %v", err)
	}
	src := testID(0x20)
	dst := testID(0x21)
	if _, err := engine.CreateAccount(src, testID(0x10), authority); err != nil {
		t.Fatalf("create src: %v", err)
	}
	if _, err := engine.CreateAccount(dst, testID(0x11), authority); err != nil {
		t.Fatalf("create dst: %v", err)
	}
	if err := engine.MintTo(testID(0x10), src, big.NewInt(10), authority); err != nil {
		t.Fatalf("fund src: %v", err)
	}
	if err := engine.Transfer(src, dst, big.NewInt(5)); !errors.Is(err, ErrMintMismatch) {
		t.Fatalf("expected ErrMintMismatch, got %v", err)
	}
}

func TestCanTransfer(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	mint := testID(0x10)
	src := testID(0x20)
	if _, err := engine.CreateMint(mint, authority, 9); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := engine.CreateAccount(src, mint, authority); err != nil {
		t.Fatalf("create src: %v", err)
	}
	if err := engine.MintTo(mint, src, big.NewInt(10), authority); err != nil {
		t.Fatalf("fund src: %v", err)
	}
	if err := engine.CanTransfer(src, big.NewInt(10)); err != nil {
		t.Fatalf("can transfer: %v", err)
	}
	if err := engine.CanTransfer(src, big.NewInt(11)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, _ := engine.Balance(src)
	if balance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("CanTransfer mutated balance: %s", balance)
	}
}

func TestIsNFT(t *testing.T) {
	engine := newTestEngine()
	authority := testAddress(0x01)
	nftMint := testID(0x10)
	acct := testID(0x20)
	if _, err := engine.CreateMint(nftMint, authority, 0); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := engine.CreateAccount(acct, nftMint, authority); err != nil {
		t.Fatalf("create account: %v", err)
	}

	mint, err := engine.Mint(nftMint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if mint.IsNFT() {
		t.Fatalf("zero-supply mint reported as NFT")
	}
	if err := engine.MintTo(nftMint, acct, big.NewInt(1), authority); err != nil {
		t.Fatalf("mint unit: %v", err)
	}
	mint, err = engine.Mint(nftMint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !mint.IsNFT() {
		t.Fatalf("unit supply zero-decimal mint not reported as NFT")
	}
}
