package state

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"nftmarket/native/market"
	"nftmarket/native/metadata"
	"nftmarket/native/token"
	"nftmarket/storage"
)

// Manager is the durable account table behind the market, token and metadata
// engines. Records are RLP-encoded under per-family prefixes, keyed by the
// same derived addresses the engines use, so a record is always located by
// recomputing its identity rather than following stored references.
type Manager struct {
	mu sync.Mutex
	db storage.Database
}

// NewManager creates a state manager over the given database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Put(key, encoded)
}

func (m *Manager) get(key []byte, out interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, err := m.db.Has(key)
	if err != nil || !ok {
		return false
	}
	data, err := m.db.Get(key)
	if err != nil {
		return false
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false
	}
	return true
}

// --- token.State ---

type storedMint struct {
	ID        [32]byte
	Authority [20]byte
	Decimals  uint8
	Supply    *big.Int
}

func (m *Manager) MintPut(mint *token.Mint) error {
	sanitized, err := token.SanitizeMint(mint)
	if err != nil {
		return err
	}
	rec := storedMint{
		ID:        sanitized.ID,
		Authority: sanitized.Authority,
		Decimals:  sanitized.Decimals,
		Supply:    sanitized.Supply,
	}
	return m.put(prefixed(tokenMintPrefix, sanitized.ID), &rec)
}

func (m *Manager) MintGet(id [32]byte) (*token.Mint, bool) {
	var rec storedMint
	if !m.get(prefixed(tokenMintPrefix, id), &rec) {
		return nil, false
	}
	return &token.Mint{ID: rec.ID, Authority: rec.Authority, Decimals: rec.Decimals, Supply: rec.Supply}, true
}

type storedTokenAccount struct {
	ID      [32]byte
	Mint    [32]byte
	Owner   [20]byte
	Balance *big.Int
}

func (m *Manager) TokenAccountPut(acct *token.Account) error {
	sanitized, err := token.SanitizeAccount(acct)
	if err != nil {
		return err
	}
	rec := storedTokenAccount{
		ID:      sanitized.ID,
		Mint:    sanitized.Mint,
		Owner:   sanitized.Owner,
		Balance: sanitized.Balance,
	}
	return m.put(prefixed(tokenAccountPrefix, sanitized.ID), &rec)
}

func (m *Manager) TokenAccountGet(id [32]byte) (*token.Account, bool) {
	var rec storedTokenAccount
	if !m.get(prefixed(tokenAccountPrefix, id), &rec) {
		return nil, false
	}
	return &token.Account{ID: rec.ID, Mint: rec.Mint, Owner: rec.Owner, Balance: rec.Balance}, true
}

// --- metadata.State ---

type storedCreator struct {
	Address  [20]byte
	Verified bool
	Share    uint8
}

type storedMetadata struct {
	Address      [32]byte
	AssetID      [32]byte
	Name         string
	Symbol       string
	URI          string
	SellerFeeBps uint32
	Creators     []storedCreator
	PrimarySale  bool
	IsMutable    bool
}

func (m *Manager) MetadataPut(meta *metadata.Metadata) error {
	sanitized, err := metadata.Sanitize(meta)
	if err != nil {
		return err
	}
	rec := storedMetadata{
		Address:      sanitized.Address,
		AssetID:      sanitized.AssetID,
		Name:         sanitized.Name,
		Symbol:       sanitized.Symbol,
		URI:          sanitized.URI,
		SellerFeeBps: sanitized.SellerFeeBps,
		PrimarySale:  sanitized.PrimarySale,
		IsMutable:    sanitized.IsMutable,
	}
	for _, c := range sanitized.Creators {
		rec.Creators = append(rec.Creators, storedCreator{Address: c.Address, Verified: c.Verified, Share: c.Share})
	}
	return m.put(prefixed(metadataPrefix, sanitized.Address), &rec)
}

func (m *Manager) MetadataGet(addr [32]byte) (*metadata.Metadata, bool) {
	var rec storedMetadata
	if !m.get(prefixed(metadataPrefix, addr), &rec) {
		return nil, false
	}
	meta := &metadata.Metadata{
		Address:      rec.Address,
		AssetID:      rec.AssetID,
		Name:         rec.Name,
		Symbol:       rec.Symbol,
		URI:          rec.URI,
		SellerFeeBps: rec.SellerFeeBps,
		PrimarySale:  rec.PrimarySale,
		IsMutable:    rec.IsMutable,
	}
	for _, c := range rec.Creators {
		meta.Creators = append(meta.Creators, metadata.Creator{Address: c.Address, Verified: c.Verified, Share: c.Share})
	}
	return meta, true
}

// --- market.State ---

type storedPool struct {
	ID        [32]byte
	Owner     [20]byte
	SaleMint  [32]byte
	CreatedAt uint64
}

func (m *Manager) PoolPut(pool *market.Pool) error {
	if pool == nil {
		return fmt.Errorf("state: nil pool")
	}
	rec := storedPool{
		ID:        pool.ID,
		Owner:     pool.Owner,
		SaleMint:  pool.SaleMint,
		CreatedAt: uint64(pool.CreatedAt),
	}
	return m.put(prefixed(marketPoolPrefix, pool.ID), &rec)
}

func (m *Manager) PoolGet(id [32]byte) (*market.Pool, bool) {
	var rec storedPool
	if !m.get(prefixed(marketPoolPrefix, id), &rec) {
		return nil, false
	}
	return &market.Pool{ID: rec.ID, Owner: rec.Owner, SaleMint: rec.SaleMint, CreatedAt: int64(rec.CreatedAt)}, true
}

type storedSaleManager struct {
	Address       [32]byte
	Pool          [32]byte
	AssetID       [32]byte
	Custody       [32]byte
	EscrowPot     [32]byte
	AuctionRecord [32]byte
	State         uint8
	Listings      uint64
}

func (m *Manager) SaleManagerPut(mgr *market.SaleManager) error {
	sanitized, err := market.SanitizeSaleManager(mgr)
	if err != nil {
		return err
	}
	rec := storedSaleManager{
		Address:       sanitized.Address,
		Pool:          sanitized.Pool,
		AssetID:       sanitized.AssetID,
		Custody:       sanitized.Custody,
		EscrowPot:     sanitized.EscrowPot,
		AuctionRecord: sanitized.AuctionRecord,
		State:         uint8(sanitized.State),
		Listings:      sanitized.Listings,
	}
	return m.put(prefixed(marketMgrPrefix, sanitized.Address), &rec)
}

func (m *Manager) SaleManagerGet(addr [32]byte) (*market.SaleManager, bool) {
	var rec storedSaleManager
	if !m.get(prefixed(marketMgrPrefix, addr), &rec) {
		return nil, false
	}
	return &market.SaleManager{
		Address:       rec.Address,
		Pool:          rec.Pool,
		AssetID:       rec.AssetID,
		Custody:       rec.Custody,
		EscrowPot:     rec.EscrowPot,
		AuctionRecord: rec.AuctionRecord,
		State:         market.SaleState(rec.State),
		Listings:      rec.Listings,
	}, true
}

type storedDistribution struct {
	Recipient [20]byte
	Share     uint8
}

type storedEscrowPot struct {
	Address      [32]byte
	SaleManager  [32]byte
	Mint         [32]byte
	Vault        [32]byte
	Seller       [20]byte
	Price        *big.Int
	Distribution []storedDistribution
	Balance      *big.Int
	Proceeds     *big.Int
	Withdrawn    []*big.Int
}

func (m *Manager) EscrowPotPut(pot *market.EscrowPot) error {
	sanitized, err := market.SanitizeEscrowPot(pot)
	if err != nil {
		return err
	}
	rec := storedEscrowPot{
		Address:     sanitized.Address,
		SaleManager: sanitized.SaleManager,
		Mint:        sanitized.Mint,
		Vault:       sanitized.Vault,
		Seller:      sanitized.Seller,
		Price:       sanitized.Price,
		Balance:     sanitized.Balance,
		Proceeds:    sanitized.Proceeds,
		Withdrawn:   sanitized.Withdrawn,
	}
	for _, d := range sanitized.Distribution {
		rec.Distribution = append(rec.Distribution, storedDistribution{Recipient: d.Recipient, Share: d.Share})
	}
	return m.put(prefixed(marketPotPrefix, sanitized.Address), &rec)
}

func (m *Manager) EscrowPotGet(addr [32]byte) (*market.EscrowPot, bool) {
	var rec storedEscrowPot
	if !m.get(prefixed(marketPotPrefix, addr), &rec) {
		return nil, false
	}
	pot := &market.EscrowPot{
		Address:     rec.Address,
		SaleManager: rec.SaleManager,
		Mint:        rec.Mint,
		Vault:       rec.Vault,
		Seller:      rec.Seller,
		Price:       rec.Price,
		Balance:     rec.Balance,
		Proceeds:    rec.Proceeds,
		Withdrawn:   rec.Withdrawn,
	}
	for _, d := range rec.Distribution {
		pot.Distribution = append(pot.Distribution, market.DistributionEntry{Recipient: d.Recipient, Share: d.Share})
	}
	return pot, true
}

type storedAuction struct {
	Address           [32]byte
	SaleManager       [32]byte
	EndTime           uint64
	State             uint8
	CurrentPrice      *big.Int
	LastBidder        [20]byte
	LastBidderAccount [32]byte
}

func (m *Manager) AuctionPut(a *market.AuctionRecord) error {
	sanitized, err := market.SanitizeAuction(a)
	if err != nil {
		return err
	}
	rec := storedAuction{
		Address:           sanitized.Address,
		SaleManager:       sanitized.SaleManager,
		EndTime:           uint64(sanitized.EndTime),
		State:             uint8(sanitized.State),
		CurrentPrice:      sanitized.CurrentPrice,
		LastBidder:        sanitized.LastBidder,
		LastBidderAccount: sanitized.LastBidderAccount,
	}
	return m.put(prefixed(marketAuctPrefix, sanitized.Address), &rec)
}

func (m *Manager) AuctionGet(addr [32]byte) (*market.AuctionRecord, bool) {
	var rec storedAuction
	if !m.get(prefixed(marketAuctPrefix, addr), &rec) {
		return nil, false
	}
	return &market.AuctionRecord{
		Address:           rec.Address,
		SaleManager:       rec.SaleManager,
		EndTime:           int64(rec.EndTime),
		State:             market.AuctionState(rec.State),
		CurrentPrice:      rec.CurrentPrice,
		LastBidder:        rec.LastBidder,
		LastBidderAccount: rec.LastBidderAccount,
	}, true
}

// --- common.PauseView ---

// SetModulePaused toggles the pause switch for a module.
func (m *Manager) SetModulePaused(module string, paused bool) error {
	key := append(append([]byte(nil), modulePausePrefix...), module...)
	value := []byte{0}
	if paused {
		value = []byte{1}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Put(key, value)
}

// IsPaused reports whether the module is paused. Satisfies common.PauseView.
func (m *Manager) IsPaused(module string) bool {
	key := append(append([]byte(nil), modulePausePrefix...), module...)
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, err := m.db.Has(key)
	if err != nil || !ok {
		return false
	}
	data, err := m.db.Get(key)
	if err != nil {
		return false
	}
	return len(data) == 1 && data[0] == 1
}
