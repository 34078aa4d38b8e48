package market

import (
	"errors"
	"math/big"
	"time"

	"nftmarket/core/events"
	"nftmarket/core/types"
	nativecommon "nftmarket/native/common"
	"nftmarket/native/metadata"
	"nftmarket/native/token"
)

var (
	errNilState  = errors.New("market engine: state not configured")
	errNilTokens = errors.New("market engine: token engine not configured")
)

const moduleName = "market"

// State is the persistence backend for market records. Records are kept in an
// account table keyed by their derived addresses; the engine never follows
// in-memory pointers between records.
type State interface {
	PoolPut(*Pool) error
	PoolGet(id [32]byte) (*Pool, bool)
	SaleManagerPut(*SaleManager) error
	SaleManagerGet(addr [32]byte) (*SaleManager, bool)
	EscrowPotPut(*EscrowPot) error
	EscrowPotGet(addr [32]byte) (*EscrowPot, bool)
	AuctionPut(*AuctionRecord) error
	AuctionGet(addr [32]byte) (*AuctionRecord, bool)
}

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// Engine implements the escrow protocol's transition operations over a state
// backend and the token custody primitive. Every operation validates all of
// its preconditions before the first write, so a failed call leaves every
// record exactly as it was.
type Engine struct {
	state    State
	tokens   *token.Engine
	meta     *metadata.Registry
	resolver *Resolver
	emitter  events.Emitter
	nowFn    func() int64
	pauses   nativecommon.PauseView
}

// NewEngine creates a market engine deriving addresses under the given
// program configuration. Callers must configure a state backend and a token
// engine before use.
func NewEngine(cfg ProgramConfig) *Engine {
	return &Engine{
		resolver: NewResolver(cfg),
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetTokens configures the token engine used for fund and asset custody.
func (e *Engine) SetTokens(tokens *token.Engine) { e.tokens = tokens }

// SetMetadata configures the optional metadata registry. When present, the
// engine flips the asset's primary-sale flag on the first completed sale.
func (e *Engine) SetMetadata(meta *metadata.Registry) { e.meta = meta }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the ledger clock. Primarily intended for tests and
// drivers that need deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetPauses configures the module pause switch.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// Resolver exposes the engine's derived-address resolver.
func (e *Engine) Resolver() *Resolver { return e.resolver }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: evt})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokens
	}
	return nativecommon.Guard(e.pauses, moduleName)
}

// InitPool creates the top-level registry binding an owner to the payment
// mint accepted for every sale under it.
func (e *Engine) InitPool(owner [20]byte, poolID, saleMint [32]byte) (*Pool, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if poolID == ([32]byte{}) {
		return nil, ErrNotFound
	}
	if _, ok := e.state.PoolGet(poolID); ok {
		return nil, ErrAlreadyInitialized
	}
	if _, err := e.tokens.Mint(saleMint); err != nil {
		return nil, err
	}
	pool := &Pool{ID: poolID, Owner: owner, SaleMint: saleMint, CreatedAt: e.now()}
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(NewPoolCreatedEvent(pool))
	return pool.Clone(), nil
}

// InitSaleManager creates the per-(pool, asset) sale manager at its derived
// address. Only the pool owner may create managers under its pool. The
// derivation makes creation idempotent in the create-if-absent sense: a
// second call fails with ErrAlreadyInitialized and changes nothing.
func (e *Engine) InitSaleManager(owner [20]byte, poolID, assetID [32]byte) (*SaleManager, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	pool, ok := e.state.PoolGet(poolID)
	if !ok {
		return nil, ErrNotFound
	}
	if pool.Owner != owner {
		return nil, ErrUnauthorized
	}
	mint, err := e.tokens.Mint(assetID)
	if err != nil {
		return nil, err
	}
	if !mint.IsNFT() {
		return nil, token.ErrMintMismatch
	}
	addr := e.resolver.SaleManagerAddress(poolID, assetID)
	if _, ok := e.state.SaleManagerGet(addr); ok {
		return nil, ErrAlreadyInitialized
	}
	custody := e.resolver.CustodyAddress(addr)
	if _, err := e.tokens.CreateAccount(custody, assetID, custodyAuthority(addr)); err != nil {
		return nil, err
	}
	manager := &SaleManager{
		Address: addr,
		Pool:    poolID,
		AssetID: assetID,
		Custody: custody,
		State:   SaleIdle,
	}
	sanitized, err := SanitizeSaleManager(manager)
	if err != nil {
		return nil, err
	}
	if err := e.state.SaleManagerPut(sanitized); err != nil {
		return nil, err
	}
	return sanitized.Clone(), nil
}

// SaleManager returns the sale manager for the (pool, asset) pair.
func (e *Engine) SaleManager(poolID, assetID [32]byte) (*SaleManager, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	manager, ok := e.state.SaleManagerGet(e.resolver.SaleManagerAddress(poolID, assetID))
	if !ok {
		return nil, ErrNotFound
	}
	return manager.Clone(), nil
}

// EscrowPot returns the escrow pot stored at the given derived address.
func (e *Engine) EscrowPot(addr [32]byte) (*EscrowPot, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pot, ok := e.state.EscrowPotGet(addr)
	if !ok {
		return nil, ErrNotFound
	}
	return pot.Clone(), nil
}

// Auction returns the auction record stored at the given derived address.
func (e *Engine) Auction(addr [32]byte) (*AuctionRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	auction, ok := e.state.AuctionGet(addr)
	if !ok {
		return nil, ErrNotFound
	}
	return auction.Clone(), nil
}

func (e *Engine) loadPool(poolID [32]byte) (*Pool, error) {
	pool, ok := e.state.PoolGet(poolID)
	if !ok {
		return nil, ErrNotFound
	}
	return pool, nil
}

func (e *Engine) loadManager(poolID, assetID [32]byte) (*SaleManager, error) {
	manager, ok := e.state.SaleManagerGet(e.resolver.SaleManagerAddress(poolID, assetID))
	if !ok {
		return nil, ErrNotFound
	}
	return manager.Clone(), nil
}

func (e *Engine) loadPot(addr [32]byte) (*EscrowPot, error) {
	pot, ok := e.state.EscrowPotGet(addr)
	if !ok {
		return nil, ErrNotFound
	}
	return pot.Clone(), nil
}

func (e *Engine) loadAuction(addr [32]byte) (*AuctionRecord, error) {
	auction, ok := e.state.AuctionGet(addr)
	if !ok {
		return nil, ErrNotFound
	}
	return auction.Clone(), nil
}

// listingDistribution resolves the distribution list for a new listing. An
// explicit list wins; when empty, the asset's registered creators are used,
// matching the behaviour of the original registration-driven flow.
func (e *Engine) listingDistribution(assetID [32]byte, entries []DistributionEntry) ([]DistributionEntry, error) {
	if len(entries) == 0 && e.meta != nil {
		meta, err := e.meta.Get(assetID)
		if err == nil && len(meta.Creators) > 0 {
			entries = make([]DistributionEntry, len(meta.Creators))
			for i, c := range meta.Creators {
				entries[i] = DistributionEntry{Recipient: c.Address, Share: c.Share}
			}
		}
	}
	if err := ValidateDistribution(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// markPrimarySale flips the asset's primary-sale flag when metadata is
// registered. Assets without metadata are skipped; the flag is advisory and
// never blocks a settlement.
func (e *Engine) markPrimarySale(assetID [32]byte) {
	if e.meta == nil {
		return
	}
	_ = e.meta.MarkPrimarySale(assetID)
}

// requireAssetHolding checks that acct is an account of the asset mint, owned
// by owner, holding the single asset unit.
func (e *Engine) requireAssetHolding(acct *token.Account, assetID [32]byte, owner [20]byte) error {
	if acct.Mint != assetID {
		return token.ErrMintMismatch
	}
	if acct.Owner != owner {
		return ErrUnauthorized
	}
	if acct.Balance.Cmp(big.NewInt(1)) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// requirePaymentAccount checks that acct accepts the pool's sale mint and is
// owned by owner.
func (e *Engine) requirePaymentAccount(acct *token.Account, saleMint [32]byte, owner [20]byte) error {
	if acct.Mint != saleMint {
		return token.ErrMintMismatch
	}
	if acct.Owner != owner {
		return ErrUnauthorized
	}
	return nil
}

var assetUnit = big.NewInt(1)
