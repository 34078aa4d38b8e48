package market

import (
	"fmt"
	"math/big"
)

// ShareTotal is the fixed number of parts a distribution list partitions sale
// proceeds into.
const ShareTotal = 100

// MaxDistributionEntries bounds the recipients of one escrow pot.
const MaxDistributionEntries = 6

// SaleState is the mechanism a sale manager currently runs. The explicit tag
// replaces nullable references so invalid combinations are unrepresentable.
type SaleState uint8

const (
	SaleIdle SaleState = iota
	SaleFixedPrice
	SaleAuction
)

// Valid reports whether the sale state value is within the supported range.
func (s SaleState) Valid() bool {
	switch s {
	case SaleIdle, SaleFixedPrice, SaleAuction:
		return true
	default:
		return false
	}
}

// AuctionState tracks the auction lifecycle. Values are monotonic: an auction
// never regresses to an earlier state.
type AuctionState uint8

const (
	AuctionNotStarted AuctionState = iota
	AuctionStarted
	AuctionEnded
)

// Valid reports whether the auction state value is within the supported range.
func (s AuctionState) Valid() bool {
	switch s {
	case AuctionNotStarted, AuctionStarted, AuctionEnded:
		return true
	default:
		return false
	}
}

// Pool binds an owner to the fungible mint accepted as payment for every sale
// created under it. Immutable after creation.
type Pool struct {
	ID        [32]byte
	Owner     [20]byte
	SaleMint  [32]byte
	CreatedAt int64
}

// Clone returns a copy of the pool record.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// SaleManager is the per-(pool, asset) record tracking the active sale
// mechanism. Its address is derived from the pool and asset identities, which
// enforces at most one manager per pair.
type SaleManager struct {
	Address       [32]byte
	Pool          [32]byte
	AssetID       [32]byte
	Custody       [32]byte
	EscrowPot     [32]byte
	AuctionRecord [32]byte
	State         SaleState
	Listings      uint64
}

// Clone returns a copy of the sale manager record.
func (m *SaleManager) Clone() *SaleManager {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// SanitizeSaleManager validates the record's internal consistency: the escrow
// pot reference is set iff a sale is active, and the auction reference is set
// iff the auction mechanism is active.
func SanitizeSaleManager(m *SaleManager) (*SaleManager, error) {
	if m == nil {
		return nil, fmt.Errorf("market: nil sale manager")
	}
	clone := m.Clone()
	if !clone.State.Valid() {
		return nil, fmt.Errorf("market: invalid sale state %d", clone.State)
	}
	hasPot := clone.EscrowPot != ([32]byte{})
	hasAuction := clone.AuctionRecord != ([32]byte{})
	if hasPot != (clone.State != SaleIdle) {
		return nil, fmt.Errorf("market: escrow pot reference inconsistent with state %d", clone.State)
	}
	if hasAuction != (clone.State == SaleAuction) {
		return nil, fmt.Errorf("market: auction reference inconsistent with state %d", clone.State)
	}
	return clone, nil
}

// DistributionEntry is one recipient of sale proceeds and its share weight.
type DistributionEntry struct {
	Recipient [20]byte
	Share     uint8
}

// ValidateDistribution checks that the list is non-empty, within bounds, free
// of zero shares and duplicate recipients, and sums exactly to ShareTotal.
func ValidateDistribution(entries []DistributionEntry) error {
	if len(entries) == 0 {
		return ErrInvalidDistribution
	}
	if len(entries) > MaxDistributionEntries {
		return ErrInvalidDistribution
	}
	seen := make(map[[20]byte]struct{}, len(entries))
	var sum int
	for _, entry := range entries {
		if entry.Share == 0 {
			return ErrInvalidDistribution
		}
		if _, dup := seen[entry.Recipient]; dup {
			return ErrInvalidDistribution
		}
		seen[entry.Recipient] = struct{}{}
		sum += int(entry.Share)
	}
	if sum != ShareTotal {
		return ErrInvalidDistribution
	}
	return nil
}

// EscrowPot is the custody record for one listing: the asking price, the
// distribution list allowed to withdraw, and the funds currently held in its
// vault token account. A pot is created fresh for every listing and never
// reused.
type EscrowPot struct {
	Address      [32]byte
	SaleManager  [32]byte
	Mint         [32]byte
	Vault        [32]byte
	Seller       [20]byte
	Price        *big.Int
	Distribution []DistributionEntry
	// Balance mirrors the vault token account and equals deposits minus
	// amounts already withdrawn.
	Balance *big.Int
	// Proceeds is the settled sale amount the distribution list divides:
	// zero until a buyer pays or a winning bid is claimed.
	Proceeds *big.Int
	// Withdrawn tracks per-recipient settled amounts, parallel to
	// Distribution.
	Withdrawn []*big.Int
}

// Clone returns a deep copy of the escrow pot.
func (p *EscrowPot) Clone() *EscrowPot {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Price = cloneAmount(p.Price)
	clone.Balance = cloneAmount(p.Balance)
	clone.Proceeds = cloneAmount(p.Proceeds)
	clone.Distribution = append([]DistributionEntry(nil), p.Distribution...)
	clone.Withdrawn = make([]*big.Int, len(p.Withdrawn))
	for i, w := range p.Withdrawn {
		clone.Withdrawn[i] = cloneAmount(w)
	}
	return &clone
}

// SanitizeEscrowPot validates the pot and returns a cloned instance with
// non-nil amounts and a withdrawal ledger sized to the distribution list.
func SanitizeEscrowPot(p *EscrowPot) (*EscrowPot, error) {
	if p == nil {
		return nil, fmt.Errorf("market: nil escrow pot")
	}
	clone := p.Clone()
	if clone.Address == ([32]byte{}) {
		return nil, fmt.Errorf("market: escrow pot address must not be zero")
	}
	if clone.Price.Sign() <= 0 {
		return nil, fmt.Errorf("market: escrow pot price must be positive")
	}
	if clone.Balance.Sign() < 0 {
		return nil, fmt.Errorf("market: escrow pot balance must be non-negative")
	}
	if err := ValidateDistribution(clone.Distribution); err != nil {
		return nil, err
	}
	if len(clone.Withdrawn) == 0 {
		clone.Withdrawn = make([]*big.Int, len(clone.Distribution))
		for i := range clone.Withdrawn {
			clone.Withdrawn[i] = big.NewInt(0)
		}
	}
	if len(clone.Withdrawn) != len(clone.Distribution) {
		return nil, fmt.Errorf("market: withdrawal ledger length mismatch")
	}
	return clone, nil
}

// AuctionRecord tracks one timed auction: the monotonic lifecycle state, the
// current high bid and bidder, and the fixed end time.
type AuctionRecord struct {
	Address           [32]byte
	SaleManager       [32]byte
	EndTime           int64
	State             AuctionState
	CurrentPrice      *big.Int
	LastBidder        [20]byte
	LastBidderAccount [32]byte
}

// Clone returns a deep copy of the auction record.
func (a *AuctionRecord) Clone() *AuctionRecord {
	if a == nil {
		return nil
	}
	clone := *a
	clone.CurrentPrice = cloneAmount(a.CurrentPrice)
	return &clone
}

// SanitizeAuction validates the auction record and returns a cloned instance
// with a non-nil price.
func SanitizeAuction(a *AuctionRecord) (*AuctionRecord, error) {
	if a == nil {
		return nil, fmt.Errorf("market: nil auction record")
	}
	clone := a.Clone()
	if clone.Address == ([32]byte{}) {
		return nil, fmt.Errorf("market: auction address must not be zero")
	}
	if !clone.State.Valid() {
		return nil, fmt.Errorf("market: invalid auction state %d", clone.State)
	}
	if clone.CurrentPrice.Sign() <= 0 {
		return nil, fmt.Errorf("market: auction price must be positive")
	}
	if clone.EndTime <= 0 {
		return nil, fmt.Errorf("market: auction end time required")
	}
	if clone.State == AuctionStarted && clone.LastBidderAccount == ([32]byte{}) {
		return nil, fmt.Errorf("market: started auction missing bidder account")
	}
	return clone, nil
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
