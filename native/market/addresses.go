package market

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nftmarket/native/metadata"
)

// ProgramConfig carries the well-known program identities the resolver
// derives addresses under. Injected at construction so deployments are not
// tied to hardcoded literals.
type ProgramConfig struct {
	ProgramID         [32]byte
	MetadataProgramID [32]byte
}

// Derivation seeds. Each record family gets its own namespace so derived
// identities cannot collide across families.
const (
	seedCustody = "custody"
	seedPot     = "pot"
	seedVault   = "vault"
	seedAuction = "auction"
)

// Resolver derives custody-account identities from protocol inputs. It holds
// no state; every operation re-derives the addresses it needs instead of
// following stored cross-references.
type Resolver struct {
	cfg ProgramConfig
}

// NewResolver creates a resolver for the given program identities.
func NewResolver(cfg ProgramConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// SaleManagerAddress derives the unique sale manager identity for an asset
// under a pool. At most one sale manager exists per (pool, asset) pair.
func (r *Resolver) SaleManagerAddress(pool, assetID [32]byte) [32]byte {
	return ethcrypto.Keccak256Hash(r.cfg.ProgramID[:], pool[:], assetID[:])
}

// MetadataAddress derives the identity of the asset's registered metadata.
func (r *Resolver) MetadataAddress(assetID [32]byte) [32]byte {
	return metadata.DeriveAddress(r.cfg.MetadataProgramID, assetID)
}

// CustodyAddress derives the token account that holds the asset while a sale
// manager has selling rights over it.
func (r *Resolver) CustodyAddress(saleManager [32]byte) [32]byte {
	return ethcrypto.Keccak256Hash(r.cfg.ProgramID[:], []byte(seedCustody), saleManager[:])
}

// EscrowPotAddress derives the identity of the escrow pot for the seq-th
// listing under a sale manager. Pots are never reused across listings; the
// sequence number keeps each derivation fresh.
func (r *Resolver) EscrowPotAddress(saleManager [32]byte, seq uint64) [32]byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], seq)
	return ethcrypto.Keccak256Hash(r.cfg.ProgramID[:], []byte(seedPot), saleManager[:], n[:])
}

// VaultAddress derives the token account holding an escrow pot's funds.
func (r *Resolver) VaultAddress(pot [32]byte) [32]byte {
	return ethcrypto.Keccak256Hash(r.cfg.ProgramID[:], []byte(seedVault), pot[:])
}

// AuctionAddress derives the identity of the auction record for the seq-th
// listing under a sale manager.
func (r *Resolver) AuctionAddress(saleManager [32]byte, seq uint64) [32]byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], seq)
	return ethcrypto.Keccak256Hash(r.cfg.ProgramID[:], []byte(seedAuction), saleManager[:], n[:])
}

// custodyAuthority is the wallet-shaped authority that owns accounts held in
// custody for a derived record. Only the engine derives it, so custody
// accounts cannot be operated on by outside callers.
func custodyAuthority(addr [32]byte) [20]byte {
	sum := ethcrypto.Keccak256(addr[:])
	var out [20]byte
	copy(out[:], sum[12:])
	return out
}
