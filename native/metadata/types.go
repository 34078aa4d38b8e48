package metadata

import (
	"fmt"
	"strings"
)

// MaxCreators bounds the creator list of a registered asset.
const MaxCreators = 6

// creatorShareTotal is the value a non-empty creator list must sum to.
const creatorShareTotal = 100

// Creator is one royalty participant registered with an asset.
type Creator struct {
	Address  [20]byte
	Verified bool
	Share    uint8
}

// Metadata is the registered description of a non-fungible asset. Only the
// fields the market protocol inspects are modelled; richer off-ledger schemas
// are out of scope.
type Metadata struct {
	Address      [32]byte
	AssetID      [32]byte
	Name         string
	Symbol       string
	URI          string
	SellerFeeBps uint32
	Creators     []Creator
	PrimarySale  bool
	IsMutable    bool
}

// Clone returns a deep copy of the metadata record.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Creators = append([]Creator(nil), m.Creators...)
	return &clone
}

// Sanitize validates the metadata record and returns a cloned instance with
// trimmed string fields. The original value is not mutated.
func Sanitize(m *Metadata) (*Metadata, error) {
	if m == nil {
		return nil, fmt.Errorf("metadata: nil record")
	}
	clone := m.Clone()
	clone.Name = strings.TrimSpace(clone.Name)
	clone.Symbol = strings.TrimSpace(clone.Symbol)
	clone.URI = strings.TrimSpace(clone.URI)
	if clone.AssetID == ([32]byte{}) {
		return nil, fmt.Errorf("metadata: asset id must not be zero")
	}
	if clone.Name == "" {
		return nil, fmt.Errorf("metadata: name required")
	}
	if clone.SellerFeeBps > 10_000 {
		return nil, fmt.Errorf("metadata: seller fee bps out of range: %d", clone.SellerFeeBps)
	}
	if len(clone.Creators) > MaxCreators {
		return nil, fmt.Errorf("metadata: creator list exceeds %d entries", MaxCreators)
	}
	if len(clone.Creators) > 0 {
		var sum int
		for _, c := range clone.Creators {
			if c.Share == 0 {
				return nil, fmt.Errorf("metadata: creator share must be positive")
			}
			sum += int(c.Share)
		}
		if sum != creatorShareTotal {
			return nil, fmt.Errorf("metadata: creator shares sum to %d, want %d", sum, creatorShareTotal)
		}
	}
	return clone, nil
}
