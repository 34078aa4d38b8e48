package metadata

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	errNilState = errors.New("metadata registry: state not configured")

	// ErrAlreadyRegistered indicates metadata already exists for the asset.
	ErrAlreadyRegistered = errors.New("metadata: already registered")

	// ErrNotFound indicates no metadata has been registered for the asset.
	ErrNotFound = errors.New("metadata: not found")
)

// addressSeed namespaces derived metadata addresses, mirroring the seed the
// original registration service prepends to its derivations.
const addressSeed = "metadata"

// DeriveAddress computes the deterministic identity of an asset's metadata
// record under the given registry program identity.
func DeriveAddress(programID, assetID [32]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte(addressSeed), programID[:], assetID[:])
}

// State is the persistence backend for registered metadata, keyed by the
// derived metadata address.
type State interface {
	MetadataPut(*Metadata) error
	MetadataGet(addr [32]byte) (*Metadata, bool)
}

// Registry stores asset metadata at addresses derived from the registry's
// program identity, so callers can locate a record from the asset id alone.
type Registry struct {
	state     State
	programID [32]byte
}

// NewRegistry creates a registry bound to the given program identity.
func NewRegistry(programID [32]byte) *Registry {
	return &Registry{programID: programID}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state State) { r.state = state }

// Register stores metadata for an asset. Registration is one-shot; a second
// call for the same asset fails with ErrAlreadyRegistered.
func (r *Registry) Register(assetID [32]byte, meta *Metadata) (*Metadata, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	record := meta.Clone()
	if record == nil {
		return nil, fmt.Errorf("metadata: nil record")
	}
	record.AssetID = assetID
	record.Address = DeriveAddress(r.programID, assetID)
	record.PrimarySale = false
	sanitized, err := Sanitize(record)
	if err != nil {
		return nil, err
	}
	if _, ok := r.state.MetadataGet(sanitized.Address); ok {
		return nil, ErrAlreadyRegistered
	}
	if err := r.state.MetadataPut(sanitized); err != nil {
		return nil, err
	}
	return sanitized.Clone(), nil
}

// Get returns the metadata registered for the asset.
func (r *Registry) Get(assetID [32]byte) (*Metadata, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	meta, ok := r.state.MetadataGet(DeriveAddress(r.programID, assetID))
	if !ok {
		return nil, ErrNotFound
	}
	return meta.Clone(), nil
}

// MarkPrimarySale records that the asset completed its first sale. The flag
// is sticky; repeated calls are no-ops.
func (r *Registry) MarkPrimarySale(assetID [32]byte) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	meta, ok := r.state.MetadataGet(DeriveAddress(r.programID, assetID))
	if !ok {
		return ErrNotFound
	}
	if meta.PrimarySale {
		return nil
	}
	meta = meta.Clone()
	meta.PrimarySale = true
	return r.state.MetadataPut(meta)
}
