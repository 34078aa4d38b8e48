package metadata

import (
	"bytes"
	"errors"
	"testing"
)

type mockState struct {
	records map[[32]byte]*Metadata
}

func newMockState() *mockState {
	return &mockState{records: make(map[[32]byte]*Metadata)}
}

func (m *mockState) MetadataPut(meta *Metadata) error {
	sanitized, err := Sanitize(meta)
	if err != nil {
		return err
	}
	m.records[sanitized.Address] = sanitized.Clone()
	return nil
}

func (m *mockState) MetadataGet(addr [32]byte) (*Metadata, bool) {
	meta, ok := m.records[addr]
	if !ok {
		return nil, false
	}
	return meta.Clone(), true
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

func newTestRegistry() *Registry {
	registry := NewRegistry(testID(0xEE))
	registry.SetState(newMockState())
	return registry
}

func sampleMetadata() *Metadata {
	return &Metadata{
		Name:         "piece",
		Symbol:       "pc",
		URI:          "https://example.org/piece.json",
		SellerFeeBps: 300,
		IsMutable:    true,
		Creators: []Creator{
			{Address: testAddress(0x01), Share: 90},
			{Address: testAddress(0x02), Share: 10},
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	registry := newTestRegistry()
	asset := testID(0x10)
	stored, err := registry.Register(asset, sampleMetadata())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if stored.Address != DeriveAddress(testID(0xEE), asset) {
		t.Fatalf("stored at unexpected address")
	}
	if stored.PrimarySale {
		t.Fatalf("fresh registration marked as sold")
	}

	got, err := registry.Get(asset)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "piece" || len(got.Creators) != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestRegisterOneShot(t *testing.T) {
	registry := newTestRegistry()
	asset := testID(0x10)
	if _, err := registry.Register(asset, sampleMetadata()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := registry.Register(asset, sampleMetadata()); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	registry := newTestRegistry()

	meta := sampleMetadata()
	meta.Name = "   "
	if _, err := registry.Register(testID(0x10), meta); err == nil {
		t.Fatalf("blank name accepted")
	}

	meta = sampleMetadata()
	meta.SellerFeeBps = 10_001
	if _, err := registry.Register(testID(0x11), meta); err == nil {
		t.Fatalf("out-of-range seller fee accepted")
	}

	meta = sampleMetadata()
	meta.Creators[0].Share = 50
	if _, err := registry.Register(testID(0x12), meta); err == nil {
		t.Fatalf("creator shares not summing to 100 accepted")
	}
}

func TestGetUnknownAsset(t *testing.T) {
	registry := newTestRegistry()
	if _, err := registry.Get(testID(0x10)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkPrimarySaleSticky(t *testing.T) {
	registry := newTestRegistry()
	asset := testID(0x10)
	if _, err := registry.Register(asset, sampleMetadata()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.MarkPrimarySale(asset); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := registry.MarkPrimarySale(asset); err != nil {
		t.Fatalf("repeat mark: %v", err)
	}
	got, err := registry.Get(asset)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.PrimarySale {
		t.Fatalf("primary sale flag not set")
	}
	if err := registry.MarkPrimarySale(testID(0x99)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeriveAddressDeterminism(t *testing.T) {
	a := DeriveAddress(testID(0xEE), testID(0x10))
	if a != DeriveAddress(testID(0xEE), testID(0x10)) {
		t.Fatalf("derivation not deterministic")
	}
	if a == DeriveAddress(testID(0xEE), testID(0x11)) {
		t.Fatalf("distinct assets derived the same address")
	}
	if a == DeriveAddress(testID(0xEF), testID(0x10)) {
		t.Fatalf("distinct programs derived the same address")
	}
}
