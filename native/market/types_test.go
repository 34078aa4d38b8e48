package market

import (
	"errors"
	"math/big"
	"testing"
)

func TestValidateDistribution(t *testing.T) {
	a := newTestAddress(0x01)
	b := newTestAddress(0x02)
	cases := []struct {
		name    string
		entries []DistributionEntry
		wantErr bool
	}{
		{name: "single full share", entries: []DistributionEntry{{Recipient: a, Share: 100}}},
		{name: "split", entries: []DistributionEntry{{Recipient: a, Share: 90}, {Recipient: b, Share: 10}}},
		{name: "empty", wantErr: true},
		{name: "under total", entries: []DistributionEntry{{Recipient: a, Share: 99}}, wantErr: true},
		{name: "over total", entries: []DistributionEntry{{Recipient: a, Share: 60}, {Recipient: b, Share: 60}}, wantErr: true},
		{name: "zero share", entries: []DistributionEntry{{Recipient: a, Share: 100}, {Recipient: b, Share: 0}}, wantErr: true},
		{name: "duplicate recipient", entries: []DistributionEntry{{Recipient: a, Share: 50}, {Recipient: a, Share: 50}}, wantErr: true},
		{name: "too many entries", entries: []DistributionEntry{
			{Recipient: newTestAddress(1), Share: 15},
			{Recipient: newTestAddress(2), Share: 15},
			{Recipient: newTestAddress(3), Share: 15},
			{Recipient: newTestAddress(4), Share: 15},
			{Recipient: newTestAddress(5), Share: 15},
			{Recipient: newTestAddress(6), Share: 15},
			{Recipient: newTestAddress(7), Share: 10},
		}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDistribution(tc.entries)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDistribution) {
					t.Fatalf("expected ErrInvalidDistribution, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeSaleManagerConsistency(t *testing.T) {
	base := func() *SaleManager {
		return &SaleManager{
			Address: newTestID(0x01),
			Pool:    newTestID(0x02),
			AssetID: newTestID(0x03),
			Custody: newTestID(0x04),
		}
	}

	if _, err := SanitizeSaleManager(base()); err != nil {
		t.Fatalf("idle manager: %v", err)
	}

	m := base()
	m.EscrowPot = newTestID(0x05)
	if _, err := SanitizeSaleManager(m); err == nil {
		t.Fatalf("idle manager with pot reference accepted")
	}

	m = base()
	m.State = SaleFixedPrice
	if _, err := SanitizeSaleManager(m); err == nil {
		t.Fatalf("fixed-price manager without pot accepted")
	}
	m.EscrowPot = newTestID(0x05)
	if _, err := SanitizeSaleManager(m); err != nil {
		t.Fatalf("fixed-price manager: %v", err)
	}
	m.AuctionRecord = newTestID(0x06)
	if _, err := SanitizeSaleManager(m); err == nil {
		t.Fatalf("fixed-price manager with auction reference accepted")
	}

	m = base()
	m.State = SaleAuction
	m.EscrowPot = newTestID(0x05)
	if _, err := SanitizeSaleManager(m); err == nil {
		t.Fatalf("auction manager without auction record accepted")
	}
	m.AuctionRecord = newTestID(0x06)
	if _, err := SanitizeSaleManager(m); err != nil {
		t.Fatalf("auction manager: %v", err)
	}

	m.State = SaleState(9)
	if _, err := SanitizeSaleManager(m); err == nil {
		t.Fatalf("invalid sale state accepted")
	}
}

func TestSanitizeEscrowPot(t *testing.T) {
	base := func() *EscrowPot {
		return &EscrowPot{
			Address:      newTestID(0x01),
			SaleManager:  newTestID(0x02),
			Mint:         newTestID(0x03),
			Vault:        newTestID(0x04),
			Seller:       newTestAddress(0x05),
			Price:        big.NewInt(100),
			Distribution: []DistributionEntry{{Recipient: newTestAddress(0x05), Share: 100}},
		}
	}

	pot, err := SanitizeEscrowPot(base())
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(pot.Withdrawn) != 1 || pot.Withdrawn[0].Sign() != 0 {
		t.Fatalf("withdrawal ledger not initialized: %v", pot.Withdrawn)
	}
	if pot.Balance == nil || pot.Proceeds == nil {
		t.Fatalf("amounts not defaulted")
	}

	p := base()
	p.Price = big.NewInt(0)
	if _, err := SanitizeEscrowPot(p); err == nil {
		t.Fatalf("zero price accepted")
	}

	p = base()
	p.Distribution = nil
	if _, err := SanitizeEscrowPot(p); !errors.Is(err, ErrInvalidDistribution) {
		t.Fatalf("expected ErrInvalidDistribution, got %v", err)
	}

	p = base()
	p.Withdrawn = []*big.Int{big.NewInt(0), big.NewInt(0)}
	if _, err := SanitizeEscrowPot(p); err == nil {
		t.Fatalf("mismatched withdrawal ledger accepted")
	}
}

func TestEscrowPotCloneIsDeep(t *testing.T) {
	pot, err := SanitizeEscrowPot(&EscrowPot{
		Address:      newTestID(0x01),
		Price:        big.NewInt(100),
		Distribution: []DistributionEntry{{Recipient: newTestAddress(0x05), Share: 100}},
	})
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	clone := pot.Clone()
	clone.Price.SetInt64(999)
	clone.Withdrawn[0].SetInt64(7)
	clone.Distribution[0].Share = 1
	if pot.Price.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("clone shares price")
	}
	if pot.Withdrawn[0].Sign() != 0 {
		t.Fatalf("clone shares withdrawal ledger")
	}
	if pot.Distribution[0].Share != 100 {
		t.Fatalf("clone shares distribution")
	}
}

func TestSanitizeAuction(t *testing.T) {
	base := func() *AuctionRecord {
		return &AuctionRecord{
			Address:      newTestID(0x01),
			SaleManager:  newTestID(0x02),
			EndTime:      1030,
			State:        AuctionNotStarted,
			CurrentPrice: big.NewInt(100),
		}
	}

	if _, err := SanitizeAuction(base()); err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	a := base()
	a.State = AuctionStarted
	if _, err := SanitizeAuction(a); err == nil {
		t.Fatalf("started auction without bidder account accepted")
	}
	a.LastBidderAccount = newTestID(0x07)
	if _, err := SanitizeAuction(a); err != nil {
		t.Fatalf("started auction: %v", err)
	}

	a = base()
	a.EndTime = 0
	if _, err := SanitizeAuction(a); err == nil {
		t.Fatalf("zero end time accepted")
	}

	a = base()
	a.CurrentPrice = big.NewInt(0)
	if _, err := SanitizeAuction(a); err == nil {
		t.Fatalf("zero price accepted")
	}

	a = base()
	a.State = AuctionState(9)
	if _, err := SanitizeAuction(a); err == nil {
		t.Fatalf("invalid auction state accepted")
	}
}
