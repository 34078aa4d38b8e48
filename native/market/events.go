package market

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypePoolCreated    = "market.pool.created"
	EventTypeSaleListed     = "market.sale.listed"
	EventTypeSaleBought     = "market.sale.bought"
	EventTypeSaleRedeemed   = "market.sale.redeemed"
	EventTypeAuctionListed  = "market.auction.listed"
	EventTypeAuctionBid     = "market.auction.bid"
	EventTypeAuctionClaimed = "market.auction.claimed"
	EventTypeFundWithdrawn  = "market.fund.withdrawn"
)

// NewPoolCreatedEvent returns the canonical payload for a new pool.
func NewPoolCreatedEvent(p *Pool) *types.Event {
	attrs := make(map[string]string)
	if p != nil {
		attrs["pool"] = hex.EncodeToString(p.ID[:])
		attrs["owner"] = hex.EncodeToString(p.Owner[:])
		attrs["saleMint"] = hex.EncodeToString(p.SaleMint[:])
	}
	return &types.Event{Type: EventTypePoolCreated, Attributes: attrs}
}

// NewSaleListedEvent returns the payload emitted when an asset is listed for
// a fixed price.
func NewSaleListedEvent(m *SaleManager, pot *EscrowPot) *types.Event {
	attrs := managerAttrs(m)
	if pot != nil {
		attrs["pot"] = hex.EncodeToString(pot.Address[:])
		attrs["price"] = pot.Price.String()
		attrs["seller"] = hex.EncodeToString(pot.Seller[:])
	}
	return &types.Event{Type: EventTypeSaleListed, Attributes: attrs}
}

// NewSaleBoughtEvent returns the payload emitted when a fixed-price listing
// is filled.
func NewSaleBoughtEvent(m *SaleManager, pot *EscrowPot, buyer [20]byte) *types.Event {
	attrs := managerAttrs(m)
	if pot != nil {
		attrs["pot"] = hex.EncodeToString(pot.Address[:])
		attrs["price"] = pot.Price.String()
	}
	attrs["buyer"] = hex.EncodeToString(buyer[:])
	return &types.Event{Type: EventTypeSaleBought, Attributes: attrs}
}

// NewSaleRedeemedEvent returns the payload emitted when an unfilled listing
// is cancelled and the asset returned to the seller.
func NewSaleRedeemedEvent(m *SaleManager, pot *EscrowPot) *types.Event {
	attrs := managerAttrs(m)
	if pot != nil {
		attrs["pot"] = hex.EncodeToString(pot.Address[:])
		attrs["seller"] = hex.EncodeToString(pot.Seller[:])
	}
	return &types.Event{Type: EventTypeSaleRedeemed, Attributes: attrs}
}

// NewAuctionListedEvent returns the payload emitted when an auction opens.
func NewAuctionListedEvent(m *SaleManager, a *AuctionRecord) *types.Event {
	attrs := managerAttrs(m)
	if a != nil {
		attrs["auction"] = hex.EncodeToString(a.Address[:])
		attrs["startPrice"] = a.CurrentPrice.String()
		attrs["endTime"] = strconv.FormatInt(a.EndTime, 10)
	}
	return &types.Event{Type: EventTypeAuctionListed, Attributes: attrs}
}

// NewAuctionBidEvent returns the payload emitted for each accepted bid.
func NewAuctionBidEvent(m *SaleManager, a *AuctionRecord) *types.Event {
	attrs := managerAttrs(m)
	if a != nil {
		attrs["auction"] = hex.EncodeToString(a.Address[:])
		attrs["price"] = a.CurrentPrice.String()
		attrs["bidder"] = hex.EncodeToString(a.LastBidder[:])
	}
	return &types.Event{Type: EventTypeAuctionBid, Attributes: attrs}
}

// NewAuctionClaimedEvent returns the payload emitted when the winner claims
// the asset after the auction ends.
func NewAuctionClaimedEvent(m *SaleManager, a *AuctionRecord, caller [20]byte) *types.Event {
	attrs := managerAttrs(m)
	if a != nil {
		attrs["auction"] = hex.EncodeToString(a.Address[:])
		attrs["price"] = a.CurrentPrice.String()
		attrs["winner"] = hex.EncodeToString(a.LastBidder[:])
	}
	attrs["caller"] = hex.EncodeToString(caller[:])
	return &types.Event{Type: EventTypeAuctionClaimed, Attributes: attrs}
}

// NewFundWithdrawnEvent returns the payload emitted for each settled
// withdrawal from an escrow pot.
func NewFundWithdrawnEvent(pot *EscrowPot, recipient [20]byte, amount *big.Int) *types.Event {
	attrs := make(map[string]string)
	if pot != nil {
		attrs["pot"] = hex.EncodeToString(pot.Address[:])
	}
	attrs["recipient"] = hex.EncodeToString(recipient[:])
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	return &types.Event{Type: EventTypeFundWithdrawn, Attributes: attrs}
}

func managerAttrs(m *SaleManager) map[string]string {
	attrs := make(map[string]string)
	if m == nil {
		return attrs
	}
	attrs["manager"] = hex.EncodeToString(m.Address[:])
	attrs["pool"] = hex.EncodeToString(m.Pool[:])
	attrs["asset"] = hex.EncodeToString(m.AssetID[:])
	return attrs
}
