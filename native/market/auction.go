package market

import (
	"errors"
	"math/big"

	"nftmarket/native/token"
)

// SellNFTByAuction lists an asset for a timed English auction. Custody moves
// exactly as in SellNFT; in addition an auction record is created with the
// starting price and a fixed end time of now plus duration seconds.
func (e *Engine) SellNFTByAuction(seller [20]byte, poolID, assetID, sellerAsset [32]byte, startPrice *big.Int, duration int64, distribution []DistributionEntry) (*AuctionRecord, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return nil, err
	}
	manager, err := e.loadManager(poolID, assetID)
	if err != nil {
		return nil, err
	}
	if manager.State != SaleIdle {
		return nil, ErrSaleActive
	}
	if startPrice == nil || startPrice.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if duration <= 0 {
		return nil, ErrInvalidPrice
	}
	dist, err := e.listingDistribution(assetID, distribution)
	if err != nil {
		return nil, err
	}
	srcAcct, err := e.tokens.Account(sellerAsset)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssetHolding(srcAcct, assetID, seller); err != nil {
		return nil, err
	}

	seq := manager.Listings + 1
	potAddr := e.resolver.EscrowPotAddress(manager.Address, seq)
	vaultAddr := e.resolver.VaultAddress(potAddr)
	auctionAddr := e.resolver.AuctionAddress(manager.Address, seq)
	pot := &EscrowPot{
		Address:      potAddr,
		SaleManager:  manager.Address,
		Mint:         pool.SaleMint,
		Vault:        vaultAddr,
		Seller:       seller,
		Price:        new(big.Int).Set(startPrice),
		Distribution: dist,
		Balance:      big.NewInt(0),
		Proceeds:     big.NewInt(0),
	}
	sanitizedPot, err := SanitizeEscrowPot(pot)
	if err != nil {
		return nil, err
	}
	auction := &AuctionRecord{
		Address:      auctionAddr,
		SaleManager:  manager.Address,
		EndTime:      e.now() + duration,
		State:        AuctionNotStarted,
		CurrentPrice: new(big.Int).Set(startPrice),
	}
	sanitizedAuction, err := SanitizeAuction(auction)
	if err != nil {
		return nil, err
	}
	manager.EscrowPot = potAddr
	manager.AuctionRecord = auctionAddr
	manager.State = SaleAuction
	manager.Listings = seq
	sanitizedManager, err := SanitizeSaleManager(manager)
	if err != nil {
		return nil, err
	}

	if _, err := e.tokens.CreateAccount(vaultAddr, pool.SaleMint, custodyAuthority(potAddr)); err != nil {
		return nil, err
	}
	if err := e.tokens.Transfer(sellerAsset, manager.Custody, assetUnit); err != nil {
		return nil, err
	}
	if err := e.state.EscrowPotPut(sanitizedPot); err != nil {
		return nil, err
	}
	if err := e.state.AuctionPut(sanitizedAuction); err != nil {
		return nil, err
	}
	if err := e.state.SaleManagerPut(sanitizedManager); err != nil {
		return nil, err
	}
	e.emit(NewAuctionListedEvent(sanitizedManager, sanitizedAuction))
	return sanitizedAuction.Clone(), nil
}

// PlaceBid locks a new high bid into the escrow pot's vault. When a previous
// bid exists its funds return to the superseded bidder in the same
// transition, so at most one bidder's funds are escrowed at any observable
// point. Equal bids are rejected; the comparison is strictly greater-than.
//
// Branch decisions are re-derived from the stored auction record, never from
// a caller-supplied snapshot.
func (e *Engine) PlaceBid(bidder [20]byte, poolID, assetID, bidderPayment [32]byte, bidPrice *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	manager, err := e.loadManager(poolID, assetID)
	if err != nil {
		return err
	}
	if manager.State != SaleAuction {
		return ErrSaleNotActive
	}
	auction, err := e.loadAuction(manager.AuctionRecord)
	if err != nil {
		return err
	}
	if auction.State == AuctionEnded || e.now() >= auction.EndTime {
		return ErrAuctionEnded
	}
	if bidPrice == nil || bidPrice.Cmp(auction.CurrentPrice) <= 0 {
		return ErrBidTooLow
	}
	pot, err := e.loadPot(manager.EscrowPot)
	if err != nil {
		return err
	}
	payAcct, err := e.tokens.Account(bidderPayment)
	if err != nil {
		return err
	}
	if err := e.requirePaymentAccount(payAcct, pool.SaleMint, bidder); err != nil {
		return err
	}
	if err := e.tokens.CanTransfer(bidderPayment, bidPrice); err != nil {
		if errors.Is(err, token.ErrInsufficientFunds) {
			return ErrInsufficientFunds
		}
		return err
	}

	// Refund the superseded bidder and lock the new bid as one transition.
	if auction.State == AuctionStarted {
		if err := e.tokens.Transfer(pot.Vault, auction.LastBidderAccount, auction.CurrentPrice); err != nil {
			return err
		}
		pot.Balance = new(big.Int).Sub(pot.Balance, auction.CurrentPrice)
	}
	if err := e.tokens.Transfer(bidderPayment, pot.Vault, bidPrice); err != nil {
		return err
	}
	pot.Balance = new(big.Int).Add(pot.Balance, bidPrice)
	auction.CurrentPrice = new(big.Int).Set(bidPrice)
	auction.LastBidder = bidder
	auction.LastBidderAccount = bidderPayment
	auction.State = AuctionStarted
	sanitized, err := SanitizeAuction(auction)
	if err != nil {
		return err
	}
	if err := e.state.EscrowPotPut(pot); err != nil {
		return err
	}
	if err := e.state.AuctionPut(sanitized); err != nil {
		return err
	}
	e.emit(NewAuctionBidEvent(manager, sanitized))
	return nil
}

// ClaimBid settles an ended auction: the asset moves from manager custody to
// the recorded winner's account, and the pot's proceeds become available to
// the distribution list. Any caller may claim on the winner's behalf; the
// custody target is read from the auction record, not from the caller.
func (e *Engine) ClaimBid(caller [20]byte, poolID, assetID, winnerAsset [32]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, err := e.loadPool(poolID); err != nil {
		return err
	}
	manager, err := e.loadManager(poolID, assetID)
	if err != nil {
		return err
	}
	if manager.State != SaleAuction {
		return ErrSaleNotActive
	}
	auction, err := e.loadAuction(manager.AuctionRecord)
	if err != nil {
		return err
	}
	if auction.State != AuctionEnded && e.now() < auction.EndTime {
		return ErrAuctionNotEnded
	}
	if auction.State == AuctionNotStarted {
		return ErrNoBids
	}
	pot, err := e.loadPot(manager.EscrowPot)
	if err != nil {
		return err
	}
	if pot.Proceeds.Sign() > 0 {
		// Already claimed; the winner holds the asset.
		return ErrSaleAlreadyFilled
	}
	destAcct, err := e.tokens.Account(winnerAsset)
	if err != nil {
		return err
	}
	if destAcct.Mint != assetID {
		return token.ErrMintMismatch
	}
	if destAcct.Owner != auction.LastBidder {
		return ErrUnauthorized
	}

	if err := e.tokens.Transfer(manager.Custody, winnerAsset, assetUnit); err != nil {
		return err
	}
	// Lazy end-time transition: the record is marked Ended on the claim
	// check rather than by a background timer.
	auction.State = AuctionEnded
	sanitized, err := SanitizeAuction(auction)
	if err != nil {
		return err
	}
	pot.Proceeds = new(big.Int).Set(auction.CurrentPrice)
	if err := e.state.AuctionPut(sanitized); err != nil {
		return err
	}
	if err := e.state.EscrowPotPut(pot); err != nil {
		return err
	}
	// Settlement idles the manager so the winner can list the asset again.
	// The pot stays withdrawable at its own address.
	manager.EscrowPot = [32]byte{}
	manager.AuctionRecord = [32]byte{}
	manager.State = SaleIdle
	sanitizedManager, err := SanitizeSaleManager(manager)
	if err != nil {
		return err
	}
	if err := e.state.SaleManagerPut(sanitizedManager); err != nil {
		return err
	}
	e.markPrimarySale(assetID)
	e.emit(NewAuctionClaimedEvent(sanitizedManager, sanitized, caller))
	return nil
}
