package market

import (
	"errors"
	"math/big"

	"nftmarket/native/token"
)

// SellNFT lists an asset for a fixed price. The asset moves from the seller's
// account into manager custody and a fresh escrow pot is created with the
// price and distribution list; both commit together.
//
// When distribution is empty the asset's registered creators are used.
func (e *Engine) SellNFT(seller [20]byte, poolID, assetID, sellerAsset [32]byte, price *big.Int, distribution []DistributionEntry) (*EscrowPot, error) {
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
	if price == nil || price.Sign() <= 0 {
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
	pot := &EscrowPot{
		Address:      potAddr,
		SaleManager:  manager.Address,
		Mint:         pool.SaleMint,
		Vault:        vaultAddr,
		Seller:       seller,
		Price:        new(big.Int).Set(price),
		Distribution: dist,
		Balance:      big.NewInt(0),
		Proceeds:     big.NewInt(0),
	}
	sanitizedPot, err := SanitizeEscrowPot(pot)
	if err != nil {
		return nil, err
	}
	manager.EscrowPot = potAddr
	manager.State = SaleFixedPrice
	manager.Listings = seq
	sanitizedManager, err := SanitizeSaleManager(manager)
	if err != nil {
		return nil, err
	}

	// All preconditions hold; commit the transition.
	if _, err := e.tokens.CreateAccount(vaultAddr, pool.SaleMint, custodyAuthority(potAddr)); err != nil {
		return nil, err
	}
	if err := e.tokens.Transfer(sellerAsset, manager.Custody, assetUnit); err != nil {
		return nil, err
	}
	if err := e.state.EscrowPotPut(sanitizedPot); err != nil {
		return nil, err
	}
	if err := e.state.SaleManagerPut(sanitizedManager); err != nil {
		return nil, err
	}
	e.emit(NewSaleListedEvent(sanitizedManager, sanitizedPot))
	return sanitizedPot.Clone(), nil
}

// BuyNFT fills a fixed-price listing: the price moves from the buyer's
// payment account into the escrow pot's vault, and the asset moves from
// manager custody to the buyer. The pot stays funded awaiting withdrawals.
func (e *Engine) BuyNFT(buyer [20]byte, poolID, assetID, buyerAsset, buyerPayment [32]byte) error {
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
	if manager.State != SaleFixedPrice {
		return ErrSaleNotActive
	}
	pot, err := e.loadPot(manager.EscrowPot)
	if err != nil {
		return err
	}
	if pot.Proceeds.Sign() > 0 {
		return ErrSaleAlreadyFilled
	}
	payAcct, err := e.tokens.Account(buyerPayment)
	if err != nil {
		return err
	}
	if err := e.requirePaymentAccount(payAcct, pool.SaleMint, buyer); err != nil {
		return err
	}
	if err := e.tokens.CanTransfer(buyerPayment, pot.Price); err != nil {
		if errors.Is(err, token.ErrInsufficientFunds) {
			return ErrInsufficientFunds
		}
		return err
	}
	assetAcct, err := e.tokens.Account(buyerAsset)
	if err != nil {
		return err
	}
	if assetAcct.Mint != assetID {
		return token.ErrMintMismatch
	}
	if assetAcct.Owner != buyer {
		return ErrUnauthorized
	}

	if err := e.tokens.Transfer(buyerPayment, pot.Vault, pot.Price); err != nil {
		return err
	}
	if err := e.tokens.Transfer(manager.Custody, buyerAsset, assetUnit); err != nil {
		return err
	}
	pot.Balance = new(big.Int).Add(pot.Balance, pot.Price)
	pot.Proceeds = new(big.Int).Set(pot.Price)
	if err := e.state.EscrowPotPut(pot); err != nil {
		return err
	}
	// The sale is complete: idle the manager so the new owner can list the
	// asset again. The pot stays withdrawable at its own address.
	manager.EscrowPot = [32]byte{}
	manager.State = SaleIdle
	sanitizedManager, err := SanitizeSaleManager(manager)
	if err != nil {
		return err
	}
	if err := e.state.SaleManagerPut(sanitizedManager); err != nil {
		return err
	}
	e.markPrimarySale(assetID)
	e.emit(NewSaleBoughtEvent(sanitizedManager, pot, buyer))
	return nil
}

// RedeemNFT cancels an unfilled fixed-price listing, returning the asset to
// the seller and idling the sale manager. The abandoned pot stays on the
// ledger but is no longer referenced.
func (e *Engine) RedeemNFT(seller [20]byte, poolID, assetID, sellerAsset [32]byte) error {
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
	if manager.State != SaleFixedPrice {
		return ErrSaleNotActive
	}
	pot, err := e.loadPot(manager.EscrowPot)
	if err != nil {
		return err
	}
	if pot.Balance.Sign() > 0 || pot.Proceeds.Sign() > 0 {
		return ErrSaleAlreadyFilled
	}
	if pot.Seller != seller {
		return ErrUnauthorized
	}
	destAcct, err := e.tokens.Account(sellerAsset)
	if err != nil {
		return err
	}
	if destAcct.Mint != assetID {
		return token.ErrMintMismatch
	}
	if destAcct.Owner != seller {
		return ErrUnauthorized
	}

	if err := e.tokens.Transfer(manager.Custody, sellerAsset, assetUnit); err != nil {
		return err
	}
	manager.EscrowPot = [32]byte{}
	manager.State = SaleIdle
	sanitized, err := SanitizeSaleManager(manager)
	if err != nil {
		return err
	}
	if err := e.state.SaleManagerPut(sanitized); err != nil {
		return err
	}
	e.emit(NewSaleRedeemedEvent(sanitized, pot))
	return nil
}

// WithdrawFund pays a registered recipient its proportional share of the
// pot's settled proceeds into the given payment account. A recipient can
// withdraw at most its full share; a repeat call after settlement fails with
// ErrNothingToWithdraw and moves nothing.
func (e *Engine) WithdrawFund(caller [20]byte, potAddr, withdrawAcct [32]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	pot, err := e.loadPot(potAddr)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, entry := range pot.Distribution {
		if entry.Recipient == caller {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnauthorized
	}
	if pot.Proceeds.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}
	share := new(big.Int).Mul(pot.Proceeds, big.NewInt(int64(pot.Distribution[idx].Share)))
	share.Div(share, big.NewInt(ShareTotal))
	owed := new(big.Int).Sub(share, pot.Withdrawn[idx])
	if owed.Sign() <= 0 {
		return nil, ErrNothingToWithdraw
	}
	destAcct, err := e.tokens.Account(withdrawAcct)
	if err != nil {
		return nil, err
	}
	if destAcct.Mint != pot.Mint {
		return nil, token.ErrMintMismatch
	}
	if destAcct.Owner != caller {
		return nil, ErrUnauthorized
	}

	if err := e.tokens.Transfer(pot.Vault, withdrawAcct, owed); err != nil {
		return nil, err
	}
	pot.Withdrawn[idx] = new(big.Int).Add(pot.Withdrawn[idx], owed)
	pot.Balance = new(big.Int).Sub(pot.Balance, owed)
	if err := e.state.EscrowPotPut(pot); err != nil {
		return nil, err
	}
	e.emit(NewFundWithdrawnEvent(pot, caller, owed))
	return owed, nil
}
