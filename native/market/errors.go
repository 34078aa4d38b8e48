package market

import "errors"

var (
	// ErrAlreadyInitialized indicates the record already exists for this
	// identity.
	ErrAlreadyInitialized = errors.New("market: already initialized")

	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("market: record not found")

	// ErrInvalidDistribution indicates the share weights do not sum to the
	// fixed total, or the list is otherwise malformed.
	ErrInvalidDistribution = errors.New("market: invalid distribution list")

	// ErrInvalidPrice indicates a zero or negative price.
	ErrInvalidPrice = errors.New("market: invalid price")

	// ErrSaleActive indicates the sale manager already runs a sale.
	ErrSaleActive = errors.New("market: sale already active")

	// ErrSaleNotActive indicates the requested operation does not match the
	// mechanism the sale manager currently runs.
	ErrSaleNotActive = errors.New("market: sale not active")

	// ErrSaleAlreadyFilled indicates a purchase already funded the escrow
	// pot, so the listing can no longer be redeemed.
	ErrSaleAlreadyFilled = errors.New("market: sale already filled")

	// ErrInsufficientFunds indicates the payer's balance cannot cover the
	// required amount.
	ErrInsufficientFunds = errors.New("market: insufficient funds")

	// ErrBidTooLow indicates a bid at or below the current price. Equal bids
	// are rejected; the comparison is strictly greater-than.
	ErrBidTooLow = errors.New("market: bid too low")

	// ErrAuctionEnded indicates the auction end time has passed.
	ErrAuctionEnded = errors.New("market: auction ended")

	// ErrAuctionNotEnded indicates the auction is still running.
	ErrAuctionNotEnded = errors.New("market: auction not ended")

	// ErrNoBids indicates the auction closed without a single accepted bid.
	ErrNoBids = errors.New("market: no bids")

	// ErrNothingToWithdraw indicates the recipient's share is fully settled.
	ErrNothingToWithdraw = errors.New("market: nothing to withdraw")

	// ErrUnauthorized indicates the caller lacks the required role or
	// signature for the operation.
	ErrUnauthorized = errors.New("market: unauthorized")
)
