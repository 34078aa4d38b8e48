package token

import "errors"

var (
	// ErrMintExists indicates a mint identifier is already taken.
	ErrMintExists = errors.New("token: mint already exists")

	// ErrMintNotFound indicates the referenced mint does not exist.
	ErrMintNotFound = errors.New("token: mint not found")

	// ErrAccountExists indicates a token account identifier is already taken.
	ErrAccountExists = errors.New("token: account already exists")

	// ErrAccountNotFound indicates the referenced token account does not exist.
	ErrAccountNotFound = errors.New("token: account not found")

	// ErrInsufficientFunds indicates the source balance cannot cover a transfer.
	ErrInsufficientFunds = errors.New("token: insufficient funds")

	// ErrMintMismatch indicates two token accounts belong to different mints.
	ErrMintMismatch = errors.New("token: mint mismatch")

	// ErrUnauthorized indicates the caller lacks authority over the mint.
	ErrUnauthorized = errors.New("token: unauthorized")

	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("token: invalid amount")
)
