package auction

import "errors"

// Storage-level errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrPriceChanged    = errors.New("price changed by a concurrent bid")
)

// Business rule errors
var (
	ErrAuctionClosed = errors.New("auction is closed")
	ErrAlreadyClosed = errors.New("auction already closed")
	ErrInvalidAmount = errors.New("invalid bid amount")
	ErrBidTooLow     = errors.New("bid must be greater than current price")
	ErrNotAuthorized = errors.New("not authorized to close this auction")
)
