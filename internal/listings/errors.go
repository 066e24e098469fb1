package listings

import "errors"

var (
	ErrListingNotFound      = errors.New("Listing not found")
	ErrQuotaExceeded        = errors.New("Active listing limit reached for your plan")
	ErrNotOwner             = errors.New("Only the listing owner can do this")
	ErrListingExpired       = errors.New("Listing is no longer active")
	ErrBoostAlreadyActive   = errors.New("Listing already has an active boost")
	ErrBoostCreditExhausted = errors.New("No boost credits left in the current billing period")
	ErrConflict             = errors.New("Listing was modified concurrently, please retry")
	ErrInvalidListing       = errors.New("Invalid listing data")
)
