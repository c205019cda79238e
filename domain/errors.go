package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")

	// listing errors
	ErrPriceMustBeAboveZero      = errors.New("price must be above zero")
	ErrNotApprovedForMarketplace = errors.New("marketplace is not approved to transfer this asset")
	ErrAlreadyListed             = errors.New("asset is already listed")
	ErrNotListed                 = errors.New("asset is not listed")
	ErrNotOwner                  = errors.New("caller is not the asset owner")
	ErrPriceNotMet               = errors.New("offered price does not meet the asking price")

	// bidding errors
	ErrNotBidding           = errors.New("asset is not open for bidding")
	ErrBiddingTimeIsOver    = errors.New("bidding window is active, raising is blocked")
	ErrBuyBiddingTimeNotMet = errors.New("settlement window is not open")
	ErrNotTheHighestBidder  = errors.New("caller is not the highest bidder")

	// proceeds errors
	ErrNoProceeds         = errors.New("no proceeds to withdraw")
	ErrTransferFailed     = errors.New("payout transfer failed")
	ErrFeesTransferFailed = errors.New("fee transfer failed")

	// ErrReentrantCall is returned when a guarded engine operation is
	// entered while another one is still in flight
	ErrReentrantCall = errors.New("reentrant call")
)
