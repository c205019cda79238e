package marketplace

import (
	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/bidding"
	"github.com/Alanle1011/contract-marketplace/domain/listing"
)

// Config carries the immutable engine parameters, bound once at
// construction
type Config struct {
	// Owner is the platform operator identity receiving withdrawal fees
	Owner domain.Address `mapstructure:"owner"`
	// WithdrawFeeRate is the platform fee in percent, 0 to 100
	WithdrawFeeRate uint64 `mapstructure:"withdraw_fee_rate"`
}

// WithdrawReceipt reports one successful withdrawal split
type WithdrawReceipt struct {
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
	Payout uint64 `json:"payout"`
}

// UseCase is the marketplace engine. Every mutating operation runs
// under the reentrancy guard and commits all or nothing.
type UseCase interface {
	List(c ctx.Ctx, caller domain.Address, id asset.Id, price uint64) error
	UpdateListing(c ctx.Ctx, caller domain.Address, id asset.Id, newPrice uint64) error
	CancelListing(c ctx.Ctx, caller domain.Address, id asset.Id) error
	Buy(c ctx.Ctx, caller domain.Address, id asset.Id, paymentAmount uint64) error

	OpenBidding(c ctx.Ctx, caller domain.Address, id asset.Id, price uint64) error
	RaiseBid(c ctx.Ctx, caller domain.Address, id asset.Id, newPrice uint64, paymentAmount uint64) error
	CancelBidding(c ctx.Ctx, caller domain.Address, id asset.Id) error
	SettleBid(c ctx.Ctx, caller domain.Address, id asset.Id, paymentAmount uint64) error

	Withdraw(c ctx.Ctx, caller domain.Address) (*WithdrawReceipt, error)

	GetListing(c ctx.Ctx, id asset.Id) (*listing.Listing, error)
	GetBidding(c ctx.Ctx, id asset.Id) (*bidding.Bidding, error)
	GetProceeds(c ctx.Ctx, seller domain.Address) (uint64, error)
}
