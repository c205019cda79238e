package proceeds

import (
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
)

// Repo is the per seller accrued balance store. Balances never go
// negative, credit adds and SetBalance overwrites.
type Repo interface {
	Balance(c ctx.Ctx, seller domain.Address) (uint64, error)
	Credit(c ctx.Ctx, seller domain.Address, amount uint64) error
	SetBalance(c ctx.Ctx, seller domain.Address, balance uint64) error
}

type PayoutKind string

const (
	PayoutKindFee    PayoutKind = "fee"
	PayoutKindPayout PayoutKind = "payout"
)

// Payout is the durable record of one executed fund transfer
type Payout struct {
	Id        string         `json:"id" bson:"id"`
	To        domain.Address `json:"to" bson:"to"`
	Amount    uint64         `json:"amount" bson:"amount"`
	Kind      PayoutKind     `json:"kind" bson:"kind"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

// FundGateway executes native currency transfers out of the platform.
// A non nil error means no funds moved. Revert compensates a transfer
// recorded earlier in the same operation, so a multi leg withdrawal can
// abort without leaving a partial payout behind.
type FundGateway interface {
	Transfer(c ctx.Ctx, to domain.Address, amount uint64, kind PayoutKind) (*Payout, error)
	Revert(c ctx.Ctx, p *Payout) error
}
