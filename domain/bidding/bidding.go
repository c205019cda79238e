package bidding

import (
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
)

const (
	// CoolingPeriod is the quiet span after a raise during which
	// further raises are blocked
	CoolingPeriod = 5 * time.Minute
	// SettlePeriod is the span after the cooling period during which
	// only the recorded highest bidder may pay and claim the asset
	SettlePeriod = 5 * time.Minute
)

// Bidding is the auction state of one asset. It exists iff Seller is
// set. Buyer stays empty and the window stays zero until the first
// raise.
type Bidding struct {
	ChainId         domain.ChainId `json:"chainId" bson:"chainId"`
	ContractAddress domain.Address `json:"contractAddress" bson:"contractAddress"`
	TokenId         domain.TokenId `json:"tokenId" bson:"tokenID"`
	Seller          domain.Address `json:"seller" bson:"seller"`
	Buyer           domain.Address `json:"buyer" bson:"buyer"`
	Price           uint64         `json:"price" bson:"price"`
	WindowStart     time.Time      `json:"windowStart" bson:"windowStart"`
	WindowEnd       time.Time      `json:"windowEnd" bson:"windowEnd"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (b *Bidding) ToId() asset.Id {
	return asset.Id{
		ChainId:         b.ChainId,
		ContractAddress: b.ContractAddress,
		TokenId:         b.TokenId,
	}
}

func (b *Bidding) HasWindow() bool {
	return !b.WindowStart.IsZero()
}

// BlocksRaise reports whether now falls strictly inside the open
// window, which is when raising is blocked
func (b *Bidding) BlocksRaise(now time.Time) bool {
	return b.HasWindow() && now.After(b.WindowStart) && now.Before(b.WindowEnd)
}

// InSettleWindow reports whether now falls within [WindowStart, WindowEnd]
func (b *Bidding) InSettleWindow(now time.Time) bool {
	return b.HasWindow() && !now.Before(b.WindowStart) && !now.After(b.WindowEnd)
}

type Repo interface {
	FindOne(c ctx.Ctx, id asset.Id) (*Bidding, error)
	FindAll(c ctx.Ctx) ([]*Bidding, error)
	Upsert(c ctx.Ctx, b *Bidding) error
	Remove(c ctx.Ctx, id asset.Id) error
}
