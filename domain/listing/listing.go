package listing

import (
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
)

// Listing is a fixed price sale offer for one asset. It exists iff
// Price > 0, a zero price is the same as not listed.
type Listing struct {
	ChainId         domain.ChainId `json:"chainId" bson:"chainId"`
	ContractAddress domain.Address `json:"contractAddress" bson:"contractAddress"`
	TokenId         domain.TokenId `json:"tokenId" bson:"tokenID"`
	Seller          domain.Address `json:"seller" bson:"seller"`
	Price           uint64         `json:"price" bson:"price"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (l *Listing) ToId() asset.Id {
	return asset.Id{
		ChainId:         l.ChainId,
		ContractAddress: l.ContractAddress,
		TokenId:         l.TokenId,
	}
}

type Repo interface {
	FindOne(c ctx.Ctx, id asset.Id) (*Listing, error)
	FindAll(c ctx.Ctx) ([]*Listing, error)
	Upsert(c ctx.Ctx, l *Listing) error
	Remove(c ctx.Ctx, id asset.Id) error
}
