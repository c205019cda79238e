package event

import (
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
)

type Type string

const (
	TypeListed          Type = "listed"
	TypeListingUpdated  Type = "listingUpdated"
	TypeListingCanceled Type = "listingCanceled"
	TypeBought          Type = "bought"
	TypeBiddingOpened   Type = "biddingOpened"
	TypeBidRaised       Type = "bidRaised"
	TypeBiddingCanceled Type = "biddingCanceled"
	TypeBidSettled      Type = "bidSettled"
	TypeWithdrawn       Type = "withdrawn"
)

// Event is one committed marketplace operation, persisted for the
// activity feed. Window bounds are only set on bidRaised records and
// DisplayPrice is the decimal rendering of Price.
type Event struct {
	Id              string         `json:"id" bson:"id"`
	Type            Type           `json:"type" bson:"type"`
	ChainId         domain.ChainId `json:"chainId" bson:"chainId"`
	ContractAddress domain.Address `json:"contractAddress" bson:"contractAddress"`
	TokenId         domain.TokenId `json:"tokenId" bson:"tokenID"`
	Seller          domain.Address `json:"seller" bson:"seller"`
	Buyer           domain.Address `json:"buyer" bson:"buyer"`
	Price           uint64         `json:"price" bson:"price"`
	DisplayPrice    string         `json:"displayPrice" bson:"displayPrice"`
	WindowStart     *time.Time     `json:"windowStart,omitempty" bson:"windowStart,omitempty"`
	WindowEnd       *time.Time     `json:"windowEnd,omitempty" bson:"windowEnd,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
}

type FindAllOptions struct {
	SortBy          *string
	SortDir         *domain.SortDir
	Offset          *int32
	Limit           *int32
	ChainId         *domain.ChainId `bson:"chainId"`
	ContractAddress *domain.Address `bson:"contractAddress"`
	TokenId         *domain.TokenId `bson:"tokenID"`
	Account         *domain.Address
	Type            *Type `bson:"type"`
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sortBy string, sortDir domain.SortDir) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = &sortBy
		options.SortDir = &sortDir
		return nil
	}
}

func WithAsset(id asset.Id) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		id = id.ToLower()
		options.ChainId = &id.ChainId
		options.ContractAddress = &id.ContractAddress
		options.TokenId = &id.TokenId
		return nil
	}
}

// WithAccount matches records where the account is either side of the
// trade
func WithAccount(account domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		account = account.ToLower()
		options.Account = &account
		return nil
	}
}

func WithType(t Type) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Type = &t
		return nil
	}
}

type Repo interface {
	Create(c ctx.Ctx, e *Event) error
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Event, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
}

type Usecase interface {
	Search(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Event, int, error)
}
