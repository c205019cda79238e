package asset

import (
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
)

type Id struct {
	ChainId         domain.ChainId `json:"chainId" bson:"chainId" param:"chainId"`
	ContractAddress domain.Address `json:"contractAddress" bson:"contractAddress" param:"contract"`
	TokenId         domain.TokenId `json:"tokenId" bson:"tokenID" param:"tokenId"`
}

func (id Id) ToLower() Id {
	return Id{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress.ToLower(),
		TokenId:         id.TokenId,
	}
}

// Asset is the local mirror of a registry token. Owner and Approved
// follow the registry; Approved holds the operator the owner granted
// transfer rights to, or empty when none.
type Asset struct {
	ChainId         domain.ChainId `json:"chainId" bson:"chainId"`
	ContractAddress domain.Address `json:"contractAddress" bson:"contractAddress"`
	TokenId         domain.TokenId `json:"tokenId" bson:"tokenID"`
	Owner           domain.Address `json:"owner" bson:"owner"`
	Approved        domain.Address `json:"approved" bson:"approved"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (a *Asset) ToId() Id {
	return Id{
		ChainId:         a.ChainId,
		ContractAddress: a.ContractAddress,
		TokenId:         a.TokenId,
	}
}

type Patchable struct {
	Owner     *domain.Address `bson:"owner,omitempty"`
	Approved  *domain.Address `bson:"approved,omitempty"`
	UpdatedAt *time.Time      `bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	SortBy          *string
	SortDir         *domain.SortDir
	Offset          *int32
	Limit           *int32
	ChainId         *domain.ChainId `bson:"chainId"`
	ContractAddress *domain.Address `bson:"contractAddress"`
	Owner           *domain.Address `bson:"owner"`
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

func WithChainId(chainId domain.ChainId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func WithContractAddress(contract domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		contract = contract.ToLower()
		options.ContractAddress = &contract
		return nil
	}
}

func WithOwner(owner domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		owner = owner.ToLower()
		options.Owner = &owner
		return nil
	}
}

type Repo interface {
	FindOne(c ctx.Ctx, id Id) (*Asset, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Asset, error)
	Create(c ctx.Ctx, a *Asset) error
	Patch(c ctx.Ctx, id Id, patchable Patchable) error
}

// Registry is the collaborator owning ownership and approval semantics.
// The engine never holds the asset itself, it only queries and requests
// transfers here.
type Registry interface {
	OwnerOf(c ctx.Ctx, id Id) (domain.Address, error)
	IsApprovedForMarketplace(c ctx.Ctx, id Id) (bool, error)
	TransferOwnership(c ctx.Ctx, id Id, from, to domain.Address) error
}

type Usecase interface {
	Get(c ctx.Ctx, id Id) (*Asset, error)
	Search(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Asset, error)
	Mint(c ctx.Ctx, id Id, owner domain.Address) (*Asset, error)
	SetApproval(c ctx.Ctx, id Id, caller domain.Address, operator domain.Address) error
	RefreshOwner(c ctx.Ctx, id Id) (*Asset, error)
}

// Mirror is the local registry implementation, serving both the admin
// surface and the engine's collaborator interface
type Mirror interface {
	Usecase
	Registry
}
