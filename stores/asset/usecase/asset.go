package usecase

import (
	"time"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/base/ptr"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/service/chain/contract"
)

var timeNow = time.Now

type AssetUseCaseCfg struct {
	AssetRepo asset.Repo

	// Erc721 reconciles the mirror against the chain, optional for
	// deployments without an rpc endpoint
	Erc721 contract.Erc721Contract

	// Marketplace is the platform identity transfer approval is
	// granted to
	Marketplace domain.Address
}

type impl struct {
	assetRepo   asset.Repo
	erc721      contract.Erc721Contract
	marketplace domain.Address
}

// NewAsset builds the registry mirror usecase. The same value serves
// the engine as its asset.Registry collaborator.
func NewAsset(cfg *AssetUseCaseCfg) asset.Mirror {
	return &impl{
		assetRepo:   cfg.AssetRepo,
		erc721:      cfg.Erc721,
		marketplace: cfg.Marketplace.ToLower(),
	}
}

func (im *impl) Get(c bCtx.Ctx, id asset.Id) (*asset.Asset, error) {
	return im.assetRepo.FindOne(c, id)
}

func (im *impl) Search(c bCtx.Ctx, opts ...asset.FindAllOptionsFunc) ([]*asset.Asset, error) {
	return im.assetRepo.FindAll(c, opts...)
}

func (im *impl) Mint(c bCtx.Ctx, id asset.Id, owner domain.Address) (*asset.Asset, error) {
	if _, err := im.assetRepo.FindOne(c, id); err == nil {
		return nil, domain.ErrBadParamInput
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	now := timeNow()
	a := &asset.Asset{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Owner:           owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := im.assetRepo.Create(c, a); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("assetRepo.Create failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) SetApproval(c bCtx.Ctx, id asset.Id, caller domain.Address, operator domain.Address) error {
	a, err := im.assetRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !a.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}

	return im.assetRepo.Patch(c, id, asset.Patchable{
		Approved:  operator.ToLowerPtr(),
		UpdatedAt: ptr.Time(timeNow()),
	})
}

// RefreshOwner reconciles the mirrored owner with the chain
func (im *impl) RefreshOwner(c bCtx.Ctx, id asset.Id) (*asset.Asset, error) {
	a, err := im.assetRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if im.erc721 == nil {
		return a, nil
	}

	tokenId, err := id.TokenId.ToBigInt()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("tokenId.ToBigInt failed")
		return nil, domain.ErrBadParamInput
	}
	owner, err := im.erc721.OwnerOf(c, int32(id.ChainId), id.ContractAddress.ToLowerStr(), tokenId)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("erc721.OwnerOf failed")
		return nil, err
	}

	now := timeNow()
	if err := im.assetRepo.Patch(c, id, asset.Patchable{
		Owner:     domain.Address(owner).ToLowerPtr(),
		UpdatedAt: ptr.Time(now),
	}); err != nil {
		return nil, err
	}
	a.Owner = domain.Address(owner).ToLower()
	a.UpdatedAt = now
	return a, nil
}

func (im *impl) OwnerOf(c bCtx.Ctx, id asset.Id) (domain.Address, error) {
	a, err := im.assetRepo.FindOne(c, id)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

func (im *impl) IsApprovedForMarketplace(c bCtx.Ctx, id asset.Id) (bool, error) {
	a, err := im.assetRepo.FindOne(c, id)
	if err != nil {
		return false, err
	}
	return a.Approved.Equals(im.marketplace), nil
}

// TransferOwnership moves the mirrored token and clears its approval,
// the way a registry transfer does
func (im *impl) TransferOwnership(c bCtx.Ctx, id asset.Id, from, to domain.Address) error {
	a, err := im.assetRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !a.Owner.Equals(from) {
		return domain.ErrNotOwner
	}

	cleared := domain.EmptyAddress
	return im.assetRepo.Patch(c, id, asset.Patchable{
		Owner:     to.ToLowerPtr(),
		Approved:  &cleared,
		UpdatedAt: ptr.Time(timeNow()),
	})
}
