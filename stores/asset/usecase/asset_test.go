package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
)

type memAssetRepo struct {
	assets map[asset.Id]*asset.Asset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{assets: map[asset.Id]*asset.Asset{}}
}

func (r *memAssetRepo) FindOne(c bCtx.Ctx, id asset.Id) (*asset.Asset, error) {
	a, ok := r.assets[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAssetRepo) FindAll(c bCtx.Ctx, opts ...asset.FindAllOptionsFunc) ([]*asset.Asset, error) {
	res := []*asset.Asset{}
	for _, a := range r.assets {
		cp := *a
		res = append(res, &cp)
	}
	return res, nil
}

func (r *memAssetRepo) Create(c bCtx.Ctx, a *asset.Asset) error {
	cp := *a
	cp.ContractAddress = cp.ContractAddress.ToLower()
	cp.Owner = cp.Owner.ToLower()
	r.assets[a.ToId().ToLower()] = &cp
	return nil
}

func (r *memAssetRepo) Patch(c bCtx.Ctx, id asset.Id, patchable asset.Patchable) error {
	a, ok := r.assets[id.ToLower()]
	if !ok {
		return domain.ErrNotFound
	}
	if patchable.Owner != nil {
		a.Owner = *patchable.Owner
	}
	if patchable.Approved != nil {
		a.Approved = *patchable.Approved
	}
	if patchable.UpdatedAt != nil {
		a.UpdatedAt = *patchable.UpdatedAt
	}
	return nil
}

type stubErc721 struct {
	owner string
}

func (s *stubErc721) Supports721Interface(c bCtx.Ctx, chainId int32, addr string) (bool, error) {
	return true, nil
}

func (s *stubErc721) OwnerOf(c bCtx.Ctx, chainId int32, addr string, tokenId *big.Int) (string, error) {
	return s.owner, nil
}

func (s *stubErc721) IsApprovedForAll(c bCtx.Ctx, chainId int32, addr string, owner string, operator string) (bool, error) {
	return false, nil
}

func (s *stubErc721) GetApproved(c bCtx.Ctx, chainId int32, addr string, tokenId *big.Int) (string, error) {
	return "", nil
}

type assetTestSuite struct {
	suite.Suite

	repo   *memAssetRepo
	erc721 *stubErc721
	mirror asset.Mirror
}

func Test(t *testing.T) {
	suite.Run(t, new(assetTestSuite))
}

const marketplaceAddr = domain.Address("0xmarketplace")

func (s *assetTestSuite) SetupTest() {
	s.repo = newMemAssetRepo()
	s.erc721 = &stubErc721{}
	s.mirror = NewAsset(&AssetUseCaseCfg{
		AssetRepo:   s.repo,
		Erc721:      s.erc721,
		Marketplace: marketplaceAddr,
	})
}

func (s *assetTestSuite) TestMint() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xcollection", TokenId: "1"}

	a, err := s.mirror.Mint(ctx, id, "0xowner")
	s.Nil(err)
	s.Equal(domain.Address("0xowner"), a.Owner)

	_, err = s.mirror.Mint(ctx, id, "0xowner")
	s.Equal(domain.ErrBadParamInput, err)

	owner, err := s.mirror.OwnerOf(ctx, id)
	s.Nil(err)
	s.Equal(domain.Address("0xowner"), owner)
}

func (s *assetTestSuite) TestApproval() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xcollection", TokenId: "1"}
	_, err := s.mirror.Mint(ctx, id, "0xowner")
	s.Nil(err)

	approved, err := s.mirror.IsApprovedForMarketplace(ctx, id)
	s.Nil(err)
	s.False(approved)

	s.Equal(domain.ErrNotOwner, s.mirror.SetApproval(ctx, id, "0xother", marketplaceAddr))

	s.Nil(s.mirror.SetApproval(ctx, id, "0xowner", marketplaceAddr))
	approved, err = s.mirror.IsApprovedForMarketplace(ctx, id)
	s.Nil(err)
	s.True(approved)
}

func (s *assetTestSuite) TestTransferOwnership() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xcollection", TokenId: "1"}
	_, err := s.mirror.Mint(ctx, id, "0xowner")
	s.Nil(err)
	s.Nil(s.mirror.SetApproval(ctx, id, "0xowner", marketplaceAddr))

	s.Equal(domain.ErrNotOwner, s.mirror.TransferOwnership(ctx, id, "0xother", "0xbuyer"))

	s.Nil(s.mirror.TransferOwnership(ctx, id, "0xowner", "0xbuyer"))

	owner, err := s.mirror.OwnerOf(ctx, id)
	s.Nil(err)
	s.Equal(domain.Address("0xbuyer"), owner)

	// transfer clears the approval
	approved, err := s.mirror.IsApprovedForMarketplace(ctx, id)
	s.Nil(err)
	s.False(approved)
}

func (s *assetTestSuite) TestRefreshOwner() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xcollection", TokenId: "7"}
	_, err := s.mirror.Mint(ctx, id, "0xowner")
	s.Nil(err)

	s.erc721.owner = "0xChainOwner"
	a, err := s.mirror.RefreshOwner(ctx, id)
	s.Nil(err)
	s.Equal(domain.Address("0xchainowner"), a.Owner)
}
