package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/listing"
)

type listingRepoTestSuite struct {
	suite.Suite

	repo listing.Repo
}

func Test(t *testing.T) {
	suite.Run(t, new(listingRepoTestSuite))
}

func (s *listingRepoTestSuite) SetupTest() {
	s.repo = NewListing()
}

func (s *listingRepoTestSuite) TestUpsertAndFindOne() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xAbC", TokenId: "1"}

	_, err := s.repo.FindOne(ctx, id)
	s.Equal(domain.ErrNotFound, err)

	err = s.repo.Upsert(ctx, &listing.Listing{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          "0xSeller",
		Price:           100,
	})
	s.Nil(err)

	// lookup is case insensitive on the contract address
	res, err := s.repo.FindOne(ctx, asset.Id{ChainId: 1, ContractAddress: "0xabc", TokenId: "1"})
	s.Nil(err)
	s.Equal(uint64(100), res.Price)
	s.Equal(domain.Address("0xseller"), res.Seller)
}

func (s *listingRepoTestSuite) TestRemove() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xabc", TokenId: "2"}

	s.Equal(domain.ErrNotFound, s.repo.Remove(ctx, id))

	err := s.repo.Upsert(ctx, &listing.Listing{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          "0xseller",
		Price:           10,
	})
	s.Nil(err)

	s.Nil(s.repo.Remove(ctx, id))

	_, err = s.repo.FindOne(ctx, id)
	s.Equal(domain.ErrNotFound, err)
}

func (s *listingRepoTestSuite) TestFindAll() {
	ctx := bCtx.Background()
	for i, tokenId := range []domain.TokenId{"1", "2", "3"} {
		err := s.repo.Upsert(ctx, &listing.Listing{
			ChainId:         1,
			ContractAddress: "0xabc",
			TokenId:         tokenId,
			Seller:          "0xseller",
			Price:           uint64(i + 1),
		})
		s.Nil(err)
	}

	res, err := s.repo.FindAll(ctx)
	s.Nil(err)
	s.Len(res, 3)
}
