package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/bidding"
)

type biddingRepoTestSuite struct {
	suite.Suite

	repo bidding.Repo
}

func Test(t *testing.T) {
	suite.Run(t, new(biddingRepoTestSuite))
}

func (s *biddingRepoTestSuite) SetupTest() {
	s.repo = NewBidding()
}

func (s *biddingRepoTestSuite) TestUpsertAndFindOne() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xabc", TokenId: "1"}

	_, err := s.repo.FindOne(ctx, id)
	s.Equal(domain.ErrNotFound, err)

	err = s.repo.Upsert(ctx, &bidding.Bidding{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          "0xSeller",
		Price:           50,
	})
	s.Nil(err)

	res, err := s.repo.FindOne(ctx, id)
	s.Nil(err)
	s.Equal(domain.Address("0xseller"), res.Seller)
	s.True(res.Buyer.IsEmpty())
	s.False(res.HasWindow())
}

func (s *biddingRepoTestSuite) TestUpsertOverwritesWindow() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xabc", TokenId: "1"}
	now := time.Now()

	err := s.repo.Upsert(ctx, &bidding.Bidding{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          "0xseller",
		Price:           50,
	})
	s.Nil(err)

	err = s.repo.Upsert(ctx, &bidding.Bidding{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          "0xseller",
		Buyer:           "0xbuyer",
		Price:           60,
		WindowStart:     now.Add(bidding.CoolingPeriod),
		WindowEnd:       now.Add(bidding.CoolingPeriod + bidding.SettlePeriod),
	})
	s.Nil(err)

	res, err := s.repo.FindOne(ctx, id)
	s.Nil(err)
	s.Equal(uint64(60), res.Price)
	s.True(res.HasWindow())
	s.True(res.WindowStart.Before(res.WindowEnd))
}

func (s *biddingRepoTestSuite) TestRemove() {
	ctx := bCtx.Background()
	id := asset.Id{ChainId: 1, ContractAddress: "0xabc", TokenId: "2"}

	s.Equal(domain.ErrNotFound, s.repo.Remove(ctx, id))

	err := s.repo.Upsert(ctx, &bidding.Bidding{
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
