package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain/proceeds"
)

type proceedsRepoTestSuite struct {
	suite.Suite

	repo proceeds.Repo
}

func Test(t *testing.T) {
	suite.Run(t, new(proceedsRepoTestSuite))
}

func (s *proceedsRepoTestSuite) SetupTest() {
	s.repo = NewProceeds()
}

func (s *proceedsRepoTestSuite) TestCredit() {
	ctx := bCtx.Background()

	balance, err := s.repo.Balance(ctx, "0xseller")
	s.Nil(err)
	s.Equal(uint64(0), balance)

	s.Nil(s.repo.Credit(ctx, "0xSeller", 100))
	s.Nil(s.repo.Credit(ctx, "0xseller", 50))

	balance, err = s.repo.Balance(ctx, "0xseller")
	s.Nil(err)
	s.Equal(uint64(150), balance)
}

func (s *proceedsRepoTestSuite) TestSetBalance() {
	ctx := bCtx.Background()

	s.Nil(s.repo.Credit(ctx, "0xseller", 100))
	s.Nil(s.repo.SetBalance(ctx, "0xseller", 0))

	balance, err := s.repo.Balance(ctx, "0xseller")
	s.Nil(err)
	s.Equal(uint64(0), balance)
}
