package usecase

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/event"
	"github.com/Alanle1011/contract-marketplace/domain/marketplace"
	"github.com/Alanle1011/contract-marketplace/domain/proceeds"
	biddingRepository "github.com/Alanle1011/contract-marketplace/stores/bidding/repository"
	listingRepository "github.com/Alanle1011/contract-marketplace/stores/listing/repository"
	proceedsRepository "github.com/Alanle1011/contract-marketplace/stores/proceeds/repository"
)

const (
	operator = domain.Address("0xoperator")
	seller   = domain.Address("0xseller")
	buyer    = domain.Address("0xbuyer")
	buyer2   = domain.Address("0xbuyer2")
)

type stubRegistry struct {
	owners       map[asset.Id]domain.Address
	approved     map[asset.Id]bool
	failTransfer bool
	onTransfer   func(c bCtx.Ctx)
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		owners:   map[asset.Id]domain.Address{},
		approved: map[asset.Id]bool{},
	}
}

func (r *stubRegistry) OwnerOf(c bCtx.Ctx, id asset.Id) (domain.Address, error) {
	owner, ok := r.owners[id.ToLower()]
	if !ok {
		return "", domain.ErrNotFound
	}
	return owner, nil
}

func (r *stubRegistry) IsApprovedForMarketplace(c bCtx.Ctx, id asset.Id) (bool, error) {
	return r.approved[id.ToLower()], nil
}

func (r *stubRegistry) TransferOwnership(c bCtx.Ctx, id asset.Id, from, to domain.Address) error {
	if r.onTransfer != nil {
		r.onTransfer(c)
	}
	if r.failTransfer {
		return errors.New("transfer reverted")
	}
	r.owners[id.ToLower()] = to.ToLower()
	return nil
}

type fundTransfer struct {
	to     domain.Address
	amount uint64
	kind   proceeds.PayoutKind
}

type stubFunds struct {
	transfers []fundTransfer
	failKind  proceeds.PayoutKind
}

func (f *stubFunds) Transfer(c bCtx.Ctx, to domain.Address, amount uint64, kind proceeds.PayoutKind) (*proceeds.Payout, error) {
	if f.failKind == kind {
		return nil, errors.New("transfer reverted")
	}
	f.transfers = append(f.transfers, fundTransfer{to, amount, kind})
	return &proceeds.Payout{
		Id:     strconv.Itoa(len(f.transfers) - 1),
		To:     to,
		Amount: amount,
		Kind:   kind,
	}, nil
}

func (f *stubFunds) Revert(c bCtx.Ctx, p *proceeds.Payout) error {
	i, err := strconv.Atoi(p.Id)
	if err != nil {
		return err
	}
	f.transfers = append(f.transfers[:i], f.transfers[i+1:]...)
	return nil
}

type stubEventRepo struct {
	events []*event.Event
}

func (r *stubEventRepo) Create(c bCtx.Ctx, e *event.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *stubEventRepo) FindAll(c bCtx.Ctx, opts ...event.FindAllOptionsFunc) ([]*event.Event, error) {
	return r.events, nil
}

func (r *stubEventRepo) Count(c bCtx.Ctx, opts ...event.FindAllOptionsFunc) (int, error) {
	return len(r.events), nil
}

func (r *stubEventRepo) last() *event.Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type engineTestSuite struct {
	suite.Suite

	registry *stubRegistry
	funds    *stubFunds
	events   *stubEventRepo
	engine   marketplace.UseCase

	now time.Time
}

func Test(t *testing.T) {
	suite.Run(t, new(engineTestSuite))
}

func (s *engineTestSuite) SetupTest() {
	s.registry = newStubRegistry()
	s.funds = &stubFunds{}
	s.events = &stubEventRepo{}
	s.now = time.Unix(1700000000, 0)
	timeNow = func() time.Time { return s.now }
	s.engine = NewMarketplace(&MarketplaceUseCaseCfg{
		ListingRepo:  listingRepository.NewListing(),
		BiddingRepo:  biddingRepository.NewBidding(),
		ProceedsRepo: proceedsRepository.NewProceeds(),
		EventRepo:    s.events,
		Registry:     s.registry,
		Funds:        s.funds,
		Marketplace: marketplace.Config{
			Owner:           operator,
			WithdrawFeeRate: 10,
		},
	})
}

func (s *engineTestSuite) TearDownTest() {
	timeNow = time.Now
}

func (s *engineTestSuite) mint(id asset.Id, owner domain.Address, approved bool) {
	s.registry.owners[id.ToLower()] = owner.ToLower()
	s.registry.approved[id.ToLower()] = approved
}

func assetId(tokenId domain.TokenId) asset.Id {
	return asset.Id{ChainId: 1, ContractAddress: "0xcollection", TokenId: tokenId}
}

func (s *engineTestSuite) TestListAndBuy() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Nil(s.engine.List(ctx, seller, id, 100))

	l, err := s.engine.GetListing(ctx, id)
	s.Nil(err)
	s.Equal(uint64(100), l.Price)
	s.Equal(seller, l.Seller)

	s.Nil(s.engine.Buy(ctx, buyer, id, 100))

	_, err = s.engine.GetListing(ctx, id)
	s.Equal(domain.ErrNotListed, err)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(100), balance)

	owner, err := s.registry.OwnerOf(ctx, id)
	s.Nil(err)
	s.Equal(buyer, owner)

	s.Equal(event.TypeBought, s.events.last().Type)
}

func (s *engineTestSuite) TestListChecks() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotOwner, s.engine.List(ctx, buyer, id, 100))
	s.Equal(domain.ErrPriceMustBeAboveZero, s.engine.List(ctx, seller, id, 0))

	unapproved := assetId("2")
	s.mint(unapproved, seller, false)
	s.Equal(domain.ErrNotApprovedForMarketplace, s.engine.List(ctx, seller, unapproved, 100))

	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Equal(domain.ErrAlreadyListed, s.engine.List(ctx, seller, id, 200))
}

func (s *engineTestSuite) TestBuyChecks() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotListed, s.engine.Buy(ctx, buyer, id, 100))

	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Equal(domain.ErrPriceNotMet, s.engine.Buy(ctx, buyer, id, 99))
}

func (s *engineTestSuite) TestBuyOverpaymentCreditedInFull() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Nil(s.engine.Buy(ctx, buyer, id, 130))

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(130), balance)
}

func (s *engineTestSuite) TestBuyTransferFailureRollsBack() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)
	s.Nil(s.engine.List(ctx, seller, id, 100))

	s.registry.failTransfer = true
	s.Equal(domain.ErrTransferFailed, s.engine.Buy(ctx, buyer, id, 100))

	// nothing committed, all or nothing
	l, err := s.engine.GetListing(ctx, id)
	s.Nil(err)
	s.Equal(uint64(100), l.Price)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(0), balance)

	owner, err := s.registry.OwnerOf(ctx, id)
	s.Nil(err)
	s.Equal(seller, owner)
}

func (s *engineTestSuite) TestUpdateListing() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotListed, s.engine.UpdateListing(ctx, seller, id, 200))

	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Equal(domain.ErrNotOwner, s.engine.UpdateListing(ctx, buyer, id, 200))
	s.Equal(domain.ErrPriceMustBeAboveZero, s.engine.UpdateListing(ctx, seller, id, 0))

	s.Nil(s.engine.UpdateListing(ctx, seller, id, 200))
	l, err := s.engine.GetListing(ctx, id)
	s.Nil(err)
	s.Equal(uint64(200), l.Price)
}

func (s *engineTestSuite) TestCancelListing() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotListed, s.engine.CancelListing(ctx, seller, id))

	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Equal(domain.ErrNotOwner, s.engine.CancelListing(ctx, buyer, id))

	s.Nil(s.engine.CancelListing(ctx, seller, id))
	_, err := s.engine.GetListing(ctx, id)
	s.Equal(domain.ErrNotListed, err)
}

func (s *engineTestSuite) TestOpenBiddingChecks() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotOwner, s.engine.OpenBidding(ctx, buyer, id, 50))
	s.Equal(domain.ErrPriceMustBeAboveZero, s.engine.OpenBidding(ctx, seller, id, 0))

	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Equal(domain.ErrAlreadyListed, s.engine.OpenBidding(ctx, seller, id, 60))

	b, err := s.engine.GetBidding(ctx, id)
	s.Nil(err)
	s.Equal(seller, b.Seller)
	s.True(b.Buyer.IsEmpty())
	s.False(b.HasWindow())
}

func (s *engineTestSuite) TestRaiseBidOpensWindow() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)
	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))

	start := s.now
	s.Nil(s.engine.RaiseBid(ctx, buyer, id, 60, 60))

	b, err := s.engine.GetBidding(ctx, id)
	s.Nil(err)
	s.Equal(buyer, b.Buyer)
	s.Equal(uint64(60), b.Price)
	s.Equal(start.Add(5*time.Minute), b.WindowStart)
	s.Equal(start.Add(10*time.Minute), b.WindowEnd)

	raised := s.events.last()
	s.Equal(event.TypeBidRaised, raised.Type)
	s.Equal(b.WindowStart, *raised.WindowStart)
	s.Equal(b.WindowEnd, *raised.WindowEnd)
}

func (s *engineTestSuite) TestRaiseBidChecks() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotBidding, s.engine.RaiseBid(ctx, buyer, id, 60, 60))

	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Equal(domain.ErrPriceNotMet, s.engine.RaiseBid(ctx, buyer, id, 50, 50))

	s.Nil(s.engine.RaiseBid(ctx, buyer, id, 60, 60))

	// inside the open window raising is blocked
	s.now = s.now.Add(350 * time.Second)
	s.Equal(domain.ErrBiddingTimeIsOver, s.engine.RaiseBid(ctx, buyer2, id, 70, 70))

	// after the window passed the auction reopens
	s.now = s.now.Add(10 * time.Minute)
	s.Nil(s.engine.RaiseBid(ctx, buyer2, id, 70, 70))

	b, err := s.engine.GetBidding(ctx, id)
	s.Nil(err)
	s.Equal(buyer2, b.Buyer)
}

func (s *engineTestSuite) TestSettleBid() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)
	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Nil(s.engine.RaiseBid(ctx, buyer, id, 60, 60))

	// cooling phase, settlement not open yet
	s.Equal(domain.ErrBuyBiddingTimeNotMet, s.engine.SettleBid(ctx, buyer, id, 60))

	s.now = s.now.Add(400 * time.Second)
	s.Equal(domain.ErrNotTheHighestBidder, s.engine.SettleBid(ctx, buyer2, id, 60))
	s.Equal(domain.ErrPriceNotMet, s.engine.SettleBid(ctx, buyer, id, 59))

	s.Nil(s.engine.SettleBid(ctx, buyer, id, 60))

	_, err := s.engine.GetBidding(ctx, id)
	s.Equal(domain.ErrNotBidding, err)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(60), balance)

	owner, err := s.registry.OwnerOf(ctx, id)
	s.Nil(err)
	s.Equal(buyer, owner)
}

func (s *engineTestSuite) TestSettleBidAfterWindowEnd() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)
	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Nil(s.engine.RaiseBid(ctx, buyer, id, 60, 60))

	s.now = s.now.Add(11 * time.Minute)
	s.Equal(domain.ErrBuyBiddingTimeNotMet, s.engine.SettleBid(ctx, buyer, id, 60))
}

func (s *engineTestSuite) TestSettleBidTransferFailureRollsBack() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)
	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Nil(s.engine.RaiseBid(ctx, buyer, id, 60, 60))
	s.now = s.now.Add(400 * time.Second)

	s.registry.failTransfer = true
	s.Equal(domain.ErrTransferFailed, s.engine.SettleBid(ctx, buyer, id, 60))

	b, err := s.engine.GetBidding(ctx, id)
	s.Nil(err)
	s.Equal(buyer, b.Buyer)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(0), balance)
}

func (s *engineTestSuite) TestCancelBidding() {
	ctx := bCtx.Background()
	id := assetId("2")
	s.mint(id, seller, true)

	s.Equal(domain.ErrNotBidding, s.engine.CancelBidding(ctx, seller, id))

	s.Nil(s.engine.OpenBidding(ctx, seller, id, 50))
	s.Equal(domain.ErrNotOwner, s.engine.CancelBidding(ctx, buyer, id))

	s.Nil(s.engine.CancelBidding(ctx, seller, id))
	_, err := s.engine.GetBidding(ctx, id)
	s.Equal(domain.ErrNotBidding, err)
}

func (s *engineTestSuite) TestWithdraw() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)
	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Nil(s.engine.Buy(ctx, buyer, id, 100))

	receipt, err := s.engine.Withdraw(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(100), receipt.Amount)
	s.Equal(uint64(10), receipt.Fee)
	s.Equal(uint64(90), receipt.Payout)

	s.Equal([]fundTransfer{
		{operator, 10, proceeds.PayoutKindFee},
		{seller, 90, proceeds.PayoutKindPayout},
	}, s.funds.transfers)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(0), balance)
}

func (s *engineTestSuite) TestWithdrawNoProceeds() {
	ctx := bCtx.Background()
	_, err := s.engine.Withdraw(ctx, seller)
	s.Equal(domain.ErrNoProceeds, err)
}

func (s *engineTestSuite) TestWithdrawTransferFailureKeepsBalance() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)
	s.Nil(s.engine.List(ctx, seller, id, 100))
	s.Nil(s.engine.Buy(ctx, buyer, id, 100))

	s.funds.failKind = proceeds.PayoutKindFee
	_, err := s.engine.Withdraw(ctx, seller)
	s.Equal(domain.ErrFeesTransferFailed, err)

	balance, err := s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(100), balance)
	s.Empty(s.funds.transfers)

	// a payout failure must also revert the fee record already written,
	// otherwise a retried withdrawal pays the fee twice
	s.funds.failKind = proceeds.PayoutKindPayout
	_, err = s.engine.Withdraw(ctx, seller)
	s.Equal(domain.ErrTransferFailed, err)

	balance, err = s.engine.GetProceeds(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(100), balance)
	s.Empty(s.funds.transfers)

	s.funds.failKind = ""
	receipt, err := s.engine.Withdraw(ctx, seller)
	s.Nil(err)
	s.Equal(uint64(10), receipt.Fee)
	s.Equal([]fundTransfer{
		{operator, 10, proceeds.PayoutKindFee},
		{seller, 90, proceeds.PayoutKindPayout},
	}, s.funds.transfers)
}

func (s *engineTestSuite) TestWithdrawLargeBalanceFeeSplit() {
	ctx := bCtx.Background()
	id := assetId("1")
	s.mint(id, seller, true)
	s.Nil(s.engine.List(ctx, seller, id, 100))

	// large enough that balance*rate overflows uint64
	balance := uint64(1) << 62
	s.Nil(s.engine.Buy(ctx, buyer, id, balance))

	receipt, err := s.engine.Withdraw(ctx, seller)
	s.Nil(err)
	s.Equal(balance, receipt.Amount)
	s.Equal(uint64(461168601842738790), receipt.Fee)
	s.Equal(balance-receipt.Fee, receipt.Payout)
}

func (s *engineTestSuite) TestReentrantCallsFail() {
	ctx := bCtx.Background()
	id := assetId("1")
	other := assetId("9")
	s.mint(id, seller, true)
	s.mint(other, seller, true)
	s.Nil(s.engine.List(ctx, seller, id, 100))

	// every guarded entry point must reject entry from within the
	// transfer callback of another one
	var nested []error
	s.registry.onTransfer = func(c bCtx.Ctx) {
		nested = append(nested, s.engine.List(c, seller, other, 100))
		nested = append(nested, s.engine.UpdateListing(c, seller, id, 200))
		nested = append(nested, s.engine.CancelListing(c, seller, id))
		nested = append(nested, s.engine.Buy(c, buyer2, id, 100))
		nested = append(nested, s.engine.OpenBidding(c, seller, other, 50))
		nested = append(nested, s.engine.RaiseBid(c, buyer2, other, 60, 60))
		nested = append(nested, s.engine.CancelBidding(c, seller, other))
		nested = append(nested, s.engine.SettleBid(c, buyer2, other, 60))
		_, err := s.engine.Withdraw(c, seller)
		nested = append(nested, err)
	}

	s.Nil(s.engine.Buy(ctx, buyer, id, 100))

	s.Len(nested, 9)
	for _, err := range nested {
		s.Equal(domain.ErrReentrantCall, err)
	}

	// the guard released on exit, the engine keeps working
	s.registry.onTransfer = nil
	s.Nil(s.engine.OpenBidding(ctx, seller, other, 50))
}
