package usecase

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/bidding"
	"github.com/Alanle1011/contract-marketplace/domain/event"
	"github.com/Alanle1011/contract-marketplace/domain/listing"
	"github.com/Alanle1011/contract-marketplace/domain/marketplace"
	"github.com/Alanle1011/contract-marketplace/domain/proceeds"
)

var timeNow = time.Now

type MarketplaceUseCaseCfg struct {
	ListingRepo  listing.Repo
	BiddingRepo  bidding.Repo
	ProceedsRepo proceeds.Repo
	EventRepo    event.Repo
	Registry     asset.Registry
	Funds        proceeds.FundGateway
	Marketplace  marketplace.Config
}

type impl struct {
	listingRepo  listing.Repo
	biddingRepo  bidding.Repo
	proceedsRepo proceeds.Repo
	eventRepo    event.Repo
	registry     asset.Registry
	funds        proceeds.FundGateway
	owner        domain.Address
	withdrawFees uint64

	guard  reentrancyGuard
	access accessGuard

	// commitMu keeps read snapshots away from a commit in progress.
	// Writers hold it only while flushing staged mutations.
	commitMu sync.RWMutex
}

func NewMarketplace(cfg *MarketplaceUseCaseCfg) marketplace.UseCase {
	return &impl{
		listingRepo:  cfg.ListingRepo,
		biddingRepo:  cfg.BiddingRepo,
		proceedsRepo: cfg.ProceedsRepo,
		eventRepo:    cfg.EventRepo,
		registry:     cfg.Registry,
		funds:        cfg.Funds,
		owner:        cfg.Marketplace.Owner.ToLower(),
		withdrawFees: cfg.Marketplace.WithdrawFeeRate,
		access:       accessGuard{registry: cfg.Registry},
	}
}

func (im *impl) List(c ctx.Ctx, caller domain.Address, id asset.Id, price uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	if _, err := im.listingRepo.FindOne(c, id); err == nil {
		return domain.ErrAlreadyListed
	} else if err != domain.ErrNotFound {
		return err
	}
	if err := im.access.requireOwner(c, id, caller); err != nil {
		return err
	}
	if price == 0 {
		return domain.ErrPriceMustBeAboveZero
	}
	if err := im.access.requireApproved(c, id); err != nil {
		return err
	}

	now := timeNow()
	l := &listing.Listing{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          caller,
		Price:           price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	im.commitMu.Lock()
	err := im.listingRepo.Upsert(c, l)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to listingRepo.Upsert")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeListed,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          caller,
		Price:           price,
	})
	return nil
}

func (im *impl) UpdateListing(c ctx.Ctx, caller domain.Address, id asset.Id, newPrice uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotListed
	} else if err != nil {
		return err
	}
	if err := im.access.requireOwner(c, id, caller); err != nil {
		return err
	}
	if newPrice == 0 {
		return domain.ErrPriceMustBeAboveZero
	}

	l.Price = newPrice
	l.UpdatedAt = timeNow()

	im.commitMu.Lock()
	err = im.listingRepo.Upsert(c, l)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to listingRepo.Upsert")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeListingUpdated,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          l.Seller,
		Price:           newPrice,
	})
	return nil
}

func (im *impl) CancelListing(c ctx.Ctx, caller domain.Address, id asset.Id) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotListed
	} else if err != nil {
		return err
	}
	if err := im.access.requireOwner(c, id, caller); err != nil {
		return err
	}

	im.commitMu.Lock()
	err = im.listingRepo.Remove(c, id)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to listingRepo.Remove")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeListingCanceled,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          l.Seller,
	})
	return nil
}

// Buy settles a fixed price listing. The ledger credit and the listing
// removal are staged first, the asset transfer is attempted, and the
// staged mutations only become observable when the transfer succeeded.
// Overpayment is credited in full, there is no refund.
func (im *impl) Buy(c ctx.Ctx, caller domain.Address, id asset.Id, paymentAmount uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotListed
	} else if err != nil {
		return err
	}
	if paymentAmount < l.Price {
		return domain.ErrPriceNotMet
	}

	t := &tx{}
	t.stage(func(c ctx.Ctx) error {
		return im.proceedsRepo.Credit(c, l.Seller, paymentAmount)
	})
	t.stage(func(c ctx.Ctx) error {
		return im.listingRepo.Remove(c, id)
	})

	if err := im.registry.TransferOwnership(c, id, l.Seller, caller); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"id":     id,
			"seller": l.Seller,
			"buyer":  caller,
		}).Error("failed to registry.TransferOwnership")
		return domain.ErrTransferFailed
	}

	im.commitMu.Lock()
	err = t.flush(c)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to flush buy")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeBought,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          l.Seller,
		Buyer:           caller,
		Price:           paymentAmount,
	})
	return nil
}

func (im *impl) OpenBidding(c ctx.Ctx, caller domain.Address, id asset.Id, price uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	if _, err := im.biddingRepo.FindOne(c, id); err == nil {
		return domain.ErrAlreadyListed
	} else if err != domain.ErrNotFound {
		return err
	}
	if err := im.access.requireOwner(c, id, caller); err != nil {
		return err
	}
	if price == 0 {
		return domain.ErrPriceMustBeAboveZero
	}
	if err := im.access.requireApproved(c, id); err != nil {
		return err
	}

	now := timeNow()
	b := &bidding.Bidding{
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          caller,
		Price:           price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	im.commitMu.Lock()
	err := im.biddingRepo.Upsert(c, b)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to biddingRepo.Upsert")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeBiddingOpened,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          caller,
		Price:           price,
	})
	return nil
}

// RaiseBid records a new highest bid and opens a fresh window, a 5
// minute cooling phase followed by a 5 minute settle phase. Raising is
// blocked while the current time falls strictly inside an open window.
// Funds only move at settlement, never here.
func (im *impl) RaiseBid(c ctx.Ctx, caller domain.Address, id asset.Id, newPrice uint64, paymentAmount uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	b, err := im.biddingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotBidding
	} else if err != nil {
		return err
	}
	if newPrice <= b.Price {
		return domain.ErrPriceNotMet
	}

	now := timeNow()
	if b.BlocksRaise(now) {
		return domain.ErrBiddingTimeIsOver
	}

	b.Buyer = caller
	b.Price = newPrice
	b.WindowStart = now.Add(bidding.CoolingPeriod)
	b.WindowEnd = b.WindowStart.Add(bidding.SettlePeriod)
	b.UpdatedAt = now

	im.commitMu.Lock()
	err = im.biddingRepo.Upsert(c, b)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to biddingRepo.Upsert")
		return err
	}

	windowStart := b.WindowStart
	windowEnd := b.WindowEnd
	im.emit(c, &event.Event{
		Type:            event.TypeBidRaised,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          b.Seller,
		Buyer:           caller,
		Price:           newPrice,
		WindowStart:     &windowStart,
		WindowEnd:       &windowEnd,
	})
	return nil
}

func (im *impl) CancelBidding(c ctx.Ctx, caller domain.Address, id asset.Id) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	b, err := im.biddingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotBidding
	} else if err != nil {
		return err
	}
	if err := im.access.requireOwner(c, id, caller); err != nil {
		return err
	}

	im.commitMu.Lock()
	err = im.biddingRepo.Remove(c, id)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to biddingRepo.Remove")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeBiddingCanceled,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          b.Seller,
	})
	return nil
}

// SettleBid lets the recorded highest bidder pay and claim the asset
// within [windowStart, windowEnd]. Same staged settlement discipline
// as Buy.
func (im *impl) SettleBid(c ctx.Ctx, caller domain.Address, id asset.Id, paymentAmount uint64) error {
	if err := im.guard.enter(); err != nil {
		return err
	}
	defer im.guard.exit()

	b, err := im.biddingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotBidding
	} else if err != nil {
		return err
	}
	if !b.InSettleWindow(timeNow()) {
		return domain.ErrBuyBiddingTimeNotMet
	}
	if !b.Buyer.Equals(caller) {
		return domain.ErrNotTheHighestBidder
	}
	if paymentAmount < b.Price {
		return domain.ErrPriceNotMet
	}

	t := &tx{}
	t.stage(func(c ctx.Ctx) error {
		return im.proceedsRepo.Credit(c, b.Seller, paymentAmount)
	})
	t.stage(func(c ctx.Ctx) error {
		return im.biddingRepo.Remove(c, id)
	})

	if err := im.registry.TransferOwnership(c, id, b.Seller, caller); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"id":     id,
			"seller": b.Seller,
			"buyer":  caller,
		}).Error("failed to registry.TransferOwnership")
		return domain.ErrTransferFailed
	}

	im.commitMu.Lock()
	err = t.flush(c)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to flush settleBid")
		return err
	}

	im.emit(c, &event.Event{
		Type:            event.TypeBidSettled,
		ChainId:         id.ChainId,
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Seller:          b.Seller,
		Buyer:           caller,
		Price:           paymentAmount,
	})
	return nil
}

// Withdraw zeroes the caller's balance and pays it out net of the
// platform fee, fee first. The zeroing and both transfers are one
// atomic unit, a failed transfer leaves the balance untouched and a
// payout failure reverts the already recorded fee.
func (im *impl) Withdraw(c ctx.Ctx, caller domain.Address) (*marketplace.WithdrawReceipt, error) {
	if err := im.guard.enter(); err != nil {
		return nil, err
	}
	defer im.guard.exit()

	balance, err := im.proceedsRepo.Balance(c, caller)
	if err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"caller": caller,
		}).Error("failed to proceedsRepo.Balance")
		return nil, err
	}
	if balance == 0 {
		return nil, domain.ErrNoProceeds
	}

	// split without overflowing on large balances,
	// equal to floor(balance*rate/100)
	fee := balance/100*im.withdrawFees + balance%100*im.withdrawFees/100
	payout := balance - fee

	t := &tx{}
	t.stage(func(c ctx.Ctx) error {
		return im.proceedsRepo.SetBalance(c, caller, 0)
	})

	var feeRecord *proceeds.Payout
	if fee > 0 {
		feeRecord, err = im.funds.Transfer(c, im.owner, fee, proceeds.PayoutKindFee)
		if err != nil {
			c.WithFields(log.Fields{
				"err": err,
				"fee": fee,
			}).Error("failed to transfer fees")
			return nil, domain.ErrFeesTransferFailed
		}
	}
	if _, err := im.funds.Transfer(c, caller, payout, proceeds.PayoutKindPayout); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"payout": payout,
		}).Error("failed to transfer payout")
		if feeRecord != nil {
			if rerr := im.funds.Revert(c, feeRecord); rerr != nil {
				c.WithFields(log.Fields{
					"err": rerr,
					"fee": fee,
				}).Error("failed to revert fee transfer")
			}
		}
		return nil, domain.ErrTransferFailed
	}

	im.commitMu.Lock()
	err = t.flush(c)
	im.commitMu.Unlock()
	if err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"caller": caller,
		}).Error("failed to flush withdraw")
		return nil, err
	}

	im.emit(c, &event.Event{
		Type:   event.TypeWithdrawn,
		Seller: caller,
		Price:  payout,
	})
	return &marketplace.WithdrawReceipt{
		Amount: balance,
		Fee:    fee,
		Payout: payout,
	}, nil
}

func (im *impl) GetListing(c ctx.Ctx, id asset.Id) (*listing.Listing, error) {
	im.commitMu.RLock()
	defer im.commitMu.RUnlock()
	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return nil, domain.ErrNotListed
	}
	return l, err
}

func (im *impl) GetBidding(c ctx.Ctx, id asset.Id) (*bidding.Bidding, error) {
	im.commitMu.RLock()
	defer im.commitMu.RUnlock()
	b, err := im.biddingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return nil, domain.ErrNotBidding
	}
	return b, err
}

func (im *impl) GetProceeds(c ctx.Ctx, seller domain.Address) (uint64, error) {
	im.commitMu.RLock()
	defer im.commitMu.RUnlock()
	return im.proceedsRepo.Balance(c, seller)
}

// emit persists the activity record after commit, best effort, a feed
// failure never fails the operation
func (im *impl) emit(c ctx.Ctx, e *event.Event) {
	e.Id = uuid.NewString()
	e.DisplayPrice = decimal.NewFromBigInt(new(big.Int).SetUint64(e.Price), 0).String()
	e.CreatedAt = timeNow()
	if err := im.eventRepo.Create(c, e); err != nil {
		c.WithFields(log.Fields{
			"err":  err,
			"type": e.Type,
		}).Error("failed to eventRepo.Create")
	}
}
