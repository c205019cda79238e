package repository

import (
	"sync"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/bidding"
)

type biddingRepo struct {
	mu       sync.RWMutex
	biddings map[asset.Id]bidding.Bidding
}

// NewBidding creates the process wide bidding store. Mutation goes
// through the engine only.
func NewBidding() bidding.Repo {
	return &biddingRepo{
		biddings: map[asset.Id]bidding.Bidding{},
	}
}

func (r *biddingRepo) FindOne(c ctx.Ctx, id asset.Id) (*bidding.Bidding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.biddings[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *biddingRepo) FindAll(c ctx.Ctx) ([]*bidding.Bidding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*bidding.Bidding, 0, len(r.biddings))
	for _, b := range r.biddings {
		b := b
		res = append(res, &b)
	}
	return res, nil
}

func (r *biddingRepo) Upsert(c ctx.Ctx, b *bidding.Bidding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *b
	stored.ContractAddress = stored.ContractAddress.ToLower()
	stored.Seller = stored.Seller.ToLower()
	stored.Buyer = stored.Buyer.ToLower()
	r.biddings[b.ToId().ToLower()] = stored
	return nil
}

func (r *biddingRepo) Remove(c ctx.Ctx, id asset.Id) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = id.ToLower()
	if _, ok := r.biddings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.biddings, id)
	return nil
}
