package repository

import (
	"sync"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/listing"
)

type listingRepo struct {
	mu       sync.RWMutex
	listings map[asset.Id]listing.Listing
}

// NewListing creates the process wide listing store. Mutation goes
// through the engine only.
func NewListing() listing.Repo {
	return &listingRepo{
		listings: map[asset.Id]listing.Listing{},
	}
}

func (r *listingRepo) FindOne(c ctx.Ctx, id asset.Id) (*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *listingRepo) FindAll(c ctx.Ctx) ([]*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*listing.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		l := l
		res = append(res, &l)
	}
	return res, nil
}

func (r *listingRepo) Upsert(c ctx.Ctx, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *l
	stored.ContractAddress = stored.ContractAddress.ToLower()
	stored.Seller = stored.Seller.ToLower()
	r.listings[l.ToId().ToLower()] = stored
	return nil
}

func (r *listingRepo) Remove(c ctx.Ctx, id asset.Id) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = id.ToLower()
	if _, ok := r.listings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}
