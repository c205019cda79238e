package repository

import (
	"sync"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/proceeds"
)

type proceedsRepo struct {
	mu       sync.RWMutex
	balances map[domain.Address]uint64
}

// NewProceeds creates the process wide proceeds ledger
func NewProceeds() proceeds.Repo {
	return &proceedsRepo{
		balances: map[domain.Address]uint64{},
	}
}

func (r *proceedsRepo) Balance(c ctx.Ctx, seller domain.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[seller.ToLower()], nil
}

func (r *proceedsRepo) Credit(c ctx.Ctx, seller domain.Address, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[seller.ToLower()] += amount
	return nil
}

func (r *proceedsRepo) SetBalance(c ctx.Ctx, seller domain.Address, balance uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seller = seller.ToLower()
	if balance == 0 {
		delete(r.balances, seller)
		return nil
	}
	r.balances[seller] = balance
	return nil
}
