package usecase

import (
	"sync/atomic"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
)

// reentrancyGuard marks an engine operation in flight. Entering any
// guarded operation while another one holds the flag fails with
// ErrReentrantCall, the flag is released on every exit path.
type reentrancyGuard struct {
	entered atomic.Bool
}

func (g *reentrancyGuard) enter() error {
	if !g.entered.CompareAndSwap(false, true) {
		return domain.ErrReentrantCall
	}
	return nil
}

func (g *reentrancyGuard) exit() {
	g.entered.Store(false)
}

// accessGuard checks ownership and approval against the registry. Read
// only, no state of its own.
type accessGuard struct {
	registry asset.Registry
}

func (g *accessGuard) requireOwner(c ctx.Ctx, id asset.Id, caller domain.Address) error {
	owner, err := g.registry.OwnerOf(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to registry.OwnerOf")
		return err
	}
	if !owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	return nil
}

func (g *accessGuard) requireApproved(c ctx.Ctx, id asset.Id) error {
	approved, err := g.registry.IsApprovedForMarketplace(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to registry.IsApprovedForMarketplace")
		return err
	}
	if !approved {
		return domain.ErrNotApprovedForMarketplace
	}
	return nil
}
