package usecase

import (
	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain/event"
)

type EventUseCaseCfg struct {
	EventRepo event.Repo
}

type impl struct {
	eventRepo event.Repo
}

func NewEvent(cfg *EventUseCaseCfg) event.Usecase {
	return &impl{
		eventRepo: cfg.EventRepo,
	}
}

func (im *impl) Search(c bCtx.Ctx, opts ...event.FindAllOptionsFunc) ([]*event.Event, int, error) {
	events, err := im.eventRepo.FindAll(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("eventRepo.FindAll failed")
		return nil, 0, err
	}
	count, err := im.eventRepo.Count(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("eventRepo.Count failed")
		return nil, 0, err
	}
	return events, count, nil
}
