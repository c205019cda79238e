package repository

import (
	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/event"
	"github.com/Alanle1011/contract-marketplace/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

type eventRepo struct {
	q query.Mongo
}

func NewEvent(q query.Mongo) event.Repo {
	return &eventRepo{q: q}
}

func (r *eventRepo) Create(c bCtx.Ctx, e *event.Event) error {
	stored := *e
	stored.ContractAddress = stored.ContractAddress.ToLower()
	stored.Seller = stored.Seller.ToLower()
	stored.Buyer = stored.Buyer.ToLower()
	if err := r.q.Insert(c, domain.TableEvents, &stored); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": e,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *eventRepo) FindAll(c bCtx.Ctx, optsFns ...event.FindAllOptionsFunc) ([]*event.Event, error) {
	opts, err := event.GetFindAllOptions(optsFns...)
	if err != nil {
		c.WithField("err", err).Error("event.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit, sort := paginationOf(opts)

	res := []*event.Event{}
	if err := r.q.Search(c, domain.TableEvents, offset, limit, sort, makeSelector(opts), &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *eventRepo) Count(c bCtx.Ctx, optsFns ...event.FindAllOptionsFunc) (int, error) {
	opts, err := event.GetFindAllOptions(optsFns...)
	if err != nil {
		c.WithField("err", err).Error("event.GetFindAllOptions failed")
		return 0, err
	}

	count, err := r.q.Count(c, domain.TableEvents, makeSelector(opts))
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return count, nil
}

func paginationOf(opts event.FindAllOptions) (int, int, string) {
	var (
		offset = 0
		limit  = 0
		sort   = "-createdAt"
	)
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}
	if opts.SortBy != nil && opts.SortDir != nil {
		sort = *opts.SortBy
		if *opts.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}
	return offset, limit, sort
}

func makeSelector(opts event.FindAllOptions) bson.M {
	sel := bson.M{}
	if opts.ChainId != nil {
		sel["chainId"] = *opts.ChainId
	}
	if opts.ContractAddress != nil {
		sel["contractAddress"] = *opts.ContractAddress
	}
	if opts.TokenId != nil {
		sel["tokenID"] = *opts.TokenId
	}
	if opts.Type != nil {
		sel["type"] = *opts.Type
	}
	if opts.Account != nil {
		sel["$or"] = bson.A{
			bson.M{"seller": *opts.Account},
			bson.M{"buyer": *opts.Account},
		}
	}
	return sel
}
