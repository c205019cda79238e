package repository

import (
	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/database/mongoclient"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/service/query"
)

type assetRepo struct {
	q query.Mongo
}

func NewAsset(q query.Mongo) asset.Repo {
	return &assetRepo{q: q}
}

func (r *assetRepo) FindOne(c bCtx.Ctx, id asset.Id) (*asset.Asset, error) {
	res := &asset.Asset{}
	if err := r.q.FindOne(c, domain.TableAssets, id.ToLower(), res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (r *assetRepo) FindAll(c bCtx.Ctx, optsFns ...asset.FindAllOptionsFunc) ([]*asset.Asset, error) {
	opts, err := asset.GetFindAllOptions(optsFns...)
	if err != nil {
		c.WithField("err", err).Error("asset.GetFindAllOptions failed")
		return nil, err
	}

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

	selector, err := mongoclient.MakeBsonM(struct {
		ChainId         *domain.ChainId `bson:"chainId"`
		ContractAddress *domain.Address `bson:"contractAddress"`
		Owner           *domain.Address `bson:"owner"`
	}{opts.ChainId, opts.ContractAddress, opts.Owner})
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}

	res := []*asset.Asset{}
	if err := r.q.Search(c, domain.TableAssets, offset, limit, sort, selector, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *assetRepo) Create(c bCtx.Ctx, a *asset.Asset) error {
	stored := *a
	stored.ContractAddress = stored.ContractAddress.ToLower()
	stored.Owner = stored.Owner.ToLower()
	stored.Approved = stored.Approved.ToLower()
	if err := r.q.Insert(c, domain.TableAssets, &stored); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"asset": a,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *assetRepo) Patch(c bCtx.Ctx, id asset.Id, patchable asset.Patchable) error {
	patch, err := mongoclient.MakeBsonM(patchable)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}
	if err := r.q.Patch(c, domain.TableAssets, id.ToLower(), patch); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.Patch failed")
		return err
	}
	return nil
}
