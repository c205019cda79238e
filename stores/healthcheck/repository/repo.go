package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/database/mongoclient"
	hcdomain "github.com/Alanle1011/contract-marketplace/domain/healthcheck"
	"github.com/Alanle1011/contract-marketplace/domain/keys"
	"github.com/Alanle1011/contract-marketplace/service/redis"
)

type impl struct {
	mgoClient  *mongoclient.Client
	redisCache redis.Service
}

// New creates a HealthCheckRepo that probes mongo and redis connectivity
func New(
	mgoClient *mongoclient.Client,
	redisCache redis.Service,
) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient:  mgoClient,
		redisCache: redisCache,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if err := im.mgoClient.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}

	if err := im.redisCache.Set(ctx, keys.RedisKey(keys.PfxHealthCheck, "probe"), []byte("1"), 30*time.Second); err != nil {
		context.WithField("err", err).Error("redis probe set failed")
		return err
	}
	return nil
}
