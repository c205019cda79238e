package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/database/mongoclient"
	"github.com/Alanle1011/contract-marketplace/base/database/redisclient"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/base/metrics"
	bValidator "github.com/Alanle1011/contract-marketplace/base/validator"
	"github.com/Alanle1011/contract-marketplace/domain/marketplace"
	mmiddleware "github.com/Alanle1011/contract-marketplace/middleware"
	"github.com/Alanle1011/contract-marketplace/service/chain"
	"github.com/Alanle1011/contract-marketplace/service/chain/contract"
	"github.com/Alanle1011/contract-marketplace/service/query"
	"github.com/Alanle1011/contract-marketplace/service/redis"
	asset_delivery "github.com/Alanle1011/contract-marketplace/stores/asset/delivery/http"
	asset_repository "github.com/Alanle1011/contract-marketplace/stores/asset/repository"
	asset_usecase "github.com/Alanle1011/contract-marketplace/stores/asset/usecase"
	auth_delivery "github.com/Alanle1011/contract-marketplace/stores/auth/delivery/http"
	auth_middleware "github.com/Alanle1011/contract-marketplace/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/Alanle1011/contract-marketplace/stores/auth/usecase"
	bidding_repository "github.com/Alanle1011/contract-marketplace/stores/bidding/repository"
	event_delivery "github.com/Alanle1011/contract-marketplace/stores/event/delivery/http"
	event_repository "github.com/Alanle1011/contract-marketplace/stores/event/repository"
	event_usecase "github.com/Alanle1011/contract-marketplace/stores/event/usecase"
	hc_delivery "github.com/Alanle1011/contract-marketplace/stores/healthcheck/delivery/http"
	hc_repo "github.com/Alanle1011/contract-marketplace/stores/healthcheck/repository"
	hc_usecase "github.com/Alanle1011/contract-marketplace/stores/healthcheck/usecase"
	listing_repository "github.com/Alanle1011/contract-marketplace/stores/listing/repository"
	marketplace_delivery "github.com/Alanle1011/contract-marketplace/stores/marketplace/delivery/http"
	marketplace_usecase "github.com/Alanle1011/contract-marketplace/stores/marketplace/usecase"
	proceeds_repository "github.com/Alanle1011/contract-marketplace/stores/proceeds/repository"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient)

	// init redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	// init chain service
	networks := viper.Sub("networks")
	rpcs := make(map[int32]string)
	if networks != nil {
		for k := range networks.AllSettings() {
			chainId := networks.GetInt32(fmt.Sprintf("%s.chainId", k))
			rpcUrl := networks.GetString(fmt.Sprintf("%s.rpcUrl", k))
			rpcs[chainId] = rpcUrl
		}
	}
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrls: rpcs,
	})
	if err != nil {
		context.WithField("err", err).Warn("chainService started with error")
	}
	erc721Service := contract.NewErc721(chainService)

	marketplaceCfg := marketplace.Config{}
	if err := viper.UnmarshalKey("marketplace", &marketplaceCfg); err != nil {
		panic(err)
	}

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	assetRepo := asset_repository.NewAsset(q)
	listingRepo := listing_repository.NewListing()
	biddingRepo := bidding_repository.NewBidding()
	proceedsRepo := proceeds_repository.NewProceeds()
	eventRepo := event_repository.NewEvent(q)
	fundGateway := proceeds_repository.NewPayoutGateway(q)

	hc := hc_usecase.New(hcRepo)
	assetMirror := asset_usecase.NewAsset(&asset_usecase.AssetUseCaseCfg{
		AssetRepo:   assetRepo,
		Erc721:      erc721Service,
		Marketplace: marketplaceCfg.Owner,
	})
	marketplaceUC := marketplace_usecase.NewMarketplace(&marketplace_usecase.MarketplaceUseCaseCfg{
		ListingRepo:  listingRepo,
		BiddingRepo:  biddingRepo,
		ProceedsRepo: proceedsRepo,
		EventRepo:    eventRepo,
		Registry:     assetMirror,
		Funds:        fundGateway,
		Marketplace:  marketplaceCfg,
	})
	eventUC := event_usecase.NewEvent(&event_usecase.EventUseCaseCfg{
		EventRepo: eventRepo,
	})
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), viper.GetString("auth.signatureMsg"))

	adminAddresses := viper.GetStringSlice("admin.addresses")
	authMiddleware := auth_middleware.New(auth, adminAddresses)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	asset_delivery.New(e, assetMirror, authMiddleware)
	marketplace_delivery.New(e, marketplaceUC, authMiddleware)
	event_delivery.New(e, eventUC)

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"address": c.Get("address"),
		})
	}, authMiddleware.Auth())

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
