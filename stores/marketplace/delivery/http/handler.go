package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/delivery"
	"github.com/Alanle1011/contract-marketplace/base/metrics"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/marketplace"
	"github.com/Alanle1011/contract-marketplace/middleware"
	authMiddleware "github.com/Alanle1011/contract-marketplace/stores/auth/delivery/http/middleware"
)

var met metrics.Service

type handler struct {
	marketplace marketplace.UseCase
}

func New(e *echo.Echo, marketplaceUC marketplace.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	met = metrics.New("marketplace")

	h := &handler{marketplace: marketplaceUC}

	g := e.Group("/marketplace/:chainId/:contract/:tokenId", middleware.IsValidAddress("contract"))

	g.GET("/listing", h.getListing)
	g.POST("/listing", h.list, authMiddleware.Auth())
	g.PUT("/listing", h.updateListing, authMiddleware.Auth())
	g.DELETE("/listing", h.cancelListing, authMiddleware.Auth())
	g.POST("/buy", h.buy, authMiddleware.Auth())

	g.GET("/bidding", h.getBidding)
	g.POST("/bidding", h.openBidding, authMiddleware.Auth())
	g.PUT("/bidding", h.raiseBid, authMiddleware.Auth())
	g.DELETE("/bidding", h.cancelBidding, authMiddleware.Auth())
	g.POST("/settle", h.settleBid, authMiddleware.Auth())

	e.GET("/proceeds/:seller", h.getProceeds, middleware.IsValidAddress("seller"))
	e.POST("/withdraw", h.withdraw, authMiddleware.Auth())
}

func bindAssetId(c echo.Context) (asset.Id, error) {
	id := asset.Id{}
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &id); err != nil {
		return id, domain.ErrBadParamInput
	}
	return id, nil
}

func (h *handler) getListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if res, err := h.marketplace.GetListing(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Price uint64 `json:"price" validate:"gt=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.List(ctx, address, id, p.Price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	met.BumpSum("listing.created", 1)
	return delivery.MakeJsonResp(c, http.StatusCreated, "ok")
}

func (h *handler) updateListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		NewPrice uint64 `json:"newPrice" validate:"gt=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.UpdateListing(ctx, address, id, p.NewPrice); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) cancelListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.marketplace.CancelListing(ctx, address, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		PaymentAmount uint64 `json:"paymentAmount" validate:"gt=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.Buy(ctx, address, id, p.PaymentAmount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	met.BumpSum("purchase.settled", 1)
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getBidding(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if res, err := h.marketplace.GetBidding(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) openBidding(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Price uint64 `json:"price" validate:"gt=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.OpenBidding(ctx, address, id, p.Price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, "ok")
}

func (h *handler) raiseBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		NewPrice      uint64 `json:"newPrice" validate:"gt=0"`
		PaymentAmount uint64 `json:"paymentAmount"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.RaiseBid(ctx, address, id, p.NewPrice, p.PaymentAmount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) cancelBidding(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.marketplace.CancelBidding(ctx, address, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) settleBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		PaymentAmount uint64 `json:"paymentAmount" validate:"gt=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.SettleBid(ctx, address, id, p.PaymentAmount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	met.BumpSum("bidding.settled", 1)
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getProceeds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	seller := domain.Address(c.Param("seller"))

	balance, err := h.marketplace.GetProceeds(ctx, seller)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := struct {
		Seller  domain.Address `json:"seller"`
		Balance uint64         `json:"balance"`
	}{seller.ToLower(), balance}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	receipt, err := h.marketplace.Withdraw(ctx, address)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	met.BumpSum("withdraw.completed", 1)
	return delivery.MakeJsonResp(c, http.StatusOK, receipt)
}
