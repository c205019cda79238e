package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/delivery"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/middleware"
	authMiddleware "github.com/Alanle1011/contract-marketplace/stores/auth/delivery/http/middleware"
)

type handler struct {
	asset asset.Usecase
}

func New(e *echo.Echo, assetUC asset.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{asset: assetUC}

	e.GET("/assets", h.search)

	g := e.Group("/asset/:chainId/:contract/:tokenId", middleware.IsValidAddress("contract"))

	g.GET("", h.get)
	g.POST("/mint", h.mint, authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.POST("/approve", h.approve, authMiddleware.Auth())
	g.POST("/refresh-owner", h.refreshOwner)
}

func bindAssetId(c echo.Context) (asset.Id, error) {
	id := asset.Id{}
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &id); err != nil {
		return id, domain.ErrBadParamInput
	}
	return id, nil
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId         *domain.ChainId `query:"chainId"`
		ContractAddress *domain.Address `query:"contract"`
		Owner           *domain.Address `query:"owner"`
		Offset          int32           `query:"offset"`
		Limit           int32           `query:"limit"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	opts := []asset.FindAllOptionsFunc{}
	if p.ChainId != nil {
		opts = append(opts, asset.WithChainId(*p.ChainId))
	}
	if p.ContractAddress != nil {
		opts = append(opts, asset.WithContractAddress(*p.ContractAddress))
	}
	if p.Owner != nil {
		opts = append(opts, asset.WithOwner(*p.Owner))
	}
	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, asset.WithPagination(p.Offset, p.Limit))
	}

	if res, err := h.asset.Search(ctx, opts...); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if res, err := h.asset.Get(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Owner domain.Address `json:"owner" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if res, err := h.asset.Mint(ctx, id, p.Owner); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, res)
	}
}

func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Operator domain.Address `json:"operator" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.asset.SetApproval(ctx, id, address, p.Operator); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) refreshOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := bindAssetId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if res, err := h.asset.RefreshOwner(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}
