package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/delivery"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/asset"
	"github.com/Alanle1011/contract-marketplace/domain/event"
	"github.com/Alanle1011/contract-marketplace/middleware"
)

type handler struct {
	event event.Usecase
}

func New(e *echo.Echo, eventUC event.Usecase) {
	h := &handler{event: eventUC}

	e.GET("/events", h.search, middleware.CacheHttp(30*time.Second))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId         *domain.ChainId `query:"chainId"`
		ContractAddress *domain.Address `query:"contract"`
		TokenId         *domain.TokenId `query:"tokenId"`
		Account         *domain.Address `query:"account"`
		Type            *event.Type     `query:"type"`
		Offset          int32           `query:"offset"`
		Limit           int32           `query:"limit"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	opts := []event.FindAllOptionsFunc{}
	if p.ChainId != nil && p.ContractAddress != nil && p.TokenId != nil {
		opts = append(opts, event.WithAsset(asset.Id{
			ChainId:         *p.ChainId,
			ContractAddress: *p.ContractAddress,
			TokenId:         *p.TokenId,
		}))
	}
	if p.Account != nil {
		opts = append(opts, event.WithAccount(*p.Account))
	}
	if p.Type != nil {
		opts = append(opts, event.WithType(*p.Type))
	}
	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, event.WithPagination(p.Offset, p.Limit))
	} else {
		opts = append(opts, event.WithPagination(0, 100))
	}

	events, count, err := h.event.Search(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := struct {
		Events []*event.Event `json:"events"`
		Count  int            `json:"count"`
	}{events, count}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
