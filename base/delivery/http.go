package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// statusOverrides maps marketplace errors to the HTTP status the caller
// needs to retry correctly, regardless of the status the handler picked.
var statusOverrides = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrNotListed, http.StatusNotFound},
	{domain.ErrNotBidding, http.StatusNotFound},
	{domain.ErrAlreadyListed, http.StatusConflict},
	{domain.ErrReentrantCall, http.StatusConflict},
	{domain.ErrNotOwner, http.StatusForbidden},
	{domain.ErrNotTheHighestBidder, http.StatusForbidden},
	{domain.ErrNotApprovedForMarketplace, http.StatusForbidden},
	{domain.ErrPriceMustBeAboveZero, http.StatusBadRequest},
	{domain.ErrPriceNotMet, http.StatusBadRequest},
	{domain.ErrBiddingTimeIsOver, http.StatusBadRequest},
	{domain.ErrBuyBiddingTimeNotMet, http.StatusBadRequest},
	{domain.ErrNoProceeds, http.StatusBadRequest},
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if errors.Is(err, query.ErrNotFound) {
			status = http.StatusNotFound
		}
		for _, o := range statusOverrides {
			if errors.Is(err, o.err) {
				status = o.status
				break
			}
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
