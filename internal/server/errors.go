package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smallbiznis/courierfare/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/courierfare/internal/catalog/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	quotedomain "github.com/smallbiznis/courierfare/internal/quote/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, err error) {
	status, message := mapError(err)
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message})
}

func mapError(err error) (int, string) {
	var overlap *ruledomain.OverlapError
	if errors.As(err, &overlap) {
		return http.StatusBadRequest, overlap.Error()
	}

	switch {
	case errors.Is(err, ruledomain.ErrNotFound),
		errors.Is(err, auditdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ruledomain.ErrInvalidID),
		errors.Is(err, ruledomain.ErrInvalidName),
		errors.Is(err, ruledomain.ErrInvalidPriority),
		errors.Is(err, ruledomain.ErrInvalidRange),
		errors.Is(err, ruledomain.ErrInvalidFee),
		errors.Is(err, quotedomain.ErrInvalidOrderType),
		errors.Is(err, geo.ErrInvalidCoordinates):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Success: false, Message: message})
}
