package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/scd"
	"sportsbot/internal/strategy"
	"sportsbot/internal/validate"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// DomainError maps the typed domain errors onto HTTP statuses. Anything
// unrecognized is reported as a bad gateway, matching how storage errors
// surface elsewhere.
func DomainError(c *gin.Context, err error) {
	var (
		notFound   *scd.NotFoundError
		duplicate  *scd.DuplicateBusinessKeyError
		conflict   *scd.ConcurrencyConflictError
		rejected   *validate.ValidationError
		transition *strategy.InvalidStatusTransitionError
		dupVersion *strategy.DuplicateVersionError
	)
	switch {
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &duplicate), errors.As(err, &dupVersion):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.As(err, &conflict), errors.As(err, &transition):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.As(err, &rejected):
		Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
