package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/repository"
)

type AnomalyHandler struct {
	Repo repository.Repository
}

func (h *AnomalyHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/anomalies", h.list)
}

func (h *AnomalyHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListAnomaliesParams{
		Limit:  queryLimit(c),
		Offset: queryOffset(c),
	}
	if entity := strings.TrimSpace(c.Query("entity")); entity != "" {
		params.Entity = &entity
	}
	if key := strings.TrimSpace(c.Query("business_key")); key != "" {
		params.BusinessKey = &key
	}
	if severity := strings.TrimSpace(c.Query("severity")); severity != "" {
		params.Severity = &severity
	}
	items, err := h.Repo.ListAnomalies(c.Request.Context(), params)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
