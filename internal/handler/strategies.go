package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sportsbot/internal/strategy"
)

type StrategyHandler struct {
	Manager *strategy.Manager
}

func (h *StrategyHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/strategies")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/active", h.active)
	group.GET("/:id", h.get)
	group.POST("/:id/status", h.updateStatus)
	group.PUT("/:id/metrics", h.updateMetrics)
}

type createStrategyRequest struct {
	Name    string         `json:"name" binding:"required"`
	Version string         `json:"version" binding:"required"`
	Config  map[string]any `json:"config"`
}

func (h *StrategyHandler) create(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	item, err := h.Manager.Create(c.Request.Context(), req.Name, req.Version, req.Config)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *StrategyHandler) list(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	items, err := h.Manager.List(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *StrategyHandler) active(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	items, err := h.Manager.Active(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *StrategyHandler) get(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.Manager.Get(c.Request.Context(), id)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *StrategyHandler) updateStatus(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	next, err := strategy.ParseStatus(req.Status)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	item, err := h.Manager.UpdateStatus(c.Request.Context(), id, next)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

type updateMetricsRequest struct {
	PaperROI         *string `json:"paper_roi"`
	LiveROI          *string `json:"live_roi"`
	PaperTradesCount *int64  `json:"paper_trades_count"`
	LiveTradesCount  *int64  `json:"live_trades_count"`
}

func (h *StrategyHandler) updateMetrics(c *gin.Context) {
	if h.Manager == nil {
		Error(c, http.StatusInternalServerError, "manager unavailable", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	update := strategy.MetricsUpdate{
		PaperTradesCount: req.PaperTradesCount,
		LiveTradesCount:  req.LiveTradesCount,
	}
	if req.PaperROI != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.PaperROI))
		if err != nil {
			Error(c, http.StatusBadRequest, "paper_roi: "+err.Error(), nil)
			return
		}
		update.PaperROI = &v
	}
	if req.LiveROI != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.LiveROI))
		if err != nil {
			Error(c, http.StatusBadRequest, "live_roi: "+err.Error(), nil)
			return
		}
		update.LiveROI = &v
	}
	if err := h.Manager.UpdateMetrics(c.Request.Context(), id, update); err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, gin.H{"updated": true}, nil)
}

func parseID(c *gin.Context) (uint64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}
