package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/attribution"
	"sportsbot/internal/models"
	"sportsbot/internal/num"
	"sportsbot/internal/scd"
)

type PositionHandler struct {
	Recorder  *attribution.Recorder
	Positions *scd.Store[models.Position, *models.Position]
}

func (h *PositionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/positions")
	group.POST("", h.open)
	group.GET("", h.listCurrent)
	group.GET("/:key", h.current)
	group.GET("/:key/history", h.history)
}

type openPositionRequest struct {
	MarketTicker          string `json:"market_ticker" binding:"required"`
	GameKey               string `json:"game_key"`
	Side                  string `json:"side" binding:"required"`
	Quantity              string `json:"quantity" binding:"required"`
	StrategyID            uint64 `json:"strategy_id" binding:"required"`
	ModelID               string `json:"model_id" binding:"required"`
	ModelVersion          string `json:"model_version" binding:"required"`
	CalculatedProbability string `json:"calculated_probability" binding:"required"`
	MarketPrice           string `json:"market_price" binding:"required"`
	EnteredAt             string `json:"entered_at"`
}

func (h *PositionHandler) open(c *gin.Context) {
	if h.Recorder == nil {
		Error(c, http.StatusInternalServerError, "recorder unavailable", nil)
		return
	}
	var req openPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	in := attribution.PositionEntry{
		MarketTicker: req.MarketTicker,
		GameKey:      req.GameKey,
		Side:         req.Side,
		StrategyID:   req.StrategyID,
		ModelID:      req.ModelID,
		ModelVersion: req.ModelVersion,
	}
	var err error
	if in.Quantity, err = num.Parse(req.Quantity); err != nil {
		Error(c, http.StatusBadRequest, "quantity: "+err.Error(), nil)
		return
	}
	if in.CalculatedProbability, err = num.Parse(req.CalculatedProbability); err != nil {
		Error(c, http.StatusBadRequest, "calculated_probability: "+err.Error(), nil)
		return
	}
	if in.MarketPrice, err = num.Parse(req.MarketPrice); err != nil {
		Error(c, http.StatusBadRequest, "market_price: "+err.Error(), nil)
		return
	}
	if req.EnteredAt != "" {
		ts, err := time.Parse(time.RFC3339, req.EnteredAt)
		if err != nil {
			Error(c, http.StatusBadRequest, "entered_at: "+err.Error(), nil)
			return
		}
		in.EnteredAt = ts
	}
	item, err := h.Recorder.RecordPositionEntry(c.Request.Context(), in)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *PositionHandler) listCurrent(c *gin.Context) {
	if h.Positions == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	items, err := h.Positions.ListCurrent(c.Request.Context(), queryLimit(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *PositionHandler) current(c *gin.Context) {
	if h.Positions == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	item, err := h.Positions.GetCurrent(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *PositionHandler) history(c *gin.Context) {
	if h.Positions == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	items, err := h.Positions.GetHistory(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
