package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/attribution"
	"sportsbot/internal/num"
	"sportsbot/internal/repository"
)

type TradeHandler struct {
	Recorder *attribution.Recorder
	Repo     repository.Repository
}

func (h *TradeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/trades")
	group.POST("", h.record)
	group.GET("", h.list)
	group.GET("/:trade_key", h.get)
}

type recordTradeRequest struct {
	PositionVersionID     *uint64 `json:"position_version_id"`
	StrategyID            uint64  `json:"strategy_id" binding:"required"`
	ModelID               string  `json:"model_id" binding:"required"`
	ModelVersion          string  `json:"model_version" binding:"required"`
	MarketTicker          string  `json:"market_ticker" binding:"required"`
	Side                  string  `json:"side" binding:"required"`
	Quantity              string  `json:"quantity" binding:"required"`
	CalculatedProbability string  `json:"calculated_probability" binding:"required"`
	MarketPrice           string  `json:"market_price" binding:"required"`
	ExecutedAt            string  `json:"executed_at"`
}

func (h *TradeHandler) record(c *gin.Context) {
	if h.Recorder == nil {
		Error(c, http.StatusInternalServerError, "recorder unavailable", nil)
		return
	}
	var req recordTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	in := attribution.TradeInput{
		PositionVersionID: req.PositionVersionID,
		StrategyID:        req.StrategyID,
		ModelID:           req.ModelID,
		ModelVersion:      req.ModelVersion,
		MarketTicker:      req.MarketTicker,
		Side:              req.Side,
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
	if req.ExecutedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.ExecutedAt)
		if err != nil {
			Error(c, http.StatusBadRequest, "executed_at: "+err.Error(), nil)
			return
		}
		in.ExecutedAt = ts
	}
	item, err := h.Recorder.RecordTrade(c.Request.Context(), in)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *TradeHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListTradesParams{
		Limit:  queryLimit(c),
		Offset: queryOffset(c),
	}
	if raw := strings.TrimSpace(c.Query("strategy_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid strategy_id", nil)
			return
		}
		params.StrategyID = &id
	}
	if ticker := strings.TrimSpace(c.Query("market_ticker")); ticker != "" {
		params.MarketTicker = &ticker
	}
	items, err := h.Repo.ListTrades(c.Request.Context(), params)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *TradeHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	key := strings.TrimSpace(c.Param("trade_key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "trade_key required", nil)
		return
	}
	item, err := h.Repo.GetTradeByKey(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "trade not found", nil)
		return
	}
	Ok(c, item, nil)
}

func queryOffset(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("offset"))
	if raw == "" {
		return 0
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
