package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/models"
	"sportsbot/internal/scd"
)

type MarketHandler struct {
	Markets *scd.Store[models.Market, *models.Market]
	Edges   *scd.Store[models.Edge, *models.Edge]
}

func (h *MarketHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/markets")
	group.GET("", h.listCurrent)
	group.GET("/:key", h.current)
	group.GET("/:key/history", h.history)

	edges := r.Group("/api/v1/edges")
	edges.GET("", h.listEdges)
	edges.GET("/:key/history", h.edgeHistory)
}

func (h *MarketHandler) listCurrent(c *gin.Context) {
	if h.Markets == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	items, err := h.Markets.ListCurrent(c.Request.Context(), queryLimit(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *MarketHandler) current(c *gin.Context) {
	if h.Markets == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	item, err := h.Markets.GetCurrent(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *MarketHandler) history(c *gin.Context) {
	if h.Markets == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	items, err := h.Markets.GetHistory(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *MarketHandler) listEdges(c *gin.Context) {
	if h.Edges == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	items, err := h.Edges.ListCurrent(c.Request.Context(), queryLimit(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// edgeHistory keys on "<market ticker>|<model id>".
func (h *MarketHandler) edgeHistory(c *gin.Context) {
	if h.Edges == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	items, err := h.Edges.GetHistory(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
