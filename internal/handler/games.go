package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sportsbot/internal/models"
	"sportsbot/internal/scd"
)

type GameHandler struct {
	Games *scd.Store[models.GameState, *models.GameState]
}

func (h *GameHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/games")
	group.GET("", h.listCurrent)
	group.GET("/:key", h.current)
	group.GET("/:key/history", h.history)
}

func (h *GameHandler) listCurrent(c *gin.Context) {
	if h.Games == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	items, err := h.Games.ListCurrent(c.Request.Context(), queryLimit(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *GameHandler) current(c *gin.Context) {
	if h.Games == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	item, err := h.Games.GetCurrent(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *GameHandler) history(c *gin.Context) {
	if h.Games == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	key, ok := businessKey(c)
	if !ok {
		return
	}
	items, err := h.Games.GetHistory(c.Request.Context(), key)
	if err != nil {
		DomainError(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func businessKey(c *gin.Context) (string, bool) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "key required", nil)
		return "", false
	}
	return key, true
}

func queryLimit(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
