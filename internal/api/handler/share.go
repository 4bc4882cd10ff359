package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
)

// ShareHandler encodes lists into share tokens and renders shared tokens.
type ShareHandler struct {
	lists *service.ListService
}

// NewShareHandler creates a new share handler.
func NewShareHandler(lists *service.ListService) *ShareHandler {
	return &ShareHandler{lists: lists}
}

// EncodeRequest is the body of POST /api/v1/share.
type EncodeRequest struct {
	Name        string                      `json:"name" binding:"required"`
	Description string                      `json:"description"`
	List        map[string][]domain.PageKey `json:"list"`
}

// Encode handles POST /api/v1/share.
func (h *ShareHandler) Encode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	token, err := h.lists.Encode(req.Name, req.Description, req.List)
	if err != nil {
		respondError(c, "Encoding", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Render handles GET /api/v1/share?token=...
// A malformed token renders as an empty list with an error message so the
// page can show a blank state.
func (h *ShareHandler) Render(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'token' is required",
		})
		return
	}

	shared, err := h.lists.RenderToken(c.Request.Context(), token, service.AggregateOptions{
		GroupByProject: c.Query("group_by_project") == "true",
	})
	if errors.Is(err, domain.ErrDecode) {
		logger.CtxWarn(c.Request.Context(), "Cannot render shared list: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"name":        "",
			"description": "",
			"cards":       []domain.Card{},
			"error":       err.Error(),
		})
		return
	}
	if err != nil {
		respondError(c, "Rendering", err)
		return
	}

	c.JSON(http.StatusOK, shared)
}
