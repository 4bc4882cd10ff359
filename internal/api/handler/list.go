package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
)

// ListHandler handles stored reading lists.
type ListHandler struct {
	lists *service.ListService
}

// NewListHandler creates a new list handler.
// Parameters:
//   - lists: list service instance.
// Returns:
//   - *ListHandler: initialized handler.
func NewListHandler(lists *service.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

// CreateListRequest is the body of POST /api/v1/lists.
type CreateListRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=256"`
}

// ImportRequest is the body of POST /api/v1/lists/import.
type ImportRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreateList handles POST /api/v1/lists.
func (h *ListHandler) CreateList(c *gin.Context) {
	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	list, err := h.lists.CreateList(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, "Creating list", err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetList handles GET /api/v1/lists/:id.
func (h *ListHandler) GetList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.lists.GetList(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Loading list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddEntry handles POST /api/v1/lists/:id/entries.
func (h *ListHandler) AddEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	key, ok := req.key()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: a title or a pageid is required",
		})
		return
	}

	entry, err := h.lists.AddEntry(c.Request.Context(), id, req.Project, key)
	if err != nil {
		respondError(c, "Adding entry", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteEntry handles DELETE /api/v1/lists/:id/entries/:entryId.
func (h *ListHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseID(c, "entryId")
	if !ok {
		return
	}

	if err := h.lists.RemoveEntry(c.Request.Context(), id, entryID); err != nil {
		respondError(c, "Deleting entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cards handles GET /api/v1/lists/:id/cards.
func (h *ListHandler) Cards(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cards, err := h.lists.Cards(c.Request.Context(), id, service.AggregateOptions{
		GroupByProject: c.Query("group_by_project") == "true",
	})
	if err != nil {
		respondError(c, "Aggregation", err)
		return
	}
	c.JSON(http.StatusOK, CardsResponse{Cards: cards, Total: len(cards)})
}

// Export handles GET /api/v1/lists/:id/export.
func (h *ListHandler) Export(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	token, err := h.lists.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Export", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Import handles POST /api/v1/lists/import.
func (h *ListHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	list, err := h.lists.Import(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, "Import", err)
		return
	}
	c.JSON(http.StatusCreated, list)
}
