package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
)

// CardHandler serves ad-hoc aggregation of pages into cards.
type CardHandler struct {
	aggregator *service.Aggregator
}

// NewCardHandler creates a new card handler.
// Parameters:
//   - aggregator: cross-wiki aggregator.
// Returns:
//   - *CardHandler: initialized handler.
func NewCardHandler(aggregator *service.Aggregator) *CardHandler {
	return &CardHandler{aggregator: aggregator}
}

// CardsRequest is the body of POST /api/v1/cards.
type CardsRequest struct {
	Entries        []entryRequest `json:"entries" binding:"required,dive"`
	GroupByProject bool           `json:"group_by_project"`
}

// CardsResponse wraps aggregated cards.
type CardsResponse struct {
	Cards []domain.Card `json:"cards"`
	Total int           `json:"total"`
}

// Aggregate handles POST /api/v1/cards.
// Entries without an id get their position as id.
func (h *CardHandler) Aggregate(c *gin.Context) {
	var req CardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	refs := make([]domain.PageRef, len(req.Entries))
	for i, e := range req.Entries {
		key, ok := e.key()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: entry " + strconv.Itoa(i) + " needs a title or a pageid",
			})
			return
		}
		id := e.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		refs[i] = domain.PageRef{EntryID: id, Project: e.Project, Key: key}
	}

	cards, err := h.aggregator.Aggregate(c.Request.Context(), refs, service.AggregateOptions{
		GroupByProject: req.GroupByProject,
	})
	if err != nil {
		respondError(c, "Aggregation", err)
		return
	}

	c.JSON(http.StatusOK, CardsResponse{Cards: cards, Total: len(cards)})
}
