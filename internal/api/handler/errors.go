package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/api/middleware"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrListNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body, prefixed with what failed.
func respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Error(action + " failed")
	}
	c.JSON(status, gin.H{
		"error":      action + " failed: " + err.Error(),
		"request_id": logger.GetRequestID(c.Request.Context()),
	})
}

// parseID reads a numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// entryRequest is one page in a request body.
type entryRequest struct {
	ID      string `json:"id"`
	Project string `json:"project" binding:"required"`
	Title   string `json:"title"`
	PageID  int64  `json:"pageid"`
}

// key prefers the title when both are given.
func (e entryRequest) key() (domain.PageKey, bool) {
	if e.Title != "" {
		return domain.PageTitle(e.Title), true
	}
	if e.PageID > 0 {
		return domain.PageID(e.PageID), true
	}
	return domain.PageKey{}, false
}
