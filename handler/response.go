package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyloft/studyloft/service"
)

// respondError maps service errors onto HTTP statuses: not-found sentinels to
// 404, validation sentinels to 400, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMaterialNotFound),
		errors.Is(err, service.ErrQuizNotFound),
		errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, service.ErrSummaryNotFound),
		errors.Is(err, service.ErrLectureNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoContent),
		errors.Is(err, service.ErrQuizNotReady):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "detail": err.Error()})
	}
}

func parsePagination(c *gin.Context) (int32, int32) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	return int32(page), int32(pageSize)
}
