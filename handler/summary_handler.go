package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/service"
)

type SummaryHandler struct {
	summaries service.SummaryService
	logger    *logrus.Logger
}

func NewSummaryHandler(summaries service.SummaryService, logger *logrus.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, logger: logger}
}

// GenerateSummary handles POST /api/materials/:id/summaries
func (h *SummaryHandler) GenerateSummary(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.summaries.TriggerGeneration(c.Request.Context(), materialID, service.SummaryParams{
		Title: req.Title,
	})
	if err != nil {
		h.logger.Errorf("GenerateSummary: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"summary_id": summary.ID,
		"status":     summary.Status,
	})
}

// GetSummary handles GET /api/summaries/:id
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid summary id"})
		return
	}

	summary, err := h.summaries.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// ListSummaries handles GET /api/materials/:id/summaries
func (h *SummaryHandler) ListSummaries(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}
	page, pageSize := parsePagination(c)

	summaries, total, err := h.summaries.ListByMaterial(materialID, page, pageSize)
	if err != nil {
		h.logger.Errorf("ListSummaries: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"summaries": summaries,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}
