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

type LectureHandler struct {
	lectures service.LectureService
	logger   *logrus.Logger
}

func NewLectureHandler(lectures service.LectureService, logger *logrus.Logger) *LectureHandler {
	return &LectureHandler{lectures: lectures, logger: logger}
}

// GenerateLecture handles POST /api/materials/:id/lectures
func (h *LectureHandler) GenerateLecture(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	var req struct {
		Title    string `json:"title"`
		Voice    string `json:"voice"`
		Style    string `json:"style"`
		Duration int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lecture, err := h.lectures.TriggerGeneration(c.Request.Context(), materialID, service.LectureParams{
		Title:    req.Title,
		Voice:    req.Voice,
		Style:    req.Style,
		Duration: req.Duration,
	})
	if err != nil {
		h.logger.Errorf("GenerateLecture: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"lecture_id": lecture.ID,
		"status":     lecture.Status,
	})
}

// GetLecture handles GET /api/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lecture id"})
		return
	}

	lecture, err := h.lectures.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": lecture})
}

// ListLectures handles GET /api/materials/:id/lectures
func (h *LectureHandler) ListLectures(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}
	page, pageSize := parsePagination(c)

	lectures, total, err := h.lectures.ListByMaterial(materialID, page, pageSize)
	if err != nil {
		h.logger.Errorf("ListLectures: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"lectures":  lectures,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}
