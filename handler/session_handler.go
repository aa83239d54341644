package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/repository"
	"github.com/studyloft/studyloft/service"
)

type SessionHandler struct {
	sessions  repository.SessionRepository
	materials service.MaterialService
	logger    *logrus.Logger
}

func NewSessionHandler(sessions repository.SessionRepository, materials service.MaterialService, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, materials: materials, logger: logger}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Subject     string `json:"subject"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &models.StudySession{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
	}
	if err := h.sessions.Create(session); err != nil {
		h.logger.Errorf("CreateSession: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": session})
}

// ListSessions handles GET /api/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, pageSize := parsePagination(c)

	sessions, total, err := h.sessions.ListWithPagination(page, pageSize)
	if err != nil {
		h.logger.Errorf("ListSessions: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"sessions":  sessions,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetSession handles GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.sessions.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrSessionNotFound.Error()})
			return
		}
		h.logger.Errorf("GetSession: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": session})
}

// ListSessionMaterials handles GET /api/sessions/:id/materials
func (h *SessionHandler) ListSessionMaterials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	page, pageSize := parsePagination(c)

	materials, total, err := h.materials.ListBySession(id, page, pageSize)
	if err != nil {
		h.logger.Errorf("ListSessionMaterials: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"materials": materials,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}
