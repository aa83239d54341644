package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/service"
)

type MaterialHandler struct {
	materials service.MaterialService
	logger    *logrus.Logger
}

func NewMaterialHandler(materials service.MaterialService, logger *logrus.Logger) *MaterialHandler {
	return &MaterialHandler{materials: materials, logger: logger}
}

// UploadMaterial handles POST /api/materials (multipart form: session_id,
// title, file).
func (h *MaterialHandler) UploadMaterial(c *gin.Context) {
	sessionID, err := uuid.Parse(c.PostForm("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "detail": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Errorf("UploadMaterial read file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	material, err := h.materials.Upload(c.Request.Context(), sessionID, title, header.Filename, contentType, data)
	if err != nil {
		h.logger.Errorf("UploadMaterial: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"material_id": material.ID,
		"status":      material.Status,
	})
}

// TriggerExtraction handles POST /api/materials/:id/extract. It responds with
// the pending status before any extraction work happens.
func (h *MaterialHandler) TriggerExtraction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	material, err := h.materials.TriggerExtraction(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorf("TriggerExtraction: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":     true,
		"material_id": material.ID,
		"status":      material.Status,
	})
}

// GetMaterial handles GET /api/materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	material, err := h.materials.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": material})
}

// GetMaterialStatus handles GET /api/materials/:id/status. A pure read: it
// reflects the latest committed write and never triggers work.
func (h *MaterialHandler) GetMaterialStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	material, err := h.materials.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"material_id":   material.ID,
		"status":        material.Status,
		"error_message": material.ErrorMessage,
	})
}

// DeleteMaterial handles DELETE /api/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	if err := h.materials.Delete(c.Request.Context(), id); err != nil {
		h.logger.Errorf("DeleteMaterial: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
