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

type FlashcardHandler struct {
	decks  service.FlashcardService
	logger *logrus.Logger
}

func NewFlashcardHandler(decks service.FlashcardService, logger *logrus.Logger) *FlashcardHandler {
	return &FlashcardHandler{decks: decks, logger: logger}
}

// GenerateDeck handles POST /api/materials/:id/flashcard-decks
func (h *FlashcardHandler) GenerateDeck(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	var req struct {
		Title    string `json:"title"`
		NumCards int    `json:"num_flashcards"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck, err := h.decks.TriggerGeneration(c.Request.Context(), materialID, service.DeckParams{
		Title:    req.Title,
		NumCards: req.NumCards,
	})
	if err != nil {
		h.logger.Errorf("GenerateDeck: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"deck_id": deck.ID,
		"status":  deck.Status,
	})
}

// GetDeck handles GET /api/flashcard-decks/:id with its cards.
func (h *FlashcardHandler) GetDeck(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deck id"})
		return
	}

	deck, err := h.decks.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": deck})
}

// ListDecks handles GET /api/materials/:id/flashcard-decks
func (h *FlashcardHandler) ListDecks(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}
	page, pageSize := parsePagination(c)

	decks, total, err := h.decks.ListByMaterial(materialID, page, pageSize)
	if err != nil {
		h.logger.Errorf("ListDecks: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"decks":     decks,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}
