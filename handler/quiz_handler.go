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

type QuizHandler struct {
	quizzes service.QuizService
	logger  *logrus.Logger
}

func NewQuizHandler(quizzes service.QuizService, logger *logrus.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, logger: logger}
}

// GenerateQuiz handles POST /api/materials/:id/quizzes. Responds 202 with the
// pending quiz id; clients poll GET /api/quizzes/:id for the outcome.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	var req struct {
		Title        string `json:"title"`
		NumQuestions int    `json:"num_questions"`
		Difficulty   string `json:"difficulty"`
		QuestionType string `json:"question_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizzes.TriggerGeneration(c.Request.Context(), materialID, service.QuizParams{
		Title:        req.Title,
		NumQuestions: req.NumQuestions,
		Difficulty:   req.Difficulty,
		QuestionType: req.QuestionType,
	})
	if err != nil {
		h.logger.Errorf("GenerateQuiz: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"quiz_id": quiz.ID,
		"status":  quiz.Status,
	})
}

// GetQuiz handles GET /api/quizzes/:id, returning the quiz with its questions.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	quiz, err := h.quizzes.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": quiz})
}

// ListQuizzes handles GET /api/materials/:id/quizzes with the narrowed list
// projection: metadata plus question counts, no question bodies.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}
	page, pageSize := parsePagination(c)

	quizzes, total, err := h.quizzes.ListByMaterial(materialID, page, pageSize)
	if err != nil {
		h.logger.Errorf("ListQuizzes: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"quizzes":   quizzes,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// SubmitAttempt handles POST /api/quizzes/:id/attempts.
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	var req struct {
		Answers map[string][]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.quizzes.SubmitAttempt(id, req.Answers)
	if err != nil {
		h.logger.Errorf("SubmitAttempt: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": attempt})
}
