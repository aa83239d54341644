package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyloft/studyloft/handler"
	metricsgin "github.com/studyloft/studyloft/pkg/metrics/gin"
)

// Setup wires every HTTP route. Upload and trigger endpoints answer before
// their background work finishes; status endpoints are plain reads.
func Setup(
	sessions *handler.SessionHandler,
	materials *handler.MaterialHandler,
	quizzes *handler.QuizHandler,
	decks *handler.FlashcardHandler,
	summaries *handler.SummaryHandler,
	lectures *handler.LectureHandler,
) *gin.Engine {
	r := gin.Default()
	r.Use(metricsgin.PrometheusMiddleware("studyloft"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/sessions", sessions.CreateSession)
		api.GET("/sessions", sessions.ListSessions)
		api.GET("/sessions/:id", sessions.GetSession)
		api.GET("/sessions/:id/materials", sessions.ListSessionMaterials)

		api.POST("/materials", materials.UploadMaterial)
		api.GET("/materials/:id", materials.GetMaterial)
		api.GET("/materials/:id/status", materials.GetMaterialStatus)
		api.POST("/materials/:id/extract", materials.TriggerExtraction)
		api.DELETE("/materials/:id", materials.DeleteMaterial)

		api.POST("/materials/:id/quizzes", quizzes.GenerateQuiz)
		api.GET("/materials/:id/quizzes", quizzes.ListQuizzes)
		api.GET("/quizzes/:id", quizzes.GetQuiz)
		api.POST("/quizzes/:id/attempts", quizzes.SubmitAttempt)

		api.POST("/materials/:id/flashcard-decks", decks.GenerateDeck)
		api.GET("/materials/:id/flashcard-decks", decks.ListDecks)
		api.GET("/flashcard-decks/:id", decks.GetDeck)

		api.POST("/materials/:id/summaries", summaries.GenerateSummary)
		api.GET("/materials/:id/summaries", summaries.ListSummaries)
		api.GET("/summaries/:id", summaries.GetSummary)

		api.POST("/materials/:id/lectures", lectures.GenerateLecture)
		api.GET("/materials/:id/lectures", lectures.ListLectures)
		api.GET("/lectures/:id", lectures.GetLecture)
	}

	return r
}
