package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyloft/studyloft/database"
	"github.com/studyloft/studyloft/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedQuizFixture(t *testing.T, db *gorm.DB) (*models.StudySession, *models.Material, *models.Quiz) {
	t.Helper()

	session := &models.StudySession{Title: "Networks"}
	require.NoError(t, db.Create(session).Error)

	material := &models.Material{
		SessionID:        session.ID,
		Title:            "TCP notes",
		OriginalFilename: "tcp.pdf",
		ContentType:      "application/pdf",
		Status:           models.MaterialStatusCompleted,
		Bucket:           "b",
		ObjectName:       "o",
		RawContent:       "TCP is connection oriented.",
	}
	require.NoError(t, db.Create(material).Error)

	quiz := &models.Quiz{
		MaterialID:   material.ID,
		Title:        "TCP quiz",
		NumQuestions: 2,
		Difficulty:   models.DifficultyMedium,
		QuestionType: models.QuestionTypeMultipleChoice,
		Status:       models.ArtifactStatusPending,
	}
	require.NoError(t, db.Create(quiz).Error)

	return session, material, quiz
}

func TestQuizCompleteWritesQuestionsAndStatusTogether(t *testing.T) {
	db := newTestDB(t)
	_, _, quiz := seedQuizFixture(t, db)

	repo := NewQuizRepository(db)
	questions := []*models.Question{
		{QuizID: quiz.ID, Position: 1, Type: quiz.QuestionType, Content: "Second", CorrectAnswers: datatypes.JSON(`["b"]`)},
		{QuizID: quiz.ID, Position: 0, Type: quiz.QuestionType, Content: "First", CorrectAnswers: datatypes.JSON(`["a"]`)},
	}
	require.NoError(t, repo.Complete(quiz.ID, questions))

	stored, err := repo.GetWithQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)
	require.Len(t, stored.Questions, 2)
	// Preload orders by position, not insertion order.
	assert.Equal(t, "First", stored.Questions[0].Content)
	assert.Equal(t, "Second", stored.Questions[1].Content)
}

func TestQuizListByMaterialCountsChildren(t *testing.T) {
	db := newTestDB(t)
	_, material, quiz := seedQuizFixture(t, db)

	repo := NewQuizRepository(db)
	require.NoError(t, repo.Complete(quiz.ID, []*models.Question{
		{QuizID: quiz.ID, Position: 0, Type: quiz.QuestionType, Content: "Q1", CorrectAnswers: datatypes.JSON(`["a"]`)},
		{QuizID: quiz.ID, Position: 1, Type: quiz.QuestionType, Content: "Q2", CorrectAnswers: datatypes.JSON(`["b"]`)},
	}))

	empty := &models.Quiz{
		MaterialID:   material.ID,
		Title:        "Pending quiz",
		NumQuestions: 5,
		Difficulty:   models.DifficultyEasy,
		QuestionType: models.QuestionTypeTrueFalse,
		Status:       models.ArtifactStatusPending,
	}
	require.NoError(t, db.Create(empty).Error)

	items, total, err := repo.ListByMaterial(material.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	counts := map[uuid.UUID]int64{}
	for _, item := range items {
		counts[item.ID] = item.QuestionCount
	}
	assert.Equal(t, int64(2), counts[quiz.ID])
	assert.Equal(t, int64(0), counts[empty.ID])
}

func TestQuizFailRecordsMessage(t *testing.T) {
	db := newTestDB(t)
	_, _, quiz := seedQuizFixture(t, db)

	repo := NewQuizRepository(db)
	require.NoError(t, repo.Fail(quiz.ID, "model returned no questions"))

	stored, err := repo.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusFailed, stored.Status)
	assert.Equal(t, "model returned no questions", stored.ErrorMessage)
}

func TestMaterialCompleteExtractionIsAtomic(t *testing.T) {
	db := newTestDB(t)
	_, material, _ := seedQuizFixture(t, db)

	repo := NewMaterialRepository(db)
	require.NoError(t, repo.CompleteExtraction(material.ID, "new extracted content"))

	stored, err := repo.GetByID(material.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStatusCompleted, stored.Status)
	assert.Equal(t, "new extracted content", stored.RawContent)
}

func TestClaimForExtractionIsExclusive(t *testing.T) {
	db := newTestDB(t)
	_, material, _ := seedQuizFixture(t, db)

	repo := NewMaterialRepository(db)

	claimed, err := repo.ClaimForExtraction(material.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	stored, err := repo.GetByID(material.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStatusPending, stored.Status)

	// A second claim loses while the first extraction still owns the row.
	claimed, err = repo.ClaimForExtraction(material.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, repo.UpdateStatus(material.ID, models.MaterialStatusProcessing))
	claimed, err = repo.ClaimForExtraction(material.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// Finishing the extraction frees the row for a re-trigger.
	require.NoError(t, repo.CompleteExtraction(material.ID, "text"))
	claimed, err = repo.ClaimForExtraction(material.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestListMaterialsOmitsRawContent(t *testing.T) {
	db := newTestDB(t)
	session, material, _ := seedQuizFixture(t, db)

	repo := NewSessionRepository(db)
	materials, total, err := repo.ListMaterials(session.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, materials, 1)
	assert.Equal(t, material.ID, materials[0].ID)
	assert.Empty(t, materials[0].RawContent)
}
