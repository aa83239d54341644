package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

// QuizListItem is the narrowed list projection: quiz metadata plus the child
// count, never the question bodies.
type QuizListItem struct {
	models.Quiz
	QuestionCount int64 `json:"question_count"`
}

type QuizRepository interface {
	BaseRepository[models.Quiz]
	GetWithQuestions(id uuid.UUID) (*models.Quiz, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*QuizListItem, int64, error)
	UpdateStatus(id uuid.UUID, status string) error
	// Complete persists the generated questions and flips the quiz to
	// completed inside one transaction.
	Complete(id uuid.UUID, questions []*models.Question) error
	Fail(id uuid.UUID, errorMessage string) error
	GetByStatus(statuses []string) ([]*models.Quiz, error)
	CreateAttempt(attempt *models.QuizAttempt) error
}

type QuizRepositoryImpl struct {
	*BaseRepositoryImpl[models.Quiz]
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &QuizRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Quiz](db),
	}
}

func (r *QuizRepositoryImpl) GetWithQuestions(id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepositoryImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*QuizListItem, int64, error) {
	var total int64
	if err := r.db.Model(&models.Quiz{}).Where("material_id = ?", materialID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []*models.Quiz
	offset := (page - 1) * pageSize
	err := r.db.Where("material_id = ?", materialID).
		Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*QuizListItem, 0, len(quizzes))
	for _, quiz := range quizzes {
		var count int64
		if err := r.db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error; err != nil {
			return nil, 0, err
		}
		items = append(items, &QuizListItem{Quiz: *quiz, QuestionCount: count})
	}

	return items, total, nil
}

func (r *QuizRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	return updateByID[models.Quiz](r.db, id, map[string]interface{}{"status": status})
}

func (r *QuizRepositoryImpl) Complete(id uuid.UUID, questions []*models.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(questions) > 0 {
			if err := tx.CreateInBatches(questions, 100).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Quiz{}).Where("id = ?", id).
			Update("status", models.ArtifactStatusCompleted).Error
	})
}

func (r *QuizRepositoryImpl) Fail(id uuid.UUID, errorMessage string) error {
	return updateByID[models.Quiz](r.db, id, map[string]interface{}{
		"status":        models.ArtifactStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *QuizRepositoryImpl) GetByStatus(statuses []string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := r.db.Where("status IN ?", statuses).Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *QuizRepositoryImpl) CreateAttempt(attempt *models.QuizAttempt) error {
	return r.db.Create(attempt).Error
}
