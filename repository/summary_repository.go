package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

type SummaryRepository interface {
	BaseRepository[models.Summary]
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.Summary, int64, error)
	UpdateStatus(id uuid.UUID, status string) error
	Complete(id uuid.UUID, content string) error
	Fail(id uuid.UUID, errorMessage string) error
	GetByStatus(statuses []string) ([]*models.Summary, error)
}

type SummaryRepositoryImpl struct {
	*BaseRepositoryImpl[models.Summary]
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &SummaryRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Summary](db),
	}
}

func (r *SummaryRepositoryImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.Summary, int64, error) {
	var summaries []*models.Summary
	var total int64

	err := r.db.Model(&models.Summary{}).Where("material_id = ?", materialID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	// Content is excluded from list views; fetch a single summary for the body.
	err = r.db.Omit("content").
		Where("material_id = ?", materialID).
		Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *SummaryRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	return updateByID[models.Summary](r.db, id, map[string]interface{}{"status": status})
}

func (r *SummaryRepositoryImpl) Complete(id uuid.UUID, content string) error {
	return updateByID[models.Summary](r.db, id, map[string]interface{}{
		"content": content,
		"status":  models.ArtifactStatusCompleted,
	})
}

func (r *SummaryRepositoryImpl) Fail(id uuid.UUID, errorMessage string) error {
	return updateByID[models.Summary](r.db, id, map[string]interface{}{
		"status":        models.ArtifactStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *SummaryRepositoryImpl) GetByStatus(statuses []string) ([]*models.Summary, error) {
	var summaries []*models.Summary
	err := r.db.Where("status IN ?", statuses).Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
