package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

type MaterialRepository interface {
	BaseRepository[models.Material]
	UpdateStatus(id uuid.UUID, status string) error
	// ClaimForExtraction flips the material to pending unless an extraction
	// already owns it. The conditional UPDATE is the concurrency guard: of any
	// number of simultaneous callers, exactly one gets true.
	ClaimForExtraction(id uuid.UUID) (bool, error)
	// CompleteExtraction writes the extracted text and the completed status in
	// one update so a poller can never observe content without the terminal
	// status, or the other way around.
	CompleteExtraction(id uuid.UUID, rawContent string) error
	FailExtraction(id uuid.UUID, status, errorMessage string) error
	GetByStatus(statuses []string) ([]*models.Material, error)
	CountBySession(sessionID uuid.UUID) (int64, error)
}

type MaterialRepositoryImpl struct {
	*BaseRepositoryImpl[models.Material]
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &MaterialRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Material](db),
	}
}

func (r *MaterialRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	return updateByID[models.Material](r.db, id, map[string]interface{}{"status": status})
}

func (r *MaterialRepositoryImpl) ClaimForExtraction(id uuid.UUID) (bool, error) {
	res := r.db.Model(&models.Material{}).
		Where("id = ? AND status NOT IN ?", id, []string{models.MaterialStatusPending, models.MaterialStatusProcessing}).
		Update("status", models.MaterialStatusPending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *MaterialRepositoryImpl) CompleteExtraction(id uuid.UUID, rawContent string) error {
	return updateByID[models.Material](r.db, id, map[string]interface{}{
		"raw_content": rawContent,
		"status":      models.MaterialStatusCompleted,
	})
}

func (r *MaterialRepositoryImpl) FailExtraction(id uuid.UUID, status, errorMessage string) error {
	return updateByID[models.Material](r.db, id, map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	})
}

func (r *MaterialRepositoryImpl) GetByStatus(statuses []string) ([]*models.Material, error) {
	var materials []*models.Material
	err := r.db.Where("status IN ?", statuses).Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *MaterialRepositoryImpl) CountBySession(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Material{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}
