package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

type LectureRepository interface {
	BaseRepository[models.AudioLecture]
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.AudioLecture, int64, error)
	UpdateStatus(id uuid.UUID, status string) error
	// Complete writes script, audio location and duration together with the
	// completed status in a single update.
	Complete(id uuid.UUID, script, bucket, object, audioURL string, duration int) error
	Fail(id uuid.UUID, errorMessage string) error
	GetByStatus(statuses []string) ([]*models.AudioLecture, error)
}

type LectureRepositoryImpl struct {
	*BaseRepositoryImpl[models.AudioLecture]
}

func NewLectureRepository(db *gorm.DB) LectureRepository {
	return &LectureRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.AudioLecture](db),
	}
}

func (r *LectureRepositoryImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.AudioLecture, int64, error) {
	var lectures []*models.AudioLecture
	var total int64

	err := r.db.Model(&models.AudioLecture{}).Where("material_id = ?", materialID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	// Script and audio URL are heavy fields fetched via GetByID only.
	err = r.db.Omit("script", "audio_url").
		Where("material_id = ?", materialID).
		Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&lectures).Error
	if err != nil {
		return nil, 0, err
	}

	return lectures, total, nil
}

func (r *LectureRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	return updateByID[models.AudioLecture](r.db, id, map[string]interface{}{"status": status})
}

func (r *LectureRepositoryImpl) Complete(id uuid.UUID, script, bucket, object, audioURL string, duration int) error {
	return updateByID[models.AudioLecture](r.db, id, map[string]interface{}{
		"script":       script,
		"audio_bucket": bucket,
		"audio_object": object,
		"audio_url":    audioURL,
		"duration":     duration,
		"status":       models.ArtifactStatusCompleted,
	})
}

func (r *LectureRepositoryImpl) Fail(id uuid.UUID, errorMessage string) error {
	return updateByID[models.AudioLecture](r.db, id, map[string]interface{}{
		"status":        models.ArtifactStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *LectureRepositoryImpl) GetByStatus(statuses []string) ([]*models.AudioLecture, error) {
	var lectures []*models.AudioLecture
	err := r.db.Where("status IN ?", statuses).Find(&lectures).Error
	if err != nil {
		return nil, err
	}
	return lectures, nil
}
