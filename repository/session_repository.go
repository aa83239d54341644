package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

type SessionRepository interface {
	BaseRepository[models.StudySession]
	ListWithPagination(page, pageSize int32) ([]*models.StudySession, int64, error)
	ListMaterials(sessionID uuid.UUID, page, pageSize int32) ([]*models.Material, int64, error)
}

type SessionRepositoryImpl struct {
	*BaseRepositoryImpl[models.StudySession]
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &SessionRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.StudySession](db),
	}
}

func (r *SessionRepositoryImpl) ListWithPagination(page, pageSize int32) ([]*models.StudySession, int64, error) {
	var sessions []*models.StudySession
	var total int64

	if err := r.db.Model(&models.StudySession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *SessionRepositoryImpl) ListMaterials(sessionID uuid.UUID, page, pageSize int32) ([]*models.Material, int64, error) {
	var materials []*models.Material
	var total int64

	err := r.db.Model(&models.Material{}).Where("session_id = ?", sessionID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	// RawContent can be megabytes of extracted text; list views never need it.
	err = r.db.Omit("raw_content").
		Where("session_id = ?", sessionID).
		Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, 0, err
	}

	return materials, total, nil
}
