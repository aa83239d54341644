package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/extract"
	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/pkg/metrics"
	"github.com/studyloft/studyloft/repository"
	"github.com/studyloft/studyloft/storage"
)

type MaterialService interface {
	Upload(ctx context.Context, sessionID uuid.UUID, title, originalFilename, contentType string, data []byte) (*models.Material, error)
	TriggerExtraction(ctx context.Context, id uuid.UUID) (*models.Material, error)
	GetByID(id uuid.UUID) (*models.Material, error)
	ListBySession(sessionID uuid.UUID, page, pageSize int32) ([]*models.Material, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MaterialServiceImpl struct {
	repo      repository.MaterialRepository
	sessions  repository.SessionRepository
	store     storage.ObjectStore
	registry  *extract.Registry
	runner    *Runner
	publisher events.Publisher
	logger    *logrus.Logger
	bucket    string
}

func NewMaterialService(
	repo repository.MaterialRepository,
	sessions repository.SessionRepository,
	store storage.ObjectStore,
	registry *extract.Registry,
	runner *Runner,
	publisher events.Publisher,
	logger *logrus.Logger,
	bucket string,
) MaterialService {
	return &MaterialServiceImpl{
		repo:      repo,
		sessions:  sessions,
		store:     store,
		registry:  registry,
		runner:    runner,
		publisher: publisher,
		logger:    logger,
		bucket:    bucket,
	}
}

// Upload stores the raw bytes and creates the material in the uploaded status.
// Extraction is a separate trigger so a stalled upload never leaves a task
// behind.
func (s *MaterialServiceImpl) Upload(ctx context.Context, sessionID uuid.UUID, title, originalFilename, contentType string, data []byte) (*models.Material, error) {
	if _, err := s.sessions.GetByID(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	ext := filepath.Ext(originalFilename)
	objectName := fmt.Sprintf("%s/%s%s", sessionID.String(), uuid.New().String(), ext)

	material := &models.Material{
		SessionID:        sessionID,
		Title:            title,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		SizeBytes:        int64(len(data)),
		Status:           models.MaterialStatusUploaded,
		Bucket:           s.bucket,
		ObjectName:       objectName,
	}

	if err := s.repo.Create(material); err != nil {
		return nil, fmt.Errorf("failed to save material record: %w", err)
	}

	if err := s.store.Put(ctx, s.bucket, objectName, data, contentType); err != nil {
		s.repo.FailExtraction(material.ID, models.MaterialStatusFailed, "upload to object store failed")
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Infof("material %s uploaded: %s (%d bytes)", material.ID, originalFilename, len(data))
	return material, nil
}

// TriggerExtraction sets pending synchronously before handing off, so a client
// polling right after the trigger never observes a stale uploaded status. The
// call returns before any extraction work happens.
func (s *MaterialServiceImpl) TriggerExtraction(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	material, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load material: %w", err)
	}

	// The claim is a single conditional UPDATE, so concurrent triggers race on
	// the row instead of on a read-then-write. Exactly one caller wins and
	// dispatches; the rest see the extraction already in flight and no-op.
	claimed, err := s.repo.ClaimForExtraction(id)
	if err != nil {
		return nil, fmt.Errorf("failed to update material status: %w", err)
	}
	if !claimed {
		return s.GetByID(id)
	}
	material.Status = models.MaterialStatusPending

	contentType := material.ContentType
	s.runner.Dispatch("extraction", id, func(ctx context.Context) error {
		return s.runExtraction(ctx, id, material.Bucket, material.ObjectName, material.OriginalFilename, contentType)
	}, func(err error) {
		s.failExtraction(id, models.MaterialStatusFailed, err)
	})

	return material, nil
}

// runExtraction is the detached ingestion body: dispatch by exact MIME match,
// download the full buffer, extract, then write content and the completed
// status in one update.
func (s *MaterialServiceImpl) runExtraction(ctx context.Context, id uuid.UUID, bucket, object, filename, contentType string) error {
	extractor, ok := s.registry.Lookup(contentType)
	if !ok {
		// Terminal immediately, without attempting a download.
		s.failExtraction(id, models.MaterialStatusUnsupported, fmt.Errorf("no extractor registered for %q", contentType))
		return nil
	}

	if err := s.repo.UpdateStatus(id, models.MaterialStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark material processing: %w", err)
	}

	data, err := s.store.Get(ctx, bucket, object)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	text, err := extractor.Extract(ctx, data, filename)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := s.repo.CompleteExtraction(id, text); err != nil {
		return fmt.Errorf("failed to persist extracted content: %w", err)
	}

	metrics.ExtractionsTotal.WithLabelValues(models.MaterialStatusCompleted).Inc()
	s.publisher.PublishMaterial(ctx, events.Event{
		Kind:   "material",
		ID:     id.String(),
		Status: models.MaterialStatusCompleted,
	})
	s.logger.Infof("material %s extraction completed (%d chars)", id, len(text))
	return nil
}

func (s *MaterialServiceImpl) failExtraction(id uuid.UUID, status string, cause error) {
	if err := s.repo.FailExtraction(id, status, cause.Error()); err != nil {
		s.logger.Errorf("failed to record extraction failure for %s: %v", id, err)
		return
	}
	metrics.ExtractionsTotal.WithLabelValues(status).Inc()
	s.publisher.PublishMaterial(context.Background(), events.Event{
		Kind:   "material",
		ID:     id.String(),
		Status: status,
	})
}

func (s *MaterialServiceImpl) GetByID(id uuid.UUID) (*models.Material, error) {
	material, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	material.Status = models.NormalizeStatus(material.Status)
	return material, nil
}

func (s *MaterialServiceImpl) ListBySession(sessionID uuid.UUID, page, pageSize int32) ([]*models.Material, int64, error) {
	return s.sessions.ListMaterials(sessionID, page, pageSize)
}

func (s *MaterialServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	material, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("failed to load material: %w", err)
	}

	if err := s.store.Remove(ctx, material.Bucket, material.ObjectName); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}

	return s.repo.Delete(id)
}
