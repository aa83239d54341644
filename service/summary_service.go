package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/llm"
	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/pkg/metrics"
	"github.com/studyloft/studyloft/repository"
)

type SummaryParams struct {
	Title string
}

const summaryMaxTokens = 2000

const summarySystemInstruction = "You are an expert at summarizing study material. Write a clear, well-structured markdown summary. Respond with the markdown text only."

type SummaryService interface {
	TriggerGeneration(ctx context.Context, materialID uuid.UUID, params SummaryParams) (*models.Summary, error)
	GetByID(id uuid.UUID) (*models.Summary, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.Summary, int64, error)
}

type SummaryServiceImpl struct {
	repo      repository.SummaryRepository
	materials repository.MaterialRepository
	generator llm.TextGenerator
	runner    *Runner
	publisher events.Publisher
	logger    *logrus.Logger
}

func NewSummaryService(
	repo repository.SummaryRepository,
	materials repository.MaterialRepository,
	generator llm.TextGenerator,
	runner *Runner,
	publisher events.Publisher,
	logger *logrus.Logger,
) SummaryService {
	return &SummaryServiceImpl{
		repo:      repo,
		materials: materials,
		generator: generator,
		runner:    runner,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *SummaryServiceImpl) TriggerGeneration(ctx context.Context, materialID uuid.UUID, params SummaryParams) (*models.Summary, error) {
	material, err := loadReadyMaterial(s.materials, materialID)
	if err != nil {
		return nil, err
	}

	if params.Title == "" {
		params.Title = "Summary: " + material.Title
	}

	summary := &models.Summary{
		MaterialID: materialID,
		Title:      params.Title,
		Status:     models.ArtifactStatusPending,
	}
	if err := s.repo.Create(summary); err != nil {
		return nil, fmt.Errorf("failed to create summary record: %w", err)
	}

	content := material.RawContent
	s.runner.Dispatch("summary", summary.ID, func(ctx context.Context) error {
		return s.runGeneration(ctx, summary.ID, content)
	}, func(err error) {
		s.fail(summary.ID, err)
	})

	s.logger.Infof("summary %s generation dispatched for material %s", summary.ID, materialID)
	return summary, nil
}

func (s *SummaryServiceImpl) runGeneration(ctx context.Context, summaryID uuid.UUID, content string) error {
	if err := s.repo.UpdateStatus(summaryID, models.ArtifactStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark summary processing: %w", err)
	}

	var b strings.Builder
	b.WriteString("Summarize the following study material as well-structured markdown with headings and bullet points where they help.\n\n")
	b.WriteString("Study material:\n")
	b.WriteString(truncateContent(content, maxPromptChars))

	response, err := s.generator.Generate(ctx, b.String(), summarySystemInstruction, summaryMaxTokens, generationTemperature)
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("model returned an empty summary")
	}

	if err := s.repo.Complete(summaryID, response); err != nil {
		return fmt.Errorf("failed to persist summary: %w", err)
	}

	metrics.GenerationsTotal.WithLabelValues("summary", models.ArtifactStatusCompleted).Inc()
	s.publisher.PublishArtifact(ctx, events.Event{
		Kind:   "summary",
		ID:     summaryID.String(),
		Status: models.ArtifactStatusCompleted,
	})
	s.logger.Infof("summary %s completed (%d chars)", summaryID, len(response))
	return nil
}

func (s *SummaryServiceImpl) fail(summaryID uuid.UUID, cause error) {
	if err := s.repo.Fail(summaryID, cause.Error()); err != nil {
		s.logger.Errorf("failed to record summary failure for %s: %v", summaryID, err)
		return
	}
	metrics.GenerationsTotal.WithLabelValues("summary", models.ArtifactStatusFailed).Inc()
	s.publisher.PublishArtifact(context.Background(), events.Event{
		Kind:   "summary",
		ID:     summaryID.String(),
		Status: models.ArtifactStatusFailed,
	})
}

func (s *SummaryServiceImpl) GetByID(id uuid.UUID) (*models.Summary, error) {
	summary, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	summary.Status = models.NormalizeStatus(summary.Status)
	return summary, nil
}

func (s *SummaryServiceImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.Summary, int64, error) {
	return s.repo.ListByMaterial(materialID, page, pageSize)
}
