package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/llm"
	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/pkg/metrics"
	"github.com/studyloft/studyloft/repository"
	"github.com/studyloft/studyloft/storage"
)

// LectureParams carries the kind-specific trigger parameters. Duration is a
// target in minutes; zero means unconstrained.
type LectureParams struct {
	Title    string
	Voice    string
	Style    string
	Duration int
}

const (
	defaultVoice    = "alloy"
	scriptMaxTokens = 4000
	audioURLExpiry  = 7 * 24 * time.Hour
	narrationWPM    = 150
)

const lectureSystemInstruction = "You are an engaging lecturer. Write a spoken-word narration script for the provided study material. Plain prose only: no markdown, no stage directions, no headings."

type LectureService interface {
	TriggerGeneration(ctx context.Context, materialID uuid.UUID, params LectureParams) (*models.AudioLecture, error)
	GetByID(id uuid.UUID) (*models.AudioLecture, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.AudioLecture, int64, error)
}

type LectureServiceImpl struct {
	repo        repository.LectureRepository
	materials   repository.MaterialRepository
	generator   llm.TextGenerator
	synthesizer llm.SpeechSynthesizer
	store       storage.ObjectStore
	runner      *Runner
	publisher   events.Publisher
	logger      *logrus.Logger
	audioBucket string
}

func NewLectureService(
	repo repository.LectureRepository,
	materials repository.MaterialRepository,
	generator llm.TextGenerator,
	synthesizer llm.SpeechSynthesizer,
	store storage.ObjectStore,
	runner *Runner,
	publisher events.Publisher,
	logger *logrus.Logger,
	audioBucket string,
) LectureService {
	return &LectureServiceImpl{
		repo:        repo,
		materials:   materials,
		generator:   generator,
		synthesizer: synthesizer,
		store:       store,
		runner:      runner,
		publisher:   publisher,
		logger:      logger,
		audioBucket: audioBucket,
	}
}

func (s *LectureServiceImpl) TriggerGeneration(ctx context.Context, materialID uuid.UUID, params LectureParams) (*models.AudioLecture, error) {
	material, err := loadReadyMaterial(s.materials, materialID)
	if err != nil {
		return nil, err
	}

	if params.Voice == "" {
		params.Voice = defaultVoice
	}
	if params.Title == "" {
		params.Title = "Lecture: " + material.Title
	}

	lecture := &models.AudioLecture{
		MaterialID: materialID,
		Title:      params.Title,
		Voice:      params.Voice,
		Style:      params.Style,
		Status:     models.ArtifactStatusPending,
	}
	if err := s.repo.Create(lecture); err != nil {
		return nil, fmt.Errorf("failed to create lecture record: %w", err)
	}

	content := material.RawContent
	s.runner.Dispatch("lecture", lecture.ID, func(ctx context.Context) error {
		return s.runGeneration(ctx, lecture.ID, content, params)
	}, func(err error) {
		s.fail(lecture.ID, err)
	})

	s.logger.Infof("lecture %s generation dispatched for material %s", lecture.ID, materialID)
	return lecture, nil
}

// runGeneration is the two-stage body: script generation under processing,
// then speech synthesis under generating_audio, then one atomic completion
// write carrying script, audio location and duration.
func (s *LectureServiceImpl) runGeneration(ctx context.Context, lectureID uuid.UUID, content string, params LectureParams) error {
	if err := s.repo.UpdateStatus(lectureID, models.ArtifactStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark lecture processing: %w", err)
	}

	prompt := buildScriptPrompt(truncateContent(content, maxScriptChars), params)
	script, err := s.generator.Generate(ctx, prompt, lectureSystemInstruction, scriptMaxTokens, generationTemperature)
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("model returned an empty script")
	}

	if err := s.repo.UpdateStatus(lectureID, models.ArtifactStatusGeneratingAudio); err != nil {
		return fmt.Errorf("failed to mark lecture generating audio: %w", err)
	}

	audio, err := s.synthesizer.Synthesize(ctx, script, params.Voice)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	object := fmt.Sprintf("lectures/%s.mp3", lectureID)
	if err := s.store.Put(ctx, s.audioBucket, object, audio, "audio/mpeg"); err != nil {
		return fmt.Errorf("failed to publish audio: %w", err)
	}

	audioURL, err := s.store.PresignedURL(ctx, s.audioBucket, object, audioURLExpiry)
	if err != nil {
		return fmt.Errorf("failed to generate audio URL: %w", err)
	}

	duration := estimateDuration(script)
	if err := s.repo.Complete(lectureID, script, s.audioBucket, object, audioURL, duration); err != nil {
		return fmt.Errorf("failed to persist lecture: %w", err)
	}

	metrics.GenerationsTotal.WithLabelValues("lecture", models.ArtifactStatusCompleted).Inc()
	s.publisher.PublishArtifact(ctx, events.Event{
		Kind:   "audio_lecture",
		ID:     lectureID.String(),
		Status: models.ArtifactStatusCompleted,
	})
	s.logger.Infof("lecture %s completed: %ds of audio", lectureID, duration)
	return nil
}

func (s *LectureServiceImpl) fail(lectureID uuid.UUID, cause error) {
	if err := s.repo.Fail(lectureID, cause.Error()); err != nil {
		s.logger.Errorf("failed to record lecture failure for %s: %v", lectureID, err)
		return
	}
	metrics.GenerationsTotal.WithLabelValues("lecture", models.ArtifactStatusFailed).Inc()
	s.publisher.PublishArtifact(context.Background(), events.Event{
		Kind:   "audio_lecture",
		ID:     lectureID.String(),
		Status: models.ArtifactStatusFailed,
	})
}

func buildScriptPrompt(content string, params LectureParams) string {
	var b strings.Builder

	b.WriteString("Write a lecture narration script covering the following study material.\n")
	if params.Style != "" {
		fmt.Fprintf(&b, "Narration style: %s.\n", params.Style)
	}
	if params.Duration > 0 {
		fmt.Fprintf(&b, "Target length: roughly %d minutes of spoken audio (about %d words).\n", params.Duration, params.Duration*narrationWPM)
	}
	b.WriteString("\nStudy material:\n")
	b.WriteString(content)

	return b.String()
}

// estimateDuration returns ceil(words / 150 * 60) seconds, where words are
// whitespace-separated runs in the script.
func estimateDuration(script string) int {
	words := len(strings.Fields(script))
	return int(math.Ceil(float64(words) / narrationWPM * 60))
}

func (s *LectureServiceImpl) GetByID(id uuid.UUID) (*models.AudioLecture, error) {
	lecture, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}
	lecture.Status = models.NormalizeStatus(lecture.Status)
	return lecture, nil
}

func (s *LectureServiceImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*models.AudioLecture, int64, error) {
	return s.repo.ListByMaterial(materialID, page, pageSize)
}
