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

type DeckParams struct {
	Title    string
	NumCards int
}

const (
	defaultNumCards = 10
	deckMaxTokens   = 3000
)

const deckSystemInstruction = "You are an expert flashcard author. Create concise front/back flashcards grounded in the provided study material. Respond with JSON only."

type FlashcardService interface {
	TriggerGeneration(ctx context.Context, materialID uuid.UUID, params DeckParams) (*models.FlashcardDeck, error)
	GetByID(id uuid.UUID) (*models.FlashcardDeck, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*repository.DeckListItem, int64, error)
}

type FlashcardServiceImpl struct {
	repo      repository.DeckRepository
	materials repository.MaterialRepository
	generator llm.TextGenerator
	runner    *Runner
	publisher events.Publisher
	logger    *logrus.Logger
}

func NewFlashcardService(
	repo repository.DeckRepository,
	materials repository.MaterialRepository,
	generator llm.TextGenerator,
	runner *Runner,
	publisher events.Publisher,
	logger *logrus.Logger,
) FlashcardService {
	return &FlashcardServiceImpl{
		repo:      repo,
		materials: materials,
		generator: generator,
		runner:    runner,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *FlashcardServiceImpl) TriggerGeneration(ctx context.Context, materialID uuid.UUID, params DeckParams) (*models.FlashcardDeck, error) {
	material, err := loadReadyMaterial(s.materials, materialID)
	if err != nil {
		return nil, err
	}

	if params.NumCards <= 0 {
		params.NumCards = defaultNumCards
	}
	if params.Title == "" {
		params.Title = "Flashcards: " + material.Title
	}

	deck := &models.FlashcardDeck{
		MaterialID: materialID,
		Title:      params.Title,
		NumCards:   params.NumCards,
		Status:     models.ArtifactStatusPending,
	}
	if err := s.repo.Create(deck); err != nil {
		return nil, fmt.Errorf("failed to create deck record: %w", err)
	}

	content := material.RawContent
	s.runner.Dispatch("flashcards", deck.ID, func(ctx context.Context) error {
		return s.runGeneration(ctx, deck.ID, content, params)
	}, func(err error) {
		s.fail(deck.ID, err)
	})

	s.logger.Infof("deck %s generation dispatched for material %s", deck.ID, materialID)
	return deck, nil
}

func (s *FlashcardServiceImpl) runGeneration(ctx context.Context, deckID uuid.UUID, content string, params DeckParams) error {
	if err := s.repo.UpdateStatus(deckID, models.ArtifactStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark deck processing: %w", err)
	}

	prompt := buildDeckPrompt(truncateContent(content, maxPromptChars), params)
	response, err := s.generator.Generate(ctx, prompt, deckSystemInstruction, deckMaxTokens, generationTemperature)
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}

	cards, err := parseFlashcards(response, deckID)
	if err != nil {
		return err
	}

	if err := s.repo.Complete(deckID, cards); err != nil {
		return fmt.Errorf("failed to persist flashcards: %w", err)
	}

	metrics.GenerationsTotal.WithLabelValues("flashcards", models.ArtifactStatusCompleted).Inc()
	s.publisher.PublishArtifact(ctx, events.Event{
		Kind:   "flashcard_deck",
		ID:     deckID.String(),
		Status: models.ArtifactStatusCompleted,
	})
	s.logger.Infof("deck %s completed with %d cards", deckID, len(cards))
	return nil
}

func (s *FlashcardServiceImpl) fail(deckID uuid.UUID, cause error) {
	if err := s.repo.Fail(deckID, cause.Error()); err != nil {
		s.logger.Errorf("failed to record deck failure for %s: %v", deckID, err)
		return
	}
	metrics.GenerationsTotal.WithLabelValues("flashcards", models.ArtifactStatusFailed).Inc()
	s.publisher.PublishArtifact(context.Background(), events.Event{
		Kind:   "flashcard_deck",
		ID:     deckID.String(),
		Status: models.ArtifactStatusFailed,
	})
}

func buildDeckPrompt(content string, params DeckParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following study material, create %d flashcards.\n\n", params.NumCards)
	b.WriteString("Study material:\n")
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString("Return the flashcards as a JSON array in exactly this format:\n")
	b.WriteString(`[{"front": "term or question", "back": "definition or answer"}]`)

	return b.String()
}

type generatedFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// parseFlashcards accepts both the documented bare array and the wrapped
// object some models insist on returning.
func parseFlashcards(response string, deckID uuid.UUID) ([]*models.Flashcard, error) {
	var generated []generatedFlashcard
	if err := decodeGenerated(response, &generated); err != nil {
		var wrapped struct {
			Flashcards []generatedFlashcard `json:"flashcards"`
		}
		if werr := decodeGenerated(response, &wrapped); werr != nil {
			return nil, err
		}
		generated = wrapped.Flashcards
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("model returned no flashcards")
	}

	cards := make([]*models.Flashcard, 0, len(generated))
	for i, card := range generated {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			return nil, fmt.Errorf("flashcard %d has an empty side", i+1)
		}
		cards = append(cards, &models.Flashcard{
			DeckID:   deckID,
			Position: i,
			Front:    card.Front,
			Back:     card.Back,
		})
	}
	return cards, nil
}

func (s *FlashcardServiceImpl) GetByID(id uuid.UUID) (*models.FlashcardDeck, error) {
	deck, err := s.repo.GetWithCards(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	deck.Status = models.NormalizeStatus(deck.Status)
	return deck, nil
}

func (s *FlashcardServiceImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*repository.DeckListItem, int64, error) {
	return s.repo.ListByMaterial(materialID, page, pageSize)
}
