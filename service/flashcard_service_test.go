package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/repository"
)

func newDeckFixture(t *testing.T, generator *fakeGenerator) (FlashcardService, repository.DeckRepository, *models.Material, *Runner) {
	t.Helper()

	db := newTestDB(t)
	session := seedSession(t, db)
	material := seedMaterial(t, db, session.ID, models.MaterialStatusCompleted, "Virtual memory maps pages to frames.")

	deckRepo := repository.NewDeckRepository(db)
	runner := NewRunner(newTestLogger())
	svc := NewFlashcardService(deckRepo, repository.NewMaterialRepository(db), generator, runner, &recordingPublisher{}, newTestLogger())
	return svc, deckRepo, material, runner
}

func TestDeckGenerationFromBareArray(t *testing.T) {
	generator := &fakeGenerator{responses: []string{`[
  {"front": "Page", "back": "Fixed-size block of virtual memory"},
  {"front": "Frame", "back": "Fixed-size block of physical memory"}
]`}}
	svc, repo, material, runner := newDeckFixture(t, generator)

	deck, err := svc.TriggerGeneration(context.Background(), material.ID, DeckParams{})
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusPending, deck.Status)
	assert.Equal(t, defaultNumCards, deck.NumCards)
	runner.Wait()

	stored, err := repo.GetWithCards(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)
	require.Len(t, stored.Flashcards, 2)
	assert.Equal(t, "Page", stored.Flashcards[0].Front)
	assert.Equal(t, 1, stored.Flashcards[1].Position)
}

func TestDeckGenerationFromWrappedObject(t *testing.T) {
	generator := &fakeGenerator{responses: []string{`{"flashcards": [{"front": "TLB", "back": "Translation cache"}]}`}}
	svc, repo, material, runner := newDeckFixture(t, generator)

	deck, err := svc.TriggerGeneration(context.Background(), material.ID, DeckParams{NumCards: 1, Title: "VM deck"})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetWithCards(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)
	assert.Equal(t, "VM deck", stored.Title)
	require.Len(t, stored.Flashcards, 1)
}

func TestDeckGenerationRejectsEmptySide(t *testing.T) {
	generator := &fakeGenerator{responses: []string{`[{"front": "TLB", "back": "  "}]`}}
	svc, repo, material, runner := newDeckFixture(t, generator)

	deck, err := svc.TriggerGeneration(context.Background(), material.ID, DeckParams{})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetByID(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)

	full, err := repo.GetWithCards(deck.ID)
	require.NoError(t, err)
	assert.Empty(t, full.Flashcards)
}

func TestDeckGenerationRejectsEmptyList(t *testing.T) {
	generator := &fakeGenerator{responses: []string{`[]`}}
	svc, repo, material, runner := newDeckFixture(t, generator)

	deck, err := svc.TriggerGeneration(context.Background(), material.ID, DeckParams{})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetByID(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusFailed, stored.Status)
}
