package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

type DeckListItem struct {
	models.FlashcardDeck
	CardCount int64 `json:"card_count"`
}

type DeckRepository interface {
	BaseRepository[models.FlashcardDeck]
	GetWithCards(id uuid.UUID) (*models.FlashcardDeck, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*DeckListItem, int64, error)
	UpdateStatus(id uuid.UUID, status string) error
	Complete(id uuid.UUID, cards []*models.Flashcard) error
	Fail(id uuid.UUID, errorMessage string) error
	GetByStatus(statuses []string) ([]*models.FlashcardDeck, error)
}

type DeckRepositoryImpl struct {
	*BaseRepositoryImpl[models.FlashcardDeck]
}

func NewDeckRepository(db *gorm.DB) DeckRepository {
	return &DeckRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.FlashcardDeck](db),
	}
}

func (r *DeckRepositoryImpl) GetWithCards(id uuid.UUID) (*models.FlashcardDeck, error) {
	var deck models.FlashcardDeck
	err := r.db.Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&deck, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (r *DeckRepositoryImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*DeckListItem, int64, error) {
	var total int64
	if err := r.db.Model(&models.FlashcardDeck{}).Where("material_id = ?", materialID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var decks []*models.FlashcardDeck
	offset := (page - 1) * pageSize
	err := r.db.Where("material_id = ?", materialID).
		Limit(int(pageSize)).
		Offset(int(offset)).
		Order("created_at DESC").
		Find(&decks).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*DeckListItem, 0, len(decks))
	for _, deck := range decks {
		var count int64
		if err := r.db.Model(&models.Flashcard{}).Where("deck_id = ?", deck.ID).Count(&count).Error; err != nil {
			return nil, 0, err
		}
		items = append(items, &DeckListItem{FlashcardDeck: *deck, CardCount: count})
	}

	return items, total, nil
}

func (r *DeckRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	return updateByID[models.FlashcardDeck](r.db, id, map[string]interface{}{"status": status})
}

func (r *DeckRepositoryImpl) Complete(id uuid.UUID, cards []*models.Flashcard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(cards) > 0 {
			if err := tx.CreateInBatches(cards, 100).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.FlashcardDeck{}).Where("id = ?", id).
			Update("status", models.ArtifactStatusCompleted).Error
	})
}

func (r *DeckRepositoryImpl) Fail(id uuid.UUID, errorMessage string) error {
	return updateByID[models.FlashcardDeck](r.db, id, map[string]interface{}{
		"status":        models.ArtifactStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *DeckRepositoryImpl) GetByStatus(statuses []string) ([]*models.FlashcardDeck, error) {
	var decks []*models.FlashcardDeck
	err := r.db.Where("status IN ?", statuses).Find(&decks).Error
	if err != nil {
		return nil, err
	}
	return decks, nil
}
