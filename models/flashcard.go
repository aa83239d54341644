package models

import "github.com/google/uuid"

type FlashcardDeck struct {
	Base
	MaterialID   uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title        string    `gorm:"not null" json:"title"`
	NumCards     int       `gorm:"not null" json:"num_cards"`
	Status       string    `gorm:"type:varchar(50);not null;index;default:'pending'" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`

	Flashcards []Flashcard `gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE" json:"flashcards,omitempty"`
}

func (FlashcardDeck) TableName() string {
	return "flashcard_decks"
}

type Flashcard struct {
	Base
	DeckID   uuid.UUID `gorm:"type:uuid;not null;index" json:"deck_id"`
	Position int       `gorm:"not null" json:"position"`
	Front    string    `gorm:"type:text;not null" json:"front"`
	Back     string    `gorm:"type:text;not null" json:"back"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
