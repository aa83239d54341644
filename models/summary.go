package models

import "github.com/google/uuid"

// Summary holds a single markdown body generated from a material.
type Summary struct {
	Base
	MaterialID   uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content,omitempty"`
	Status       string    `gorm:"type:varchar(50);not null;index;default:'pending'" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
}

func (Summary) TableName() string {
	return "summaries"
}
