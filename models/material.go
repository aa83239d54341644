package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Material is an uploaded source document plus the text extracted from it.
// RawContent stays empty until the ingestion pipeline completes; artifact
// generation is only allowed against materials with non-empty RawContent.
type Material struct {
	Base
	SessionID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	Title            string         `gorm:"not null" json:"title"`
	OriginalFilename string         `gorm:"not null" json:"original_filename"`
	ContentType      string         `gorm:"not null" json:"content_type"`
	SizeBytes        int64          `gorm:"not null" json:"size_bytes"`
	Status           string         `gorm:"type:varchar(50);not null;index;default:'uploaded'" json:"status"`
	Bucket           string         `gorm:"not null" json:"-"`
	ObjectName       string         `gorm:"not null" json:"-"`
	RawContent       string         `gorm:"type:text" json:"raw_content,omitempty"`
	ErrorMessage     string         `gorm:"type:text" json:"error_message,omitempty"`
	Metadata         datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (Material) TableName() string {
	return "materials"
}
