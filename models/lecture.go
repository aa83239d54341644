package models

import "github.com/google/uuid"

// AudioLecture is the two-stage artifact: a narration script generated first,
// then synthesized to audio and published to object storage. Duration is
// derived from the script word count, not from the audio bytes.
type AudioLecture struct {
	Base
	MaterialID   uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title        string    `gorm:"not null" json:"title"`
	Voice        string    `gorm:"type:varchar(30);not null" json:"voice"`
	Style        string    `gorm:"type:varchar(50)" json:"style,omitempty"`
	Duration     int       `json:"duration"`
	Script       string    `gorm:"type:text" json:"script,omitempty"`
	AudioBucket  string    `json:"-"`
	AudioObject  string    `json:"-"`
	AudioURL     string    `gorm:"type:text" json:"audio_url,omitempty"`
	Status       string    `gorm:"type:varchar(50);not null;index;default:'pending'" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
}

func (AudioLecture) TableName() string {
	return "audio_lectures"
}
