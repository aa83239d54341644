package models

// StudySession groups the materials a user studies together. Created by
// explicit user action and only ever mutated by metadata edits.
type StudySession struct {
	Base
	Title       string `gorm:"not null" json:"title"`
	Subject     string `json:"subject"`
	Description string `gorm:"type:text" json:"description"`

	Materials []Material `gorm:"foreignKey:SessionID" json:"materials,omitempty"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}
