package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question types supported by the generator.
const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeMultiSelect    = "multi-select"
	QuestionTypeTrueFalse      = "true-false"
	QuestionTypeShortAnswer    = "short-answer"
)

// Difficulty levels accepted on quiz triggers.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Quiz struct {
	Base
	MaterialID   uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title        string    `gorm:"not null" json:"title"`
	NumQuestions int       `gorm:"not null" json:"num_questions"`
	Difficulty   string    `gorm:"type:varchar(20);not null" json:"difficulty"`
	QuestionType string    `gorm:"type:varchar(30);not null" json:"question_type"`
	Status       string    `gorm:"type:varchar(50);not null;index;default:'pending'" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`

	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question belongs to exactly one quiz. Options maps short tokens ("a", "b",
// "true"...) to option text; CorrectAnswers is a JSON array of those tokens,
// single-element for single-answer types.
type Question struct {
	Base
	QuizID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Position       int            `gorm:"not null" json:"position"`
	Type           string         `gorm:"type:varchar(30);not null" json:"type"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Options        datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswers datatypes.JSON `gorm:"type:jsonb" json:"correct_answers"`
	Explanation    string         `gorm:"type:text" json:"explanation"`
}

func (Question) TableName() string {
	return "questions"
}

// QuizAttempt records one submission against a completed quiz.
type QuizAttempt struct {
	Base
	QuizID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Answers      datatypes.JSON `gorm:"type:jsonb" json:"answers"`
	CorrectCount int            `json:"correct_count"`
	TotalCount   int            `json:"total_count"`
	Score        float32        `json:"score"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
