package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
)

// Open connects to Postgres and migrates every table. Tables are migrated one
// at a time to avoid foreign key ordering issues.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.StudySession{},
		&models.Material{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.FlashcardDeck{},
		&models.Flashcard{},
		&models.Summary{},
		&models.AudioLecture{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return nil
}
