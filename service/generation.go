package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/repository"
)

// Prompt budgets: a hard substring cut, not sentence-aware.
const (
	maxPromptChars = 15000
	maxScriptChars = 10000
)

const generationTemperature = 0.7

// loadReadyMaterial enforces the shared trigger precondition: the material
// must exist and carry extracted content. Violations surface as validation
// errors before any artifact record is created.
func loadReadyMaterial(repo repository.MaterialRepository, id uuid.UUID) (*models.Material, error) {
	material, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load material: %w", err)
	}
	if strings.TrimSpace(material.RawContent) == "" {
		return nil, ErrNoContent
	}
	return material, nil
}

// truncateContent cuts at a byte budget, backing up so the cut never lands
// inside a multi-byte rune.
func truncateContent(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// stripJSONFence removes a leading ```json or ``` fence and the matching
// closing fence. Models fence their output more often than not even when the
// prompt forbids it.
func stripJSONFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}

	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// decodeGenerated strips any fencing and unmarshals the model response. A
// decode failure fails the whole generation; there is no partial-content
// fallback.
func decodeGenerated(content string, v interface{}) error {
	cleaned := stripJSONFence(content)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("failed to parse generated JSON: %w", err)
	}
	return nil
}
