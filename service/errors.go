package service

import "errors"

// Validation errors propagate synchronously to the caller; nothing is
// persisted when one fires. Everything after dispatch is a terminal status
// write, never a returned error.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrNoContent        = errors.New("material has no extracted content")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotReady     = errors.New("quiz generation has not completed")
	ErrDeckNotFound     = errors.New("flashcard deck not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrLectureNotFound  = errors.New("audio lecture not found")
)
