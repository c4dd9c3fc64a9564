package models

import "time"

// SessionType identifies the learning mode that produced a session
type SessionType string

const (
	SessionFlashcard SessionType = "flashcard"
	SessionQuiz      SessionType = "quiz"
	SessionMatch     SessionType = "match"
)

// Valid reports whether t is one of the known session types
func (t SessionType) Valid() bool {
	switch t {
	case SessionFlashcard, SessionQuiz, SessionMatch:
		return true
	}
	return false
}

// LearningSession is an append-only record of a completed study session
type LearningSession struct {
	ID              string      `json:"id" db:"id"`
	UserID          string      `json:"user_id" db:"user_id"`
	SessionType     SessionType `json:"session_type" db:"session_type"`
	WordsStudied    int         `json:"words_studied" db:"words_studied"`
	WordsCorrect    int         `json:"words_correct" db:"words_correct"`
	DurationSeconds *int        `json:"duration_seconds,omitempty" db:"duration_seconds"` // Duration in seconds
	CompletedAt     time.Time   `json:"completed_at" db:"completed_at"`
}
