package models

import "time"

// Default values for a freshly created progress row
const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3
)

// WordProgress tracks a user's SM-2 schedule for a saved word
type WordProgress struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	SavedWordID    string     `json:"saved_word_id" db:"saved_word_id"`
	EasinessFactor float64    `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF parameter
	Interval       int        `json:"interval" db:"interval_days"`          // Current interval in days
	Repetitions    int        `json:"repetitions" db:"repetitions"`         // Consecutive correct recalls
	NextReviewAt   time.Time  `json:"next_review_at" db:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"` // nil if never reviewed
	TimesCorrect   int        `json:"times_correct" db:"times_correct"`
	TimesIncorrect int        `json:"times_incorrect" db:"times_incorrect"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
