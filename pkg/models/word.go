package models

import "time"

// SavedWord represents a dictionary word a user has saved to study
type SavedWord struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Word         string    `json:"word" db:"word"`
	Phonetic     *string   `json:"phonetic,omitempty" db:"phonetic"`
	Definition   string    `json:"definition" db:"definition"`
	PartOfSpeech string    `json:"part_of_speech" db:"part_of_speech"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SavedWordWithProgress joins a saved word with its schedule state.
// Progress is nil until the word is loaded into a learning context.
type SavedWordWithProgress struct {
	SavedWord
	Progress *WordProgress `json:"progress"`
}
