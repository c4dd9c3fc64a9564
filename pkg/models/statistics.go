package models

// LearningStats is the summary shown on the learn screen.
// It is derived from progress rows and session history, never stored.
type LearningStats struct {
	Streak   int `json:"streak"`
	Mastered int `json:"mastered"`
	Due      int `json:"due"`
}
