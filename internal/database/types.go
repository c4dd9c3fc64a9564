package database

import (
	"errors"
	"time"
)

var (
	// ErrSavedWordNotFound is returned when a saved word does not exist for the user
	ErrSavedWordNotFound = errors.New("saved word not found")
	// ErrProgressNotFound is returned when no progress row exists for the user and word
	ErrProgressNotFound = errors.New("word progress not found")
)

// clock returns the current time in UTC. Timestamps are stored in UTC so
// that SQLite's text comparison orders them correctly.
type clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
