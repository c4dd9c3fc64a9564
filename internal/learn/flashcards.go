package learn

import (
	"context"
	"sort"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
)

// Recall qualities for the two flashcard buttons
const (
	QualityStillLearning = spaced_repetition.QualityIncorrect
	QualityGotIt         = spaced_repetition.QualityCorrectHesitation
)

// Flashcards walks through every word of the user once
type Flashcards struct {
	userID   string
	cards    []models.SavedWordWithProgress
	index    int
	correct  int
	revealed bool
	state    State
	grader   *Grader
	summary  Summary
}

// NewFlashcards builds a deck with due words first, then by soonest next review.
// Words without progress sort as if they were due at the Unix epoch.
func NewFlashcards(userID string, words []models.SavedWordWithProgress, grader *Grader, now time.Time) (*Flashcards, error) {
	if len(words) == 0 {
		return nil, ErrNotEnoughWords
	}

	cards := make([]models.SavedWordWithProgress, len(words))
	copy(cards, words)
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := reviewTime(cards[i]), reviewTime(cards[j])
		aDue, bDue := !a.After(now), !b.After(now)
		if aDue != bDue {
			return aDue
		}
		return a.Before(b)
	})

	return &Flashcards{
		userID: userID,
		cards:  cards,
		grader: grader,
	}, nil
}

func reviewTime(w models.SavedWordWithProgress) time.Time {
	if w.Progress == nil {
		return time.Unix(0, 0)
	}
	return w.Progress.NextReviewAt
}

// Current returns the card on top of the deck
func (f *Flashcards) Current() (models.SavedWordWithProgress, bool) {
	if f.state == StateDone {
		return models.SavedWordWithProgress{}, false
	}
	return f.cards[f.index], true
}

// Flip turns the current card over
func (f *Flashcards) Flip() {
	f.revealed = !f.revealed
}

// Revealed reports whether the definition side is showing
func (f *Flashcards) Revealed() bool {
	return f.revealed
}

// Grade scores the current card and moves to the next one.
// known=false is "still learning", known=true is "got it".
func (f *Flashcards) Grade(ctx context.Context, known bool) error {
	if f.state == StateDone {
		return ErrSessionDone
	}

	quality := QualityStillLearning
	if known {
		quality = QualityGotIt
	}
	if f.grader.Review(ctx, f.userID, f.cards[f.index], quality) {
		f.correct++
	}

	f.index++
	f.revealed = false
	if f.index >= len(f.cards) {
		f.state = StateDone
		f.summary = Summary{
			SessionType:  models.SessionFlashcard,
			WordsStudied: len(f.cards),
			WordsCorrect: f.correct,
		}
		f.grader.Finish(ctx, f.userID, f.summary)
	}
	return nil
}

// Position returns the 1-based number of the current card
func (f *Flashcards) Position() int {
	return f.index + 1
}

// Total returns the deck size
func (f *Flashcards) Total() int {
	return len(f.cards)
}

// State returns the session state
func (f *Flashcards) State() State {
	return f.state
}

// Summary is valid once the session is done
func (f *Flashcards) Summary() Summary {
	return f.summary
}
