package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/wordbook/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Lowest quality that counts as a successful recall
	PassThreshold QualityResponse
	// Floor for the easiness factor
	MinEasinessFactor float64
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:     QualityCorrectDifficult,
		MinEasinessFactor: models.MinEasinessFactor,
		Now:               time.Now,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// CardState is the part of a progress row the algorithm reads
type CardState struct {
	EasinessFactor float64
	Interval       int
	Repetitions    int
}

// ReviewResult is the new schedule produced by a review
type ReviewResult struct {
	CardState
	NextReviewAt time.Time
}

// StateOf extracts the scheduling state from a progress row
func StateOf(p *models.WordProgress) CardState {
	return CardState{
		EasinessFactor: p.EasinessFactor,
		Interval:       p.Interval,
		Repetitions:    p.Repetitions,
	}
}

// Review computes the next schedule for a card given a recall quality.
//
// quality must be in [0, 5]; values outside that range are not checked.
// The interval ramp uses the easiness factor the card had before this review.
func (sm *SM2) Review(card CardState, quality QualityResponse) ReviewResult {
	ef := card.EasinessFactor
	interval := card.Interval
	repetitions := card.Repetitions

	if quality >= sm.PassThreshold {
		repetitions++
		switch repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * ef))
		}
	} else {
		repetitions = 0
		interval = 1
	}

	q := float64(5 - quality)
	ef = ef + (0.1 - q*(0.08+q*0.02))
	if ef < sm.MinEasinessFactor {
		ef = sm.MinEasinessFactor
	}

	now := time.Now
	if sm.Now != nil {
		now = sm.Now
	}

	return ReviewResult{
		CardState: CardState{
			EasinessFactor: ef,
			Interval:       interval,
			Repetitions:    repetitions,
		},
		NextReviewAt: now().AddDate(0, 0, interval),
	}
}

// IsCorrect reports whether quality counts as a successful recall
func (sm *SM2) IsCorrect(quality QualityResponse) bool {
	return quality >= sm.PassThreshold
}

// MasteryThreshold is the repetition count from which a word is "mastered"
const MasteryThreshold = 3

// IsWordMastered determines if a word is considered "mastered"
func IsWordMastered(progress *models.WordProgress) bool {
	return progress != nil && progress.Repetitions >= MasteryThreshold
}

// IsDue reports whether a word is due at now. The boundary is inclusive and
// compares full timestamps, not calendar dates.
func IsDue(progress *models.WordProgress, now time.Time) bool {
	if progress == nil {
		return true
	}
	return !progress.NextReviewAt.After(now)
}
