package learn

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

var (
	// ErrNotEnoughWords is returned when a mode is started with fewer words than it needs
	ErrNotEnoughWords = errors.New("not enough words for this learning mode")
	// ErrSessionDone is returned when input arrives after the session has finished
	ErrSessionDone = errors.New("learning session is already finished")
)

// State is the lifecycle state of a learning session
type State int

const (
	// StateInProgress means items remain to be answered
	StateInProgress State = iota
	// StateDone is terminal
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "in_progress"
}

// ProgressWriter persists a single review result
type ProgressWriter interface {
	UpdateProgress(ctx context.Context, userID, savedWordID string, result spaced_repetition.ReviewResult, correct bool) error
}

// SessionRecorder appends a completed session
type SessionRecorder interface {
	RecordSession(ctx context.Context, userID string, sessionType models.SessionType, wordsStudied, wordsCorrect int, durationSeconds *int) error
}

// Summary is what a finished session reports back to the front end
type Summary struct {
	SessionType     models.SessionType
	WordsStudied    int
	WordsCorrect    int
	DurationSeconds *int
}

// Percent returns the share of correct answers rounded to a whole percent
func (s Summary) Percent() int {
	if s.WordsStudied == 0 {
		return 0
	}
	return (s.WordsCorrect*100 + s.WordsStudied/2) / s.WordsStudied
}

// Grader runs the review engine for one answer and writes the outcome.
// Store failures are logged and never stop a session.
type Grader struct {
	engine   *spaced_repetition.SM2
	progress ProgressWriter
	sessions SessionRecorder
	logger   *zap.Logger
}

// NewGrader creates a grader
func NewGrader(engine *spaced_repetition.SM2, progress ProgressWriter, sessions SessionRecorder, logger *zap.Logger) *Grader {
	if engine == nil {
		engine = spaced_repetition.NewSM2()
	}
	return &Grader{
		engine:   engine,
		progress: progress,
		sessions: sessions,
		logger:   logger,
	}
}

// Review grades one word. It reports whether the recall counts as correct.
// Words without a progress row are not written.
func (g *Grader) Review(ctx context.Context, userID string, word models.SavedWordWithProgress, quality spaced_repetition.QualityResponse) bool {
	correct := g.engine.IsCorrect(quality)
	if word.Progress == nil {
		return correct
	}

	result := g.engine.Review(spaced_repetition.StateOf(word.Progress), quality)
	if err := g.progress.UpdateProgress(ctx, userID, word.ID, result, correct); err != nil {
		g.logger.Warn("failed to update word progress",
			zap.String("user_id", userID),
			zap.String("word_id", word.ID),
			zap.Error(err))
	}
	return correct
}

// Finish records the session
func (g *Grader) Finish(ctx context.Context, userID string, summary Summary) {
	err := g.sessions.RecordSession(ctx, userID, summary.SessionType, summary.WordsStudied, summary.WordsCorrect, summary.DurationSeconds)
	if err != nil {
		g.logger.Warn("failed to save learning session",
			zap.String("user_id", userID),
			zap.String("session_type", string(summary.SessionType)),
			zap.Error(err))
	}
}

func newRand(rnd *rand.Rand) *rand.Rand {
	if rnd != nil {
		return rnd
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
