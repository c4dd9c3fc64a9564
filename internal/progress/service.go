package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

// ProgressStore is the interface that wraps methods for word_progress data access
type ProgressStore interface {
	// FetchWordsWithProgress returns all saved words of the user joined with their progress rows
	FetchWordsWithProgress(ctx context.Context, userID string) ([]models.SavedWordWithProgress, error)
	// EnsureProgressRows creates default progress rows for the ids that have none
	EnsureProgressRows(ctx context.Context, userID string, savedWordIDs []string) error
	// UpdateProgress stores a review result and increments one of the counters
	UpdateProgress(ctx context.Context, userID, savedWordID string, result spaced_repetition.ReviewResult, correct bool) error
	// CountMastered counts rows with at least minRepetitions repetitions
	CountMastered(ctx context.Context, userID string, minRepetitions int) (int, error)
	// CountDue counts rows with next_review_at at or before now
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
}

// SessionStore is the interface that wraps methods for learning_sessions data access
type SessionStore interface {
	// Create appends a session record
	Create(ctx context.Context, session *models.LearningSession) error
	// GetRecentCompletedAt returns completion times of the latest sessions, newest first
	GetRecentCompletedAt(ctx context.Context, userID string, limit int) ([]time.Time, error)
}

// Service loads study material and records the outcome of study sessions
type Service struct {
	progress ProgressStore
	sessions SessionStore
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a new progress service.
// location decides where calendar days start for the streak; nil means time.Local.
func NewService(progress ProgressStore, sessions SessionStore, location *time.Location, logger *zap.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		progress: progress,
		sessions: sessions,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// LoadWords returns the user's saved words with a progress row attached to
// every one of them. Rows are created on first load with default values.
func (s *Service) LoadWords(ctx context.Context, userID string) ([]models.SavedWordWithProgress, error) {
	words, err := s.progress.FetchWordsWithProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}

	var missing []string
	for _, w := range words {
		if w.Progress == nil {
			missing = append(missing, w.ID)
		}
	}
	if len(missing) == 0 {
		return words, nil
	}

	s.logger.Debug("initializing word progress",
		zap.String("user_id", userID),
		zap.Int("count", len(missing)))

	if err := s.progress.EnsureProgressRows(ctx, userID, missing); err != nil {
		return nil, fmt.Errorf("failed to initialize progress: %w", err)
	}

	words, err = s.progress.FetchWordsWithProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload words: %w", err)
	}
	return words, nil
}

// UpdateProgress persists one review result
func (s *Service) UpdateProgress(ctx context.Context, userID, savedWordID string, result spaced_repetition.ReviewResult, correct bool) error {
	return s.progress.UpdateProgress(ctx, userID, savedWordID, result, correct)
}
