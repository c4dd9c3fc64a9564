package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

// ErrInvalidSession is returned when a session record fails validation
var ErrInvalidSession = errors.New("invalid learning session")

// RecordSession appends one completed session for the user.
// durationSeconds is optional and only reported by timed modes.
func (s *Service) RecordSession(ctx context.Context, userID string, sessionType models.SessionType, wordsStudied, wordsCorrect int, durationSeconds *int) error {
	if err := validateSession(sessionType, wordsStudied, wordsCorrect, durationSeconds); err != nil {
		s.logger.Error("failed to validate session", zap.Error(err))
		return err
	}

	session := &models.LearningSession{
		UserID:          userID,
		SessionType:     sessionType,
		WordsStudied:    wordsStudied,
		WordsCorrect:    wordsCorrect,
		DurationSeconds: durationSeconds,
		CompletedAt:     s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	s.logger.Info("learning session recorded",
		zap.String("user_id", userID),
		zap.String("session_type", string(sessionType)),
		zap.Int("words_studied", wordsStudied),
		zap.Int("words_correct", wordsCorrect))
	return nil
}

func validateSession(sessionType models.SessionType, wordsStudied, wordsCorrect int, durationSeconds *int) error {
	if !sessionType.Valid() {
		return fmt.Errorf("%w: unknown session type %q", ErrInvalidSession, sessionType)
	}
	if wordsStudied < 0 || wordsCorrect < 0 {
		return fmt.Errorf("%w: negative word count", ErrInvalidSession)
	}
	if durationSeconds != nil && *durationSeconds < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidSession)
	}
	return nil
}
