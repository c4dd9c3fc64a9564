package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/wordbook/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LearningSessionRepository handles database operations for completed sessions
type LearningSessionRepository struct {
	db  *sqlx.DB
	now clock
}

// NewLearningSessionRepository creates a new repository instance
func NewLearningSessionRepository(db *sqlx.DB) *LearningSessionRepository {
	return &LearningSessionRepository{
		db:  db,
		now: systemClock,
	}
}

// Create appends a session record
func (r *LearningSessionRepository) Create(ctx context.Context, session *models.LearningSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CompletedAt.IsZero() {
		session.CompletedAt = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO learning_sessions (
			id, user_id, session_type, words_studied, words_correct,
			duration_seconds, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		string(session.SessionType),
		session.WordsStudied,
		session.WordsCorrect,
		session.DurationSeconds,
		session.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create learning session: %w", err)
	}
	return nil
}

// GetRecentCompletedAt returns completion times of the user's latest sessions,
// newest first
func (r *LearningSessionRepository) GetRecentCompletedAt(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	var times []time.Time
	query := r.db.Rebind(`
		SELECT completed_at FROM learning_sessions
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &times, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	return times, nil
}

// GetByUserID returns the user's sessions, newest first
func (r *LearningSessionRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]models.LearningSession, error) {
	sessions := []models.LearningSession{}
	query := r.db.Rebind(`
		SELECT id, user_id, session_type, words_studied, words_correct, duration_seconds, completed_at
		FROM learning_sessions
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get learning sessions: %w", err)
	}
	return sessions, nil
}
