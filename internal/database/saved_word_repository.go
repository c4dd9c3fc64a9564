package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordbook/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SavedWordRepository handles database operations for saved words
type SavedWordRepository struct {
	db  *sqlx.DB
	now clock
}

// NewSavedWordRepository creates a new repository instance
func NewSavedWordRepository(db *sqlx.DB) *SavedWordRepository {
	return &SavedWordRepository{
		db:  db,
		now: systemClock,
	}
}

// Create inserts a new saved word. ID and CreatedAt are filled in when empty.
func (r *SavedWordRepository) Create(ctx context.Context, word *models.SavedWord) error {
	if word.ID == "" {
		word.ID = uuid.New().String()
	}
	if word.CreatedAt.IsZero() {
		word.CreatedAt = r.now()
	}

	query := r.db.Rebind(`
		INSERT INTO saved_words (id, user_id, word, phonetic, definition, part_of_speech, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		word.ID,
		word.UserID,
		word.Word,
		word.Phonetic,
		word.Definition,
		word.PartOfSpeech,
		word.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create saved word: %w", err)
	}
	return nil
}

// GetByID returns a saved word owned by the user
func (r *SavedWordRepository) GetByID(ctx context.Context, userID, id string) (*models.SavedWord, error) {
	var word models.SavedWord
	query := r.db.Rebind(`
		SELECT id, user_id, word, phonetic, definition, part_of_speech, created_at
		FROM saved_words
		WHERE user_id = ? AND id = ?
	`)
	err := r.db.GetContext(ctx, &word, query, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSavedWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved word: %w", err)
	}
	return &word, nil
}

// GetByUserID returns all saved words for a user, most recent first
func (r *SavedWordRepository) GetByUserID(ctx context.Context, userID string) ([]models.SavedWord, error) {
	words := []models.SavedWord{}
	query := r.db.Rebind(`
		SELECT id, user_id, word, phonetic, definition, part_of_speech, created_at
		FROM saved_words
		WHERE user_id = ?
		ORDER BY created_at DESC
	`)
	if err := r.db.SelectContext(ctx, &words, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get saved words: %w", err)
	}
	return words, nil
}

// ExistsByWord reports whether the user already saved the word (case-insensitive)
func (r *SavedWordRepository) ExistsByWord(ctx context.Context, userID, word string) (bool, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM saved_words
		WHERE user_id = ? AND LOWER(word) = LOWER(?)
	`)
	if err := r.db.GetContext(ctx, &count, query, userID, word); err != nil {
		return false, fmt.Errorf("failed to check saved word: %w", err)
	}
	return count > 0, nil
}

// Delete removes a saved word together with its progress row
func (r *SavedWordRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		tx.Rebind("DELETE FROM word_progress WHERE user_id = ? AND saved_word_id = ?"),
		userID, id,
	); err != nil {
		return fmt.Errorf("failed to delete word progress: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		tx.Rebind("DELETE FROM saved_words WHERE user_id = ? AND id = ?"),
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved word: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSavedWordNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
