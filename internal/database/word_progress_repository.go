package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WordProgressRepository handles database operations for word progress
type WordProgressRepository struct {
	db  *sqlx.DB
	now clock
}

// NewWordProgressRepository creates a new repository instance
func NewWordProgressRepository(db *sqlx.DB) *WordProgressRepository {
	return &WordProgressRepository{
		db:  db,
		now: systemClock,
	}
}

// wordWithProgressRow is one row of the saved_words LEFT JOIN word_progress query
type wordWithProgressRow struct {
	models.SavedWord
	ProgressID        sql.NullString  `db:"progress_id"`
	EasinessFactor    sql.NullFloat64 `db:"easiness_factor"`
	IntervalDays      sql.NullInt64   `db:"interval_days"`
	Repetitions       sql.NullInt64   `db:"repetitions"`
	NextReviewAt      sql.NullTime    `db:"next_review_at"`
	LastReviewedAt    sql.NullTime    `db:"last_reviewed_at"`
	TimesCorrect      sql.NullInt64   `db:"times_correct"`
	TimesIncorrect    sql.NullInt64   `db:"times_incorrect"`
	ProgressCreatedAt sql.NullTime    `db:"progress_created_at"`
}

func (row wordWithProgressRow) toModel() models.SavedWordWithProgress {
	result := models.SavedWordWithProgress{SavedWord: row.SavedWord}
	if !row.ProgressID.Valid {
		return result
	}

	progress := &models.WordProgress{
		ID:             row.ProgressID.String,
		UserID:         row.UserID,
		SavedWordID:    row.ID,
		EasinessFactor: row.EasinessFactor.Float64,
		Interval:       int(row.IntervalDays.Int64),
		Repetitions:    int(row.Repetitions.Int64),
		NextReviewAt:   row.NextReviewAt.Time,
		TimesCorrect:   int(row.TimesCorrect.Int64),
		TimesIncorrect: int(row.TimesIncorrect.Int64),
		CreatedAt:      row.ProgressCreatedAt.Time,
	}
	if row.LastReviewedAt.Valid {
		t := row.LastReviewedAt.Time
		progress.LastReviewedAt = &t
	}
	result.Progress = progress
	return result
}

// FetchWordsWithProgress returns every saved word of the user joined with its
// progress row, if one exists. Most recently saved words come first.
func (r *WordProgressRepository) FetchWordsWithProgress(ctx context.Context, userID string) ([]models.SavedWordWithProgress, error) {
	var rows []wordWithProgressRow
	query := r.db.Rebind(`
		SELECT sw.id, sw.user_id, sw.word, sw.phonetic, sw.definition, sw.part_of_speech, sw.created_at,
			wp.id AS progress_id, wp.easiness_factor, wp.interval_days, wp.repetitions,
			wp.next_review_at, wp.last_reviewed_at, wp.times_correct, wp.times_incorrect,
			wp.created_at AS progress_created_at
		FROM saved_words sw
		LEFT JOIN word_progress wp ON wp.saved_word_id = sw.id AND wp.user_id = sw.user_id
		WHERE sw.user_id = ?
		ORDER BY sw.created_at DESC
	`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch words with progress: %w", err)
	}

	words := make([]models.SavedWordWithProgress, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.toModel())
	}
	return words, nil
}

// GetByUserAndWord returns progress for a specific user and saved word
func (r *WordProgressRepository) GetByUserAndWord(ctx context.Context, userID, savedWordID string) (*models.WordProgress, error) {
	var progress models.WordProgress
	query := r.db.Rebind(`
		SELECT id, user_id, saved_word_id, easiness_factor, interval_days, repetitions,
			next_review_at, last_reviewed_at, times_correct, times_incorrect, created_at
		FROM word_progress
		WHERE user_id = ? AND saved_word_id = ?
	`)
	err := r.db.GetContext(ctx, &progress, query, userID, savedWordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word progress: %w", err)
	}
	return &progress, nil
}

// EnsureProgressRows creates a default progress row for every id that lacks one.
//
// It queries the existing rows, computes the difference and inserts only the
// missing ones, so calling it again with the same ids is a no-op.
func (r *WordProgressRepository) EnsureProgressRows(ctx context.Context, userID string, savedWordIDs []string) error {
	if len(savedWordIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		"SELECT saved_word_id FROM word_progress WHERE user_id = ? AND saved_word_id IN (?)",
		userID, savedWordIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to build progress lookup: %w", err)
	}

	var existing []string
	if err := r.db.SelectContext(ctx, &existing, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to query existing progress: %w", err)
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{}, len(savedWordIDs))
	for _, id := range savedWordIDs {
		if _, ok := existingSet[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	insert := tx.Rebind(`
		INSERT INTO word_progress (
			id, user_id, saved_word_id, easiness_factor, interval_days, repetitions,
			next_review_at, times_correct, times_incorrect, created_at
		) VALUES (?, ?, ?, ?, 0, 0, ?, 0, 0, ?)
	`)
	for _, id := range missing {
		if _, err := tx.ExecContext(ctx, insert,
			uuid.New().String(),
			userID,
			id,
			models.DefaultEasinessFactor,
			now,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert progress for word %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateProgress stores a review result and bumps exactly one of the
// correct/incorrect counters.
func (r *WordProgressRepository) UpdateProgress(ctx context.Context, userID, savedWordID string, result spaced_repetition.ReviewResult, correct bool) error {
	counter := "times_incorrect"
	if correct {
		counter = "times_correct"
	}

	query := r.db.Rebind(fmt.Sprintf(`
		UPDATE word_progress SET
			easiness_factor = ?,
			interval_days = ?,
			repetitions = ?,
			next_review_at = ?,
			last_reviewed_at = ?,
			%[1]s = %[1]s + 1
		WHERE user_id = ? AND saved_word_id = ?
	`, counter))

	res, err := r.db.ExecContext(ctx, query,
		result.EasinessFactor,
		result.Interval,
		result.Repetitions,
		result.NextReviewAt.UTC(),
		r.now(),
		userID,
		savedWordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update word progress: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProgressNotFound
	}
	return nil
}

// CountMastered returns the number of words with at least minRepetitions
// consecutive correct recalls
func (r *WordProgressRepository) CountMastered(ctx context.Context, userID string, minRepetitions int) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM word_progress WHERE user_id = ? AND repetitions >= ?")
	if err := r.db.GetContext(ctx, &count, query, userID, minRepetitions); err != nil {
		return 0, fmt.Errorf("failed to count mastered words: %w", err)
	}
	return count, nil
}

// CountDue returns the number of words whose next review is at or before now
func (r *WordProgressRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM word_progress WHERE user_id = ? AND next_review_at <= ?")
	if err := r.db.GetContext(ctx, &count, query, userID, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due words: %w", err)
	}
	return count, nil
}
