package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/wordbook/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

// newMockDB wraps a sqlmock connection with the sqlite3 bind type
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return sqlx.NewDb(db, DriverSQLite), mock, func() { db.Close() }
}

// newTestDB opens an in-memory SQLite store with the full schema
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(Config{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupSavedWordTestRepository(t *testing.T) (*SavedWordRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)

	repo := NewSavedWordRepository(db)
	repo.now = func() time.Time { return fixedNow }

	return repo, mock, cleanup
}

func TestSavedWordRepository_Create(t *testing.T) {
	phonetic := "/həˈləʊ/"

	tests := []struct {
		name          string
		word          *models.SavedWord
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success fills id and timestamp",
			word: &models.SavedWord{
				UserID:       "user-1",
				Word:         "hello",
				Phonetic:     &phonetic,
				Definition:   "used as a greeting",
				PartOfSpeech: "exclamation",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`(?s)INSERT INTO saved_words \(id, user_id, word, phonetic, definition, part_of_speech, created_at\).*VALUES`).
					WithArgs(sqlmock.AnyArg(), "user-1", "hello", phonetic, "used as a greeting", "exclamation", fixedNow).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "success without phonetic",
			word: &models.SavedWord{
				ID:         "word-1",
				UserID:     "user-1",
				Word:       "run",
				Definition: "move at speed",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO saved_words`).
					WithArgs("word-1", "user-1", "run", nil, "move at speed", "", fixedNow).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "database error",
			word: &models.SavedWord{UserID: "user-1", Word: "run", Definition: "move at speed"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO saved_words`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSavedWordTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.word)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.word.ID)
				assert.Equal(t, fixedNow, tt.word.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSavedWordRepository_GetByID(t *testing.T) {
	columns := []string{"id", "user_id", "word", "phonetic", "definition", "part_of_speech", "created_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedErr   error
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow("word-1", "user-1", "hello", nil, "a greeting", "exclamation", fixedNow)
				mock.ExpectQuery(`(?s)SELECT id, user_id, word.*FROM saved_words.*WHERE user_id = \? AND id = \?`).
					WithArgs("user-1", "word-1").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM saved_words`).
					WithArgs("user-1", "word-1").
					WillReturnRows(sqlmock.NewRows(columns))
			},
			expectedErr:   ErrSavedWordNotFound,
			expectedError: true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM saved_words`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSavedWordTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			word, err := repo.GetByID(context.Background(), "user-1", "word-1")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, word)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hello", word.Word)
				assert.Nil(t, word.Phonetic)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSavedWordRepository_ExistsByWord(t *testing.T) {
	repo, mock, cleanup := setupSavedWordTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM saved_words.*LOWER\(word\) = LOWER\(\?\)`).
		WithArgs("user-1", "Hello").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByWord(context.Background(), "user-1", "Hello")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedWordRepository_Delete(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectedErr error
		expectError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM word_progress WHERE user_id = \? AND saved_word_id = \?`).
					WithArgs("user-1", "word-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM saved_words WHERE user_id = \? AND id = \?`).
					WithArgs("user-1", "word-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "not found rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM word_progress`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM saved_words`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedErr: ErrSavedWordNotFound,
			expectError: true,
		},
		{
			name: "progress delete error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM word_progress`).
					WillReturnError(errors.New("database error"))
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSavedWordTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Delete(context.Background(), "user-1", "word-1")

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSavedWordRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewSavedWordRepository(newTestDB(t))

	older := &models.SavedWord{UserID: "user-1", Word: "Apple", Definition: "a fruit", CreatedAt: fixedNow.Add(-time.Hour)}
	newer := &models.SavedWord{UserID: "user-1", Word: "river", Definition: "flowing water", CreatedAt: fixedNow}
	other := &models.SavedWord{UserID: "user-2", Word: "stone", Definition: "a rock"}
	for _, w := range []*models.SavedWord{older, newer, other} {
		require.NoError(t, repo.Create(ctx, w))
	}

	words, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "river", words[0].Word)
	assert.Equal(t, "Apple", words[1].Word)

	exists, err := repo.ExistsByWord(ctx, "user-1", "apple")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByWord(ctx, "user-2", "apple")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Delete(ctx, "user-1", older.ID))
	_, err = repo.GetByID(ctx, "user-1", older.ID)
	assert.ErrorIs(t, err, ErrSavedWordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "user-1", other.ID), ErrSavedWordNotFound)
}
