package learn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

type progressUpdate struct {
	wordID  string
	result  spaced_repetition.ReviewResult
	correct bool
}

// mockProgressWriter is a mock implementation of ProgressWriter
type mockProgressWriter struct {
	updates []progressUpdate
	err     error
}

func (m *mockProgressWriter) UpdateProgress(ctx context.Context, userID, savedWordID string, result spaced_repetition.ReviewResult, correct bool) error {
	m.updates = append(m.updates, progressUpdate{wordID: savedWordID, result: result, correct: correct})
	return m.err
}

func (m *mockProgressWriter) byWord() map[string]progressUpdate {
	out := make(map[string]progressUpdate, len(m.updates))
	for _, u := range m.updates {
		out[u.wordID] = u
	}
	return out
}

// mockSessionRecorder is a mock implementation of SessionRecorder
type mockSessionRecorder struct {
	sessions []Summary
	err      error
}

func (m *mockSessionRecorder) RecordSession(ctx context.Context, userID string, sessionType models.SessionType, wordsStudied, wordsCorrect int, durationSeconds *int) error {
	m.sessions = append(m.sessions, Summary{
		SessionType:     sessionType,
		WordsStudied:    wordsStudied,
		WordsCorrect:    wordsCorrect,
		DurationSeconds: durationSeconds,
	})
	return m.err
}

func newTestGrader(progress *mockProgressWriter, sessions *mockSessionRecorder) *Grader {
	engine := spaced_repetition.NewSM2()
	engine.Now = func() time.Time { return fixedNow }
	return NewGrader(engine, progress, sessions, zap.NewNop())
}

// makeWords returns n words with fresh progress rows
func makeWords(n int) []models.SavedWordWithProgress {
	words := make([]models.SavedWordWithProgress, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("w%d", i)
		words = append(words, models.SavedWordWithProgress{
			SavedWord: models.SavedWord{
				ID:         id,
				UserID:     "user-1",
				Word:       "word" + id,
				Definition: "definition of " + id,
			},
			Progress: &models.WordProgress{
				ID:             "p" + id,
				SavedWordID:    id,
				EasinessFactor: models.DefaultEasinessFactor,
				NextReviewAt:   fixedNow,
			},
		})
	}
	return words
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestGrader_Review(t *testing.T) {
	tests := []struct {
		name            string
		progress        *models.WordProgress
		quality         spaced_repetition.QualityResponse
		writeErr        error
		expectedCorrect bool
		expectedWrites  int
	}{
		{
			name:            "correct recall is written",
			progress:        &models.WordProgress{EasinessFactor: 2.5, Interval: 6, Repetitions: 2},
			quality:         spaced_repetition.QualityCorrectHesitation,
			expectedCorrect: true,
			expectedWrites:  1,
		},
		{
			name:            "failed recall is written",
			progress:        &models.WordProgress{EasinessFactor: 2.5, Interval: 6, Repetitions: 2},
			quality:         spaced_repetition.QualityIncorrect,
			expectedCorrect: false,
			expectedWrites:  1,
		},
		{
			name:            "store error is swallowed",
			progress:        &models.WordProgress{EasinessFactor: 2.5},
			quality:         spaced_repetition.QualityPerfect,
			writeErr:        errors.New("database error"),
			expectedCorrect: true,
			expectedWrites:  1,
		},
		{
			name:            "word without progress is not written",
			quality:         spaced_repetition.QualityPerfect,
			expectedCorrect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &mockProgressWriter{err: tt.writeErr}
			grader := newTestGrader(progress, &mockSessionRecorder{})
			word := models.SavedWordWithProgress{SavedWord: models.SavedWord{ID: "w1"}, Progress: tt.progress}

			correct := grader.Review(context.Background(), "user-1", word, tt.quality)

			assert.Equal(t, tt.expectedCorrect, correct)
			require.Len(t, progress.updates, tt.expectedWrites)
			if tt.expectedWrites > 0 {
				assert.Equal(t, "w1", progress.updates[0].wordID)
				assert.Equal(t, tt.expectedCorrect, progress.updates[0].correct)
			}
		})
	}
}

func TestGrader_Review_Scenario(t *testing.T) {
	progress := &mockProgressWriter{}
	grader := newTestGrader(progress, &mockSessionRecorder{})
	word := models.SavedWordWithProgress{
		SavedWord: models.SavedWord{ID: "w1"},
		Progress:  &models.WordProgress{EasinessFactor: 2.5, Interval: 6, Repetitions: 2},
	}

	grader.Review(context.Background(), "user-1", word, spaced_repetition.QualityCorrectHesitation)

	require.Len(t, progress.updates, 1)
	got := progress.updates[0].result
	assert.Equal(t, 3, got.Repetitions)
	assert.Equal(t, 15, got.Interval)
	assert.InDelta(t, 2.5, got.EasinessFactor, 1e-9)
	assert.Equal(t, fixedNow.AddDate(0, 0, 15), got.NextReviewAt)
}

func TestGrader_Finish_SwallowsErrors(t *testing.T) {
	sessions := &mockSessionRecorder{err: errors.New("database error")}
	grader := newTestGrader(&mockProgressWriter{}, sessions)

	assert.NotPanics(t, func() {
		grader.Finish(context.Background(), "user-1", Summary{SessionType: models.SessionQuiz, WordsStudied: 4})
	})
	assert.Len(t, sessions.sessions, 1)
}

func TestSummary_Percent(t *testing.T) {
	assert.Equal(t, 0, Summary{}.Percent())
	assert.Equal(t, 70, Summary{WordsStudied: 10, WordsCorrect: 7}.Percent())
	assert.Equal(t, 67, Summary{WordsStudied: 3, WordsCorrect: 2}.Percent())
	assert.Equal(t, 100, Summary{WordsStudied: 6, WordsCorrect: 6}.Percent())
}
