package learn

import (
	"context"
	"testing"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuestions(t *testing.T) {
	tests := []struct {
		name              string
		words             int
		expectedQuestions int
		expectedOptions   int
	}{
		{name: "minimum set", words: 4, expectedQuestions: 4, expectedOptions: 4},
		{name: "fewer than quiz size", words: 7, expectedQuestions: 7, expectedOptions: 4},
		{name: "capped at quiz size", words: 25, expectedQuestions: QuizSize, expectedOptions: 4},
		{name: "fewer distractors available", words: 2, expectedQuestions: 2, expectedOptions: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := makeWords(tt.words)
			questions := BuildQuestions(words, seeded())

			require.Len(t, questions, tt.expectedQuestions)
			seen := make(map[string]bool)
			for _, q := range questions {
				assert.False(t, seen[q.Word.ID], "word asked twice")
				seen[q.Word.ID] = true

				require.Len(t, q.Options, tt.expectedOptions)
				assert.Equal(t, q.Word.Definition, q.Options[q.CorrectIndex])

				count := 0
				for _, o := range q.Options {
					if o == q.Word.Definition {
						count++
					}
				}
				assert.Equal(t, 1, count, "correct definition appears once")
			}
		})
	}
}

func TestNewQuiz_NotEnoughWords(t *testing.T) {
	quiz, err := NewQuiz("user-1", makeWords(3), newTestGrader(&mockProgressWriter{}, &mockSessionRecorder{}), seeded())

	assert.ErrorIs(t, err, ErrNotEnoughWords)
	assert.Nil(t, quiz)
}

func TestQuiz_Session(t *testing.T) {
	progress := &mockProgressWriter{}
	sessions := &mockSessionRecorder{}
	quiz, err := NewQuiz("user-1", makeWords(4), newTestGrader(progress, sessions), seeded())
	require.NoError(t, err)

	ctx := context.Background()
	require.Equal(t, 4, quiz.Total())

	assert.ErrorIs(t, quiz.Next(ctx), ErrNotAnswered)

	for i := 0; i < quiz.Total(); i++ {
		q, ok := quiz.Current()
		require.True(t, ok)
		assert.Equal(t, i+1, quiz.Position())

		option := q.CorrectIndex
		if i%2 == 1 {
			option = (q.CorrectIndex + 1) % len(q.Options)
		}

		_, err := quiz.Answer(ctx, len(q.Options))
		assert.ErrorIs(t, err, ErrInvalidOption)

		feedback, err := quiz.Answer(ctx, option)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 0, feedback.Correct)
		assert.Equal(t, q.CorrectIndex, feedback.CorrectIndex)
		assert.True(t, quiz.Answered())

		// a second tap on the same question changes nothing
		_, err = quiz.Answer(ctx, q.CorrectIndex)
		assert.ErrorIs(t, err, ErrAlreadyAnswered)

		require.NoError(t, quiz.Next(ctx))
	}

	assert.Equal(t, StateDone, quiz.State())
	assert.ErrorIs(t, quiz.Next(ctx), ErrSessionDone)
	_, err = quiz.Answer(ctx, 0)
	assert.ErrorIs(t, err, ErrSessionDone)

	require.Len(t, progress.updates, 4)
	for i, u := range progress.updates {
		if i%2 == 0 {
			assert.True(t, u.correct)
			assert.InDelta(t, 2.6, u.result.EasinessFactor, 1e-9)
		} else {
			assert.False(t, u.correct)
			assert.Equal(t, 0, u.result.Repetitions)
			assert.InDelta(t, 2.5+0.1-4*(0.08+4*0.02), u.result.EasinessFactor, 1e-9)
		}
	}

	require.Len(t, sessions.sessions, 1)
	assert.Equal(t, Summary{SessionType: models.SessionQuiz, WordsStudied: 4, WordsCorrect: 2}, sessions.sessions[0])
}

func TestQuiz_CorrectAnswerIsPerfectRecall(t *testing.T) {
	words := makeWords(4)
	for _, w := range words {
		w.Progress.Repetitions = 2
		w.Progress.Interval = 6
	}
	progress := &mockProgressWriter{}
	quiz, err := NewQuiz("user-1", words, newTestGrader(progress, &mockSessionRecorder{}), seeded())
	require.NoError(t, err)

	q, _ := quiz.Current()
	_, err = quiz.Answer(context.Background(), q.CorrectIndex)
	require.NoError(t, err)

	require.Len(t, progress.updates, 1)
	engine := spaced_repetition.NewSM2()
	engine.Now = func() time.Time { return fixedNow }
	expected := engine.Review(spaced_repetition.CardState{EasinessFactor: 2.5, Interval: 6, Repetitions: 2}, spaced_repetition.QualityPerfect)
	assert.Equal(t, expected, progress.updates[0].result)
	assert.Equal(t, 15, progress.updates[0].result.Interval)
}
