package learn

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
)

const (
	// QuizSize is the maximum number of questions in a quiz
	QuizSize = 10
	// DistractorCount is the number of wrong options per question
	DistractorCount = 3
	// MinQuizWords is the smallest word set a quiz can be built from
	MinQuizWords = 4
	// AnswerDelay is how long the front end shows feedback before Next
	AnswerDelay = 1200 * time.Millisecond
)

var (
	// ErrAlreadyAnswered is returned for a second answer to the same question
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidOption is returned for an option index outside the question
	ErrInvalidOption = errors.New("invalid option")
	// ErrNotAnswered is returned by Next before the current question is answered
	ErrNotAnswered = errors.New("question not answered yet")
)

// Question is one multiple-choice item: pick the definition of Word
type Question struct {
	Word         models.SavedWordWithProgress
	Options      []string
	CorrectIndex int
}

// Feedback describes the outcome of an answer
type Feedback struct {
	Correct      bool
	Selected     int
	CorrectIndex int
}

// Quiz asks for the definition of up to QuizSize words
type Quiz struct {
	userID    string
	questions []Question
	index     int
	answered  bool
	correct   int
	state     State
	grader    *Grader
	summary   Summary
}

// NewQuiz builds the questions. rnd may be nil.
func NewQuiz(userID string, words []models.SavedWordWithProgress, grader *Grader, rnd *rand.Rand) (*Quiz, error) {
	if len(words) < MinQuizWords {
		return nil, ErrNotEnoughWords
	}

	return &Quiz{
		userID:    userID,
		questions: BuildQuestions(words, newRand(rnd)),
		grader:    grader,
	}, nil
}

// BuildQuestions picks up to QuizSize words in random order and adds
// DistractorCount definitions of other words to each question
func BuildQuestions(words []models.SavedWordWithProgress, rnd *rand.Rand) []Question {
	pool := shuffled(words, rnd)
	if len(pool) > QuizSize {
		pool = pool[:QuizSize]
	}

	questions := make([]Question, 0, len(pool))
	for _, word := range pool {
		others := make([]models.SavedWordWithProgress, 0, len(words)-1)
		for _, w := range words {
			if w.ID != word.ID {
				others = append(others, w)
			}
		}
		others = shuffled(others, rnd)
		if len(others) > DistractorCount {
			others = others[:DistractorCount]
		}

		options := make([]string, 0, len(others)+1)
		for _, w := range others {
			options = append(options, w.Definition)
		}
		options = append(options, word.Definition)
		correctIndex := len(options) - 1

		rnd.Shuffle(len(options), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, Question{
			Word:         word,
			Options:      options,
			CorrectIndex: correctIndex,
		})
	}
	return questions
}

func shuffled(words []models.SavedWordWithProgress, rnd *rand.Rand) []models.SavedWordWithProgress {
	out := make([]models.SavedWordWithProgress, len(words))
	copy(out, words)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Current returns the question being asked
func (q *Quiz) Current() (Question, bool) {
	if q.state == StateDone {
		return Question{}, false
	}
	return q.questions[q.index], true
}

// Answer grades the chosen option: quality 5 when right, 1 when wrong.
// Only the first answer to a question counts.
func (q *Quiz) Answer(ctx context.Context, option int) (Feedback, error) {
	if q.state == StateDone {
		return Feedback{}, ErrSessionDone
	}
	if q.answered {
		return Feedback{}, ErrAlreadyAnswered
	}

	question := q.questions[q.index]
	if option < 0 || option >= len(question.Options) {
		return Feedback{}, ErrInvalidOption
	}

	q.answered = true
	correct := option == question.CorrectIndex
	quality := spaced_repetition.QualityIncorrect
	if correct {
		quality = spaced_repetition.QualityPerfect
		q.correct++
	}
	q.grader.Review(ctx, q.userID, question.Word, quality)

	return Feedback{
		Correct:      correct,
		Selected:     option,
		CorrectIndex: question.CorrectIndex,
	}, nil
}

// Next moves past an answered question. After the last one the session is
// recorded and the quiz is done.
func (q *Quiz) Next(ctx context.Context) error {
	if q.state == StateDone {
		return ErrSessionDone
	}
	if !q.answered {
		return ErrNotAnswered
	}

	q.answered = false
	q.index++
	if q.index >= len(q.questions) {
		q.state = StateDone
		q.summary = Summary{
			SessionType:  models.SessionQuiz,
			WordsStudied: len(q.questions),
			WordsCorrect: q.correct,
		}
		q.grader.Finish(ctx, q.userID, q.summary)
	}
	return nil
}

// Answered reports whether the current question already has an answer
func (q *Quiz) Answered() bool {
	return q.answered
}

// Position returns the 1-based number of the current question
func (q *Quiz) Position() int {
	return q.index + 1
}

// Total returns the number of questions
func (q *Quiz) Total() int {
	return len(q.questions)
}

// State returns the session state
func (q *Quiz) State() State {
	return q.state
}

// Summary is valid once the session is done
func (q *Quiz) Summary() Summary {
	return q.summary
}
