package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/wordbook/pkg/models"
)

var (
	// ErrNoDefinition is returned when an entry carries no definition to save
	ErrNoDefinition = errors.New("entry has no definition")
	// ErrAlreadySaved is returned when the user already has the word
	ErrAlreadySaved = errors.New("word already saved")
)

// WordStore is the interface that wraps the saved_words methods used when saving
type WordStore interface {
	Create(ctx context.Context, word *models.SavedWord) error
	ExistsByWord(ctx context.Context, userID, word string) (bool, error)
}

// NewSavedWord turns a lookup result into a saved word using its first
// meaning and that meaning's first definition
func NewSavedWord(userID string, entry models.DictionaryEntry) (*models.SavedWord, error) {
	if len(entry.Meanings) == 0 || len(entry.Meanings[0].Definitions) == 0 {
		return nil, ErrNoDefinition
	}
	meaning := entry.Meanings[0]

	word := &models.SavedWord{
		UserID:       userID,
		Word:         entry.Word,
		Definition:   meaning.Definitions[0].Definition,
		PartOfSpeech: meaning.PartOfSpeech,
	}
	if p := strings.TrimSpace(entry.Phonetic); p != "" {
		word.Phonetic = &p
	}
	return word, nil
}

// SaveEntry stores a lookup result in the user's collection
func SaveEntry(ctx context.Context, store WordStore, userID string, entry models.DictionaryEntry) (*models.SavedWord, error) {
	word, err := NewSavedWord(userID, entry)
	if err != nil {
		return nil, err
	}

	exists, err := store.ExistsByWord(ctx, userID, word.Word)
	if err != nil {
		return nil, fmt.Errorf("failed to check saved word: %w", err)
	}
	if exists {
		return nil, ErrAlreadySaved
	}

	if err := store.Create(ctx, word); err != nil {
		return nil, fmt.Errorf("failed to save word: %w", err)
	}
	return word, nil
}
