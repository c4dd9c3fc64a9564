package learn

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/wordbook/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(t *testing.T, words []models.SavedWordWithProgress, progress *mockProgressWriter, sessions *mockSessionRecorder) (*Match, *time.Time) {
	t.Helper()
	m, err := NewMatch("user-1", words, newTestGrader(progress, sessions), seeded())
	require.NoError(t, err)

	clock := fixedNow
	m.now = func() time.Time { return clock }
	m.started = fixedNow
	return m, &clock
}

// pairTiles returns the word and definition tile ids of a pair
func pairTiles(pairID string) (string, string) {
	return "w-" + pairID, "d-" + pairID
}

func TestBuildTiles_Integrity(t *testing.T) {
	words := makeWords(6)
	tiles := BuildTiles(words, seeded())

	require.Len(t, tiles, 12)

	byPair := make(map[string][]Tile)
	ids := make(map[string]bool)
	for _, tile := range tiles {
		assert.False(t, ids[tile.ID], "duplicate tile id %s", tile.ID)
		ids[tile.ID] = true
		byPair[tile.PairID] = append(byPair[tile.PairID], tile)
	}

	require.Len(t, byPair, 6)
	for pairID, pair := range byPair {
		require.Len(t, pair, 2, pairID)
		assert.NotEqual(t, pair[0].Type, pair[1].Type)
	}
}

func TestBuildTiles_TruncatesLongDefinitions(t *testing.T) {
	words := makeWords(2)
	words[0].Definition = strings.Repeat("a", 61)
	words[1].Definition = strings.Repeat("b", 60)

	tiles := BuildTiles(words, seeded())

	for _, tile := range tiles {
		switch tile.ID {
		case "d-w1":
			assert.Equal(t, strings.Repeat("a", 57)+"...", tile.Text)
		case "d-w2":
			assert.Equal(t, strings.Repeat("b", 60), tile.Text)
		}
	}
}

func TestNewMatch(t *testing.T) {
	grader := newTestGrader(&mockProgressWriter{}, &mockSessionRecorder{})

	m, err := NewMatch("user-1", makeWords(3), grader, seeded())
	assert.ErrorIs(t, err, ErrNotEnoughWords)
	assert.Nil(t, m)

	m, err = NewMatch("user-1", makeWords(10), grader, seeded())
	require.NoError(t, err)
	assert.Len(t, m.Tiles(), 2*MatchPairs)
	assert.Equal(t, StateInProgress, m.State())
}

func TestMatch_Select(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMatch(t, makeWords(4), &mockProgressWriter{}, &mockSessionRecorder{})

	word1, def1 := pairTiles("w1")
	_, def2 := pairTiles("w2")
	word3, _ := pairTiles("w3")

	res, err := m.Select(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownTile)
	assert.Equal(t, Ignored, res)

	res, err = m.Select(ctx, word1)
	require.NoError(t, err)
	assert.Equal(t, Selected, res)
	assert.Equal(t, word1, m.SelectedTile())

	res, _ = m.Select(ctx, word1)
	assert.Equal(t, Deselected, res)
	assert.Empty(t, m.SelectedTile())
	assert.Zero(t, m.Attempts("w1"))

	// wrong pair counts against the first tile's pair
	m.Select(ctx, word1)
	res, _ = m.Select(ctx, def2)
	assert.Equal(t, Mismatched, res)
	assert.Equal(t, 1, m.Attempts("w1"))
	assert.Zero(t, m.Attempts("w2"))
	assert.Empty(t, m.SelectedTile())

	// two tiles of the same type never match
	m.Select(ctx, word3)
	res, _ = m.Select(ctx, word1)
	assert.Equal(t, Mismatched, res)
	assert.Equal(t, 1, m.Attempts("w3"))

	m.Select(ctx, def1)
	res, _ = m.Select(ctx, word1)
	assert.Equal(t, Matched, res)
	assert.Equal(t, 2, m.Attempts("w1"))
	assert.True(t, m.IsMatched(word1))
	assert.True(t, m.IsMatched(def1))

	res, err = m.Select(ctx, word1)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res)
}

func TestMatch_Completion(t *testing.T) {
	ctx := context.Background()
	words := makeWords(4)
	words[3].Progress = nil
	progress := &mockProgressWriter{}
	sessions := &mockSessionRecorder{}
	m, clock := newTestMatch(t, words, progress, sessions)

	// w2 takes two tries
	m.Select(ctx, "w-w2")
	m.Select(ctx, "d-w1")

	for _, id := range []string{"w1", "w2", "w3", "w4"} {
		word, def := pairTiles(id)
		*clock = clock.Add(10 * time.Second)
		m.Select(ctx, def)
		res, err := m.Select(ctx, word)
		require.NoError(t, err)
		assert.Equal(t, Matched, res)
	}

	assert.Equal(t, StateDone, m.State())
	assert.Equal(t, 40*time.Second, m.Elapsed())

	*clock = clock.Add(time.Minute)
	assert.Equal(t, 40*time.Second, m.Elapsed(), "timer stops at completion")

	_, err := m.Select(ctx, "w-w1")
	assert.ErrorIs(t, err, ErrSessionDone)

	// w4 has no progress row: tallied but not written
	updates := progress.byWord()
	require.Len(t, updates, 3)
	assert.Equal(t, 1, updates["w1"].result.Repetitions)
	assert.InDelta(t, 2.6, updates["w1"].result.EasinessFactor, 1e-9)
	assert.InDelta(t, 2.36, updates["w2"].result.EasinessFactor, 1e-9)
	assert.True(t, updates["w2"].correct)

	require.Len(t, sessions.sessions, 1)
	got := sessions.sessions[0]
	assert.Equal(t, models.SessionMatch, got.SessionType)
	assert.Equal(t, 4, got.WordsStudied)
	assert.Equal(t, 3, got.WordsCorrect)
	require.NotNil(t, got.DurationSeconds)
	assert.Equal(t, 40, *got.DurationSeconds)
}
