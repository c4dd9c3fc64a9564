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
	// MatchPairs is the maximum number of word/definition pairs on the board
	MatchPairs = 6
	// MinMatchWords is the smallest word set a match game can be built from
	MinMatchWords = 4
	// MaxTileText is the longest definition shown on a tile
	MaxTileText = 60
)

// ErrUnknownTile is returned when a tile id is not on the board
var ErrUnknownTile = errors.New("unknown tile")

// TileType tells the two halves of a pair apart
type TileType string

const (
	TileWord       TileType = "word"
	TileDefinition TileType = "definition"
)

// Tile is one card on the match board
type Tile struct {
	ID     string
	PairID string
	Text   string
	Type   TileType
}

// SelectResult describes what a tap did
type SelectResult int

const (
	// Selected means the tile is now the pending selection
	Selected SelectResult = iota
	// Deselected means the pending tile was tapped again
	Deselected
	// Matched means the two tiles formed a pair
	Matched
	// Mismatched means the two tiles were not a pair; both are released
	Mismatched
	// Ignored means the tile was already matched
	Ignored
)

// Match is a timed game pairing words with their definitions
type Match struct {
	userID   string
	tiles    []Tile
	words    map[string]models.SavedWordWithProgress
	pairs    []string
	selected string
	matched  map[string]bool
	attempts map[string]int
	started  time.Time
	finished time.Time
	now      func() time.Time
	state    State
	grader   *Grader
	summary  Summary
}

// NewMatch builds the board. rnd may be nil.
func NewMatch(userID string, words []models.SavedWordWithProgress, grader *Grader, rnd *rand.Rand) (*Match, error) {
	if len(words) < MinMatchWords {
		return nil, ErrNotEnoughWords
	}

	rnd = newRand(rnd)
	picked := shuffled(words, rnd)
	if len(picked) > MatchPairs {
		picked = picked[:MatchPairs]
	}

	m := &Match{
		userID:   userID,
		tiles:    BuildTiles(picked, rnd),
		words:    make(map[string]models.SavedWordWithProgress, len(picked)),
		matched:  make(map[string]bool),
		attempts: make(map[string]int),
		now:      time.Now,
		grader:   grader,
	}
	for _, w := range picked {
		m.words[w.ID] = w
		m.pairs = append(m.pairs, w.ID)
	}
	m.started = m.now()
	return m, nil
}

// BuildTiles creates a word tile and a definition tile for every word and
// shuffles them
func BuildTiles(words []models.SavedWordWithProgress, rnd *rand.Rand) []Tile {
	tiles := make([]Tile, 0, len(words)*2)
	for _, w := range words {
		tiles = append(tiles,
			Tile{ID: "w-" + w.ID, PairID: w.ID, Text: w.Word, Type: TileWord},
			Tile{ID: "d-" + w.ID, PairID: w.ID, Text: truncate(w.Definition), Type: TileDefinition},
		)
	}
	rnd.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return tiles
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTileText {
		return s
	}
	return string(r[:MaxTileText-3]) + "..."
}

// Tiles returns the board in display order
func (m *Match) Tiles() []Tile {
	return m.tiles
}

// IsMatched reports whether the tile has been paired
func (m *Match) IsMatched(tileID string) bool {
	return m.matched[tileID]
}

// SelectedTile returns the pending selection, or "" when nothing is selected
func (m *Match) SelectedTile() string {
	return m.selected
}

// Select handles a tap on a tile
func (m *Match) Select(ctx context.Context, tileID string) (SelectResult, error) {
	if m.state == StateDone {
		return Ignored, ErrSessionDone
	}

	tile, ok := m.tile(tileID)
	if !ok {
		return Ignored, ErrUnknownTile
	}
	if m.matched[tileID] {
		return Ignored, nil
	}

	if m.selected == "" {
		m.selected = tileID
		return Selected, nil
	}
	if m.selected == tileID {
		m.selected = ""
		return Deselected, nil
	}

	first, _ := m.tile(m.selected)
	m.selected = ""

	if first.PairID == tile.PairID && first.Type != tile.Type {
		m.matched[first.ID] = true
		m.matched[tile.ID] = true
		m.attempts[tile.PairID]++
		if len(m.matched) == len(m.tiles) {
			m.finish(ctx)
		}
		return Matched, nil
	}

	m.attempts[first.PairID]++
	return Mismatched, nil
}

func (m *Match) tile(id string) (Tile, bool) {
	for _, t := range m.tiles {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// finish grades every pair: 5 for a first-try match, 3 otherwise
func (m *Match) finish(ctx context.Context) {
	m.finished = m.now()
	m.state = StateDone

	correct := 0
	for _, pairID := range m.pairs {
		tries := m.attempts[pairID]
		quality := spaced_repetition.QualityCorrectDifficult
		if tries <= 1 {
			quality = spaced_repetition.QualityPerfect
			correct++
		}
		m.grader.Review(ctx, m.userID, m.words[pairID], quality)
	}

	duration := int(m.finished.Sub(m.started) / time.Second)
	m.summary = Summary{
		SessionType:     models.SessionMatch,
		WordsStudied:    len(m.pairs),
		WordsCorrect:    correct,
		DurationSeconds: &duration,
	}
	m.grader.Finish(ctx, m.userID, m.summary)
}

// Attempts returns how many tries a pair has taken so far
func (m *Match) Attempts(pairID string) int {
	return m.attempts[pairID]
}

// Elapsed returns the running time, frozen once the game is done
func (m *Match) Elapsed() time.Duration {
	if m.state == StateDone {
		return m.finished.Sub(m.started)
	}
	return m.now().Sub(m.started)
}

// State returns the session state
func (m *Match) State() State {
	return m.state
}

// Summary is valid once the session is done
func (m *Match) Summary() Summary {
	return m.summary
}
