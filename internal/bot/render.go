package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/wordbook/internal/learn"
	"github.com/example/wordbook/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxDefinitionsShown limits the senses listed per part of speech in a lookup
const maxDefinitionsShown = 3

const welcomeText = `Welcome to Wordbook! 📖

Look up English words, save the ones you want to keep and practise them with spaced repetition.

/search <word> - look a word up
/words - your saved words
/flashcards - review cards, due words first
/quiz - pick the right definition
/match - pair words with definitions against the clock
/stats - streak, mastered and due words
/cancel - stop the current session`

const helpText = `*How it works*

Every saved word has its own review schedule. Answers from all three modes update it: words you know come back later, words you miss come back tomorrow.

A word is *mastered* after three correct reviews in a row. Your *streak* counts the days in a row you finished at least one session.

Send any word as a plain message to look it up.`

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func keyboardOf(buttons [][]MenuButton) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	k := createKeyboard(buttons)
	return &k
}

// formatEntry renders a lookup result
func formatEntry(entry models.DictionaryEntry) string {
	var sb strings.Builder
	sb.WriteString("*" + escape(entry.Word) + "*")
	if entry.Phonetic != "" {
		sb.WriteString("  " + escape(entry.Phonetic))
	}
	sb.WriteString("\n")

	for _, meaning := range entry.Meanings {
		sb.WriteString("\n_" + escape(meaning.PartOfSpeech) + "_\n")
		for i, def := range meaning.Definitions {
			if i == maxDefinitionsShown {
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(def.Definition))
			if def.Example != "" {
				fmt.Fprintf(&sb, "   _%s_\n", escape(def.Example))
			}
		}
	}
	return sb.String()
}

// formatWordList renders the saved words, newest first, up to limit
func formatWordList(words []models.SavedWord, limit int) string {
	if len(words) == 0 {
		return "You have no saved words yet. Send me a word to look it up."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 *Your words* (%d)\n\n", len(words))
	for i, w := range words {
		if i == limit {
			fmt.Fprintf(&sb, "\n…and %d more", len(words)-limit)
			break
		}
		fmt.Fprintf(&sb, "*%s* (%s): %s\n", escape(w.Word), escape(w.PartOfSpeech), escape(w.Definition))
	}
	return sb.String()
}

// wordListButtons offers a delete button per listed word
func wordListButtons(words []models.SavedWord, limit int) [][]MenuButton {
	var rows [][]MenuButton
	for i, w := range words {
		if i == limit {
			break
		}
		rows = append(rows, []MenuButton{{Text: "🗑 " + w.Word, CallbackData: callbackData(actionDelete, w.ID)}})
	}
	return rows
}

func formatStats(stats models.LearningStats) string {
	days := "days"
	if stats.Streak == 1 {
		days = "day"
	}
	return fmt.Sprintf("📊 *Your progress*\n\n🔥 Streak: %d %s\n⭐ Mastered: %d\n📅 Due for review: %d",
		stats.Streak, days, stats.Mastered, stats.Due)
}

func flashcardView(f *learn.Flashcards) (string, [][]MenuButton) {
	card, ok := f.Current()
	if !ok {
		return formatSummary(f.Summary()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🃏 Card %d/%d\n\n*%s*", f.Position(), f.Total(), escape(card.Word))
	if card.Phonetic != nil {
		sb.WriteString("  " + escape(*card.Phonetic))
	}

	if !f.Revealed() {
		return sb.String(), [][]MenuButton{
			{{Text: "🔄 Show definition", CallbackData: actionFlip}},
			{{Text: "✖️ Cancel", CallbackData: actionCancel}},
		}
	}

	fmt.Fprintf(&sb, "\n\n_%s_\n%s", escape(card.PartOfSpeech), escape(card.Definition))
	return sb.String(), [][]MenuButton{
		{
			{Text: "❌ Still learning", CallbackData: actionUnknown},
			{Text: "✅ Got it", CallbackData: actionKnown},
		},
		{{Text: "✖️ Cancel", CallbackData: actionCancel}},
	}
}

// quizView renders the current question. With feedback the options are
// marked and no buttons are offered.
func quizView(q *learn.Quiz, feedback *learn.Feedback) (string, [][]MenuButton) {
	question, ok := q.Current()
	if !ok {
		return formatSummary(q.Summary()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "❓ Question %d/%d\n\nWhat does *%s* mean?\n\n", q.Position(), q.Total(), escape(question.Word.Word))
	for i, option := range question.Options {
		mark := fmt.Sprintf("%d.", i+1)
		if feedback != nil {
			switch {
			case i == feedback.CorrectIndex:
				mark = "✅"
			case i == feedback.Selected:
				mark = "❌"
			}
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, escape(option))
	}

	if feedback != nil {
		if feedback.Correct {
			sb.WriteString("\nCorrect!")
		} else {
			sb.WriteString("\nNot quite.")
		}
		return sb.String(), nil
	}

	row := make([]MenuButton, 0, len(question.Options))
	for i := range question.Options {
		row = append(row, MenuButton{Text: fmt.Sprintf("%d", i+1), CallbackData: callbackData(actionAnswer, fmt.Sprintf("%d", i))})
	}
	return sb.String(), [][]MenuButton{row, {{Text: "✖️ Cancel", CallbackData: actionCancel}}}
}

// matchColumns is the number of tiles per keyboard row
const matchColumns = 2

func matchView(m *learn.Match) (string, [][]MenuButton) {
	if m.State() == learn.StateDone {
		return formatSummary(m.Summary()), nil
	}

	tiles := m.Tiles()
	matched := 0
	for _, t := range tiles {
		if m.IsMatched(t.ID) {
			matched++
		}
	}
	text := fmt.Sprintf("🧩 Match each word with its definition\n\nPairs: %d/%d", matched/2, len(tiles)/2)

	var rows [][]MenuButton
	var row []MenuButton
	for _, t := range tiles {
		label := t.Text
		switch {
		case m.IsMatched(t.ID):
			label = "✅"
		case m.SelectedTile() == t.ID:
			label = "👉 " + t.Text
		}
		row = append(row, MenuButton{Text: label, CallbackData: callbackData(actionTile, t.ID)})
		if len(row) == matchColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []MenuButton{{Text: "✖️ Cancel", CallbackData: actionCancel}})
	return text, rows
}

// formatSummary renders a finished session
func formatSummary(s learn.Summary) string {
	var sb strings.Builder
	sb.WriteString("🎉 *Session complete!*\n\n")
	fmt.Fprintf(&sb, "Correct: %d/%d (%d%%)", s.WordsCorrect, s.WordsStudied, s.Percent())
	if s.DurationSeconds != nil {
		fmt.Fprintf(&sb, "\nTime: %s", time.Duration(*s.DurationSeconds)*time.Second)
	}
	return sb.String()
}

func notEnoughWordsText(mode models.SessionType) string {
	need := 1
	switch mode {
	case models.SessionQuiz:
		need = learn.MinQuizWords
	case models.SessionMatch:
		need = learn.MinMatchWords
	}
	word := "words"
	if need == 1 {
		word = "word"
	}
	return fmt.Sprintf("You need at least %d saved %s for %s. Send me a word to look it up and save it.", need, word, mode)
}
