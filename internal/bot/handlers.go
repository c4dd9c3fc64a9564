package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/wordbook/internal/dictionary"
	"github.com/example/wordbook/internal/learn"
	"github.com/example/wordbook/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback data. Arguments follow the action after a colon.
const (
	actionFlashcards = "flashcards"
	actionQuiz       = "quiz"
	actionMatch      = "match"
	actionWords      = "words"
	actionStats      = "stats"
	actionHelp       = "help"
	actionCancel     = "cancel"
	actionSave       = "save"
	actionDelete     = "del"
	actionFlip       = "fc_flip"
	actionKnown      = "fc_yes"
	actionUnknown    = "fc_no"
	actionAnswer     = "qz"
	actionTile       = "mt"
)

// maxCallbackData is the Telegram limit on callback data
const maxCallbackData = 64

const sessionEndedText = "This session has ended. Pick a mode to start a new one."

func callbackData(action, arg string) string {
	return action + ":" + arg
}

func parseCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	chatID := message.Chat.ID
	userID := userKey(message.From.ID)

	var err error
	switch message.Command() {
	case "start":
		_, err = b.sendText(chatID, escape(welcomeText), keyboardOf(b.MainMenuButtons()))
	case "help":
		_, err = b.sendText(chatID, helpText, keyboardOf(b.MainMenuButtons()))
	case "search":
		err = b.handleSearch(ctx, chatID, message.CommandArguments())
	case "words":
		err = b.handleWords(ctx, chatID, userID)
	case "stats":
		err = b.handleStats(ctx, chatID, userID)
	case "flashcards":
		err = b.startMode(ctx, chatID, userID, models.SessionFlashcard)
	case "quiz":
		err = b.startMode(ctx, chatID, userID, models.SessionQuiz)
	case "match":
		err = b.startMode(ctx, chatID, userID, models.SessionMatch)
	case "cancel":
		err = b.handleCancel(chatID, 0)
	default:
		msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		err = b.sendMessage(msg)
	}
	return err
}

// HandleText treats a plain message as a word to look up
func (b *Bot) HandleText(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	if strings.TrimSpace(message.Text) == "" {
		return nil
	}
	return b.handleSearch(ctx, message.Chat.ID, message.Text)
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	userID := userKey(callback.From.ID)
	action, arg := parseCallback(callback.Data)

	switch action {
	case actionFlashcards:
		return b.startMode(ctx, chatID, userID, models.SessionFlashcard)
	case actionQuiz:
		return b.startMode(ctx, chatID, userID, models.SessionQuiz)
	case actionMatch:
		return b.startMode(ctx, chatID, userID, models.SessionMatch)
	case actionWords:
		return b.handleWords(ctx, chatID, userID)
	case actionStats:
		return b.handleStats(ctx, chatID, userID)
	case actionHelp:
		_, err := b.sendText(chatID, helpText, keyboardOf(b.MainMenuButtons()))
		return err
	case actionCancel:
		return b.handleCancel(chatID, messageID)
	case actionSave:
		return b.handleSave(ctx, chatID, userID, arg)
	case actionDelete:
		return b.handleDelete(ctx, chatID, messageID, userID, arg)
	case actionFlip, actionKnown, actionUnknown:
		return b.handleFlashcard(ctx, chatID, messageID, action)
	case actionAnswer:
		option, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid quiz option in callback data: %w", err)
		}
		return b.handleAnswer(ctx, chatID, messageID, option)
	case actionTile:
		return b.handleTile(ctx, chatID, messageID, arg)
	default:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ Unknown action"))
	}
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Usage: /search <word>"))
	}
	if !b.lookups.Allow(chatID) {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "⏳ Too many lookups. Please wait a moment."))
	}

	entries, err := b.dict.Lookup(ctx, query)
	switch {
	case errors.Is(err, dictionary.ErrNotFound):
		return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("No definitions found for %q.", query)))
	case err != nil:
		b.logger.Error("dictionary lookup failed", zap.String("word", query), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ The dictionary is not responding. Please try again later."))
	}

	entry := entries[0]
	var buttons [][]MenuButton
	if data := callbackData(actionSave, entry.Word); len(data) <= maxCallbackData {
		buttons = [][]MenuButton{{{Text: "💾 Save", CallbackData: data}}}
	}
	_, err = b.sendText(chatID, formatEntry(entry), keyboardOf(buttons))
	return err
}

// handleSave looks the word up again and saves its first definition
func (b *Bot) handleSave(ctx context.Context, chatID int64, userID, word string) error {
	entries, err := b.dict.Lookup(ctx, word)
	if err != nil {
		b.logger.Error("dictionary lookup failed", zap.String("word", word), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not save the word. Please try again later."))
	}

	saved, err := dictionary.SaveEntry(ctx, b.words, userID, entries[0])
	switch {
	case errors.Is(err, dictionary.ErrAlreadySaved):
		return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("%q is already in your words.", word)))
	case errors.Is(err, dictionary.ErrNoDefinition):
		return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("%q has no definition to save.", word)))
	case err != nil:
		b.logger.Error("failed to save word", zap.String("user_id", userID), zap.String("word", word), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not save the word. Please try again later."))
	}

	b.logger.Info("word saved", zap.String("user_id", userID), zap.String("word", saved.Word))
	return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Saved %q.", saved.Word)))
}

func (b *Bot) handleWords(ctx context.Context, chatID int64, userID string) error {
	words, err := b.words.GetByUserID(ctx, userID)
	if err != nil {
		b.logger.Error("failed to list words", zap.String("user_id", userID), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not load your words. Please try again later."))
	}

	limit := b.config.WordsPageSize
	_, err = b.sendText(chatID, formatWordList(words, limit), keyboardOf(wordListButtons(words, limit)))
	return err
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, messageID int, userID, wordID string) error {
	if err := b.words.Delete(ctx, userID, wordID); err != nil {
		b.logger.Warn("failed to delete word", zap.String("user_id", userID), zap.String("word_id", wordID), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not delete the word."))
	}

	words, err := b.words.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	limit := b.config.WordsPageSize
	return b.editMessage(chatID, messageID, formatWordList(words, limit), keyboardOf(wordListButtons(words, limit)))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, userID string) error {
	stats := b.learner.Stats(ctx, userID)
	_, err := b.sendText(chatID, formatStats(stats), keyboardOf(b.MainMenuButtons()))
	return err
}

func (b *Bot) handleCancel(chatID int64, messageID int) error {
	s, ok := b.session(chatID)
	if !ok {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Nothing to cancel."))
	}
	if messageID != 0 {
		s.mu.Lock()
		owned := s.messageID == messageID
		s.mu.Unlock()
		if !owned {
			return b.sessionEnded(chatID, messageID)
		}
	}
	b.endSession(chatID, s)

	if messageID != 0 {
		return b.editMessage(chatID, messageID, "Session cancelled.", keyboardOf(b.MainMenuButtons()))
	}
	msg := tgbotapi.NewMessage(chatID, "Session cancelled.")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// startMode loads the user's words and opens a learning session in the chat
func (b *Bot) startMode(ctx context.Context, chatID int64, userID string, mode models.SessionType) error {
	words, err := b.learner.LoadWords(ctx, userID)
	if err != nil {
		b.logger.Error("failed to load words", zap.String("user_id", userID), zap.Error(err))
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not load your words. Please try again later."))
	}

	s := &chatSession{mode: mode, userID: userID}
	var (
		text    string
		buttons [][]MenuButton
	)
	switch mode {
	case models.SessionFlashcard:
		s.flashcards, err = learn.NewFlashcards(userID, words, b.grader, b.now())
		if err == nil {
			text, buttons = flashcardView(s.flashcards)
		}
	case models.SessionQuiz:
		s.quiz, err = learn.NewQuiz(userID, words, b.grader, b.newRand())
		if err == nil {
			text, buttons = quizView(s.quiz, nil)
		}
	case models.SessionMatch:
		s.match, err = learn.NewMatch(userID, words, b.grader, b.newRand())
		if err == nil {
			text, buttons = matchView(s.match)
		}
	default:
		return fmt.Errorf("unknown learning mode %q", mode)
	}
	if errors.Is(err, learn.ErrNotEnoughWords) {
		return b.sendMessage(tgbotapi.NewMessage(chatID, notEnoughWordsText(mode)))
	}
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", mode, err)
	}

	s.messageID, err = b.sendText(chatID, text, keyboardOf(buttons))
	if err != nil {
		return err
	}
	b.startSession(chatID, s)
	b.logger.Debug("learning session started",
		zap.String("user_id", userID),
		zap.String("mode", string(mode)),
		zap.Int("words", len(words)))
	return nil
}

// activeSession returns the locked session that owns messageID. ok is false
// when the keyboard belongs to a session that is gone; the caller must
// unlock s.mu otherwise.
func (b *Bot) activeSession(chatID int64, messageID int) (*chatSession, bool) {
	s, ok := b.session(chatID)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	if s.messageID != messageID {
		s.mu.Unlock()
		return nil, false
	}
	s.touch(b.now())
	return s, true
}

func (b *Bot) sessionEnded(chatID int64, messageID int) error {
	return b.editMessage(chatID, messageID, sessionEndedText, keyboardOf(b.MainMenuButtons()))
}

// finishView shows the summary and closes the session when it is done
func (b *Bot) finishView(chatID int64, s *chatSession, text string, buttons [][]MenuButton) error {
	if s.done() {
		b.endSession(chatID, s)
		buttons = b.MainMenuButtons()
	}
	return b.editMessage(chatID, s.messageID, text, keyboardOf(buttons))
}

func (b *Bot) handleFlashcard(ctx context.Context, chatID int64, messageID int, action string) error {
	s, ok := b.activeSession(chatID, messageID)
	if !ok {
		return b.sessionEnded(chatID, messageID)
	}
	defer s.mu.Unlock()
	if s.flashcards == nil {
		return nil
	}

	switch action {
	case actionFlip:
		s.flashcards.Flip()
	case actionKnown, actionUnknown:
		if err := s.flashcards.Grade(ctx, action == actionKnown); err != nil {
			return nil
		}
	}

	text, buttons := flashcardView(s.flashcards)
	return b.finishView(chatID, s, text, buttons)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, messageID int, option int) error {
	s, ok := b.activeSession(chatID, messageID)
	if !ok {
		return b.sessionEnded(chatID, messageID)
	}
	defer s.mu.Unlock()
	if s.quiz == nil {
		return nil
	}

	feedback, err := s.quiz.Answer(ctx, option)
	switch {
	case errors.Is(err, learn.ErrAlreadyAnswered), errors.Is(err, learn.ErrSessionDone):
		return nil
	case err != nil:
		return fmt.Errorf("failed to answer question: %w", err)
	}

	text, _ := quizView(s.quiz, &feedback)
	if err := b.editMessage(chatID, messageID, text, nil); err != nil {
		return err
	}

	b.after(b.config.AnswerDelay, func() {
		if err := b.advanceQuiz(ctx, chatID, s); err != nil {
			b.logger.Error("failed to show next question", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	})
	return nil
}

// advanceQuiz moves to the next question once the feedback has been shown
func (b *Bot) advanceQuiz(ctx context.Context, chatID int64, s *chatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := b.session(chatID); !ok || current != s {
		return nil
	}
	if err := s.quiz.Next(ctx); err != nil {
		return nil
	}

	text, buttons := quizView(s.quiz, nil)
	return b.finishView(chatID, s, text, buttons)
}

func (b *Bot) handleTile(ctx context.Context, chatID int64, messageID int, tileID string) error {
	s, ok := b.activeSession(chatID, messageID)
	if !ok {
		return b.sessionEnded(chatID, messageID)
	}
	defer s.mu.Unlock()
	if s.match == nil {
		return nil
	}

	res, err := s.match.Select(ctx, tileID)
	if err != nil || res == learn.Ignored {
		return nil
	}

	text, buttons := matchView(s.match)
	return b.finishView(chatID, s, text, buttons)
}
