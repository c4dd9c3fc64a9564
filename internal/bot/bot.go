package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/example/wordbook/internal/learn"
	"github.com/example/wordbook/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// API is the part of *tgbotapi.BotAPI the bot talks to
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// WordStore is the saved word collection
type WordStore interface {
	Create(ctx context.Context, word *models.SavedWord) error
	ExistsByWord(ctx context.Context, userID, word string) (bool, error)
	GetByUserID(ctx context.Context, userID string) ([]models.SavedWord, error)
	Delete(ctx context.Context, userID, id string) error
}

// Learner loads study material and statistics
type Learner interface {
	LoadWords(ctx context.Context, userID string) ([]models.SavedWordWithProgress, error)
	Stats(ctx context.Context, userID string) models.LearningStats
}

// Dictionary looks words up
type Dictionary interface {
	Lookup(ctx context.Context, word string) ([]models.DictionaryEntry, error)
}

// Deps groups the services the bot needs
type Deps struct {
	Words      WordStore
	Learner    Learner
	Dictionary Dictionary
	Grader     *learn.Grader
}

// Bot represents the Telegram bot application
type Bot struct {
	api      API
	config   *BotConfig
	words    WordStore
	learner  Learner
	dict     Dictionary
	grader   *learn.Grader
	logger   *zap.Logger
	sessions map[int64]*chatSession
	lookups  *lookupLimiter
	mu       sync.Mutex
	wg       sync.WaitGroup
	now      func() time.Time
	newRand  func() *rand.Rand
	after    func(d time.Duration, f func())
}

// New creates a bot on top of an authorized API client
func New(api API, config *BotConfig, deps Deps, logger *zap.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	return &Bot{
		api:      api,
		config:   config,
		words:    deps.Words,
		learner:  deps.Learner,
		dict:     deps.Dictionary,
		grader:   deps.Grader,
		logger:   logger,
		sessions: make(map[int64]*chatSession),
		lookups:  newLookupLimiter(config.LookupEvery, config.LookupBurst),
		now:      time.Now,
		newRand:  func() *rand.Rand { return nil },
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Start receives updates until ctx is cancelled or the update channel closes
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

// Stop stops polling and waits for in-flight updates
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("bot stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for handlers: %w", ctx.Err())
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.HandleText(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Error("failed to handle update",
			zap.Int("update_id", update.UpdateID),
			zap.Error(err))
	}
}

// MainMenuButtons returns the buttons shown under the welcome message
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🃏 Flashcards", CallbackData: actionFlashcards},
			{Text: "❓ Quiz", CallbackData: actionQuiz},
			{Text: "🧩 Match", CallbackData: actionMatch},
		},
		{
			{Text: "📚 My words", CallbackData: actionWords},
			{Text: "📊 Stats", CallbackData: actionStats},
		},
		{
			{Text: "ℹ️ Help", CallbackData: actionHelp},
		},
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// sendText sends a Markdown message and returns its id
func (b *Bot) sendText(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	var msg tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		msg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
	} else {
		msg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Request(msg); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
