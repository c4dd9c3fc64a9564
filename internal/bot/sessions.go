package bot

import (
	"sync"
	"time"

	"github.com/example/wordbook/internal/learn"
	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

// chatSession is the learning mode running in a chat. Only one of the
// controllers is set.
type chatSession struct {
	mu           sync.Mutex
	mode         models.SessionType
	userID       string
	messageID    int
	flashcards   *learn.Flashcards
	quiz         *learn.Quiz
	match        *learn.Match
	lastActivity time.Time
}

// touch marks the session as used; callers hold s.mu
func (s *chatSession) touch(now time.Time) {
	s.lastActivity = now
}

func (s *chatSession) done() bool {
	switch {
	case s.flashcards != nil:
		return s.flashcards.State() == learn.StateDone
	case s.quiz != nil:
		return s.quiz.State() == learn.StateDone
	case s.match != nil:
		return s.match.State() == learn.StateDone
	}
	return true
}

// startSession replaces whatever was running in the chat
func (b *Bot) startSession(chatID int64, s *chatSession) {
	s.lastActivity = b.now()
	b.mu.Lock()
	b.sessions[chatID] = s
	b.mu.Unlock()
}

func (b *Bot) session(chatID int64) (*chatSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	return s, ok
}

// endSession removes s if it is still the chat's current session
func (b *Bot) endSession(chatID int64, s *chatSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessions[chatID] == s {
		delete(b.sessions, chatID)
	}
}

// SweepIdle drops sessions untouched for longer than idle and returns how
// many were dropped. Dropped sessions are never recorded.
func (b *Bot) SweepIdle(idle time.Duration) int {
	cutoff := b.now().Add(-idle)

	// b.mu is never held while taking a session lock
	b.mu.Lock()
	snapshot := make(map[int64]*chatSession, len(b.sessions))
	for chatID, s := range b.sessions {
		snapshot[chatID] = s
	}
	b.mu.Unlock()

	swept := 0
	for chatID, s := range snapshot {
		s.mu.Lock()
		stale := s.lastActivity.Before(cutoff)
		s.mu.Unlock()
		if !stale {
			continue
		}

		b.mu.Lock()
		if b.sessions[chatID] == s {
			delete(b.sessions, chatID)
			swept++
			b.logger.Debug("dropped idle learning session",
				zap.Int64("chat_id", chatID),
				zap.String("mode", string(s.mode)))
		}
		b.mu.Unlock()
	}
	return swept
}

// ActiveSessions returns the number of chats with a running session
func (b *Bot) ActiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
