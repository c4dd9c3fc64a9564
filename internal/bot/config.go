package bot

import (
	"time"

	"github.com/example/wordbook/internal/learn"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout in seconds
	UpdateTimeout int
	// How long quiz feedback stays on screen before the next question
	AnswerDelay time.Duration
	// Maximum number of saved words listed by /words
	WordsPageSize int
	// Time allowed for in-flight updates on shutdown
	ShutdownTimeout time.Duration
	// One dictionary lookup per chat is allowed every LookupEvery, with bursts of LookupBurst
	LookupEvery time.Duration
	LookupBurst int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:   60,
		AnswerDelay:     learn.AnswerDelay,
		WordsPageSize:   20,
		ShutdownTimeout: 5 * time.Second,
		LookupEvery:     2 * time.Second,
		LookupBurst:     5,
	}
}
