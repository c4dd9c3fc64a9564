package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/example/wordbook/internal/bot"
	"github.com/example/wordbook/internal/config"
	"github.com/example/wordbook/internal/database"
	"github.com/example/wordbook/internal/dictionary"
	"github.com/example/wordbook/internal/excel"
	"github.com/example/wordbook/internal/learn"
	"github.com/example/wordbook/internal/logger"
	"github.com/example/wordbook/internal/progress"
	"github.com/example/wordbook/internal/scheduler"
	"github.com/example/wordbook/internal/spaced_repetition"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every command needs
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sqlx.DB
	words    *database.SavedWordRepository
	progress *database.WordProgressRepository
	sessions *database.LearningSessionRepository
	service  *progress.Service
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(database.Config{
		Type: cfg.Database.Type,
		Path: cfg.Database.Path,
		URL:  cfg.Database.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		words:    database.NewSavedWordRepository(db),
		progress: database.NewWordProgressRepository(db),
		sessions: database.NewLearningSessionRepository(db),
	}
	a.service = progress.NewService(a.progress, a.sessions, cfg.Location, log)
	return a, nil
}

func (a *app) close() {
	a.db.Close()
	a.logger.Sync()
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "wordbook",
		Short:        "Vocabulary builder with spaced repetition",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(wordsCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Telegram.Token == "" {
				return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
			}
			api, err := tgbotapi.NewBotAPI(a.cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("unable to create bot: %w", err)
			}
			a.logger.Info("authorized on account", zap.String("username", api.Self.UserName))

			grader := learn.NewGrader(spaced_repetition.NewSM2(), a.service, a.service, a.logger)
			b := bot.New(api, bot.DefaultConfig(), bot.Deps{
				Words:      a.words,
				Learner:    a.service,
				Dictionary: dictionary.NewClient(a.cfg.Dictionary.APIURL, a.cfg.Dictionary.Timeout, a.logger),
				Grader:     grader,
			}, a.logger)

			sweeper := scheduler.New(b, scheduler.DefaultSweepInterval, a.cfg.SessionIdleTimeout, a.logger)
			if err := sweeper.Start(); err != nil {
				return err
			}
			defer sweeper.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			done := make(chan error, 1)
			go func() {
				done <- b.Start(ctx)
			}()

			select {
			case err := <-done:
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
			case <-ctx.Done():
				a.logger.Info("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), bot.DefaultConfig().ShutdownTimeout)
			defer cancel()
			return b.Stop(shutdownCtx)
		},
	}
}

func lookupCmd() *cobra.Command {
	var (
		save   bool
		userID string
	)

	cmd := &cobra.Command{
		Use:   "lookup [word]",
		Short: "Look a word up in the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save && userID == "" {
				return errors.New("--user is required with --save")
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			client := dictionary.NewClient(a.cfg.Dictionary.APIURL, a.cfg.Dictionary.Timeout, a.logger)
			entries, err := client.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, entry := range entries {
				fmt.Printf("%s %s\n", entry.Word, entry.Phonetic)
				for _, meaning := range entry.Meanings {
					fmt.Printf("  %s\n", meaning.PartOfSpeech)
					for i, def := range meaning.Definitions {
						fmt.Printf("    %d. %s\n", i+1, def.Definition)
					}
				}
			}

			if !save {
				return nil
			}
			word, err := dictionary.SaveEntry(cmd.Context(), a.words, userID, entries[0])
			if err != nil {
				return err
			}
			fmt.Printf("Saved %q (%s): %s\n", word.Word, word.PartOfSpeech, word.Definition)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the first definition")
	cmd.Flags().StringVar(&userID, "user", "", "user id to save the word for")
	return cmd
}

func importCmd() *cobra.Command {
	var (
		userID string
		sheet  string
	)
	defaults := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import words from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			importConfig := defaults
			importConfig.FilePath = args[0]
			importConfig.UserID = userID
			importConfig.SheetName = sheet

			result, err := excel.NewImporter(a.words, a.logger).Import(cmd.Context(), importConfig)
			if err != nil {
				return err
			}

			fmt.Printf("Processed: %d, created: %d, skipped: %d\n", result.TotalProcessed, result.Created, result.Skipped)
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner of the imported words")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to import (default first sheet)")
	cmd.Flags().StringVar(&defaults.WordColumn, "word-col", defaults.WordColumn, "column with the word")
	cmd.Flags().StringVar(&defaults.DefinitionColumn, "definition-col", defaults.DefinitionColumn, "column with the definition")
	cmd.Flags().StringVar(&defaults.PartOfSpeechColumn, "pos-col", defaults.PartOfSpeechColumn, "column with the part of speech")
	cmd.Flags().StringVar(&defaults.PhoneticColumn, "phonetic-col", defaults.PhoneticColumn, "column with the phonetic spelling")
	cmd.Flags().IntVar(&defaults.StartRow, "start-row", defaults.StartRow, "first data row (1-based)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func statsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streak, mastered and due words",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			stats := a.service.Stats(cmd.Context(), userID)
			fmt.Printf("Streak:   %d\n", stats.Streak)
			fmt.Printf("Mastered: %d\n", stats.Mastered)
			fmt.Printf("Due:      %d\n", stats.Due)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.MarkFlagRequired("user")
	return cmd
}

func wordsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "words",
		Short: "List saved words with their review schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			words, err := a.progress.FetchWordsWithProgress(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				fmt.Println("No saved words")
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WORD\tEF\tINTERVAL\tREPS\tNEXT REVIEW\tSTATE")
			for _, word := range words {
				p := word.Progress
				if p == nil {
					fmt.Fprintf(w, "%s\t-\t-\t-\t-\tnew\n", word.Word)
					continue
				}
				var state []string
				if spaced_repetition.IsDue(p, now) {
					state = append(state, "due")
				}
				if spaced_repetition.IsWordMastered(p) {
					state = append(state, "mastered")
				}
				fmt.Fprintf(w, "%s\t%.2f\t%dd\t%d\t%s\t%s\n",
					word.Word, p.EasinessFactor, p.Interval, p.Repetitions,
					p.NextReviewAt.In(a.cfg.Location).Format("2006-01-02 15:04"), strings.Join(state, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.MarkFlagRequired("user")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent learning sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.sessions.GetByUserID(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COMPLETED\tMODE\tCORRECT\tDURATION")
			for _, s := range sessions {
				duration := "-"
				if s.DurationSeconds != nil {
					duration = (time.Duration(*s.DurationSeconds) * time.Second).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n",
					s.CompletedAt.In(a.cfg.Location).Format("2006-01-02 15:04"),
					s.SessionType, s.WordsCorrect, s.WordsStudied, duration)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")
	cmd.MarkFlagRequired("user")
	return cmd
}
