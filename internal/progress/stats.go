package progress

import (
	"context"
	"time"

	"github.com/example/wordbook/internal/spaced_repetition"
	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

// StreakLookback is how many recent sessions are read to compute the streak
const StreakLookback = 60

// Stats returns the user's streak, mastered and due counts.
// A figure whose query fails is reported as 0.
func (s *Service) Stats(ctx context.Context, userID string) models.LearningStats {
	now := s.now()
	var stats models.LearningStats

	mastered, err := s.progress.CountMastered(ctx, userID, spaced_repetition.MasteryThreshold)
	if err != nil {
		s.logger.Warn("failed to count mastered words", zap.String("user_id", userID), zap.Error(err))
	} else {
		stats.Mastered = mastered
	}

	due, err := s.progress.CountDue(ctx, userID, now)
	if err != nil {
		s.logger.Warn("failed to count due words", zap.String("user_id", userID), zap.Error(err))
	} else {
		stats.Due = due
	}

	completed, err := s.sessions.GetRecentCompletedAt(ctx, userID, StreakLookback)
	if err != nil {
		s.logger.Warn("failed to load recent sessions", zap.String("user_id", userID), zap.Error(err))
	} else {
		stats.Streak = CalculateStreak(completed, now, s.location)
	}

	return stats
}

// CalculateStreak counts consecutive calendar days with at least one session,
// ending today, or yesterday when nothing was completed today yet.
// Days are taken in loc.
func CalculateStreak(completed []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}

	days := make(map[string]struct{}, len(completed))
	for _, t := range completed {
		days[dayKey(t, loc)] = struct{}{}
	}

	y, m, d := now.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	if _, ok := days[dayKey(day, loc)]; !ok {
		day = day.AddDate(0, 0, -1)
		if _, ok := days[dayKey(day, loc)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[dayKey(day, loc)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
