package services

import (
	"context"

	"go.uber.org/zap"

	"blogstore/application/ports"
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// StatsService maintains the per-user post counters derived from post
// lifecycle events. Each adjustment is a read-modify-write of the full
// stats row (last-writer-wins); the guard only serializes adjustments
// within this process.
type StatsService struct {
	statsRepo ports.UserStatsRepository
	guard     ports.AdjustGuard
	logger    *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo ports.UserStatsRepository, guard ports.AdjustGuard, logger *zap.Logger) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		guard:     guard,
		logger:    logger,
	}
}

// Adjust applies a +1/-1 post-lifecycle event to a user's counters. A
// missing stats row counts as zeroed. PUBLISHED and DRAFT adjust their
// own bucket besides the total; any other status adjusts the total only.
func (s *StatsService) Adjust(ctx context.Context, userID, status string, delta int) error {
	if delta != 1 && delta != -1 {
		return pkgerrors.NewValidationError("stats delta must be +1 or -1")
	}

	return s.guard.Do(ctx, userID, func(ctx context.Context) error {
		stats, err := s.statsRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = model.NewUserStats(userID)
		}

		if delta > 0 {
			stats.IncrementPost(status)
		} else {
			stats.DecrementPost(status)
		}

		if err := s.statsRepo.Save(ctx, stats); err != nil {
			return err
		}

		s.logger.Debug("Adjusted user stats",
			zap.String("userID", userID),
			zap.String("status", status),
			zap.Int("delta", delta),
			zap.Int("totalPosts", stats.TotalPosts),
		)
		return nil
	})
}
