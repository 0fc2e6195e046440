package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// LeaderboardCache abstracts the snapshot cache in front of the
// leaderboard query. Both operations are best-effort; Get reports a
// miss for any cache failure.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]store.LeaderboardEntry, bool)
	Set(ctx context.Context, entries []store.LeaderboardEntry)
}

// LeaderboardService serves the ranked completion-rate view over all
// users, reading through a TTL-bound cache when one is configured.
type LeaderboardService interface {
	// Leaderboard returns all users ranked by completion rate descending,
	// ties broken by completed task count.
	Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error)
}

// leaderboardServiceImpl implements the LeaderboardService interface
type leaderboardServiceImpl struct {
	userStore store.UserStore
	cache     LeaderboardCache
	logger    *slog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
// cache may be nil; every read then hits the database.
func NewLeaderboardService(userStore store.UserStore, cache LeaderboardCache, logger *slog.Logger) LeaderboardService {
	return &leaderboardServiceImpl{
		userStore: userStore,
		cache:     cache,
		logger:    logger.With(slog.String("component", "leaderboard_service")),
	}
}

// Leaderboard implements LeaderboardService.Leaderboard
// A stale snapshot within the TTL window is acceptable; the cache is
// never consulted for correctness, only to skip the aggregate query.
func (s *leaderboardServiceImpl) Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx); ok {
			log.Debug("leaderboard served from cache", slog.Int("entries", len(entries)))
			return entries, nil
		}
	}

	entries, err := s.userStore.Leaderboard(ctx)
	if err != nil {
		log.Error("failed to load leaderboard", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, entries)
	}

	return entries, nil
}
