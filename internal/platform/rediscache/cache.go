package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const leaderboardKey = "leaderboard:snapshot"

// LeaderboardCache holds a TTL-bound snapshot of the leaderboard in
// Redis. All operations are best-effort: a cache failure degrades to a
// database read, never to a request failure.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (*LeaderboardCache, error) {
	if log == nil {
		log = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &LeaderboardCache{
		client: client,
		ttl:    time.Duration(cfg.LeaderboardTTLSeconds) * time.Second,
		logger: log.With(slog.String("component", "leaderboard_cache")),
	}, nil
}

// Get returns the cached snapshot, or ok=false on a miss or any cache
// error.
func (c *LeaderboardCache) Get(ctx context.Context) ([]store.LeaderboardEntry, bool) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("leaderboard cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var entries []store.LeaderboardEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Warn("leaderboard cache payload corrupt, dropping it",
			slog.String("error", err.Error()))
		_ = c.client.Del(ctx, leaderboardKey).Err()
		return nil, false
	}

	return entries, true
}

// Set stores the snapshot under the configured TTL.
func (c *LeaderboardCache) Set(ctx context.Context, entries []store.LeaderboardEntry) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := json.Marshal(entries)
	if err != nil {
		log.Warn("failed to marshal leaderboard snapshot", slog.String("error", err.Error()))
		return
	}

	if err := c.client.Set(ctx, leaderboardKey, payload, c.ttl).Err(); err != nil {
		log.Warn("leaderboard cache write failed", slog.String("error", err.Error()))
	}
}

// Close releases the underlying client.
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}
