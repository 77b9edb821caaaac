package database

import (
	"context"
	"fmt"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	_ interfaces.ProgressProjector = (*RedisLeaderboardRepository)(nil)
	_ interfaces.LeaderboardReader = (*RedisLeaderboardRepository)(nil)
)

const (
	leaderboardScoreKey       = "leaderboard:score"
	leaderboardEntryKeyPrefix = "leaderboard:entry:"
)

// projectEntryScript пишет score и hash записи атомарно, если запись не старше сохраненной.
// KEYS: sorted set, hash записи. ARGV[1] - updated_at_ms.
var projectEntryScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[2], 'updated_at_ms')
if stored and tonumber(stored) > tonumber(ARGV[1]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('HSET', KEYS[2],
  'updated_at_ms', ARGV[1],
  'score', ARGV[2],
  'player_id', ARGV[3],
  'player_uuid', ARGV[4],
  'coins', ARGV[5],
  'current_stage', ARGV[6],
  'completed_quests', ARGV[7],
  'progress_percentage', ARGV[8])
return 1
`)

func leaderboardEntryKey(playerID string) string {
	return leaderboardEntryKeyPrefix + playerID
}

// redisLeaderboardEntry - представление записи рейтинга в hash.
type redisLeaderboardEntry struct {
	PlayerUUID         string `redis:"player_uuid"`
	PlayerID           string `redis:"player_id"`
	Coins              int64  `redis:"coins"`
	Score              int64  `redis:"score"`
	CurrentStage       int    `redis:"current_stage"`
	CompletedQuests    int    `redis:"completed_quests"`
	ProgressPercentage int    `redis:"progress_percentage"`
	UpdatedAtMs        int64  `redis:"updated_at_ms"`
}

// RedisLeaderboardRepository - sorted set по score плюс hash с деталями записи.
type RedisLeaderboardRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLeaderboardRepository creates the Redis leaderboard projection.
func NewRedisLeaderboardRepository(client *redis.Client, logger *zap.Logger) *RedisLeaderboardRepository {
	return &RedisLeaderboardRepository{
		client: client,
		logger: logger.Named("RedisLeaderboardRepo"),
	}
}

func (r *RedisLeaderboardRepository) Name() string { return "redis_leaderboard" }

// Project пишет score в sorted set и детали в hash. Запись старше сохраненной пропускается.
func (r *RedisLeaderboardRepository) Project(ctx context.Context, e models.LeaderboardEntry) error {
	keys := []string{leaderboardScoreKey, leaderboardEntryKey(e.PlayerID)}
	applied, err := projectEntryScript.Run(ctx, r.client, keys,
		e.UpdatedAt.UnixMilli(),
		e.Score,
		e.PlayerID,
		e.PlayerUUID.String(),
		e.Coins,
		e.CurrentStage,
		e.CompletedQuests,
		e.ProgressPercentage,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to project leaderboard entry to redis: %w", err)
	}
	if applied == 0 {
		r.logger.Debug("Stale leaderboard entry skipped",
			zap.String("player_id", e.PlayerID), zap.Time("updated_at", e.UpdatedAt))
	}
	return nil
}

// Top returns up to limit entries by score descending.
func (r *RedisLeaderboardRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	members, err := r.client.ZRevRange(ctx, leaderboardScoreKey, 0, int64(limit-1)).Result()
	if err != nil {
		r.logger.Error("Failed to read leaderboard sorted set", zap.Error(err))
		return nil, fmt.Errorf("failed to read leaderboard from redis: %w", err)
	}
	if len(members) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, playerID := range members {
		cmds[i] = pipe.HGetAll(ctx, leaderboardEntryKey(playerID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to read leaderboard entries", zap.Error(err))
		return nil, fmt.Errorf("failed to read leaderboard entries from redis: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(members))
	for i, cmd := range cmds {
		var raw redisLeaderboardEntry
		if err := cmd.Scan(&raw); err != nil || raw.PlayerID == "" {
			// hash мог истечь или не записаться; пропускаем запись
			r.logger.Warn("Leaderboard entry hash missing or unreadable", zap.String("player_id", members[i]), zap.Error(err))
			continue
		}
		entries = append(entries, raw.toModel())
	}
	return entries, nil
}

func (e redisLeaderboardEntry) toModel() models.LeaderboardEntry {
	out := models.LeaderboardEntry{
		PlayerID:           e.PlayerID,
		Coins:              e.Coins,
		Score:              e.Score,
		CurrentStage:       e.CurrentStage,
		CompletedQuests:    e.CompletedQuests,
		ProgressPercentage: e.ProgressPercentage,
		UpdatedAt:          time.UnixMilli(e.UpdatedAtMs).UTC(),
	}
	if id, err := uuid.Parse(e.PlayerUUID); err == nil {
		out.PlayerUUID = id
	}
	return out
}
