package database

import (
	"context"
	"fmt"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

var (
	_ interfaces.ProgressProjector = (*PgLeaderboardRepository)(nil)
	_ interfaces.LeaderboardReader = (*PgLeaderboardRepository)(nil)
)

const (
	upsertLeaderboardEntryQuery = `
INSERT INTO leaderboard_entries (player_uuid, player_id, coins, score, current_stage, completed_quests, progress_percentage, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (player_uuid) DO UPDATE SET
    player_id = EXCLUDED.player_id,
    coins = EXCLUDED.coins,
    score = EXCLUDED.score,
    current_stage = EXCLUDED.current_stage,
    completed_quests = EXCLUDED.completed_quests,
    progress_percentage = EXCLUDED.progress_percentage,
    updated_at = EXCLUDED.updated_at
WHERE leaderboard_entries.updated_at <= EXCLUDED.updated_at`

	topLeaderboardQuery = `
SELECT player_uuid, player_id, coins, score, current_stage, completed_quests, progress_percentage, updated_at
FROM leaderboard_entries
ORDER BY score DESC, player_id ASC
LIMIT $1`
)

// PgLeaderboardRepository - денормализованная проекция прогресса в Postgres.
// Не является источником истины: пишется best effort после основного upsert.
type PgLeaderboardRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgLeaderboardRepository creates the Postgres leaderboard projection.
func NewPgLeaderboardRepository(db interfaces.DBTX, logger *zap.Logger) *PgLeaderboardRepository {
	return &PgLeaderboardRepository{
		db:     db,
		logger: logger.Named("PgLeaderboardRepo"),
	}
}

func (r *PgLeaderboardRepository) Name() string { return "postgres_leaderboard" }

// Project upserts the entry. Запись старше сохраненной (по updated_at) отбрасывается.
func (r *PgLeaderboardRepository) Project(ctx context.Context, e models.LeaderboardEntry) error {
	tag, err := r.db.Exec(ctx, upsertLeaderboardEntryQuery,
		e.PlayerUUID, e.PlayerID, e.Coins, e.Score, e.CurrentStage, e.CompletedQuests, e.ProgressPercentage, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Stale leaderboard entry skipped",
			zap.String("player_id", e.PlayerID), zap.Time("updated_at", e.UpdatedAt))
	}
	return nil
}

func (r *PgLeaderboardRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0, limit)
	if err := pgxscan.Select(ctx, r.db, &entries, topLeaderboardQuery, limit); err != nil {
		r.logger.Error("Failed to read leaderboard", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return entries, nil
}
