package database

import (
	"context"
	"errors"
	"fmt"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.PlayerProgressRepository = (*pgPlayerProgressRepository)(nil)

const (
	getPlayerProgressQuery = `
SELECT player_id, coins, score, current_stage, completed_quests, map_changes, collected_items,
       playtime_seconds, created_at, updated_at
FROM player_progress
WHERE player_id = $1`

	ensurePlayerProgressQuery = `
INSERT INTO player_progress (player_id) VALUES ($1)
ON CONFLICT (player_id) DO NOTHING`
)

type pgPlayerProgressRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgPlayerProgressRepository creates a new repository instance.
func NewPgPlayerProgressRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PlayerProgressRepository {
	return &pgPlayerProgressRepository{
		db:     db,
		logger: logger.Named("PgPlayerProgressRepo"),
	}
}

// Upsert выполняет один атомарный INSERT ... ON CONFLICT, построенный из schema.
// Поля отчета, равные nil, передаются как NULL и сохраняют текущее значение.
func (r *pgPlayerProgressRepository) Upsert(ctx context.Context, schema models.MergeSchema, playerID string, report models.ProgressReport) (*models.PlayerProgress, error) {
	logFields := []zap.Field{zap.String("player_id", playerID), zap.String("schema", schema.Name)}
	query := schema.UpsertSQL()
	args := schema.BindArgs([]any{playerID}, report.Values())

	progress := &models.PlayerProgress{}
	if err := pgxscan.Get(ctx, r.db, progress, query, args...); err != nil {
		r.logger.Error("Failed to upsert player progress", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to upsert player progress: %w", err)
	}
	r.logger.Debug("Player progress upserted", append(logFields, zap.Int("completed_quests", progress.CompletedQuests))...)
	return progress, nil
}

func (r *pgPlayerProgressRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.PlayerProgress, error) {
	progress := &models.PlayerProgress{}
	err := pgxscan.Get(ctx, r.db, progress, getPlayerProgressQuery, playerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get player progress", zap.String("player_id", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to get player progress: %w", err)
	}
	return progress, nil
}

func (r *pgPlayerProgressRepository) EnsureExists(ctx context.Context, playerID string) error {
	if _, err := r.db.Exec(ctx, ensurePlayerProgressQuery, playerID); err != nil {
		r.logger.Error("Failed to ensure player progress row", zap.String("player_id", playerID), zap.Error(err))
		return fmt.Errorf("failed to ensure player progress row: %w", err)
	}
	return nil
}
