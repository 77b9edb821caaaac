package database

import (
	"context"
	"fmt"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

var _ interfaces.QuestCompletionRepository = (*pgQuestCompletionRepository)(nil)

const listQuestCompletionsQuery = `
SELECT player_id, quest_id, is_completed, score_earned, coins_earned, attempts, completed_at, updated_at
FROM quest_completions
WHERE player_id = $1
ORDER BY quest_id ASC`

type pgQuestCompletionRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
	now    func() time.Time
}

// NewPgQuestCompletionRepository creates a new PostgreSQL-backed QuestCompletionRepository.
func NewPgQuestCompletionRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.QuestCompletionRepository {
	return &pgQuestCompletionRepository{
		db:     db,
		logger: logger.Named("PgQuestCompletionRepo"),
		now:    time.Now,
	}
}

// Record накапливает попытку в факте (player, quest). Не идемпотентно.
func (r *pgQuestCompletionRepository) Record(ctx context.Context, schema models.MergeSchema, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error) {
	logFields := []zap.Field{zap.String("player_id", playerID), zap.String("quest_id", questID)}
	args := schema.BindArgs([]any{playerID, questID}, report.Values(r.now().UTC()))

	fact := &models.QuestCompletion{}
	if err := pgxscan.Get(ctx, r.db, fact, schema.UpsertSQL(), args...); err != nil {
		r.logger.Error("Failed to record quest completion", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to record quest completion: %w", err)
	}
	r.logger.Debug("Quest completion recorded", append(logFields, zap.Int("attempts", fact.Attempts))...)
	return fact, nil
}

func (r *pgQuestCompletionRepository) ListByPlayerID(ctx context.Context, playerID string) ([]models.QuestCompletion, error) {
	facts := make([]models.QuestCompletion, 0)
	if err := pgxscan.Select(ctx, r.db, &facts, listQuestCompletionsQuery, playerID); err != nil {
		r.logger.Error("Failed to list quest completions", zap.String("player_id", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list quest completions: %w", err)
	}
	return facts, nil
}
