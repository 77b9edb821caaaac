package database

import (
	"context"
	"errors"
	"fmt"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.PlayerRepository = (*pgPlayerRepository)(nil)

const (
	getPlayerByPlayerIDQuery = `SELECT id, player_id, display_name, created_at FROM players WHERE player_id = $1`

	// display_name обновляется только непустым значением.
	registerPlayerQuery = `
INSERT INTO players (id, player_id, display_name)
VALUES ($1, $2, $3)
ON CONFLICT (player_id) DO UPDATE SET
    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), players.display_name)
RETURNING id, player_id, display_name, created_at`
)

type pgPlayerRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgPlayerRepository creates a new PostgreSQL-backed PlayerRepository.
func NewPgPlayerRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PlayerRepository {
	return &pgPlayerRepository{
		db:     db,
		logger: logger.Named("PgPlayerRepo"),
	}
}

func (r *pgPlayerRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error) {
	player := &models.Player{}
	err := pgxscan.Get(ctx, r.db, player, getPlayerByPlayerIDQuery, playerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Player not found", zap.String("player_id", playerID))
			return nil, models.ErrPlayerNotFound
		}
		r.logger.Error("Failed to get player", zap.String("player_id", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to get player from postgres: %w", err)
	}
	return player, nil
}

func (r *pgPlayerRepository) Register(ctx context.Context, playerID, displayName string) (*models.Player, error) {
	player := &models.Player{}
	err := pgxscan.Get(ctx, r.db, player, registerPlayerQuery, uuid.New(), playerID, displayName)
	if err != nil {
		r.logger.Error("Failed to register player", zap.String("player_id", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to register player in postgres: %w", err)
	}
	r.logger.Info("Player registered", zap.String("player_id", playerID), zap.Stringer("id", player.ID))
	return player, nil
}
