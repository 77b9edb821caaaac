package interfaces

import (
	"context"

	"edu-game-server/shared/models"
)

// PlayerRepository - реестр известных игроков.
//
//go:generate mockery --name PlayerRepository --output ./mocks --outpkg mocks --case=underscore
type PlayerRepository interface {
	// GetByPlayerID returns models.ErrNotFound if the player is unknown.
	GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error)
	// Register creates the player if absent and returns the stored record.
	Register(ctx context.Context, playerID, displayName string) (*models.Player, error)
}

// PlayerProgressRepository - авторитетная запись прогресса игрока.
//
//go:generate mockery --name PlayerProgressRepository --output ./mocks --outpkg mocks --case=underscore
type PlayerProgressRepository interface {
	// Upsert atomically merges report into the stored record using schema and returns the merged row.
	Upsert(ctx context.Context, schema models.MergeSchema, playerID string, report models.ProgressReport) (*models.PlayerProgress, error)
	// GetByPlayerID returns models.ErrNotFound if no progress row exists.
	GetByPlayerID(ctx context.Context, playerID string) (*models.PlayerProgress, error)
	// EnsureExists inserts a zeroed row if none exists.
	EnsureExists(ctx context.Context, playerID string) error
}

// QuestCompletionRepository - факты прохождения квестов.
//
//go:generate mockery --name QuestCompletionRepository --output ./mocks --outpkg mocks --case=underscore
type QuestCompletionRepository interface {
	// Record atomically accumulates report into the (player, quest) fact.
	Record(ctx context.Context, schema models.MergeSchema, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error)
	ListByPlayerID(ctx context.Context, playerID string) ([]models.QuestCompletion, error)
}
