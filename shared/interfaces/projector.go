package interfaces

import (
	"context"

	"edu-game-server/shared/models"
)

// ProgressProjector - получатель денормализованной копии прогресса.
// Ошибки проекторов логируются и не возвращаются клиенту.
//
//go:generate mockery --name ProgressProjector --output ./mocks --outpkg mocks --case=underscore
type ProgressProjector interface {
	Name() string
	Project(ctx context.Context, entry models.LeaderboardEntry) error
}

// LeaderboardReader - быстрый путь чтения рейтинга.
//
//go:generate mockery --name LeaderboardReader --output ./mocks --outpkg mocks --case=underscore
type LeaderboardReader interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}
