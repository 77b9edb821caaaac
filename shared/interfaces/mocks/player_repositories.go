package mocks

import (
	"context"

	"edu-game-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock PlayerRepository
type PlayerRepository struct {
	mock.Mock
}

func (m *PlayerRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error) {
	args := m.Called(ctx, playerID)
	p, _ := args.Get(0).(*models.Player)
	return p, args.Error(1)
}

func (m *PlayerRepository) Register(ctx context.Context, playerID, displayName string) (*models.Player, error) {
	args := m.Called(ctx, playerID, displayName)
	p, _ := args.Get(0).(*models.Player)
	return p, args.Error(1)
}

// Mock PlayerProgressRepository
type PlayerProgressRepository struct {
	mock.Mock
}

func (m *PlayerProgressRepository) Upsert(ctx context.Context, schema models.MergeSchema, playerID string, report models.ProgressReport) (*models.PlayerProgress, error) {
	args := m.Called(ctx, schema, playerID, report)
	p, _ := args.Get(0).(*models.PlayerProgress)
	return p, args.Error(1)
}

func (m *PlayerProgressRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.PlayerProgress, error) {
	args := m.Called(ctx, playerID)
	p, _ := args.Get(0).(*models.PlayerProgress)
	return p, args.Error(1)
}

func (m *PlayerProgressRepository) EnsureExists(ctx context.Context, playerID string) error {
	args := m.Called(ctx, playerID)
	return args.Error(0)
}

// Mock QuestCompletionRepository
type QuestCompletionRepository struct {
	mock.Mock
}

func (m *QuestCompletionRepository) Record(ctx context.Context, schema models.MergeSchema, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error) {
	args := m.Called(ctx, schema, playerID, questID, report)
	q, _ := args.Get(0).(*models.QuestCompletion)
	return q, args.Error(1)
}

func (m *QuestCompletionRepository) ListByPlayerID(ctx context.Context, playerID string) ([]models.QuestCompletion, error) {
	args := m.Called(ctx, playerID)
	list, _ := args.Get(0).([]models.QuestCompletion)
	return list, args.Error(1)
}

// Mock ProgressProjector
type ProgressProjector struct {
	mock.Mock
}

func (m *ProgressProjector) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *ProgressProjector) Project(ctx context.Context, entry models.LeaderboardEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Mock LeaderboardReader
type LeaderboardReader struct {
	mock.Mock
}

func (m *LeaderboardReader) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]models.LeaderboardEntry)
	return list, args.Error(1)
}
