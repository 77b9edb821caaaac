package mocks

import (
	"context"

	"edu-game-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock ProgressService
type ProgressService struct {
	mock.Mock
}

func (m *ProgressService) RegisterPlayer(ctx context.Context, playerID, displayName string) (*models.Player, error) {
	args := m.Called(ctx, playerID, displayName)
	p, _ := args.Get(0).(*models.Player)
	return p, args.Error(1)
}

func (m *ProgressService) UpsertProgress(ctx context.Context, playerID string, report models.ProgressReport) (*models.MergedProgress, error) {
	args := m.Called(ctx, playerID, report)
	p, _ := args.Get(0).(*models.MergedProgress)
	return p, args.Error(1)
}

func (m *ProgressService) GetProgress(ctx context.Context, playerID string) (*models.MergedProgress, error) {
	args := m.Called(ctx, playerID)
	p, _ := args.Get(0).(*models.MergedProgress)
	return p, args.Error(1)
}

func (m *ProgressService) CompleteQuest(ctx context.Context, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error) {
	args := m.Called(ctx, playerID, questID, report)
	q, _ := args.Get(0).(*models.QuestCompletion)
	return q, args.Error(1)
}

func (m *ProgressService) ListQuestCompletions(ctx context.Context, playerID string) ([]models.QuestCompletion, error) {
	args := m.Called(ctx, playerID)
	list, _ := args.Get(0).([]models.QuestCompletion)
	return list, args.Error(1)
}

func (m *ProgressService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]models.LeaderboardEntry)
	return list, args.Error(1)
}

// Mock SectionService
type SectionService struct {
	mock.Mock
}

func (m *SectionService) CreateSection(ctx context.Context, teacherID, section string) error {
	args := m.Called(ctx, teacherID, section)
	return args.Error(0)
}

func (m *SectionService) EnrollStudent(ctx context.Context, teacherID, section, playerID string) (int, error) {
	args := m.Called(ctx, teacherID, section, playerID)
	return args.Int(0), args.Error(1)
}

func (m *SectionService) ArchiveSection(ctx context.Context, teacherID, section string) (*models.ArchiveResult, error) {
	args := m.Called(ctx, teacherID, section)
	r, _ := args.Get(0).(*models.ArchiveResult)
	return r, args.Error(1)
}

func (m *SectionService) RestoreSection(ctx context.Context, teacherID, section string) (*models.RestoreResult, error) {
	args := m.Called(ctx, teacherID, section)
	r, _ := args.Get(0).(*models.RestoreResult)
	return r, args.Error(1)
}

func (m *SectionService) ListSections(ctx context.Context, teacherID string, opts models.ListSectionsOptions) ([]models.SectionView, error) {
	args := m.Called(ctx, teacherID, opts)
	list, _ := args.Get(0).([]models.SectionView)
	return list, args.Error(1)
}
