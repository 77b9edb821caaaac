package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"edu-game-server/internal/service"
	"edu-game-server/shared/interfaces"
	sharedMocks "edu-game-server/shared/interfaces/mocks"
	sharedModels "edu-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type progressDeps struct {
	players   *sharedMocks.PlayerRepository
	progress  *sharedMocks.PlayerProgressRepository
	quests    *sharedMocks.QuestCompletionRepository
	projector *sharedMocks.ProgressProjector
	redis     *sharedMocks.LeaderboardReader
	pg        *sharedMocks.LeaderboardReader
}

func newProgressService(t *testing.T) (service.ProgressService, *progressDeps) {
	t.Helper()
	d := &progressDeps{
		players:   new(sharedMocks.PlayerRepository),
		progress:  new(sharedMocks.PlayerProgressRepository),
		quests:    new(sharedMocks.QuestCompletionRepository),
		projector: new(sharedMocks.ProgressProjector),
		redis:     new(sharedMocks.LeaderboardReader),
		pg:        new(sharedMocks.LeaderboardReader),
	}
	svc := service.NewProgressService(
		d.players, d.progress, d.quests,
		[]interfaces.ProgressProjector{d.projector},
		[]interfaces.LeaderboardReader{d.redis, d.pg},
		service.ProgressConfig{TotalQuests: 25, MaxStage: 10, StoreTimeout: time.Second},
		zap.NewNop(),
	)
	return svc, d
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestUpsertProgress(t *testing.T) {
	ctx := context.Background()
	player := &sharedModels.Player{ID: uuid.New(), PlayerID: "p1"}

	t.Run("Merges report and projects leaderboard entry", func(t *testing.T) {
		svc, d := newProgressService(t)
		report := sharedModels.ProgressReport{Coins: int64Ptr(10), CurrentStage: intPtr(99), CompletedQuests: intPtr(10)}

		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.progress.On("Upsert", mock.Anything, mock.Anything, "p1", mock.MatchedBy(func(r sharedModels.ProgressReport) bool {
			// стадия зажимается до MAX_STAGE, отсутствующие поля остаются nil
			return *r.CurrentStage == 10 && *r.Coins == 10 && r.Score == nil
		})).Return(&sharedModels.PlayerProgress{PlayerID: "p1", Coins: 10, CurrentStage: 10, CompletedQuests: 10}, nil).Once()
		d.projector.On("Project", mock.Anything, mock.MatchedBy(func(e sharedModels.LeaderboardEntry) bool {
			return e.PlayerUUID == player.ID && e.ProgressPercentage == 40
		})).Return(nil).Once()

		merged, err := svc.UpsertProgress(ctx, " p1 ", report)

		require.NoError(t, err)
		assert.Equal(t, int64(10), merged.Coins)
		assert.Equal(t, 10, merged.CurrentStage)
		assert.Equal(t, 40, merged.ProgressPercentage)
		d.players.AssertExpectations(t)
		d.progress.AssertExpectations(t)
		d.projector.AssertExpectations(t)
	})

	t.Run("Unknown player is rejected before any write", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "ghost").Return(nil, sharedModels.ErrNotFound).Once()

		merged, err := svc.UpsertProgress(ctx, "ghost", sharedModels.ProgressReport{Coins: int64Ptr(1)})

		assert.Nil(t, merged)
		assert.True(t, errors.Is(err, sharedModels.ErrPlayerNotFound))
		d.progress.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty player id is a validation error", func(t *testing.T) {
		svc, d := newProgressService(t)

		_, err := svc.UpsertProgress(ctx, "   ", sharedModels.ProgressReport{})

		assert.True(t, errors.Is(err, sharedModels.ErrValidation))
		d.players.AssertNotCalled(t, "GetByPlayerID", mock.Anything, mock.Anything)
	})

	t.Run("Storage failure is wrapped", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.progress.On("Upsert", mock.Anything, mock.Anything, "p1", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		_, err := svc.UpsertProgress(ctx, "p1", sharedModels.ProgressReport{Score: int64Ptr(5)})

		assert.True(t, errors.Is(err, sharedModels.ErrStorage))
		d.projector.AssertNotCalled(t, "Project", mock.Anything, mock.Anything)
	})

	t.Run("Projection failure does not fail the write", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.progress.On("Upsert", mock.Anything, mock.Anything, "p1", mock.Anything).
			Return(&sharedModels.PlayerProgress{PlayerID: "p1", Score: 7, CurrentStage: 1}, nil).Once()
		d.projector.On("Project", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
		d.projector.On("Name").Return("redis_leaderboard")

		merged, err := svc.UpsertProgress(ctx, "p1", sharedModels.ProgressReport{Score: int64Ptr(7)})

		require.NoError(t, err)
		assert.Equal(t, int64(7), merged.Score)
		d.projector.AssertExpectations(t)
	})
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	player := &sharedModels.Player{ID: uuid.New(), PlayerID: "p1"}

	t.Run("Known player without record gets zero progress", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.progress.On("GetByPlayerID", mock.Anything, "p1").Return(nil, sharedModels.ErrNotFound).Once()

		merged, err := svc.GetProgress(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, 1, merged.CurrentStage)
		assert.Zero(t, merged.Coins)
		assert.Zero(t, merged.ProgressPercentage)
	})

	t.Run("Percentage is derived from completed quests", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.progress.On("GetByPlayerID", mock.Anything, "p1").
			Return(&sharedModels.PlayerProgress{PlayerID: "p1", CurrentStage: 3, CompletedQuests: 30}, nil).Once()

		merged, err := svc.GetProgress(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, 100, merged.ProgressPercentage)
	})

	t.Run("Unknown player", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "ghost").Return(nil, sharedModels.ErrNotFound).Once()

		_, err := svc.GetProgress(ctx, "ghost")

		assert.True(t, errors.Is(err, sharedModels.ErrNotFound))
	})
}

func TestRegisterPlayer(t *testing.T) {
	svc, d := newProgressService(t)
	player := &sharedModels.Player{ID: uuid.New(), PlayerID: "p1", DisplayName: "Ann"}
	d.players.On("Register", mock.Anything, "p1", "Ann").Return(player, nil).Once()
	d.progress.On("EnsureExists", mock.Anything, "p1").Return(nil).Once()

	got, err := svc.RegisterPlayer(context.Background(), "p1", "Ann")

	require.NoError(t, err)
	assert.Equal(t, player, got)
	d.players.AssertExpectations(t)
	d.progress.AssertExpectations(t)
}

func TestCompleteQuest(t *testing.T) {
	ctx := context.Background()
	player := &sharedModels.Player{ID: uuid.New(), PlayerID: "p1"}

	t.Run("Records clamped attempt", func(t *testing.T) {
		svc, d := newProgressService(t)
		now := time.Now()
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.quests.On("Record", mock.Anything, mock.Anything, "p1", "q1", mock.MatchedBy(func(r sharedModels.QuestReport) bool {
			return *r.ScoreEarned == 0 && *r.CoinsEarned == 5
		})).Return(&sharedModels.QuestCompletion{PlayerID: "p1", QuestID: "q1", IsCompleted: true, CoinsEarned: 5, Attempts: 1, CompletedAt: &now}, nil).Once()

		fact, err := svc.CompleteQuest(ctx, "p1", "q1", sharedModels.QuestReport{ScoreEarned: int64Ptr(-3), CoinsEarned: int64Ptr(5)})

		require.NoError(t, err)
		assert.True(t, fact.IsCompleted)
		assert.Equal(t, 1, fact.Attempts)
		d.quests.AssertExpectations(t)
	})

	t.Run("Missing quest id", func(t *testing.T) {
		svc, _ := newProgressService(t)

		_, err := svc.CompleteQuest(ctx, "p1", "", sharedModels.QuestReport{Completed: boolPtr(true)})

		assert.True(t, errors.Is(err, sharedModels.ErrValidation))
	})
}

func TestListQuestCompletions(t *testing.T) {
	ctx := context.Background()
	player := &sharedModels.Player{ID: uuid.New(), PlayerID: "p1"}

	t.Run("Returns stored facts", func(t *testing.T) {
		svc, d := newProgressService(t)
		facts := []sharedModels.QuestCompletion{
			{PlayerID: "p1", QuestID: "q1", IsCompleted: true, Attempts: 2},
			{PlayerID: "p1", QuestID: "q2", Attempts: 1},
		}
		d.players.On("GetByPlayerID", mock.Anything, "p1").Return(player, nil).Once()
		d.quests.On("ListByPlayerID", mock.Anything, "p1").Return(facts, nil).Once()

		got, err := svc.ListQuestCompletions(ctx, " p1 ")
		require.NoError(t, err)
		assert.Equal(t, facts, got)
		d.quests.AssertExpectations(t)
	})

	t.Run("Unknown player", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.players.On("GetByPlayerID", mock.Anything, "ghost").Return(nil, sharedModels.ErrPlayerNotFound).Once()

		_, err := svc.ListQuestCompletions(ctx, "ghost")
		assert.True(t, errors.Is(err, sharedModels.ErrNotFound))
		d.quests.AssertNotCalled(t, "ListByPlayerID", mock.Anything, mock.Anything)
	})
}

func TestGetLeaderboard(t *testing.T) {
	ctx := context.Background()
	entries := []sharedModels.LeaderboardEntry{{PlayerID: "p1", Score: 50}, {PlayerID: "p2", Score: 10}}

	t.Run("Cache hit", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.redis.On("Top", mock.Anything, 2).Return(entries, nil).Once()

		got, err := svc.GetLeaderboard(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
		d.pg.AssertNotCalled(t, "Top", mock.Anything, mock.Anything)
	})

	t.Run("Falls back when cache fails", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.redis.On("Top", mock.Anything, 2).Return(nil, errors.New("dial tcp: refused")).Once()
		d.pg.On("Top", mock.Anything, 2).Return(entries, nil).Once()

		got, err := svc.GetLeaderboard(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("Falls back when cache is empty", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.redis.On("Top", mock.Anything, 2).Return([]sharedModels.LeaderboardEntry{}, nil).Once()
		d.pg.On("Top", mock.Anything, 2).Return(entries, nil).Once()

		got, err := svc.GetLeaderboard(ctx, 2)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("All readers fail", func(t *testing.T) {
		svc, d := newProgressService(t)
		d.redis.On("Top", mock.Anything, 2).Return(nil, errors.New("redis down")).Once()
		d.pg.On("Top", mock.Anything, 2).Return(nil, errors.New("pg down")).Once()

		_, err := svc.GetLeaderboard(ctx, 2)

		assert.True(t, errors.Is(err, sharedModels.ErrStorage))
	})

	t.Run("Non-positive limit", func(t *testing.T) {
		svc, _ := newProgressService(t)

		_, err := svc.GetLeaderboard(ctx, 0)

		assert.True(t, errors.Is(err, sharedModels.ErrValidation))
	})
}
