package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"go.uber.org/zap"
)

// ProgressConfig - игровые константы и таймаут хранилища.
type ProgressConfig struct {
	TotalQuests  int
	MaxStage     int
	StoreTimeout time.Duration
}

//go:generate mockery --name ProgressService --output ./mocks --outpkg mocks

// ProgressService - запись и чтение прогресса игроков.
type ProgressService interface {
	RegisterPlayer(ctx context.Context, playerID, displayName string) (*models.Player, error)
	UpsertProgress(ctx context.Context, playerID string, report models.ProgressReport) (*models.MergedProgress, error)
	GetProgress(ctx context.Context, playerID string) (*models.MergedProgress, error)
	CompleteQuest(ctx context.Context, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error)
	ListQuestCompletions(ctx context.Context, playerID string) ([]models.QuestCompletion, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type progressServiceImpl struct {
	players     interfaces.PlayerRepository
	progress    interfaces.PlayerProgressRepository
	quests      interfaces.QuestCompletionRepository
	projectors  []interfaces.ProgressProjector
	readers     []interfaces.LeaderboardReader
	cfg         ProgressConfig
	snapshot    models.MergeSchema
	questSchema models.MergeSchema
	logger      *zap.Logger
}

// NewProgressService creates a new ProgressService.
// readers опрашиваются по порядку: первый непустой ответ без ошибки возвращается клиенту.
func NewProgressService(
	players interfaces.PlayerRepository,
	progress interfaces.PlayerProgressRepository,
	quests interfaces.QuestCompletionRepository,
	projectors []interfaces.ProgressProjector,
	readers []interfaces.LeaderboardReader,
	cfg ProgressConfig,
	logger *zap.Logger,
) ProgressService {
	return &progressServiceImpl{
		players:     players,
		progress:    progress,
		quests:      quests,
		projectors:  projectors,
		readers:     readers,
		cfg:         cfg,
		snapshot:    models.ProgressSnapshotSchema(cfg.MaxStage),
		questSchema: models.QuestCompletionSchema(),
		logger:      logger.Named("ProgressService"),
	}
}

func (s *progressServiceImpl) logFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	if id, ok := models.GetRequestIDFromContext(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}

// RegisterPlayer регистрирует игрока (идемпотентно) и создает нулевую запись прогресса.
func (s *progressServiceImpl) RegisterPlayer(ctx context.Context, playerID, displayName string) (*models.Player, error) {
	playerID, err := requireID("player_id", playerID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	player, err := s.players.Register(ctx, playerID, displayName)
	if err != nil {
		return nil, storageError("register player", err)
	}
	if err := s.progress.EnsureExists(ctx, playerID); err != nil {
		return nil, storageError("create progress row", err)
	}
	s.logger.Info("Player registered", s.logFields(ctx, zap.String("player_id", playerID))...)
	return player, nil
}

// lookupPlayer проверяет реестр игроков до любой мутации.
func (s *progressServiceImpl) lookupPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	player, err := s.players.GetByPlayerID(ctx, playerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrPlayerNotFound
		}
		return nil, storageError("lookup player", err)
	}
	return player, nil
}

// UpsertProgress сливает частичный снимок прогресса с сохраненной записью.
func (s *progressServiceImpl) UpsertProgress(ctx context.Context, playerID string, report models.ProgressReport) (*models.MergedProgress, error) {
	playerID, err := requireID("player_id", playerID)
	if err != nil {
		progressUpsertsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	logFields := s.logFields(ctx, zap.String("player_id", playerID))

	player, err := s.lookupPlayer(ctx, playerID)
	if err != nil {
		progressUpsertsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Progress upsert rejected", append(logFields, zap.Error(err))...)
		return nil, err
	}

	stored, err := s.progress.Upsert(ctx, s.snapshot, playerID, report.Normalize(s.snapshot))
	if err != nil {
		progressUpsertsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Progress upsert failed", append(logFields, zap.Error(err))...)
		return nil, storageError("upsert progress", err)
	}

	merged := stored.Merge(s.cfg.TotalQuests)
	progressUpsertsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Progress merged", append(logFields,
		zap.Int("completed_quests", merged.CompletedQuests),
		zap.Int("progress_percentage", merged.ProgressPercentage))...)

	s.project(ctx, models.NewLeaderboardEntry(player.ID, merged))
	return merged, nil
}

// project обновляет денормализованные копии. Ошибки только логируются.
func (s *progressServiceImpl) project(ctx context.Context, entry models.LeaderboardEntry) {
	// основная запись уже сделана, поэтому отмена запроса не должна обрывать проекции
	pctx, cancel := withStoreTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
	defer cancel()

	for _, p := range s.projectors {
		if err := p.Project(pctx, entry); err != nil {
			projectionFailuresTotal.WithLabelValues(p.Name()).Inc()
			s.logger.Warn("Progress projection failed",
				s.logFields(ctx, zap.String("projector", p.Name()), zap.String("player_id", entry.PlayerID), zap.Error(err))...)
		}
	}
}

// GetProgress возвращает сохраненный прогресс с производными полями.
// Известный игрок без записи получает нулевой прогресс (стадия 1).
func (s *progressServiceImpl) GetProgress(ctx context.Context, playerID string) (*models.MergedProgress, error) {
	playerID, err := requireID("player_id", playerID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, err := s.lookupPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	stored, err := s.progress.GetByPlayerID(ctx, playerID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, storageError("get progress", err)
		}
		stored = models.NewPlayerProgress(playerID)
	}
	return stored.Merge(s.cfg.TotalQuests), nil
}

// CompleteQuest накапливает попытку прохождения квеста. Повтор того же отчета удваивает
// заработанное и попытки; is_completed и completed_at после первого успеха не меняются.
func (s *progressServiceImpl) CompleteQuest(ctx context.Context, playerID, questID string, report models.QuestReport) (*models.QuestCompletion, error) {
	playerID, err := requireID("player_id", playerID)
	if err != nil {
		return nil, err
	}
	questID, err = requireID("quest_id", questID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	logFields := s.logFields(ctx, zap.String("player_id", playerID), zap.String("quest_id", questID))

	if _, err := s.lookupPlayer(ctx, playerID); err != nil {
		s.logger.Warn("Quest completion rejected", append(logFields, zap.Error(err))...)
		return nil, err
	}

	fact, err := s.quests.Record(ctx, s.questSchema, playerID, questID, report.Normalize(s.questSchema))
	if err != nil {
		s.logger.Error("Quest completion failed", append(logFields, zap.Error(err))...)
		return nil, storageError("record quest completion", err)
	}
	questCompletionsTotal.WithLabelValues(strconv.FormatBool(report.IsCompleted())).Inc()
	s.logger.Info("Quest completion recorded", append(logFields,
		zap.Int("attempts", fact.Attempts), zap.Bool("is_completed", fact.IsCompleted))...)
	return fact, nil
}

func (s *progressServiceImpl) ListQuestCompletions(ctx context.Context, playerID string) ([]models.QuestCompletion, error) {
	playerID, err := requireID("player_id", playerID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, err := s.lookupPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	facts, err := s.quests.ListByPlayerID(ctx, playerID)
	if err != nil {
		return nil, storageError("list quest completions", err)
	}
	return facts, nil
}

// GetLeaderboard читает рейтинг из первого доступного источника.
func (s *progressServiceImpl) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, validationError("limit must be positive")
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var lastErr error
	for i, r := range s.readers {
		entries, err := r.Top(ctx, limit)
		if err != nil {
			lastErr = err
			s.logger.Warn("Leaderboard reader failed, falling back", s.logFields(ctx, zap.Int("reader", i), zap.Error(err))...)
			continue
		}
		// пустой кэш не считаем ответом, если есть следующий источник
		if len(entries) == 0 && i < len(s.readers)-1 {
			continue
		}
		return entries, nil
	}
	if lastErr != nil {
		return nil, storageError("read leaderboard", lastErr)
	}
	return []models.LeaderboardEntry{}, nil
}
