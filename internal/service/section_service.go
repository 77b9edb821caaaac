package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/messaging"
	"edu-game-server/shared/models"

	"go.uber.org/zap"
)

//go:generate mockery --name SectionService --output ./mocks --outpkg mocks

// SectionService - жизненный цикл секций учителя и согласование флага архивации в трех сторах.
type SectionService interface {
	CreateSection(ctx context.Context, teacherID, section string) error
	EnrollStudent(ctx context.Context, teacherID, section, playerID string) (int, error)
	ArchiveSection(ctx context.Context, teacherID, section string) (*models.ArchiveResult, error)
	RestoreSection(ctx context.Context, teacherID, section string) (*models.RestoreResult, error)
	ListSections(ctx context.Context, teacherID string, opts models.ListSectionsOptions) ([]models.SectionView, error)
}

// SectionStores - физические представления секции и их окружение.
type SectionStores struct {
	Guard       interfaces.SchemaGuard
	Roster      interfaces.RosterRepository
	Assignments interfaces.TeacherSectionRepository
	ArchiveLog  interfaces.ArchiveLogRepository
	Enrollment  interfaces.EnrollmentRepository
	Players     interfaces.PlayerRepository
}

type sectionServiceImpl struct {
	stores       SectionStores
	events       interfaces.SectionEventPublisher // может быть nil
	storeTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewSectionService creates a new SectionService. events may be nil.
func NewSectionService(stores SectionStores, events interfaces.SectionEventPublisher, storeTimeout time.Duration, logger *zap.Logger) SectionService {
	return &sectionServiceImpl{
		stores:       stores,
		events:       events,
		storeTimeout: storeTimeout,
		now:          time.Now,
		logger:       logger.Named("SectionService"),
	}
}

func requireSection(teacherID, section string) (string, string, error) {
	teacherID, err := requireID("teacher_id", teacherID)
	if err != nil {
		return "", "", err
	}
	section = models.SectionKey(section)
	if section == "" {
		return "", "", validationError("section is required")
	}
	return teacherID, section, nil
}

// CreateSection создает назначение учитель/секция. Флаг архивации не трогает.
func (s *sectionServiceImpl) CreateSection(ctx context.Context, teacherID, section string) error {
	teacherID, section, err := requireSection(teacherID, section)
	if err != nil {
		return err
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.stores.Assignments.Upsert(ctx, teacherID, section); err != nil {
		return storageError("create section", err)
	}
	s.logger.Info("Section created", zap.String("teacher_id", teacherID), zap.String("section", section))
	return nil
}

// EnrollStudent добавляет ученика в секцию и возвращает пересчитанное число учеников.
func (s *sectionServiceImpl) EnrollStudent(ctx context.Context, teacherID, section, playerID string) (int, error) {
	teacherID, section, err := requireSection(teacherID, section)
	if err != nil {
		return 0, err
	}
	playerID, err = requireID("player_id", playerID)
	if err != nil {
		return 0, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.stores.Players.GetByPlayerID(ctx, playerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, models.ErrPlayerNotFound
		}
		return 0, storageError("lookup player", err)
	}

	count, err := s.stores.Enrollment.EnrollStudent(ctx, models.RosterEnrollment{
		PlayerID:  playerID,
		TeacherID: teacherID,
		Section:   section,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, err
		}
		return 0, storageError("enroll student", err)
	}
	s.logger.Info("Student enrolled", zap.String("teacher_id", teacherID), zap.String("section", section),
		zap.String("player_id", playerID), zap.Int("student_count", count))
	return count, nil
}

// checkOwnership: сначала строка назначения, затем строки ростера. Выполняется до любой мутации.
func (s *sectionServiceImpl) checkOwnership(ctx context.Context, teacherID, section string) error {
	owns, err := s.stores.Assignments.Exists(ctx, teacherID, section)
	if err != nil {
		// таблицы назначений может не быть вовсе; тогда решает ростер
		if !errors.Is(err, models.ErrSchemaDrift) {
			return storageError("check section ownership", err)
		}
		s.logger.Warn("Assignment store unavailable for ownership check, falling back to roster",
			zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
	}
	if owns {
		return nil
	}

	count, err := s.stores.Roster.CountInSection(ctx, teacherID, section)
	if err != nil {
		return storageError("check section ownership", err)
	}
	if count > 0 {
		return nil
	}
	return fmt.Errorf("%w: teacher %s has no section %q", models.ErrPermissionDenied, teacherID, section)
}

// writeTarget пишет в один стор; при drift создает недостающую структуру и повторяет запись один раз.
func (s *sectionServiceImpl) writeTarget(
	ctx context.Context,
	store, operation string,
	heal func(context.Context) error,
	write func(context.Context) (int64, error),
) models.StoreOutcome {
	outcome := models.StoreOutcome{Store: store}
	rows, err := write(ctx)
	if err != nil && errors.Is(err, models.ErrSchemaDrift) {
		s.logger.Warn("Schema drift detected, healing store", zap.String("store", store), zap.Error(err))
		if healErr := heal(ctx); healErr != nil {
			err = fmt.Errorf("heal %s: %w", store, healErr)
		} else {
			outcome.Healed = true
			schemaHealsTotal.WithLabelValues(store).Inc()
			rows, err = write(ctx)
		}
	}
	outcome.Rows = rows
	outcome.Err = err

	result := "ok"
	switch {
	case err != nil:
		result = "failed"
	case outcome.Healed:
		result = "healed"
	}
	sectionStoreWritesTotal.WithLabelValues(store, operation, result).Inc()
	return outcome
}

func (s *sectionServiceImpl) healColumn(spec interfaces.ColumnSpec) func(context.Context) error {
	return func(ctx context.Context) error { return s.stores.Guard.EnsureColumn(ctx, spec) }
}

func (s *sectionServiceImpl) healTable(spec interfaces.TableSpec) func(context.Context) error {
	return func(ctx context.Context) error { return s.stores.Guard.EnsureTable(ctx, spec) }
}

// ArchiveSection помечает секцию архивной во всех трех сторах. Записи независимы:
// частичный успех возвращается с предупреждением, полный провал - ErrStorage.
func (s *sectionServiceImpl) ArchiveSection(ctx context.Context, teacherID, section string) (*models.ArchiveResult, error) {
	teacherID, section, err := requireSection(teacherID, section)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	logFields := []zap.Field{zap.String("teacher_id", teacherID), zap.String("section", section)}

	if err := s.checkOwnership(ctx, teacherID, section); err != nil {
		s.logger.Warn("Archive rejected", append(logFields, zap.Error(err))...)
		return nil, err
	}

	result := &models.ArchiveResult{TeacherID: teacherID, Section: section}
	archivedAt := s.now().UTC()

	roster := s.writeTarget(ctx, models.StoreRoster, "archive",
		s.healColumn(s.stores.Roster.ArchivedColumn()),
		func(ctx context.Context) (int64, error) {
			return s.stores.Roster.SetArchived(ctx, teacherID, section, true)
		})
	result.Writes.Add(roster)

	result.Writes.Add(s.writeTarget(ctx, models.StoreAssignment, "archive",
		s.healColumn(s.stores.Assignments.ArchivedColumn()),
		func(ctx context.Context) (int64, error) {
			return s.stores.Assignments.SetArchived(ctx, teacherID, section, true)
		}))

	result.Writes.Add(s.writeTarget(ctx, models.StoreArchiveLog, "archive",
		s.healTable(s.stores.ArchiveLog.Table()),
		func(ctx context.Context) (int64, error) {
			if err := s.stores.ArchiveLog.Upsert(ctx, teacherID, section, archivedAt); err != nil {
				return 0, err
			}
			return 1, nil
		}))

	if !result.Writes.AnySucceeded() {
		err := s.allStoresFailed(result.Writes)
		s.logger.Error("Archive failed in every store", append(logFields, zap.Error(err))...)
		return nil, err
	}

	if roster.OK() {
		result.StudentsArchived = roster.Rows
	}
	result.SectionArchived = result.Writes.Succeeded(models.StoreAssignment) || result.Writes.Succeeded(models.StoreArchiveLog)

	if warn := result.Writes.Warning(); warn != nil {
		s.logger.Warn("Section archived with partial reconciliation", append(logFields, zap.Error(warn))...)
	} else {
		s.logger.Info("Section archived", append(logFields, zap.Int64("students_archived", result.StudentsArchived))...)
	}
	s.publish(ctx, teacherID, section, messaging.SectionActionArchived, result.StudentsArchived, result.Writes)
	return result, nil
}

// RestoreSection снимает флаг в ростере и назначении и удаляет строку журнала архивации.
func (s *sectionServiceImpl) RestoreSection(ctx context.Context, teacherID, section string) (*models.RestoreResult, error) {
	teacherID, section, err := requireSection(teacherID, section)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	logFields := []zap.Field{zap.String("teacher_id", teacherID), zap.String("section", section)}

	if err := s.checkOwnership(ctx, teacherID, section); err != nil {
		s.logger.Warn("Restore rejected", append(logFields, zap.Error(err))...)
		return nil, err
	}

	result := &models.RestoreResult{TeacherID: teacherID, Section: section}

	roster := s.writeTarget(ctx, models.StoreRoster, "restore",
		s.healColumn(s.stores.Roster.ArchivedColumn()),
		func(ctx context.Context) (int64, error) {
			return s.stores.Roster.SetArchived(ctx, teacherID, section, false)
		})
	result.Writes.Add(roster)

	result.Writes.Add(s.writeTarget(ctx, models.StoreAssignment, "restore",
		s.healColumn(s.stores.Assignments.ArchivedColumn()),
		func(ctx context.Context) (int64, error) {
			return s.stores.Assignments.SetArchived(ctx, teacherID, section, false)
		}))

	result.Writes.Add(s.writeTarget(ctx, models.StoreArchiveLog, "restore",
		s.healTable(s.stores.ArchiveLog.Table()),
		func(ctx context.Context) (int64, error) {
			return s.stores.ArchiveLog.Delete(ctx, teacherID, section)
		}))

	if !result.Writes.AnySucceeded() {
		err := s.allStoresFailed(result.Writes)
		s.logger.Error("Restore failed in every store", append(logFields, zap.Error(err))...)
		return nil, err
	}
	if roster.OK() {
		result.StudentsRestored = roster.Rows
	}

	if warn := result.Writes.Warning(); warn != nil {
		s.logger.Warn("Section restored with partial reconciliation", append(logFields, zap.Error(warn))...)
	} else {
		s.logger.Info("Section restored", append(logFields, zap.Int64("students_restored", result.StudentsRestored))...)
	}
	s.publish(ctx, teacherID, section, messaging.SectionActionRestored, result.StudentsRestored, result.Writes)
	return result, nil
}

func (s *sectionServiceImpl) allStoresFailed(writes models.MultiStoreWriteResult) error {
	failed := writes.Failed()
	causes := make([]error, 0, len(failed))
	msgs := make([]string, 0, len(failed))
	for _, o := range failed {
		causes = append(causes, o.Err)
		msgs = append(msgs, o.Store)
	}
	return fmt.Errorf("%w: no store updated (%s): %w", models.ErrStorage, strings.Join(msgs, ", "), errors.Join(causes...))
}

// publish отправляет событие best effort.
func (s *sectionServiceImpl) publish(ctx context.Context, teacherID, section string, action messaging.SectionAction, rows int64, writes models.MultiStoreWriteResult) {
	if s.events == nil {
		return
	}
	payload := messaging.SectionEventPayload{
		TeacherID:    teacherID,
		Section:      section,
		Action:       action,
		StudentsRows: rows,
		OccurredAt:   s.now().UTC(),
	}
	var partial *models.PartialReconciliationError
	if errors.As(writes.Warning(), &partial) {
		payload.Warnings = partial.Messages()
	}
	if err := s.events.PublishSectionEvent(context.WithoutCancel(ctx), payload); err != nil {
		s.logger.Warn("Failed to publish section event", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
	}
}

// ListSections читает три стора без мутаций и сводит их чистой функцией слияния.
func (s *sectionServiceImpl) ListSections(ctx context.Context, teacherID string, opts models.ListSectionsOptions) ([]models.SectionView, error) {
	teacherID, err := requireID("teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	rosterCol := s.stores.Roster.ArchivedColumn()
	rosterHasFlag, err := s.stores.Guard.ColumnExists(ctx, rosterCol.Table, rosterCol.Column)
	if err != nil {
		return nil, storageError("introspect roster", err)
	}
	assignCol := s.stores.Assignments.ArchivedColumn()
	assignHasFlag, err := s.stores.Guard.ColumnExists(ctx, assignCol.Table, assignCol.Column)
	if err != nil {
		return nil, storageError("introspect assignments", err)
	}
	logExists, err := s.stores.Guard.TableExists(ctx, s.stores.ArchiveLog.Table().Table)
	if err != nil {
		return nil, storageError("introspect archive log", err)
	}

	roster, err := s.stores.Roster.ListSections(ctx, teacherID, rosterHasFlag)
	if err != nil {
		if !errors.Is(err, models.ErrSchemaDrift) {
			return nil, storageError("list roster sections", err)
		}
		s.logger.Warn("Roster store unreadable, skipping", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	assignments, err := s.stores.Assignments.ListSections(ctx, teacherID, assignHasFlag)
	if err != nil {
		if !errors.Is(err, models.ErrSchemaDrift) {
			return nil, storageError("list assigned sections", err)
		}
		s.logger.Warn("Assignment store unreadable, skipping", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	var archiveLog []models.ArchiveLogEntry
	if logExists {
		archiveLog, err = s.stores.ArchiveLog.ListByTeacher(ctx, teacherID)
		if err != nil && !errors.Is(err, models.ErrSchemaDrift) {
			return nil, storageError("list archive log", err)
		}
	}

	views := FilterAndSortSections(MergeSectionCandidates(roster, assignments, archiveLog), opts)
	s.logger.Debug("Sections listed", zap.String("teacher_id", teacherID), zap.Int("count", len(views)),
		zap.Bool("roster_flag", rosterHasFlag), zap.Bool("assignment_flag", assignHasFlag), zap.Bool("archive_log", logExists))
	return views, nil
}
