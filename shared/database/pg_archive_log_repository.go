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

var _ interfaces.ArchiveLogRepository = (*pgArchiveLogRepository)(nil)

const (
	// Повторная архивация перезаписывает archived_at.
	upsertArchiveLogQuery = `
INSERT INTO archived_sections (teacher_id, section, archived_at)
VALUES ($1, btrim($2), $3)
ON CONFLICT (teacher_id, section) DO UPDATE SET archived_at = EXCLUDED.archived_at`

	deleteArchiveLogQuery = `
DELETE FROM archived_sections WHERE teacher_id = $1 AND btrim(section) = btrim($2)`

	listArchiveLogQuery = `
SELECT teacher_id, btrim(section) AS section, archived_at
FROM archived_sections
WHERE teacher_id = $1`
)

type pgArchiveLogRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgArchiveLogRepository creates the archive-log store.
func NewPgArchiveLogRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ArchiveLogRepository {
	return &pgArchiveLogRepository{
		db:     db,
		logger: logger.Named("PgArchiveLogRepo"),
	}
}

func (r *pgArchiveLogRepository) Table() interfaces.TableSpec {
	return ArchiveLogTable
}

func (r *pgArchiveLogRepository) Upsert(ctx context.Context, teacherID, section string, at time.Time) error {
	if _, err := r.db.Exec(ctx, upsertArchiveLogQuery, teacherID, section, at); err != nil {
		r.logger.Warn("Failed to write archive log", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return fmt.Errorf("failed to write archive log: %w", classifyWriteError(err))
	}
	return nil
}

func (r *pgArchiveLogRepository) Delete(ctx context.Context, teacherID, section string) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteArchiveLogQuery, teacherID, section)
	if err != nil {
		r.logger.Warn("Failed to delete archive log row", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return 0, fmt.Errorf("failed to delete archive log row: %w", classifyWriteError(err))
	}
	return tag.RowsAffected(), nil
}

func (r *pgArchiveLogRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ArchiveLogEntry, error) {
	entries := make([]models.ArchiveLogEntry, 0)
	if err := pgxscan.Select(ctx, r.db, &entries, listArchiveLogQuery, teacherID); err != nil {
		r.logger.Error("Failed to list archive log", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, fmt.Errorf("failed to list archive log: %w", classifyWriteError(err))
	}
	return entries, nil
}
