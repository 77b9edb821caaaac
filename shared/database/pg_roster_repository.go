package database

import (
	"context"
	"fmt"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

var _ interfaces.RosterRepository = (*pgRosterRepository)(nil)

// Имена секций сравниваются после btrim: в старых данных встречаются пробелы по краям.
const (
	countRosterInSectionQuery = `
SELECT count(*) FROM student_roster WHERE teacher_id = $1 AND btrim(section) = btrim($2)`

	setRosterArchivedQuery = `
UPDATE student_roster SET is_archived = $3 WHERE teacher_id = $1 AND btrim(section) = btrim($2)`

	listRosterSectionsQuery = `
SELECT btrim(section) AS section, count(*)::int AS student_count, bool_or(is_archived) AS is_archived
FROM student_roster
WHERE teacher_id = $1
GROUP BY btrim(section)`

	// Колонки is_archived нет: флаг не читаем.
	listRosterSectionsNoFlagQuery = `
SELECT btrim(section) AS section, count(*)::int AS student_count, FALSE AS is_archived
FROM student_roster
WHERE teacher_id = $1
GROUP BY btrim(section)`

	enrollStudentQuery = `
INSERT INTO student_roster (player_id, teacher_id, section)
VALUES ($1, $2, btrim($3))
ON CONFLICT (player_id, teacher_id, section) DO NOTHING`
)

type pgRosterRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgRosterRepository creates the roster store.
func NewPgRosterRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.RosterRepository {
	return &pgRosterRepository{
		db:     db,
		logger: logger.Named("PgRosterRepo"),
	}
}

func (r *pgRosterRepository) ArchivedColumn() interfaces.ColumnSpec {
	return RosterArchivedColumn
}

func (r *pgRosterRepository) CountInSection(ctx context.Context, teacherID, section string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countRosterInSectionQuery, teacherID, section).Scan(&count); err != nil {
		r.logger.Error("Failed to count roster rows", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return 0, fmt.Errorf("failed to count roster rows: %w", classifyWriteError(err))
	}
	return count, nil
}

// SetArchived обновляет флаг на всех строках секции.
func (r *pgRosterRepository) SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error) {
	logFields := []zap.Field{zap.String("teacher_id", teacherID), zap.String("section", section), zap.Bool("archived", archived)}
	tag, err := r.db.Exec(ctx, setRosterArchivedQuery, teacherID, section, archived)
	if err != nil {
		r.logger.Warn("Failed to set roster archived flag", append(logFields, zap.Error(err))...)
		return 0, fmt.Errorf("failed to set roster archived flag: %w", classifyWriteError(err))
	}
	r.logger.Debug("Roster archived flag updated", append(logFields, zap.Int64("rows", tag.RowsAffected()))...)
	return tag.RowsAffected(), nil
}

func (r *pgRosterRepository) ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error) {
	query := listRosterSectionsNoFlagQuery
	if withArchivedFlag {
		query = listRosterSectionsQuery
	}
	candidates := make([]models.SectionCandidate, 0)
	if err := pgxscan.Select(ctx, r.db, &candidates, query, teacherID); err != nil {
		r.logger.Error("Failed to list roster sections", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, fmt.Errorf("failed to list roster sections: %w", classifyWriteError(err))
	}
	for i := range candidates {
		candidates[i].HasArchivedFlag = withArchivedFlag
	}
	return candidates, nil
}

func (r *pgRosterRepository) Enroll(ctx context.Context, e models.RosterEnrollment) error {
	logFields := []zap.Field{zap.String("player_id", e.PlayerID), zap.String("teacher_id", e.TeacherID), zap.String("section", e.Section)}
	if _, err := r.db.Exec(ctx, enrollStudentQuery, e.PlayerID, e.TeacherID, e.Section); err != nil {
		if IsForeignKeyViolation(err) {
			r.logger.Warn("Enroll references unknown player", logFields...)
			return models.ErrPlayerNotFound
		}
		r.logger.Error("Failed to enroll student", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	r.logger.Info("Student enrolled", logFields...)
	return nil
}
