package database

import (
	"context"
	"fmt"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

var _ interfaces.TeacherSectionRepository = (*pgTeacherSectionRepository)(nil)

const (
	teacherSectionExistsQuery = `
SELECT EXISTS (SELECT 1 FROM teacher_sections WHERE teacher_id = $1 AND btrim(section) = btrim($2))`

	setTeacherSectionArchivedQuery = `
UPDATE teacher_sections SET is_archived = $3 WHERE teacher_id = $1 AND btrim(section) = btrim($2)`

	listTeacherSectionsQuery = `
SELECT btrim(section) AS section, student_count, is_archived
FROM teacher_sections
WHERE teacher_id = $1`

	listTeacherSectionsNoFlagQuery = `
SELECT btrim(section) AS section, student_count, FALSE AS is_archived
FROM teacher_sections
WHERE teacher_id = $1`

	upsertTeacherSectionQuery = `
INSERT INTO teacher_sections (teacher_id, section)
VALUES ($1, btrim($2))
ON CONFLICT (teacher_id, section) DO NOTHING`

	refreshStudentCountQuery = `
UPDATE teacher_sections ts SET student_count = (
    SELECT count(*) FROM student_roster sr
    WHERE sr.teacher_id = ts.teacher_id AND btrim(sr.section) = btrim(ts.section)
)
WHERE ts.teacher_id = $1 AND btrim(ts.section) = btrim($2)`
)

type pgTeacherSectionRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgTeacherSectionRepository creates the teacher-assignment store.
func NewPgTeacherSectionRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.TeacherSectionRepository {
	return &pgTeacherSectionRepository{
		db:     db,
		logger: logger.Named("PgTeacherSectionRepo"),
	}
}

func (r *pgTeacherSectionRepository) ArchivedColumn() interfaces.ColumnSpec {
	return AssignmentArchivedColumn
}

func (r *pgTeacherSectionRepository) Exists(ctx context.Context, teacherID, section string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, teacherSectionExistsQuery, teacherID, section).Scan(&exists); err != nil {
		r.logger.Error("Failed to check teacher section", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return false, fmt.Errorf("failed to check teacher section: %w", classifyWriteError(err))
	}
	return exists, nil
}

func (r *pgTeacherSectionRepository) SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error) {
	logFields := []zap.Field{zap.String("teacher_id", teacherID), zap.String("section", section), zap.Bool("archived", archived)}
	tag, err := r.db.Exec(ctx, setTeacherSectionArchivedQuery, teacherID, section, archived)
	if err != nil {
		r.logger.Warn("Failed to set teacher section archived flag", append(logFields, zap.Error(err))...)
		return 0, fmt.Errorf("failed to set teacher section archived flag: %w", classifyWriteError(err))
	}
	return tag.RowsAffected(), nil
}

func (r *pgTeacherSectionRepository) ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error) {
	query := listTeacherSectionsNoFlagQuery
	if withArchivedFlag {
		query = listTeacherSectionsQuery
	}
	candidates := make([]models.SectionCandidate, 0)
	if err := pgxscan.Select(ctx, r.db, &candidates, query, teacherID); err != nil {
		r.logger.Error("Failed to list teacher sections", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, fmt.Errorf("failed to list teacher sections: %w", classifyWriteError(err))
	}
	for i := range candidates {
		candidates[i].HasArchivedFlag = withArchivedFlag
	}
	return candidates, nil
}

func (r *pgTeacherSectionRepository) Upsert(ctx context.Context, teacherID, section string) error {
	if _, err := r.db.Exec(ctx, upsertTeacherSectionQuery, teacherID, section); err != nil {
		r.logger.Error("Failed to upsert teacher section", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return fmt.Errorf("failed to upsert teacher section: %w", err)
	}
	return nil
}

func (r *pgTeacherSectionRepository) RefreshStudentCount(ctx context.Context, teacherID, section string) error {
	if _, err := r.db.Exec(ctx, refreshStudentCountQuery, teacherID, section); err != nil {
		r.logger.Error("Failed to refresh student count", zap.String("teacher_id", teacherID), zap.String("section", section), zap.Error(err))
		return fmt.Errorf("failed to refresh student count: %w", err)
	}
	return nil
}
