package database

import (
	"context"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.EnrollmentRepository = (*pgEnrollmentRepository)(nil)

type pgEnrollmentRepository struct {
	db     interfaces.TxBeginner
	logger *zap.Logger
}

// NewPgEnrollmentRepository creates an EnrollmentRepository over a pool.
func NewPgEnrollmentRepository(db interfaces.TxBeginner, logger *zap.Logger) interfaces.EnrollmentRepository {
	return &pgEnrollmentRepository{
		db:     db,
		logger: logger.Named("PgEnrollmentRepo"),
	}
}

// EnrollStudent: строка ростера, назначение учителя и пересчет student_count в одной транзакции.
// Флаг архивации здесь не трогается.
func (r *pgEnrollmentRepository) EnrollStudent(ctx context.Context, e models.RosterEnrollment) (int, error) {
	var count int
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		roster := NewPgRosterRepository(tx, r.logger)
		sections := NewPgTeacherSectionRepository(tx, r.logger)

		if err := roster.Enroll(ctx, e); err != nil {
			return err
		}
		if err := sections.Upsert(ctx, e.TeacherID, e.Section); err != nil {
			return err
		}
		if err := sections.RefreshStudentCount(ctx, e.TeacherID, e.Section); err != nil {
			return err
		}
		var err error
		count, err = roster.CountInSection(ctx, e.TeacherID, e.Section)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
