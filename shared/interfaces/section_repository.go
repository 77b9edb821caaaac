package interfaces

import (
	"context"
	"time"

	"edu-game-server/shared/models"
)

// RosterRepository - ростер учеников; каждая строка секции несет копию флага архивации.
//
//go:generate mockery --name RosterRepository --output ./mocks --outpkg mocks --case=underscore
type RosterRepository interface {
	// CountInSection returns how many roster rows of section belong to teacherID.
	CountInSection(ctx context.Context, teacherID, section string) (int, error)
	// SetArchived updates the flag on every row of the section and returns affected rows.
	SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error)
	// ListSections groups roster rows by section. withArchivedFlag=false skips the is_archived column.
	ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error)
	Enroll(ctx context.Context, enrollment models.RosterEnrollment) error
	// ArchivedColumn describes the is_archived column this store needs.
	ArchivedColumn() ColumnSpec
}

// TeacherSectionRepository - назначения учитель/секция, одна строка на пару.
//
//go:generate mockery --name TeacherSectionRepository --output ./mocks --outpkg mocks --case=underscore
type TeacherSectionRepository interface {
	Exists(ctx context.Context, teacherID, section string) (bool, error)
	SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error)
	ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error)
	Upsert(ctx context.Context, teacherID, section string) error
	// RefreshStudentCount recounts the denormalized student_count from the roster.
	RefreshStudentCount(ctx context.Context, teacherID, section string) error
	ArchivedColumn() ColumnSpec
}

// ArchiveLogRepository - журнал архивации: строка есть - секция в архиве.
//
//go:generate mockery --name ArchiveLogRepository --output ./mocks --outpkg mocks --case=underscore
type ArchiveLogRepository interface {
	// Upsert overwrites archived_at if the row already exists.
	Upsert(ctx context.Context, teacherID, section string, at time.Time) error
	Delete(ctx context.Context, teacherID, section string) (int64, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ArchiveLogEntry, error)
	// Table describes the archive-log table this store needs.
	Table() TableSpec
}

// EnrollmentRepository записывает ученика в ростер и обновляет назначение учителя в одной транзакции.
//
//go:generate mockery --name EnrollmentRepository --output ./mocks --outpkg mocks --case=underscore
type EnrollmentRepository interface {
	// EnrollStudent returns the recounted student_count of the section.
	EnrollStudent(ctx context.Context, enrollment models.RosterEnrollment) (int, error)
}
