package mocks

import (
	"context"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/messaging"
	"edu-game-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock SchemaGuard
type SchemaGuard struct {
	mock.Mock
}

func (m *SchemaGuard) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	args := m.Called(ctx, table, column)
	return args.Bool(0), args.Error(1)
}

func (m *SchemaGuard) TableExists(ctx context.Context, table string) (bool, error) {
	args := m.Called(ctx, table)
	return args.Bool(0), args.Error(1)
}

func (m *SchemaGuard) EnsureColumn(ctx context.Context, spec interfaces.ColumnSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *SchemaGuard) EnsureTable(ctx context.Context, spec interfaces.TableSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

// Mock RosterRepository
type RosterRepository struct {
	mock.Mock
}

func (m *RosterRepository) CountInSection(ctx context.Context, teacherID, section string) (int, error) {
	args := m.Called(ctx, teacherID, section)
	return args.Int(0), args.Error(1)
}

func (m *RosterRepository) SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error) {
	args := m.Called(ctx, teacherID, section, archived)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RosterRepository) ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error) {
	args := m.Called(ctx, teacherID, withArchivedFlag)
	list, _ := args.Get(0).([]models.SectionCandidate)
	return list, args.Error(1)
}

func (m *RosterRepository) Enroll(ctx context.Context, enrollment models.RosterEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *RosterRepository) ArchivedColumn() interfaces.ColumnSpec {
	args := m.Called()
	return args.Get(0).(interfaces.ColumnSpec)
}

// Mock TeacherSectionRepository
type TeacherSectionRepository struct {
	mock.Mock
}

func (m *TeacherSectionRepository) Exists(ctx context.Context, teacherID, section string) (bool, error) {
	args := m.Called(ctx, teacherID, section)
	return args.Bool(0), args.Error(1)
}

func (m *TeacherSectionRepository) SetArchived(ctx context.Context, teacherID, section string, archived bool) (int64, error) {
	args := m.Called(ctx, teacherID, section, archived)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TeacherSectionRepository) ListSections(ctx context.Context, teacherID string, withArchivedFlag bool) ([]models.SectionCandidate, error) {
	args := m.Called(ctx, teacherID, withArchivedFlag)
	list, _ := args.Get(0).([]models.SectionCandidate)
	return list, args.Error(1)
}

func (m *TeacherSectionRepository) Upsert(ctx context.Context, teacherID, section string) error {
	args := m.Called(ctx, teacherID, section)
	return args.Error(0)
}

func (m *TeacherSectionRepository) RefreshStudentCount(ctx context.Context, teacherID, section string) error {
	args := m.Called(ctx, teacherID, section)
	return args.Error(0)
}

func (m *TeacherSectionRepository) ArchivedColumn() interfaces.ColumnSpec {
	args := m.Called()
	return args.Get(0).(interfaces.ColumnSpec)
}

// Mock ArchiveLogRepository
type ArchiveLogRepository struct {
	mock.Mock
}

func (m *ArchiveLogRepository) Upsert(ctx context.Context, teacherID, section string, at time.Time) error {
	args := m.Called(ctx, teacherID, section, at)
	return args.Error(0)
}

func (m *ArchiveLogRepository) Delete(ctx context.Context, teacherID, section string) (int64, error) {
	args := m.Called(ctx, teacherID, section)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ArchiveLogRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ArchiveLogEntry, error) {
	args := m.Called(ctx, teacherID)
	list, _ := args.Get(0).([]models.ArchiveLogEntry)
	return list, args.Error(1)
}

func (m *ArchiveLogRepository) Table() interfaces.TableSpec {
	args := m.Called()
	return args.Get(0).(interfaces.TableSpec)
}

// Mock SectionEventPublisher
type SectionEventPublisher struct {
	mock.Mock
}

func (m *SectionEventPublisher) PublishSectionEvent(ctx context.Context, payload messaging.SectionEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// Mock EnrollmentRepository
type EnrollmentRepository struct {
	mock.Mock
}

func (m *EnrollmentRepository) EnrollStudent(ctx context.Context, enrollment models.RosterEnrollment) (int, error) {
	args := m.Called(ctx, enrollment)
	return args.Int(0), args.Error(1)
}
