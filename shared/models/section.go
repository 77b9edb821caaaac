package models

import (
	"strings"
	"time"
)

// SectionCandidate - то, что один физический стор знает о секции.
// HasArchivedFlag=false означает, что в сторе нет колонки is_archived.
type SectionCandidate struct {
	Section         string `db:"section"`
	StudentCount    int    `db:"student_count"`
	IsArchived      bool   `db:"is_archived"`
	HasArchivedFlag bool   `db:"-"`
}

// ArchiveLogEntry - строка архивного лога: присутствие строки означает "секция в архиве".
type ArchiveLogEntry struct {
	TeacherID  string    `db:"teacher_id"`
	Section    string    `db:"section"`
	ArchivedAt time.Time `db:"archived_at"`
}

// SectionView - согласованное представление секции для дашборда учителя.
type SectionView struct {
	Section      string `json:"section"`
	StudentCount int    `json:"student_count"`
	IsArchived   bool   `json:"is_archived"`
}

// ListSectionsOptions управляет фильтрацией и порядком ListSections.
type ListSectionsOptions struct {
	IncludeArchived bool
	ArchivedFirst   bool // учитывается только вместе с IncludeArchived
}

// SectionKey normalizes a section name for deduplication.
func SectionKey(section string) string {
	return strings.TrimSpace(section)
}

// RosterEnrollment - строка ростера: один ученик в одной секции учителя.
type RosterEnrollment struct {
	PlayerID   string    `db:"player_id" json:"player_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	Section    string    `db:"section" json:"section"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
