package database

import "edu-game-server/shared/interfaces"

// Структура, которую сторы секций создают сами при обнаружении drift.
var (
	RosterArchivedColumn = interfaces.ColumnSpec{
		Table:      "student_roster",
		Column:     "is_archived",
		Definition: "BOOLEAN NOT NULL DEFAULT FALSE",
	}
	AssignmentArchivedColumn = interfaces.ColumnSpec{
		Table:      "teacher_sections",
		Column:     "is_archived",
		Definition: "BOOLEAN NOT NULL DEFAULT FALSE",
	}
	ArchiveLogTable = interfaces.TableSpec{
		Table: "archived_sections",
		DDL: `teacher_id TEXT NOT NULL,
    section TEXT NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (teacher_id, section)`,
	}
)
