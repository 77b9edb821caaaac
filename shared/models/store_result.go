package models

import (
	"fmt"
	"strings"
)

// Имена физических сторов, в которых дублируется флаг архивации секции.
const (
	StoreRoster     = "student_roster"
	StoreAssignment = "teacher_sections"
	StoreArchiveLog = "archived_sections"
)

// StoreOutcome - результат записи в один стор.
type StoreOutcome struct {
	Store  string
	Rows   int64
	Healed bool // структура (колонка/таблица) была создана перед повторной записью
	Err    error
}

// OK reports whether the write to this store succeeded.
func (o StoreOutcome) OK() bool { return o.Err == nil }

// MultiStoreWriteResult агрегирует независимые записи в несколько сторов без общей транзакции.
type MultiStoreWriteResult struct {
	Outcomes []StoreOutcome
}

// Add records an outcome.
func (r *MultiStoreWriteResult) Add(o StoreOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Outcome returns the outcome recorded for store.
func (r *MultiStoreWriteResult) Outcome(store string) (StoreOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Store == store {
			return o, true
		}
	}
	return StoreOutcome{}, false
}

// Succeeded reports whether store was written successfully.
func (r *MultiStoreWriteResult) Succeeded(store string) bool {
	o, ok := r.Outcome(store)
	return ok && o.OK()
}

// AnySucceeded reports whether at least one store was updated.
func (r *MultiStoreWriteResult) AnySucceeded() bool {
	for _, o := range r.Outcomes {
		if o.OK() {
			return true
		}
	}
	return false
}

// Failed returns the failed outcomes.
func (r *MultiStoreWriteResult) Failed() []StoreOutcome {
	var failed []StoreOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Warning returns a PartialReconciliationError when some (not all) stores failed.
func (r *MultiStoreWriteResult) Warning() error {
	failed := r.Failed()
	if len(failed) == 0 || !r.AnySucceeded() {
		return nil
	}
	return &PartialReconciliationError{Failed: failed}
}

// PartialReconciliationError - часть сторов не обновилась, но хотя бы один обновлен.
// Это предупреждение: операция все равно считается успешной.
type PartialReconciliationError struct {
	Failed []StoreOutcome
}

func (e *PartialReconciliationError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, o := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", o.Store, o.Err))
	}
	return fmt.Sprintf("%s: %s", ErrPartialReconciliation, strings.Join(parts, "; "))
}

func (e *PartialReconciliationError) Is(target error) bool {
	return target == ErrPartialReconciliation
}

// Messages returns one line per failed store, for JSON responses.
func (e *PartialReconciliationError) Messages() []string {
	msgs := make([]string, 0, len(e.Failed))
	for _, o := range e.Failed {
		msgs = append(msgs, fmt.Sprintf("%s: %v", o.Store, o.Err))
	}
	return msgs
}

// ArchiveResult - результат archive_section.
type ArchiveResult struct {
	TeacherID        string
	Section          string
	StudentsArchived int64
	SectionArchived  bool
	Writes           MultiStoreWriteResult
}

// RestoreResult - результат restore_section.
type RestoreResult struct {
	TeacherID        string
	Section          string
	StudentsRestored int64
	Writes           MultiStoreWriteResult
}
