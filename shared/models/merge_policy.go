package models

import (
	"fmt"
	"math"
	"strings"
)

// MergeStrategy определяет, как входящее значение поля сливается с сохраненным.
type MergeStrategy int

const (
	// MergeReplace: переданное значение заменяет сохраненное, отсутствующее (NULL) сохраняет старое.
	MergeReplace MergeStrategy = iota
	// MergeAccumulate: значение прибавляется к сохраненному.
	MergeAccumulate
	// MergeClamp: как MergeReplace, но значение предварительно зажимается в [Min, Max].
	MergeClamp
	// MergeSetOnce: значение записывается только если сохраненное NULL.
	MergeSetOnce
	// MergeMonotonic: булев флаг, false -> true разрешено, true -> false нет.
	MergeMonotonic
	// MergeTouch: колонка всегда получает NOW().
	MergeTouch
	// MergeDerived: поле никогда не принимается на вход, вычисляется из других полей.
	MergeDerived
)

func (s MergeStrategy) String() string {
	switch s {
	case MergeReplace:
		return "replace"
	case MergeAccumulate:
		return "accumulate"
	case MergeClamp:
		return "clamp"
	case MergeSetOnce:
		return "set_once"
	case MergeMonotonic:
		return "monotonic"
	case MergeTouch:
		return "touch"
	case MergeDerived:
		return "derived"
	default:
		return fmt.Sprintf("MergeStrategy(%d)", int(s))
	}
}

// takesInput reports whether the rule binds a query parameter.
func (s MergeStrategy) takesInput() bool {
	return s != MergeTouch && s != MergeDerived
}

// FieldRule описывает одну колонку в схеме слияния.
type FieldRule struct {
	Column   string
	SQLType  string // BIGINT, INTEGER, BOOLEAN, TIMESTAMPTZ
	Strategy MergeStrategy
	Default  string // SQL-литерал для INSERT, когда значение не передано
	Min      int64
	Max      int64 // 0 - без верхней границы
	Bounded  bool  // применять Min/Max в Clamp
}

// Clamp applies the rule's bounds to v. Rules without bounds return v unchanged.
func (r FieldRule) Clamp(v int64) int64 {
	if !r.Bounded {
		return v
	}
	if v < r.Min {
		return r.Min
	}
	if r.Max > 0 && v > r.Max {
		return r.Max
	}
	return v
}

// MergeSchema - явный дескриптор политики слияния для одной операции upsert.
// Из него строится единственный атомарный INSERT ... ON CONFLICT DO UPDATE.
type MergeSchema struct {
	Name       string
	Table      string
	KeyColumns []string
	Rules      []FieldRule
	Returning  []string // дополнительные колонки в RETURNING
}

// Rule returns the rule for column.
func (s MergeSchema) Rule(column string) (FieldRule, bool) {
	for _, r := range s.Rules {
		if r.Column == column {
			return r, true
		}
	}
	return FieldRule{}, false
}

// ClampInt clamps v using the bounds of column's rule.
func (s MergeSchema) ClampInt(column string, v int64) int64 {
	r, ok := s.Rule(column)
	if !ok {
		return v
	}
	return r.Clamp(v)
}

// InputColumns returns, in parameter order, the columns whose values must be bound
// after the key columns.
func (s MergeSchema) InputColumns() []string {
	cols := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		if r.Strategy.takesInput() {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// ReturningColumns lists every stored column returned by UpsertSQL.
func (s MergeSchema) ReturningColumns() []string {
	cols := append([]string{}, s.KeyColumns...)
	for _, r := range s.Rules {
		if r.Strategy != MergeDerived {
			cols = append(cols, r.Column)
		}
	}
	return append(cols, s.Returning...)
}

// UpsertSQL строит атомарный upsert. Параметры: сначала KeyColumns ($1..$k),
// затем InputColumns в том же порядке. NULL означает "значение не передано".
func (s MergeSchema) UpsertSQL() string {
	insertCols := append([]string{}, s.KeyColumns...)
	values := make([]string, 0, len(s.KeyColumns)+len(s.Rules))
	for i := range s.KeyColumns {
		values = append(values, fmt.Sprintf("$%d", i+1))
	}

	sets := make([]string, 0, len(s.Rules))
	n := len(s.KeyColumns)
	for _, r := range s.Rules {
		if r.Strategy == MergeDerived {
			continue
		}
		insertCols = append(insertCols, r.Column)
		if r.Strategy == MergeTouch {
			values = append(values, "NOW()")
			sets = append(sets, fmt.Sprintf("%s = NOW()", r.Column))
			continue
		}

		n++
		param := fmt.Sprintf("$%d::%s", n, r.SQLType)
		stored := "t." + r.Column
		def := r.Default
		if def == "" {
			def = "0"
		}

		switch r.Strategy {
		case MergeReplace, MergeClamp:
			values = append(values, fmt.Sprintf("COALESCE(%s, %s)", param, def))
			sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, %s)", r.Column, param, stored))
		case MergeAccumulate:
			values = append(values, fmt.Sprintf("COALESCE(%s, %s)", param, def))
			sets = append(sets, fmt.Sprintf("%s = %s + COALESCE(%s, 0)", r.Column, stored, param))
		case MergeSetOnce:
			values = append(values, param)
			sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, %s)", r.Column, stored, param))
		case MergeMonotonic:
			values = append(values, fmt.Sprintf("COALESCE(%s, FALSE)", param))
			sets = append(sets, fmt.Sprintf("%s = %s OR COALESCE(%s, FALSE)", r.Column, stored, param))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s AS t (%s)\nVALUES (%s)\n", s.Table, strings.Join(insertCols, ", "), strings.Join(values, ", "))
	fmt.Fprintf(&b, "ON CONFLICT (%s) DO UPDATE SET\n    %s\n", strings.Join(s.KeyColumns, ", "), strings.Join(sets, ",\n    "))
	fmt.Fprintf(&b, "RETURNING %s", strings.Join(s.ReturningColumns(), ", "))
	return b.String()
}

// maxInteger - верхняя граница колонок INTEGER: больше значения не помещаются в $n::INTEGER.
const maxInteger = math.MaxInt32

// ProgressSnapshotSchema - снимок всего игрока: счетчики заменяются, стадия зажимается.
func ProgressSnapshotSchema(maxStage int) MergeSchema {
	if maxStage > maxInteger {
		maxStage = maxInteger
	}
	return MergeSchema{
		Name:       "progress_snapshot",
		Table:      "player_progress",
		KeyColumns: []string{"player_id"},
		Rules: []FieldRule{
			{Column: "coins", SQLType: "BIGINT", Strategy: MergeReplace, Bounded: true},
			{Column: "score", SQLType: "BIGINT", Strategy: MergeReplace, Bounded: true},
			{Column: "current_stage", SQLType: "INTEGER", Strategy: MergeClamp, Default: "1", Min: MinStage, Max: int64(maxStage), Bounded: true},
			{Column: "completed_quests", SQLType: "INTEGER", Strategy: MergeReplace, Max: maxInteger, Bounded: true},
			{Column: "map_changes", SQLType: "INTEGER", Strategy: MergeReplace, Max: maxInteger, Bounded: true},
			{Column: "collected_items", SQLType: "INTEGER", Strategy: MergeReplace, Max: maxInteger, Bounded: true},
			{Column: "playtime_seconds", SQLType: "BIGINT", Strategy: MergeReplace, Bounded: true},
			{Column: "updated_at", Strategy: MergeTouch},
			{Column: "progress_percentage", Strategy: MergeDerived},
		},
		Returning: []string{"created_at"},
	}
}

// QuestCompletionSchema - факт прохождения квеста: заработанное и попытки накапливаются.
func QuestCompletionSchema() MergeSchema {
	return MergeSchema{
		Name:       "quest_completion",
		Table:      "quest_completions",
		KeyColumns: []string{"player_id", "quest_id"},
		Rules: []FieldRule{
			{Column: "is_completed", SQLType: "BOOLEAN", Strategy: MergeMonotonic, Default: "FALSE"},
			{Column: "score_earned", SQLType: "BIGINT", Strategy: MergeAccumulate, Bounded: true},
			{Column: "coins_earned", SQLType: "BIGINT", Strategy: MergeAccumulate, Bounded: true},
			{Column: "attempts", SQLType: "INTEGER", Strategy: MergeAccumulate},
			{Column: "completed_at", SQLType: "TIMESTAMPTZ", Strategy: MergeSetOnce},
			{Column: "updated_at", Strategy: MergeTouch},
		},
	}
}

// BindArgs returns query arguments for UpsertSQL: keys first, then InputColumns taken from values.
// Missing columns bind as NULL.
func (s MergeSchema) BindArgs(keys []any, values map[string]any) []any {
	args := make([]any, 0, len(keys)+len(s.Rules))
	args = append(args, keys...)
	for _, col := range s.InputColumns() {
		args = append(args, values[col])
	}
	return args
}
