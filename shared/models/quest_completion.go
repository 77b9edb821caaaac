package models

import "time"

// QuestCompletion - факт прохождения квеста игроком.
// ScoreEarned/CoinsEarned/Attempts только накапливаются, IsCompleted монотонен,
// CompletedAt выставляется один раз.
type QuestCompletion struct {
	PlayerID    string     `db:"player_id" json:"player_id"`
	QuestID     string     `db:"quest_id" json:"quest_id"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	ScoreEarned int64      `db:"score_earned" json:"score_earned"`
	CoinsEarned int64      `db:"coins_earned" json:"coins_earned"`
	Attempts    int        `db:"attempts" json:"attempts"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// QuestReport - отчет клиента о попытке прохождения квеста.
type QuestReport struct {
	ScoreEarned *int64
	CoinsEarned *int64
	Completed   *bool // nil трактуется как true
}

// IsCompleted reports whether this attempt counts as a completion.
func (r QuestReport) IsCompleted() bool {
	return r.Completed == nil || *r.Completed
}

// Normalize clamps earned values to the schema bounds.
func (r QuestReport) Normalize(schema MergeSchema) QuestReport {
	out := r
	if r.ScoreEarned != nil {
		v := schema.ClampInt("score_earned", *r.ScoreEarned)
		out.ScoreEarned = &v
	}
	if r.CoinsEarned != nil {
		v := schema.ClampInt("coins_earned", *r.CoinsEarned)
		out.CoinsEarned = &v
	}
	return out
}

// Values maps column name to the bound value for one attempt at time at.
// attempts всегда увеличивается на 1; completed_at передается только для завершенной попытки.
func (r QuestReport) Values(at time.Time) map[string]any {
	v := map[string]any{
		"is_completed": r.IsCompleted(),
		"score_earned": nil,
		"coins_earned": nil,
		"attempts":     1,
		"completed_at": nil,
	}
	if r.ScoreEarned != nil {
		v["score_earned"] = *r.ScoreEarned
	}
	if r.CoinsEarned != nil {
		v["coins_earned"] = *r.CoinsEarned
	}
	if r.IsCompleted() {
		v["completed_at"] = at
	}
	return v
}
