package models

import (
	"time"

	"github.com/google/uuid"
)

// Player - запись реестра игроков. ID - внутренний идентификатор,
// PlayerID - внешний идентификатор, который присылает клиент игры.
type Player struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PlayerID    string    `db:"player_id" json:"playerId"`
	DisplayName string    `db:"display_name" json:"displayName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// PlayerProgress хранит накопленное состояние игрока.
// progress_percentage здесь не хранится: он всегда вычисляется из CompletedQuests.
type PlayerProgress struct {
	PlayerID        string    `db:"player_id" json:"player_id"`
	Coins           int64     `db:"coins" json:"coins"`
	Score           int64     `db:"score" json:"score"`
	CurrentStage    int       `db:"current_stage" json:"current_stage"`
	CompletedQuests int       `db:"completed_quests" json:"completed_quests"`
	MapChanges      int       `db:"map_changes" json:"map_changes"`
	CollectedItems  int       `db:"collected_items" json:"collected_items"`
	PlaytimeSeconds int64     `db:"playtime_seconds" json:"playtime_seconds"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
	UpdatedAt       time.Time `db:"updated_at" json:"last_updated"`
}

// NewPlayerProgress возвращает нулевую запись прогресса (стадия 1).
func NewPlayerProgress(playerID string) *PlayerProgress {
	return &PlayerProgress{PlayerID: playerID, CurrentStage: MinStage}
}

// MergedProgress - прогресс после слияния вместе с производными полями.
type MergedProgress struct {
	PlayerProgress
	ProgressPercentage int `json:"progress_percentage"`
}

// Merge builds the merged view of a stored record.
func (p *PlayerProgress) Merge(totalQuests int) *MergedProgress {
	return &MergedProgress{
		PlayerProgress:     *p,
		ProgressPercentage: ProgressPercentage(p.CompletedQuests, totalQuests),
	}
}

// ProgressReport - частичный отчет клиента. nil означает "поле не передано".
type ProgressReport struct {
	Coins           *int64
	Score           *int64
	CurrentStage    *int
	CompletedQuests *int
	MapChanges      *int
	CollectedItems  *int
	PlaytimeSeconds *int64
}

// MinStage - нижняя граница current_stage.
const MinStage = 1

// ProgressPercentage = floor(min(completed/total, 1) * 100).
func ProgressPercentage(completedQuests, totalQuests int) int {
	if totalQuests <= 0 || completedQuests <= 0 {
		return 0
	}
	if completedQuests >= totalQuests {
		return 100
	}
	return completedQuests * 100 / totalQuests
}

// LeaderboardEntry - денормализованная проекция прогресса для быстрых чтений рейтинга.
type LeaderboardEntry struct {
	PlayerUUID         uuid.UUID `db:"player_uuid" json:"-"`
	PlayerID           string    `db:"player_id" json:"player_id"`
	Coins              int64     `db:"coins" json:"coins"`
	Score              int64     `db:"score" json:"score"`
	CurrentStage       int       `db:"current_stage" json:"current_stage"`
	CompletedQuests    int       `db:"completed_quests" json:"completed_quests"`
	ProgressPercentage int       `db:"progress_percentage" json:"progress_percentage"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// NewLeaderboardEntry проецирует слитый прогресс на запись рейтинга.
func NewLeaderboardEntry(playerUUID uuid.UUID, p *MergedProgress) LeaderboardEntry {
	return LeaderboardEntry{
		PlayerUUID:         playerUUID,
		PlayerID:           p.PlayerID,
		Coins:              p.Coins,
		Score:              p.Score,
		CurrentStage:       p.CurrentStage,
		CompletedQuests:    p.CompletedQuests,
		ProgressPercentage: p.ProgressPercentage,
		UpdatedAt:          p.UpdatedAt,
	}
}

// Normalize clamps every present field using the bounds of schema.
func (r ProgressReport) Normalize(schema MergeSchema) ProgressReport {
	clamp64 := func(col string, v *int64) *int64 {
		if v == nil {
			return nil
		}
		c := schema.ClampInt(col, *v)
		return &c
	}
	clamp := func(col string, v *int) *int {
		if v == nil {
			return nil
		}
		c := int(schema.ClampInt(col, int64(*v)))
		return &c
	}
	return ProgressReport{
		Coins:           clamp64("coins", r.Coins),
		Score:           clamp64("score", r.Score),
		CurrentStage:    clamp("current_stage", r.CurrentStage),
		CompletedQuests: clamp("completed_quests", r.CompletedQuests),
		MapChanges:      clamp("map_changes", r.MapChanges),
		CollectedItems:  clamp("collected_items", r.CollectedItems),
		PlaytimeSeconds: clamp64("playtime_seconds", r.PlaytimeSeconds),
	}
}

// Values maps column name to the bound value; absent fields map to nil (SQL NULL).
func (r ProgressReport) Values() map[string]any {
	v := map[string]any{
		"coins":            nil,
		"score":            nil,
		"current_stage":    nil,
		"completed_quests": nil,
		"map_changes":      nil,
		"collected_items":  nil,
		"playtime_seconds": nil,
	}
	if r.Coins != nil {
		v["coins"] = *r.Coins
	}
	if r.Score != nil {
		v["score"] = *r.Score
	}
	if r.CurrentStage != nil {
		v["current_stage"] = *r.CurrentStage
	}
	if r.CompletedQuests != nil {
		v["completed_quests"] = *r.CompletedQuests
	}
	if r.MapChanges != nil {
		v["map_changes"] = *r.MapChanges
	}
	if r.CollectedItems != nil {
		v["collected_items"] = *r.CollectedItems
	}
	if r.PlaytimeSeconds != nil {
		v["playtime_seconds"] = *r.PlaytimeSeconds
	}
	return v
}
