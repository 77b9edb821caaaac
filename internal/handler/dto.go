package handler

import "edu-game-server/shared/models"

// ProgressRequest - тело POST /api/progress. Отсутствующее поле не меняет сохраненное значение.
type ProgressRequest struct {
	PlayerID        string `json:"player_id" validate:"required"`
	Coins           *int64 `json:"coins"`
	Score           *int64 `json:"score"`
	CurrentStage    *int   `json:"current_stage"`
	CompletedQuests *int   `json:"completed_quests"`
	MapChanges      *int   `json:"map_changes"`
	CollectedItems  *int   `json:"collected_items"`
	PlaytimeSeconds *int64 `json:"playtime_seconds"`
}

func (r ProgressRequest) toReport() models.ProgressReport {
	return models.ProgressReport{
		Coins:           r.Coins,
		Score:           r.Score,
		CurrentStage:    r.CurrentStage,
		CompletedQuests: r.CompletedQuests,
		MapChanges:      r.MapChanges,
		CollectedItems:  r.CollectedItems,
		PlaytimeSeconds: r.PlaytimeSeconds,
	}
}

type ProgressResponse struct {
	Success            bool                   `json:"success"`
	ProgressPercentage int                    `json:"progress_percentage"`
	Data               *models.MergedProgress `json:"data"`
}

type QuestCompleteRequest struct {
	PlayerID    string `json:"player_id" validate:"required"`
	QuestID     string `json:"quest_id" validate:"required"`
	ScoreEarned *int64 `json:"score_earned"`
	CoinsEarned *int64 `json:"coins_earned"`
	Completed   *bool  `json:"completed"`
}

type RegisterPlayerRequest struct {
	PlayerID    string `json:"player_id" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"max=255"`
}

// SectionRequest используется для archive/restore/create.
type SectionRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Section   string `json:"section" validate:"required"`
}

type EnrollRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Section   string `json:"section" validate:"required"`
	PlayerID  string `json:"player_id" validate:"required"`
}

type ArchiveResponse struct {
	Success          bool     `json:"success"`
	StudentsArchived int64    `json:"students_archived"`
	SectionArchived  bool     `json:"section_archived"`
	Warnings         []string `json:"warnings,omitempty"`
}

type RestoreResponse struct {
	Success          bool     `json:"success"`
	StudentsRestored int64    `json:"students_restored"`
	Warnings         []string `json:"warnings,omitempty"`
}

type SectionsResponse struct {
	Success  bool                 `json:"success"`
	Sections []models.SectionView `json:"sections"`
}

type EnrollResponse struct {
	Success      bool `json:"success"`
	StudentCount int  `json:"student_count"`
}

// DataResponse - успешный ответ с произвольными данными.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
