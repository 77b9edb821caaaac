package messaging

import "time"

// ProgressUpdatedPayload - событие после успешного слияния прогресса игрока.
type ProgressUpdatedPayload struct {
	PlayerID           string    `json:"player_id"`
	Coins              int64     `json:"coins"`
	Score              int64     `json:"score"`
	CurrentStage       int       `json:"current_stage"`
	CompletedQuests    int       `json:"completed_quests"`
	ProgressPercentage int       `json:"progress_percentage"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SectionAction - что произошло с секцией.
type SectionAction string

const (
	SectionActionArchived SectionAction = "archived"
	SectionActionRestored SectionAction = "restored"
)

// SectionEventPayload - событие изменения архивации секции.
type SectionEventPayload struct {
	TeacherID    string        `json:"teacher_id"`
	Section      string        `json:"section"`
	Action       SectionAction `json:"action"`
	StudentsRows int64         `json:"students_rows"`
	Warnings     []string      `json:"warnings,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at"`
}
