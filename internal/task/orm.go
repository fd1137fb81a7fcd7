package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

// Жизненный цикл задачи. UNASSIGNED выделен отдельно:
// задача без исполнителя и задача с исполнителем — разные состояния.
const (
	StatusUnassigned Status = "UNASSIGNED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
	StatusCompleted  Status = "COMPLETED"
)

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"not null"`
	Department  string     `json:"department" gorm:"not null"`
	Deadline    time.Time  `json:"deadline" gorm:"not null"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" gorm:"type:uuid;index"`
	Status      Status     `json:"status" gorm:"type:text;not null;default:'UNASSIGNED';check:status IN ('UNASSIGNED', 'ASSIGNED', 'IN_PROGRESS', 'SUBMITTED', 'COMPLETED')"`

	// Поля сабмита (пустые до отправки работы)
	GithubLink    *string    `json:"github_link,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	SubmittedLate bool       `json:"submitted_late"`

	// Поля оценки (пустые, пока evaluator не вернул результат)
	Score       *float64   `json:"score,omitempty"`
	Feedback    *string    `json:"feedback,omitempty"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}
