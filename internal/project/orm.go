package project

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlanning   Status = "PLANNING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOnHold     Status = "ON_HOLD"
)

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Status      Status    `json:"status" gorm:"type:text;not null;default:'PLANNING';check:status IN ('PLANNING', 'IN_PROGRESS', 'COMPLETED', 'ON_HOLD')"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

// ProjectEmployee — связь many-to-many проект/сотрудник.
// Членство проверяется при назначении задачи.
type ProjectEmployee struct {
	ProjectID  uuid.UUID `json:"project_id" gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `json:"employee_id" gorm:"type:uuid;primaryKey"`
	AddedAt    time.Time `json:"added_at" gorm:"not null;default:now()"`
}

func (ProjectEmployee) TableName() string { return "project_employees" }
