package evaluation

import (
	"strings"
	"time"
)

// TaskEvent представляет событие изменения задачи из Kafka.
// Структура должна совпадать с internal/task/kafka.go
type TaskEvent struct {
	TaskID     string    `json:"taskId"`
	ProjectID  string    `json:"projectId"`
	EmployeeID string    `json:"employeeId"`
	Status     string    `json:"status"`
	GithubLink string    `json:"githubLink,omitempty"`
	Late       bool      `json:"late,omitempty"`
	Score      *float64  `json:"score,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NeedsEvaluation возвращает true, если задача сдана и ждёт оценки.
func (e TaskEvent) NeedsEvaluation() bool {
	return strings.EqualFold(e.Status, "SUBMITTED")
}
