package dto

import "time"

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Deadline    string `json:"deadline"` // YYYY-MM-DD
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Department  *string `json:"department,omitempty"`
	Deadline    *string `json:"deadline,omitempty"` // YYYY-MM-DD
}

type AssignTaskRequest struct {
	EmployeeID string `json:"employee_id"`
}

type SubmitTaskRequest struct {
	GithubLink string `json:"github_link"`
}

type EvaluateTaskRequest struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type TaskResponse struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Department    string     `json:"department"`
	Deadline      time.Time  `json:"deadline"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	Status        string     `json:"status"`
	GithubLink    string     `json:"github_link,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	SubmittedLate bool       `json:"submitted_late"`
	Score         *float64   `json:"score,omitempty"`
	Feedback      string     `json:"feedback,omitempty"`
	EvaluatedAt   *time.Time `json:"evaluated_at,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}
