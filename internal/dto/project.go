package dto

import "time"

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AssignEmployeesRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status"`
}

type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Employees   []string  `json:"employees"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
