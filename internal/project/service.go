package project

import (
	"context"
	"errors"
	"time"

	"github.com/Oniqq60/performance_assessment/internal/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService interface {
	CreateProject(ctx context.Context, name, description string, createdBy uuid.UUID) (Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (Project, []uuid.UUID, error)
	ProjectList(ctx context.Context, status *Status) ([]Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	AssignEmployees(ctx context.Context, projectID uuid.UUID, employeeIDs []uuid.UUID) error
}

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrNameRequired     = errors.New("project name is required")
	ErrUnknownEmployee  = errors.New("employee not found or not active")
	ErrInvalidStatus    = errors.New("invalid project status")
	ErrNotAnEmployee    = errors.New("user is not an employee")
	ErrNoEmployeesGiven = errors.New("employee_ids is required")
)

type projectService struct {
	repo  ProjectRepository
	users auth.UserRepository
}

func NewProjectService(repo ProjectRepository, users auth.UserRepository) ProjectService {
	return &projectService{repo: repo, users: users}
}

func (s *projectService) CreateProject(ctx context.Context, name, description string, createdBy uuid.UUID) (Project, error) {
	if name == "" {
		return Project{}, ErrNameRequired
	}

	p := Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      StatusPlanning,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (Project, []uuid.UUID, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Project{}, nil, ErrProjectNotFound
		}
		return Project{}, nil, err
	}
	members, err := s.repo.Members(ctx, id)
	if err != nil {
		return Project{}, nil, err
	}
	return p, members, nil
}

func (s *projectService) ProjectList(ctx context.Context, status *Status) ([]Project, error) {
	if status != nil {
		if !validStatus(*status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.repo.ProjectList(ctx, status)
}

func (s *projectService) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !validStatus(status) {
		return ErrInvalidStatus
	}
	if _, err := s.repo.GetProject(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AssignEmployees добавляет сотрудников в проект. Каждый должен существовать,
// быть активным и иметь роль employee.
func (s *projectService) AssignEmployees(ctx context.Context, projectID uuid.UUID, employeeIDs []uuid.UUID) error {
	if len(employeeIDs) == 0 {
		return ErrNoEmployeesGiven
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	users, err := s.users.GetUsersByIDs(ctx, employeeIDs)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]auth.Users, len(users))
	for _, u := range users {
		found[u.ID] = u
	}
	for _, id := range employeeIDs {
		u, ok := found[id]
		if !ok || !u.Is_active {
			return ErrUnknownEmployee
		}
		if u.Role != auth.RoleEmployee {
			return ErrNotAnEmployee
		}
	}

	return s.repo.AddEmployees(ctx, projectID, employeeIDs)
}

func validStatus(status Status) bool {
	switch status {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}
