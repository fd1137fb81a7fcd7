package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	CreateProject(ctx context.Context, p Project) error
	GetProject(ctx context.Context, id uuid.UUID) (Project, error)
	ProjectList(ctx context.Context, status *Status) ([]Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	AddEmployees(ctx context.Context, projectID uuid.UUID, employeeIDs []uuid.UUID) error
	Members(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, projectID, employeeID uuid.UUID) (bool, error)
	ProjectExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateProject(ctx context.Context, p Project) error {
	return r.db.WithContext(ctx).Create(&p).Error
}

func (r *projectRepository) GetProject(ctx context.Context, id uuid.UUID) (Project, error) {
	var p Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, err
}

func (r *projectRepository) ProjectList(ctx context.Context, status *Status) ([]Project, error) {
	var projects []Project
	tx := r.db.WithContext(ctx)
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	if err := tx.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

func (r *projectRepository) AddEmployees(ctx context.Context, projectID uuid.UUID, employeeIDs []uuid.UUID) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	rows := make([]ProjectEmployee, 0, len(employeeIDs))
	now := time.Now()
	for _, employeeID := range employeeIDs {
		rows = append(rows, ProjectEmployee{
			ProjectID:  projectID,
			EmployeeID: employeeID,
			AddedAt:    now,
		})
	}
	// Повторное назначение того же сотрудника не ошибка
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *projectRepository) Members(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&ProjectEmployee{}).
		Where("project_id = ?", projectID).
		Pluck("employee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *projectRepository) IsMember(ctx context.Context, projectID, employeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ProjectEmployee{}).
		Where("project_id = ? AND employee_id = ?", projectID, employeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *projectRepository) ProjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
