package task

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	CreateTask(ctx context.Context, t Task) error
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	// TransitionTask применяет переход атомарно: UPDATE срабатывает только если
	// статус задачи всё ещё from. Возвращает false, если статус успел измениться.
	TransitionTask(ctx context.Context, id uuid.UUID, from Status, updates map[string]interface{}) (bool, error)
	TaskList(ctx context.Context, projectID, assignedTo *uuid.UUID, status *Status) ([]Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateTask(ctx context.Context, t Task) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *taskRepository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	return task, err
}

func (r *taskRepository) TransitionTask(ctx context.Context, id uuid.UUID, from Status, updates map[string]interface{}) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *taskRepository) TaskList(ctx context.Context, projectID, assignedTo *uuid.UUID, status *Status) ([]Task, error) {
	var tasks []Task
	tx := r.db.WithContext(ctx)

	if projectID != nil {
		tx = tx.Where("project_id = ?", *projectID)
	}
	if assignedTo != nil {
		tx = tx.Where("assigned_to = ?", *assignedTo)
	}
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}

	if err := tx.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
