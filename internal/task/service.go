package task

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Oniqq60/performance_assessment/internal/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Caller — аутентифицированный инициатор перехода.
type Caller struct {
	ID   uuid.UUID
	Role auth.Role
}

func (c Caller) isAdmin() bool { return c.Role == auth.RoleAdmin }

// ProjectDirectory отвечает на вопросы о проектах и их составе.
// Реализуется репозиторием проектов.
type ProjectDirectory interface {
	ProjectExists(ctx context.Context, id uuid.UUID) (bool, error)
	IsMember(ctx context.Context, projectID, employeeID uuid.UUID) (bool, error)
}

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrNotProjectMember = errors.New("employee is not a member of the task's project")
)

// TaskUpdate — частичное обновление полей задачи; nil-поле не трогается.
type TaskUpdate struct {
	Title       *string
	Description *string
	Department  *string
	Deadline    *time.Time
}

type TaskService interface {
	CreateTask(ctx context.Context, caller Caller, projectID uuid.UUID, title, description, department string, deadline time.Time) (Task, error)
	UpdateTask(ctx context.Context, caller Caller, taskID uuid.UUID, upd TaskUpdate) (Task, error)
	AssignTask(ctx context.Context, caller Caller, taskID, employeeID uuid.UUID) (Task, error)
	StartWork(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error)
	SubmitWork(ctx context.Context, caller Caller, taskID uuid.UUID, githubLink string) (Task, error)
	Evaluate(ctx context.Context, caller Caller, taskID uuid.UUID, score float64, feedback string) (Task, error)
	Complete(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error)
	RequestRevision(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error)
	GetTask(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error)
	TaskList(ctx context.Context, caller Caller, projectID *uuid.UUID, status *Status) ([]Task, error)
}

type taskService struct {
	repo          TaskRepository
	projects      ProjectDirectory
	kafkaProducer KafkaProducer
}

func NewTaskService(repo TaskRepository, projects ProjectDirectory, kafkaProducer KafkaProducer) TaskService {
	return &taskService{
		repo:          repo,
		projects:      projects,
		kafkaProducer: kafkaProducer,
	}
}

func (s *taskService) CreateTask(ctx context.Context, caller Caller, projectID uuid.UUID, title, description, department string, deadline time.Time) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrTitleRequired
	}
	if strings.TrimSpace(description) == "" {
		return Task{}, ErrDescription
	}
	if strings.TrimSpace(department) == "" {
		return Task{}, ErrDepartmentRequired
	}
	if deadline.IsZero() {
		return Task{}, ErrDeadlineRequired
	}

	exists, err := s.projects.ProjectExists(ctx, projectID)
	if err != nil {
		return Task{}, err
	}
	if !exists {
		return Task{}, ErrProjectNotFound
	}

	task := Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Department:  strings.TrimSpace(department),
		Deadline:    deadline,
		Status:      StatusUnassigned,
		CreatedBy:   caller.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return Task{}, err
	}

	return task, nil
}

// UpdateTask правит описательные поля задачи. Завершённая задача
// неизменяема; статус и поля сабмита этим путём не трогаются.
func (s *taskService) UpdateTask(ctx context.Context, caller Caller, taskID uuid.UUID, upd TaskUpdate) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}

	updates := map[string]interface{}{}
	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return Task{}, ErrTitleRequired
		}
		updates["title"] = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		if strings.TrimSpace(*upd.Description) == "" {
			return Task{}, ErrDescription
		}
		updates["description"] = strings.TrimSpace(*upd.Description)
	}
	if upd.Department != nil {
		if strings.TrimSpace(*upd.Department) == "" {
			return Task{}, ErrDepartmentRequired
		}
		updates["department"] = strings.TrimSpace(*upd.Department)
	}
	if upd.Deadline != nil {
		if upd.Deadline.IsZero() {
			return Task{}, ErrDeadlineRequired
		}
		updates["deadline"] = *upd.Deadline
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if existing.Status == StatusCompleted {
		return Task{}, invalidTransition(existing.Status, existing.Status)
	}
	if len(updates) == 0 {
		return existing, nil
	}

	updates["updated_at"] = time.Now()
	return s.transition(ctx, taskID, existing.Status, existing.Status, updates)
}

// AssignTask назначает исполнителя. Допускается и переназначение,
// пока работа не начата и не сдана.
func (s *taskService) AssignTask(ctx context.Context, caller Caller, taskID, employeeID uuid.UUID) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	if existing.Status != StatusUnassigned && existing.Status != StatusAssigned {
		return Task{}, invalidTransition(existing.Status, StatusAssigned)
	}

	// Кросс-сущностный инвариант: исполнитель обязан состоять в проекте задачи
	member, err := s.projects.IsMember(ctx, existing.ProjectID, employeeID)
	if err != nil {
		return Task{}, err
	}
	if !member {
		return Task{}, ErrNotProjectMember
	}

	return s.transition(ctx, taskID, existing.Status, StatusAssigned, map[string]interface{}{
		"assigned_to": employeeID,
		"status":      StatusAssigned,
		"updated_at":  time.Now(),
	})
}

func (s *taskService) StartWork(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error) {
	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	if existing.AssignedTo == nil || *existing.AssignedTo != caller.ID {
		return Task{}, ErrForbidden
	}
	if existing.Status != StatusAssigned {
		return Task{}, invalidTransition(existing.Status, StatusInProgress)
	}

	return s.transition(ctx, taskID, existing.Status, StatusInProgress, map[string]interface{}{
		"status":     StatusInProgress,
		"updated_at": time.Now(),
	})
}

// SubmitWork принимает ссылку на репозиторий от назначенного сотрудника.
// Дедлайн информационный: опоздание не блокирует сдачу, но помечается.
func (s *taskService) SubmitWork(ctx context.Context, caller Caller, taskID uuid.UUID, githubLink string) (Task, error) {
	// Валидация до каких-либо изменений состояния
	githubLink = strings.TrimSpace(githubLink)
	if err := ValidateRepoURL(githubLink); err != nil {
		return Task{}, err
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	if existing.AssignedTo == nil || *existing.AssignedTo != caller.ID {
		return Task{}, ErrForbidden
	}
	if existing.Status != StatusAssigned && existing.Status != StatusInProgress {
		return Task{}, invalidTransition(existing.Status, StatusSubmitted)
	}

	now := time.Now()
	late := now.After(existing.Deadline)

	updated, err := s.transition(ctx, taskID, existing.Status, StatusSubmitted, map[string]interface{}{
		"github_link":    githubLink,
		"submitted_at":   now,
		"submitted_late": late,
		"status":         StatusSubmitted,
		"updated_at":     now,
	})
	if err != nil {
		return Task{}, err
	}

	s.publish(TaskEvent{
		TaskID:     updated.ID.String(),
		ProjectID:  updated.ProjectID.String(),
		EmployeeID: caller.ID.String(),
		Status:     string(StatusSubmitted),
		GithubLink: githubLink,
		Late:       late,
		Timestamp:  now,
	})

	return updated, nil
}

// Evaluate записывает результат внешнего evaluator. Разрешён для SUBMITTED
// и для COMPLETED без оценки: закрытие задачи и приход оценки развязаны.
func (s *taskService) Evaluate(ctx context.Context, caller Caller, taskID uuid.UUID, score float64, feedback string) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}
	if err := ValidateScore(score); err != nil {
		return Task{}, err
	}
	if strings.TrimSpace(feedback) == "" {
		return Task{}, ErrFeedbackRequired
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	evaluable := existing.Status == StatusSubmitted ||
		(existing.Status == StatusCompleted && existing.Score == nil)
	if !evaluable {
		return Task{}, invalidTransition(existing.Status, StatusCompleted)
	}

	now := time.Now()
	updated, err := s.transition(ctx, taskID, existing.Status, StatusCompleted, map[string]interface{}{
		"score":        score,
		"feedback":     strings.TrimSpace(feedback),
		"evaluated_at": now,
		"status":       StatusCompleted,
		"updated_at":   now,
	})
	if err != nil {
		return Task{}, err
	}

	employeeID := ""
	if updated.AssignedTo != nil {
		employeeID = updated.AssignedTo.String()
	}
	s.publish(TaskEvent{
		TaskID:     updated.ID.String(),
		ProjectID:  updated.ProjectID.String(),
		EmployeeID: employeeID,
		Status:     string(StatusCompleted),
		Score:      &score,
		Timestamp:  now,
	})

	return updated, nil
}

// Complete закрывает сданную задачу до прихода оценки (score остаётся пустым).
func (s *taskService) Complete(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if existing.Status != StatusSubmitted {
		return Task{}, invalidTransition(existing.Status, StatusCompleted)
	}

	return s.transition(ctx, taskID, existing.Status, StatusCompleted, map[string]interface{}{
		"status":     StatusCompleted,
		"updated_at": time.Now(),
	})
}

// RequestRevision возвращает сданную задачу исполнителю без оценки.
// Поля сабмита очищаются.
func (s *taskService) RequestRevision(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error) {
	if !caller.isAdmin() {
		return Task{}, ErrForbidden
	}

	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if existing.Status != StatusSubmitted {
		return Task{}, invalidTransition(existing.Status, StatusAssigned)
	}

	return s.transition(ctx, taskID, existing.Status, StatusAssigned, map[string]interface{}{
		"github_link":    nil,
		"submitted_at":   nil,
		"submitted_late": false,
		"status":         StatusAssigned,
		"updated_at":     time.Now(),
	})
}

func (s *taskService) GetTask(ctx context.Context, caller Caller, taskID uuid.UUID) (Task, error) {
	existing, err := s.getTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	// Сотрудник видит только свои задачи
	if !caller.isAdmin() && (existing.AssignedTo == nil || *existing.AssignedTo != caller.ID) {
		return Task{}, ErrTaskNotFound
	}
	return existing, nil
}

func (s *taskService) TaskList(ctx context.Context, caller Caller, projectID *uuid.UUID, status *Status) ([]Task, error) {
	if status != nil && !validTaskStatus(*status) {
		return nil, ErrInvalidStatusFilter
	}
	var assignedTo *uuid.UUID
	if !caller.isAdmin() {
		id := caller.ID
		assignedTo = &id
	}
	return s.repo.TaskList(ctx, projectID, assignedTo, status)
}

func (s *taskService) getTask(ctx context.Context, taskID uuid.UUID) (Task, error) {
	existing, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}
	return existing, nil
}

// transition применяет переход с optimistic-контролем: если статус успел
// поменяться между чтением и UPDATE, перечитываем и отдаём InvalidTransition.
func (s *taskService) transition(ctx context.Context, taskID uuid.UUID, from, to Status, updates map[string]interface{}) (Task, error) {
	ok, err := s.repo.TransitionTask(ctx, taskID, from, updates)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		current, err := s.getTask(ctx, taskID)
		if err != nil {
			return Task{}, err
		}
		return Task{}, invalidTransition(current.Status, to)
	}
	return s.getTask(ctx, taskID)
}

// publish отправляет событие асинхронно, не блокируя ответ
func (s *taskService) publish(event TaskEvent) {
	if s.kafkaProducer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.kafkaProducer.SendTaskEvent(ctx, event); err != nil {
			log.Printf("failed to send task event to kafka: %v", err)
		}
	}()
}

func validTaskStatus(status Status) bool {
	switch status {
	case StatusUnassigned, StatusAssigned, StatusInProgress, StatusSubmitted, StatusCompleted:
		return true
	}
	return false
}
