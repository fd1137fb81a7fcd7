package evaluation

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Notifier отвечает за доставку уведомлений о сданных задачах.
type Notifier interface {
	SendNotification(ctx context.Context, notification Notification) error
}

// Notification описывает уведомление администратору.
type Notification struct {
	Type      string
	TaskID    string
	UserID    string
	Message   string
	CreatedAt time.Time
}

// NewLateSubmissionNotification создаёт уведомление о просроченной сдаче.
func NewLateSubmissionNotification(event TaskEvent) Notification {
	message := fmt.Sprintf(
		"Задача %s сдана после дедлайна сотрудником %s",
		event.TaskID,
		event.EmployeeID,
	)

	return Notification{
		Type:      "task_submitted_late",
		TaskID:    event.TaskID,
		UserID:    event.EmployeeID,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

type logNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendNotification(ctx context.Context, notification Notification) error {
	entry := fmt.Sprintf(
		"[NOTIFICATION] type=%s task=%s user=%s message=%q at=%s",
		notification.Type,
		notification.TaskID,
		notification.UserID,
		notification.Message,
		notification.CreatedAt.Format(time.RFC3339),
	)
	n.logger.Println(entry)
	return nil
}
