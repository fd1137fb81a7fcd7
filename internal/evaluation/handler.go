package evaluation

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
)

var (
	ErrEmptyTaskID     = errors.New("taskID is required")
	ErrEmptyEmployeeID = errors.New("employeeID is required")
)

// Submission — сданная работа, поступившая на оценку.
type Submission struct {
	TaskID     string
	EmployeeID string
	GithubLink string
	Late       bool
}

// Result — итог оценки.
type Result struct {
	Score    float64
	Feedback string
}

// Evaluator выставляет оценку сданной работе.
type Evaluator interface {
	Evaluate(ctx context.Context, submission Submission) (Result, error)
}

// TaskAPI отправляет оценку обратно в основной сервис.
type TaskAPI interface {
	EvaluateTask(ctx context.Context, taskID string, score float64, feedback string) error
}

type eventHandler struct {
	evaluator Evaluator
	api       TaskAPI
	notifier  Notifier
}

func NewEventHandler(evaluator Evaluator, api TaskAPI, notifier Notifier) EventHandler {
	return &eventHandler{
		evaluator: evaluator,
		api:       api,
		notifier:  notifier,
	}
}

func (h *eventHandler) HandleEvent(ctx context.Context, event TaskEvent) error {
	if strings.TrimSpace(event.TaskID) == "" {
		return ErrEmptyTaskID
	}
	if strings.TrimSpace(event.EmployeeID) == "" {
		return ErrEmptyEmployeeID
	}
	if !event.NeedsEvaluation() {
		return nil
	}

	if event.Late && h.notifier != nil {
		notification := NewLateSubmissionNotification(event)
		if err := h.notifier.SendNotification(ctx, notification); err != nil {
			log.Printf("send notification error: %v", err)
		}
	}

	submission := Submission{
		TaskID:     event.TaskID,
		EmployeeID: event.EmployeeID,
		GithubLink: event.GithubLink,
		Late:       event.Late,
	}

	result, err := h.evaluator.Evaluate(ctx, submission)
	if err != nil {
		return fmt.Errorf("evaluate submission: %w", err)
	}

	if err := h.api.EvaluateTask(ctx, event.TaskID, result.Score, result.Feedback); err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}

	return nil
}

// StubEvaluator выставляет детерминированную оценку по ссылке на репозиторий.
// За просрочку снимается штраф, оценка остаётся в диапазоне [60, 100].
type StubEvaluator struct {
	LatePenalty float64
}

func (e StubEvaluator) Evaluate(ctx context.Context, submission Submission) (Result, error) {
	hasher := fnv.New32a()
	hasher.Write([]byte(submission.GithubLink))
	score := 60 + float64(hasher.Sum32()%41)

	penalty := e.LatePenalty
	if penalty <= 0 {
		penalty = 10
	}
	if submission.Late {
		score -= penalty
		if score < 60 {
			score = 60
		}
	}

	feedback := fmt.Sprintf("Автоматическая оценка работы %s", submission.GithubLink)
	if submission.Late {
		feedback += " (сдано с опозданием)"
	}

	return Result{Score: score, Feedback: feedback}, nil
}
