package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedEvaluation struct {
	taskID   string
	score    float64
	feedback string
}

type fakeTaskAPI struct {
	calls []recordedEvaluation
	err   error
}

func (a *fakeTaskAPI) EvaluateTask(ctx context.Context, taskID string, score float64, feedback string) error {
	if a.err != nil {
		return a.err
	}
	a.calls = append(a.calls, recordedEvaluation{taskID: taskID, score: score, feedback: feedback})
	return nil
}

type fakeNotifier struct {
	sent []Notification
}

func (n *fakeNotifier) SendNotification(ctx context.Context, notification Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

func submittedEvent(taskID string) TaskEvent {
	return TaskEvent{
		TaskID:     taskID,
		ProjectID:  "p-1",
		EmployeeID: "e-1",
		Status:     "SUBMITTED",
		GithubLink: "https://github.com/acme/report",
		Timestamp:  time.Now(),
	}
}

func TestHandleEventEvaluatesSubmission(t *testing.T) {
	t.Parallel()
	api := &fakeTaskAPI{}
	handler := NewEventHandler(StubEvaluator{}, api, nil)

	require.NoError(t, handler.HandleEvent(context.Background(), submittedEvent("t-1")))
	require.Len(t, api.calls, 1)
	require.Equal(t, "t-1", api.calls[0].taskID)
	require.GreaterOrEqual(t, api.calls[0].score, 60.0)
	require.LessOrEqual(t, api.calls[0].score, 100.0)
	require.NotEmpty(t, api.calls[0].feedback)
}

func TestHandleEventIgnoresOtherStatuses(t *testing.T) {
	t.Parallel()
	api := &fakeTaskAPI{}
	handler := NewEventHandler(StubEvaluator{}, api, nil)

	event := submittedEvent("t-1")
	event.Status = "COMPLETED"
	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Empty(t, api.calls)
}

func TestHandleEventValidatesIdentifiers(t *testing.T) {
	t.Parallel()
	handler := NewEventHandler(StubEvaluator{}, &fakeTaskAPI{}, nil)

	event := submittedEvent("")
	require.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrEmptyTaskID)

	event = submittedEvent("t-1")
	event.EmployeeID = "  "
	require.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrEmptyEmployeeID)
}

func TestHandleEventNotifiesOnLateSubmission(t *testing.T) {
	t.Parallel()
	api := &fakeTaskAPI{}
	notifier := &fakeNotifier{}
	handler := NewEventHandler(StubEvaluator{}, api, notifier)

	event := submittedEvent("t-1")
	event.Late = true
	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "task_submitted_late", notifier.sent[0].Type)
	require.Len(t, api.calls, 1)
}

func TestStubEvaluatorDeterministic(t *testing.T) {
	t.Parallel()
	evaluator := StubEvaluator{}
	sub := Submission{TaskID: "t-1", EmployeeID: "e-1", GithubLink: "https://github.com/acme/report"}

	first, err := evaluator.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	second, err := evaluator.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, first.Score, second.Score)
	require.GreaterOrEqual(t, first.Score, 60.0)
	require.LessOrEqual(t, first.Score, 100.0)

	// Просрочка не опускает оценку ниже нижней границы
	sub.Late = true
	late, err := evaluator.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	require.LessOrEqual(t, late.Score, first.Score)
	require.GreaterOrEqual(t, late.Score, 60.0)
}
