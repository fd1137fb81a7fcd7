package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Oniqq60/performance_assessment/internal/auth"
	"github.com/Oniqq60/performance_assessment/internal/dto"
	"github.com/google/uuid"
)

type Handler struct {
	service TaskService
	authn   *auth.Authenticator
}

func NewHandler(service TaskService, authn *auth.Authenticator) *Handler {
	return &Handler{service: service, authn: authn}
}

// ProjectTasks обрабатывает POST /projects/{id}/tasks — создание задачи в проекте.
func (h *Handler) ProjectTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if h.handleAuthError(w, err) {
		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/projects/")
	idPart, _, _ := strings.Cut(rest, "/")
	projectID, err := uuid.Parse(idPart)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		http.Error(w, "deadline must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateTask(r.Context(), caller, projectID, req.Title, req.Description, req.Department, deadline)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(taskResponse(created))
}

// Tasks обрабатывает GET /tasks — список с фильтрами project_id и status.
// Сотрудник всегда видит только свои задачи.
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if h.handleAuthError(w, err) {
		return
	}

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var projectID *uuid.UUID
	if v := r.URL.Query().Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}
		projectID = &id
	}
	var status *Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := Status(strings.ToUpper(v))
		status = &s
	}

	tasks, err := h.service.TaskList(r.Context(), caller, projectID, status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskResponse(t))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// TaskByID обрабатывает /tasks/{id} и действия-переходы:
// POST /tasks/{id}/{assign|start|submit|evaluate|complete|revision}
func (h *Handler) TaskByID(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if h.handleAuthError(w, err) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	idPart, action, _ := strings.Cut(rest, "/")
	taskID, err := uuid.Parse(idPart)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			t, err := h.service.GetTask(r.Context(), caller, taskID)
			if err != nil {
				h.writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(taskResponse(t))
		case http.MethodPatch:
			h.update(w, r, caller, taskID)
		default:
			w.Header().Set("Allow", "GET, PATCH")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var t Task
	switch action {
	case "assign":
		var req dto.AssignTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		employeeID, err := uuid.Parse(req.EmployeeID)
		if err != nil {
			http.Error(w, "invalid employee_id", http.StatusBadRequest)
			return
		}
		t, err = h.service.AssignTask(r.Context(), caller, taskID, employeeID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	case "start":
		t, err = h.service.StartWork(r.Context(), caller, taskID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	case "submit":
		var req dto.SubmitTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err = h.service.SubmitWork(r.Context(), caller, taskID, req.GithubLink)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	case "evaluate":
		var req dto.EvaluateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err = h.service.Evaluate(r.Context(), caller, taskID, req.Score, req.Feedback)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	case "complete":
		t, err = h.service.Complete(r.Context(), caller, taskID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	case "revision":
		t, err = h.service.RequestRevision(r.Context(), caller, taskID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taskResponse(t))
}

// update обрабатывает PATCH /tasks/{id} — правка описательных полей.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, caller Caller, taskID uuid.UUID) {
	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	upd := TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
	}
	if req.Deadline != nil {
		deadline, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			http.Error(w, "deadline must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		upd.Deadline = &deadline
	}

	t, err := h.service.UpdateTask(r.Context(), caller, taskID, upd)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taskResponse(t))
}

func (h *Handler) caller(r *http.Request) (Caller, error) {
	userID, role, err := h.authn.Authenticate(r)
	if err != nil {
		return Caller{}, err
	}
	return Caller{ID: userID, Role: role}, nil
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	} else {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var transition *InvalidTransitionError
	switch {
	case errors.As(err, &transition):
		http.Error(w, transition.Error(), http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrTaskNotFound):
		http.Error(w, "task not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidStatusFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func taskResponse(t Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:            t.ID.String(),
		ProjectID:     t.ProjectID.String(),
		Title:         t.Title,
		Description:   t.Description,
		Department:    t.Department,
		Deadline:      t.Deadline,
		Status:        string(t.Status),
		SubmittedAt:   t.SubmittedAt,
		SubmittedLate: t.SubmittedLate,
		Score:         t.Score,
		EvaluatedAt:   t.EvaluatedAt,
		CreatedBy:     t.CreatedBy.String(),
		CreatedAt:     t.CreatedAt,
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = t.AssignedTo.String()
	}
	if t.GithubLink != nil {
		resp.GithubLink = *t.GithubLink
	}
	if t.Feedback != nil {
		resp.Feedback = *t.Feedback
	}
	return resp
}
