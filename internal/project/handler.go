package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Oniqq60/performance_assessment/internal/auth"
	"github.com/Oniqq60/performance_assessment/internal/dto"
	"github.com/google/uuid"
)

type Handler struct {
	service ProjectService
	authn   *auth.Authenticator
}

func NewHandler(service ProjectService, authn *auth.Authenticator) *Handler {
	return &Handler{service: service, authn: authn}
}

// Projects обрабатывает /projects: POST создание, GET список.
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	adminID, role, err := h.authn.Authenticate(r)
	if h.handleAuthError(w, err) {
		return
	}

	switch r.Method {
	case http.MethodPost:
		if !strings.EqualFold(string(role), string(auth.RoleAdmin)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h.create(w, r, adminID)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ProjectByID обрабатывает /projects/{id} и /projects/{id}/assign-employees.
func (h *Handler) ProjectByID(w http.ResponseWriter, r *http.Request) {
	_, role, err := h.authn.Authenticate(r)
	if h.handleAuthError(w, err) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/projects/")
	idPart, action, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idPart)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	isAdmin := strings.EqualFold(string(role), string(auth.RoleAdmin))

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && r.Method == http.MethodPatch:
		if !isAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h.updateStatus(w, r, id)
	case action == "assign-employees" && r.Method == http.MethodPost:
		if !isAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h.assignEmployees(w, r, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, adminID uuid.UUID) {
	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p, err := h.service.CreateProject(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), adminID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(projectResponse(p, nil))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := Status(v)
		status = &s
	}

	projects, err := h.service.ProjectList(r.Context(), status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, projectResponse(p, nil))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, members, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(projectResponse(p, members))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req dto.UpdateProjectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, Status(req.Status)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) assignEmployees(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req dto.AssignEmployeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	employeeIDs := make([]uuid.UUID, 0, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		empID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid employee id: "+raw, http.StatusBadRequest)
			return
		}
		employeeIDs = append(employeeIDs, empID)
	}

	if err := h.service.AssignEmployees(r.Context(), id, employeeIDs); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
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
	switch {
	case errors.Is(err, ErrProjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrUnknownEmployee),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrNotAnEmployee),
		errors.Is(err, ErrNoEmployeesGiven):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func projectResponse(p Project, members []uuid.UUID) dto.ProjectResponse {
	employees := make([]string, 0, len(members))
	for _, id := range members {
		employees = append(employees, id.String())
	}
	return dto.ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		Employees:   employees,
		CreatedBy:   p.CreatedBy.String(),
		CreatedAt:   p.CreatedAt,
	}
}
