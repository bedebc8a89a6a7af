package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/user"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

var userFilters = map[string]filterSpec{
	"is_active": {kind: filterBool},
	"role":      {allowed: []string{domain.RoleEndUser, domain.RoleAdmin}},
}

// UserHandler serves the admin user endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, userFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	users, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Users", users, p)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User retrieved successfully", Data: u})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "User created successfully", Data: u})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User updated successfully", Data: u})
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	active, err := decodeStatus(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User status updated successfully", Data: u})
}

func (h *UserHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User status toggled successfully", Data: u})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User deleted successfully"})
}

// decodeStatus reads a {"is_active": bool} body.
func decodeStatus(r *http.Request) (bool, error) {
	var req domain.StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		return false, err
	}
	if err := validate.Struct(req); err != nil {
		return false, err
	}
	return *req.IsActive, nil
}
