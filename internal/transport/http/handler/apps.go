package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/app"
	"github.com/documentor-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

var appFilters = map[string]filterSpec{
	"is_active": {kind: filterBool},
	"owner_id":  {},
}

type AppHandler struct {
	svc app.Service
}

func NewAppHandler(svc app.Service) *AppHandler { return &AppHandler{svc: svc} }

func (h *AppHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, appFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	apps, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Apps", apps, p)
}

func (h *AppHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "App retrieved successfully", Data: a})
}

func (h *AppHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAppRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	a, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "App created successfully", Data: a})
}

func (h *AppHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAppRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	a, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "App updated successfully", Data: a})
}

func (h *AppHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	active, err := decodeStatus(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	a, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "App status updated successfully", Data: a})
}

func (h *AppHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "App deleted successfully"})
}
