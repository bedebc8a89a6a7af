package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/apidoc"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

var apiDocFilters = map[string]filterSpec{
	"is_active": {kind: filterBool},
	"method":    {allowed: []string{"GET", "POST", "PUT", "DELETE", "PATCH"}},
}

type APIDocHandler struct {
	svc apidoc.Service
}

func NewAPIDocHandler(svc apidoc.Service) *APIDocHandler { return &APIDocHandler{svc: svc} }

func (h *APIDocHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, apiDocFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	docs, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "API docs", docs, p)
}

func (h *APIDocHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "API doc retrieved successfully", Data: doc})
}

func (h *APIDocHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.CreateAPIDocRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	doc, err := h.svc.Create(r.Context(), admin.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "API doc created successfully", Data: doc})
}

func (h *APIDocHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAPIDocRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	doc, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "API doc updated successfully", Data: doc})
}

func (h *APIDocHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	active, err := decodeStatus(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	doc, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "API doc status updated successfully", Data: doc})
}

func (h *APIDocHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "API doc deleted successfully"})
}
