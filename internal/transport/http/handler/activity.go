package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/activity"
	"github.com/documentor-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

var (
	historyFilters = map[string]filterSpec{
		"req_from": {allowed: []string{domain.RequestFromUser, domain.RequestFromApp}},
		"user_id":  {},
		"app_id":   {},
	}
	logFilters = map[string]filterSpec{
		"type":       {allowed: []string{domain.LogInfo, domain.LogWarning, domain.LogError, domain.LogDebug}},
		"created_by": {},
	}
)

// ActivityHandler exposes conversion histories and audit logs read-only.
type ActivityHandler struct {
	svc activity.Service
}

func NewActivityHandler(svc activity.Service) *ActivityHandler { return &ActivityHandler{svc: svc} }

func (h *ActivityHandler) ListHistories(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, historyFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	items, p, err := h.svc.ListHistories(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Histories", items, p)
}

func (h *ActivityHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "History retrieved successfully", Data: item})
}

func (h *ActivityHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, logFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	items, p, err := h.svc.ListLogs(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Logs", items, p)
}

func (h *ActivityHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Log retrieved successfully", Data: item})
}
