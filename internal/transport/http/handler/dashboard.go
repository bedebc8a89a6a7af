package handler

import (
	"log/slog"
	"net/http"

	"github.com/documentor-api/internal/application/dashboard"
	"github.com/documentor-api/internal/transport/http/middleware"
)

type DashboardHandler struct {
	svc   dashboard.Service
	pages *Pages
}

func NewDashboardHandler(svc dashboard.Service, pages *Pages) *DashboardHandler {
	return &DashboardHandler{svc: svc, pages: pages}
}

func (h *DashboardHandler) Counts(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Counts(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Dashboard retrieved successfully", Data: c})
}

// Page renders the admin landing page. Missing counts degrade to a notice.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	c, err := h.svc.Counts(r.Context())
	if err != nil {
		slog.Warn("dashboard counts", "err", err)
		c = nil
	}
	h.pages.render(w, http.StatusOK, "admin.html", map[string]any{"User": u, "Counts": c})
}
