package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/billing"
	"github.com/documentor-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

var packageFilters = map[string]filterSpec{
	"is_active": {kind: filterBool},
	"type":      {allowed: []string{domain.PackageTypeUser, domain.PackageTypeApp}},
}

type PackageHandler struct {
	svc billing.PackageService
}

func NewPackageHandler(svc billing.PackageService) *PackageHandler {
	return &PackageHandler{svc: svc}
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, packageFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	pkgs, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Packages", pkgs, p)
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Package retrieved successfully", Data: pkg})
}

func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePackageRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	pkg, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Package created successfully", Data: pkg})
}

func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePackageRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	pkg, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Package updated successfully", Data: pkg})
}

func (h *PackageHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	active, err := decodeStatus(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	pkg, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Package status updated successfully", Data: pkg})
}

func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Package deleted successfully"})
}
