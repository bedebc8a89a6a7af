package handler

import (
	"net/http"

	"github.com/documentor-api/internal/application/billing"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

var (
	transactionFilters = map[string]filterSpec{
		"status": {allowed: []string{
			domain.TransactionPending, domain.TransactionCompleted,
			domain.TransactionFailed, domain.TransactionRefunded,
		}},
		"subscription_id": {},
		"is_active":       {kind: filterBool},
	}
	subscriptionFilters = map[string]filterSpec{
		"status": {allowed: []string{
			domain.SubscriptionActive, domain.SubscriptionCanceled, domain.SubscriptionPastDue,
			domain.SubscriptionUnpaid, domain.SubscriptionTrialing,
		}},
		"user_id":    {},
		"app_id":     {},
		"package_id": {},
	}
)

type TransactionHandler struct {
	svc billing.TransactionService
}

func NewTransactionHandler(svc billing.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, transactionFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	txs, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Transactions", txs, p)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Transaction retrieved successfully", Data: tx})
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	tx, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Transaction created successfully", Data: tx})
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	tx, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Transaction status updated successfully", Data: tx})
}

type SubscriptionHandler struct {
	svc billing.SubscriptionService
}

func NewSubscriptionHandler(svc billing.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, subscriptionFilters)
	if err != nil {
		httpError(w, r, err)
		return
	}
	subs, p, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeList(w, "Subscriptions", subs, p)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Subscription retrieved successfully", Data: sub})
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	sub, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Subscription created successfully", Data: sub})
}

func (h *SubscriptionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.SubscriptionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	sub, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Subscription status updated successfully", Data: sub})
}

// Cancel accepts an optional {"cancel_at": RFC3339} body.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelSubscriptionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			httpError(w, r, err)
			return
		}
	}
	sub, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), req.CancelAt)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Subscription canceled successfully", Data: sub})
}
