package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/documentor-api/internal/application/auth"
	"github.com/documentor-api/internal/domain"
	"github.com/goccy/go-json"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListEnvelope wraps paginated admin listings.
type ListEnvelope struct {
	Message    string            `json:"message"`
	Data       any               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// httpError maps domain errors to status codes. Unknown errors are logged
// and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logFailure(r, err)
	}
	writeError(w, status, msg)
}

func logFailure(r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
}

func statusFor(err error) (int, string) {
	var cooldown *auth.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, cooldown.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, message(err, domain.ErrNotFound)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, message(err, domain.ErrConflict)
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, message(err, domain.ErrBadRequest)
	case domain.IsOTPFailure(err):
		return http.StatusUnauthorized, "Invalid or expired OTP"
	case domain.IsTokenFailure(err), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrEmailSendFailure):
		return http.StatusInternalServerError, "Failed to send OTP"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// message drops the trailing ": <sentinel>" a wrapped error carries.
func message(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	return nil
}
