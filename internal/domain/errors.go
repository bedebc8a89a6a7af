package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Authentication flow errors.
var (
	ErrResendTooSoon    = errors.New("otp resend too soon")
	ErrOTPNotFound      = errors.New("otp not found")
	ErrOTPExpired       = errors.New("otp expired")
	ErrOTPMismatch      = errors.New("otp mismatch")
	ErrEmailSendFailure = errors.New("failed to send email")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrUserNotFound     = errors.New("user not found")
)

// IsOTPFailure reports whether err is one of the OTP verification outcomes
// that must be presented to the caller as a single generic failure.
func IsOTPFailure(err error) bool {
	return errors.Is(err, ErrOTPNotFound) || errors.Is(err, ErrOTPExpired) || errors.Is(err, ErrOTPMismatch)
}

// IsTokenFailure reports whether err came from session token verification.
func IsTokenFailure(err error) bool {
	return errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid)
}
