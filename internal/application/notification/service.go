// Package notification delivers login codes through the configured mail
// transport, guarded by a timeout and a circuit breaker.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/documentor-api/internal/domain"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	otpSubject  = "Your Login Verification Code"
	breakerName = "notifier"
)

type Service interface {
	SendOTP(ctx context.Context, email, code string, validity time.Duration) error
}

// Sender delivers one plain-text mail.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type breakerRecorder interface {
	SetBreakerState(name string, state float64)
}

type service struct {
	sender  Sender
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[struct{}]
}

type ServiceDeps struct {
	Sender  Sender
	Timeout time.Duration
	Metrics breakerRecorder
	// TripAfter consecutive failures opens the breaker for OpenFor.
	TripAfter uint32
	OpenFor   time.Duration
}

func NewService(deps ServiceDeps) Service {
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}
	if deps.TripAfter == 0 {
		deps.TripAfter = 5
	}
	if deps.OpenFor <= 0 {
		deps.OpenFor = 30 * time.Second
	}
	rec := deps.Metrics
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     deps.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= deps.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			if rec != nil {
				rec.SetBreakerState(name, stateValue(to))
			}
		},
	})
	return &service{sender: deps.Sender, timeout: deps.Timeout, cb: cb}
}

func (s *service) SendOTP(ctx context.Context, email, code string, validity time.Duration) error {
	body := fmt.Sprintf("Your OTP is: %s. Valid for %d minutes.", code, int(validity.Minutes()))
	_, err := s.cb.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return struct{}{}, s.sender.Send(ctx, email, otpSubject, body)
	})
	if err != nil {
		slog.Error("otp delivery failed", "email", email, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrEmailSendFailure, err)
	}
	return nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// LogSender writes outgoing mail to the structured log instead of
// delivering it. Only accepted outside production.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, body string) error {
	slog.Info("mail not delivered (log notifier)", "to", to, "subject", subject, "body", body)
	return nil
}
