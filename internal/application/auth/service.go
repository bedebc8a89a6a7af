// Package auth drives the passwordless login flow: email, one-time code,
// optional name entry for new accounts, then a signed session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/documentor-api/internal/domain"
	jwtinfra "github.com/documentor-api/internal/infrastructure/jwt"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/documentor-api/internal/pkg/validate"
)

// Step is the screen the caller should show next.
type Step int

const (
	StepAwaitingEmail Step = iota
	StepAwaitingOTP
	StepAwaitingName
	StepAuthenticated
)

func (s Step) String() string {
	switch s {
	case StepAwaitingEmail:
		return "awaiting_email"
	case StepAwaitingOTP:
		return "awaiting_otp"
	case StepAwaitingName:
		return "awaiting_name"
	case StepAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Result is the outcome of a flow transition.
type Result struct {
	Step  Step
	Email string
	// Ticket is set on StepAwaitingName and must accompany CompleteRegistration.
	Ticket string
	// Token, User and Redirect are set on StepAuthenticated.
	Token    string
	User     *domain.User
	Redirect Redirect
}

// CooldownError is returned by SendOTP while a previous code is still
// within its resend cooldown.
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before requesting a new OTP", e.Remaining)
}

func (e *CooldownError) Unwrap() error { return domain.ErrResendTooSoon }

type Service interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code, redirectURI string) (*Result, error)
	CompleteRegistration(ctx context.Context, ticket, email, fullName, redirectURI string) (*Result, error)
	RestoreSession(ctx context.Context, token string) (*domain.User, error)
	ResolveRedirect(u *domain.User, token, redirectURI string) Redirect
}

type otpStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
}

type resendGuard interface {
	CanResend(ctx context.Context, email string) (bool, int, error)
	StartCooldown(ctx context.Context, email string) error
	Release(ctx context.Context, email string) error
}

type tokenProvider interface {
	Issue(email string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	IssueRegistration(email string) (string, error)
	VerifyRegistration(ticket string) (string, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type otpNotifier interface {
	SendOTP(ctx context.Context, email, code string, validity time.Duration) error
}

type recorder interface {
	OTPSent(outcome string)
	OTPVerified(outcome string)
	LoggedIn(kind string)
}

type auditor interface {
	Record(ctx context.Context, level, actor string, details map[string]any)
}

type service struct {
	otps        otpStore
	guard       resendGuard
	tokens      tokenProvider
	users       userStore
	notifier    otpNotifier
	metrics     recorder
	audit       auditor
	policy      RedirectPolicy
	otpValidity time.Duration
	now         func() time.Time
}

type ServiceDeps struct {
	OTPStore    otpStore
	Guard       resendGuard
	Tokens      tokenProvider
	UserRepo    userStore
	Notifier    otpNotifier
	Metrics     recorder
	Audit       auditor
	Policy      RedirectPolicy
	OTPValidity time.Duration
	Clock       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		otps:        deps.OTPStore,
		guard:       deps.Guard,
		tokens:      deps.Tokens,
		users:       deps.UserRepo,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		audit:       deps.Audit,
		policy:      deps.Policy,
		otpValidity: deps.OTPValidity,
		now:         deps.Clock,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.audit == nil {
		s.audit = nopAuditor{}
	}
	if s.otpValidity <= 0 {
		s.otpValidity = 5 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NormalizeEmail trims and lower-cases an address so lookups, cooldowns
// and codes all share one key per mailbox.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type emailInput struct {
	Email string `validate:"required,email,max=254"`
}

func checkEmail(email string) error {
	if err := validate.Struct(emailInput{Email: email}); err != nil {
		return fmt.Errorf("invalid email: %w", domain.ErrBadRequest)
	}
	return nil
}

func (s *service) SendOTP(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return err
	}
	allowed, remaining, err := s.guard.CanResend(ctx, email)
	if err != nil {
		return err
	}
	if !allowed {
		s.metrics.OTPSent("cooldown")
		return &CooldownError{Remaining: remaining}
	}
	if err := s.guard.StartCooldown(ctx, email); err != nil {
		return err
	}
	code, err := s.otps.Issue(ctx, email)
	if err != nil {
		s.release(ctx, email)
		return err
	}
	if err := s.notifier.SendOTP(ctx, email, code, s.otpValidity); err != nil {
		s.release(ctx, email)
		s.metrics.OTPSent("failed")
		if !errors.Is(err, domain.ErrEmailSendFailure) {
			err = fmt.Errorf("%w: %v", domain.ErrEmailSendFailure, err)
		}
		return err
	}
	s.metrics.OTPSent("sent")
	slog.Info("otp sent", "email", email)
	return nil
}

func (s *service) release(ctx context.Context, email string) {
	if err := s.guard.Release(ctx, email); err != nil {
		slog.Warn("failed to release otp cooldown", "email", email, "err", err)
	}
}

func (s *service) VerifyOTP(ctx context.Context, email, code, redirectURI string) (*Result, error) {
	email = NormalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := s.otps.Verify(ctx, email, strings.TrimSpace(code)); err != nil {
		if domain.IsOTPFailure(err) {
			s.metrics.OTPVerified(otpOutcome(err))
			return &Result{Step: StepAwaitingOTP, Email: email}, err
		}
		return nil, err
	}
	s.metrics.OTPVerified("valid")

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		ticket, err := s.tokens.IssueRegistration(email)
		if err != nil {
			return nil, err
		}
		return &Result{Step: StepAwaitingName, Email: email, Ticket: ticket}, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return s.authenticate(ctx, u, redirectURI, "existing")
}

type registrationInput struct {
	FullName string `validate:"required,min=2,max=100"`
}

func (s *service) CompleteRegistration(ctx context.Context, ticket, email, fullName, redirectURI string) (*Result, error) {
	ticketEmail, err := s.tokens.VerifyRegistration(ticket)
	if err != nil {
		return nil, fmt.Errorf("registration ticket: %w", domain.ErrUnauthorized)
	}
	if email != "" && NormalizeEmail(email) != ticketEmail {
		return nil, fmt.Errorf("email does not match ticket: %w", domain.ErrUnauthorized)
	}
	fullName = strings.TrimSpace(fullName)
	if err := validate.Struct(registrationInput{FullName: fullName}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:    id.NewAt(now),
		Email:     ticketEmail,
		FullName:  fullName,
		Role:      domain.RoleEndUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.LogInfo, u.UserID, map[string]any{"event": "user_registered", "email": u.Email})
	return s.authenticate(ctx, u, redirectURI, "registered")
}

func (s *service) authenticate(ctx context.Context, u *domain.User, redirectURI, kind string) (*Result, error) {
	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}
	s.metrics.LoggedIn(kind)
	s.audit.Record(ctx, domain.LogInfo, u.UserID, map[string]any{"event": "login", "kind": kind})
	return &Result{
		Step:     StepAuthenticated,
		Email:    u.Email,
		Token:    token,
		User:     u,
		Redirect: s.policy.ResolveRedirect(u, token, redirectURI),
	}, nil
}

// RestoreSession resolves a session token to an active user.
func (s *service) RestoreSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, claims.Email())
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return u, nil
}

func (s *service) ResolveRedirect(u *domain.User, token, redirectURI string) Redirect {
	return s.policy.ResolveRedirect(u, token, redirectURI)
}

func otpOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrOTPMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrOTPExpired):
		return "expired"
	default:
		return "not_found"
	}
}

type nopRecorder struct{}

func (nopRecorder) OTPSent(string)     {}
func (nopRecorder) OTPVerified(string) {}
func (nopRecorder) LoggedIn(string)    {}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, string, map[string]any) {}
