package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/documentor-api/internal/application/auth"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/middleware"
)

const (
	stepEmail = "email"
	stepOTP   = "otp"
	stepName  = "name"
)

type loginView struct {
	Step        string
	Email       string
	RedirectURI string
	Ticket      string
	Error       string
	Cooldown    int
}

// AuthHandler serves the passwordless login pages.
type AuthHandler struct {
	svc          auth.Service
	pages        *Pages
	cookieMaxAge int
	cookieSecure bool
	cooldown     int
}

type AuthHandlerDeps struct {
	Service        auth.Service
	Pages          *Pages
	CookieMaxAge   int
	CookieSecure   bool
	ResendCooldown time.Duration
}

func NewAuthHandler(deps AuthHandlerDeps) *AuthHandler {
	return &AuthHandler{
		svc:          deps.Service,
		pages:        deps.Pages,
		cookieMaxAge: deps.CookieMaxAge,
		cookieSecure: deps.CookieSecure,
		cooldown:     int(deps.ResendCooldown / time.Second),
	}
}

func redirectURIFrom(r *http.Request) string {
	v := strings.TrimSpace(r.FormValue("redirect_uri"))
	if v == "" {
		return "/"
	}
	return v
}

// LoginPage shows the email step, or sends an already signed-in visitor on
// to their destination.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirectURI := redirectURIFrom(r)
	if token := middleware.TokenFromRequest(r); token != "" {
		u, err := h.svc.RestoreSession(r.Context(), token)
		if err == nil {
			h.finish(w, r, token, h.svc.ResolveRedirect(u, token, redirectURI))
			return
		}
		middleware.ClearSessionCookie(w, h.cookieSecure)
	}
	h.pages.render(w, http.StatusOK, "login.html", loginView{Step: stepEmail, RedirectURI: redirectURI})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		Email:       auth.NormalizeEmail(r.FormValue("email")),
		RedirectURI: redirectURIFrom(r),
	}
	err := h.svc.SendOTP(r.Context(), view.Email)
	var cooldown *auth.CooldownError
	switch {
	case err == nil:
		view.Step, view.Cooldown = stepOTP, h.cooldown
		h.pages.render(w, http.StatusOK, "login.html", view)
	case errors.As(err, &cooldown):
		view.Step, view.Cooldown, view.Error = stepOTP, cooldown.Remaining, cooldown.Error()
		h.pages.render(w, http.StatusOK, "login.html", view)
	case errors.Is(err, domain.ErrBadRequest):
		view.Step, view.Error = stepEmail, "Please enter a valid email address"
		h.pages.render(w, http.StatusBadRequest, "login.html", view)
	default:
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			logFailure(r, err)
		}
		view.Step, view.Error = stepEmail, "Failed to send OTP"
		h.pages.render(w, status, "login.html", view)
	}
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		Email:       auth.NormalizeEmail(r.FormValue("email")),
		RedirectURI: redirectURIFrom(r),
	}
	res, err := h.svc.VerifyOTP(r.Context(), view.Email, r.FormValue("otp"), view.RedirectURI)
	switch {
	case err == nil:
	case domain.IsOTPFailure(err):
		view.Step, view.Error = stepOTP, "Invalid or expired OTP"
		h.pages.render(w, http.StatusOK, "login.html", view)
		return
	case errors.Is(err, domain.ErrForbidden):
		view.Step, view.Error = stepEmail, "This account has been disabled"
		h.pages.render(w, http.StatusForbidden, "login.html", view)
		return
	case errors.Is(err, domain.ErrBadRequest):
		view.Step, view.Error = stepEmail, "Please enter a valid email address"
		h.pages.render(w, http.StatusBadRequest, "login.html", view)
		return
	default:
		logFailure(r, err)
		view.Step, view.Error = stepOTP, "Verification failed"
		h.pages.render(w, http.StatusInternalServerError, "login.html", view)
		return
	}

	if res.Step == auth.StepAwaitingName {
		view.Step, view.Ticket = stepName, res.Ticket
		h.pages.render(w, http.StatusOK, "login.html", view)
		return
	}
	h.finish(w, r, res.Token, res.Redirect)
}

func (h *AuthHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		Email:       auth.NormalizeEmail(r.FormValue("email")),
		RedirectURI: redirectURIFrom(r),
		Ticket:      r.FormValue("ticket"),
	}
	res, err := h.svc.CompleteRegistration(r.Context(), view.Ticket, view.Email, r.FormValue("full_name"), view.RedirectURI)
	switch {
	case err == nil:
		h.finish(w, r, res.Token, res.Redirect)
	case errors.Is(err, domain.ErrUnauthorized):
		view.Step, view.Ticket, view.Error = stepEmail, "", "Your verification expired, please sign in again"
		h.pages.render(w, http.StatusUnauthorized, "login.html", view)
	case errors.Is(err, domain.ErrDuplicateEmail):
		view.Step, view.Error = stepName, "This email is already registered, please sign in"
		h.pages.render(w, http.StatusConflict, "login.html", view)
	case errors.Is(err, domain.ErrBadRequest):
		view.Step, view.Error = stepName, "Full name must be between 2 and 100 characters"
		h.pages.render(w, http.StatusBadRequest, "login.html", view)
	default:
		logFailure(r, err)
		view.Step, view.Error = stepName, "Registration failed"
		h.pages.render(w, http.StatusInternalServerError, "login.html", view)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Home is the signed-in landing page.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	h.pages.render(w, http.StatusOK, "home.html", map[string]any{"User": u})
}

func (h *AuthHandler) finish(w http.ResponseWriter, r *http.Request, token string, to auth.Redirect) {
	if to.SetCookie {
		middleware.SetSessionCookie(w, token, h.cookieMaxAge, h.cookieSecure)
	}
	http.Redirect(w, r, to.URL, http.StatusSeeOther)
}
