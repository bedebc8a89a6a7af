package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/documentor-api/internal/application/auth"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) SendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) VerifyOTP(ctx context.Context, email, code, redirectURI string) (*auth.Result, error) {
	args := m.Called(ctx, email, code, redirectURI)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) CompleteRegistration(ctx context.Context, ticket, email, fullName, redirectURI string) (*auth.Result, error) {
	args := m.Called(ctx, ticket, email, fullName, redirectURI)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) RestoreSession(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) ResolveRedirect(u *domain.User, token, redirectURI string) auth.Redirect {
	return m.Called(u, token, redirectURI).Get(0).(auth.Redirect)
}

func newAuthHandler(t *testing.T, svc auth.Service) *AuthHandler {
	t.Helper()
	pages, err := NewPages()
	require.NoError(t, err)
	return NewAuthHandler(AuthHandlerDeps{
		Service:        svc,
		Pages:          pages,
		CookieMaxAge:   3600,
		CookieSecure:   true,
		ResendCooldown: 3 * time.Minute,
	})
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginPage_RendersEmailStep(t *testing.T) {
	h := newAuthHandler(t, &mockAuthService{})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, httptest.NewRequest(http.MethodGet, "/login?redirect_uri=/documents", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `action="/send-otp"`)
	assert.Contains(t, rr.Body.String(), `value="/documents"`)
}

func TestLoginPage_ValidSessionRedirects(t *testing.T) {
	svc := &mockAuthService{}
	u := &domain.User{UserID: "u1", Email: "a@x.com", Role: domain.RoleEndUser, IsActive: true}
	svc.On("RestoreSession", mock.Anything, "tok").Return(u, nil)
	svc.On("ResolveRedirect", u, "tok", "/documents").Return(auth.Redirect{URL: "/documents", SetCookie: true})

	h := newAuthHandler(t, svc)
	req := httptest.NewRequest(http.MethodGet, "/login?redirect_uri=/documents", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "tok"})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/documents", rr.Header().Get("Location"))
	svc.AssertExpectations(t)
}

func TestLoginPage_InvalidCookieCleared(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RestoreSession", mock.Anything, "stale").Return(nil, domain.ErrTokenExpired)

	h := newAuthHandler(t, svc)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "stale"})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestSendOTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"sent", nil, http.StatusOK, `action="/verify-otp"`},
		{"cooldown", &auth.CooldownError{Remaining: 120}, http.StatusOK, "Please wait 120 seconds before requesting a new OTP"},
		{"invalid email", fmt.Errorf("email: %w", domain.ErrBadRequest), http.StatusBadRequest, `action="/send-otp"`},
		{"send failure", fmt.Errorf("smtp: %w", domain.ErrEmailSendFailure), http.StatusInternalServerError, "Failed to send OTP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			svc.On("SendOTP", mock.Anything, "a@x.com").Return(tt.err)
			h := newAuthHandler(t, svc)

			rr := httptest.NewRecorder()
			h.SendOTP(rr, postForm("/send-otp", url.Values{"email": {" A@X.com "}, "redirect_uri": {"/"}}))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestVerifyOTP_AuthenticatedSetsCookie(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@x.com", "123456", "/documents").Return(&auth.Result{
		Step:     auth.StepAuthenticated,
		Token:    "tok",
		Redirect: auth.Redirect{URL: "/documents", SetCookie: true},
	}, nil)
	h := newAuthHandler(t, svc)

	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, postForm("/verify-otp", url.Values{
		"email": {"a@x.com"}, "otp": {"123456"}, "redirect_uri": {"/documents"},
	}))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/documents", rr.Header().Get("Location"))
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestVerifyOTP_DeepLinkSkipsCookie(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@x.com", "123456", "yourapp://done").Return(&auth.Result{
		Step:     auth.StepAuthenticated,
		Token:    "tok",
		Redirect: auth.Redirect{URL: "yourapp://done?access_token=tok"},
	}, nil)
	h := newAuthHandler(t, svc)

	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, postForm("/verify-otp", url.Values{
		"email": {"a@x.com"}, "otp": {"123456"}, "redirect_uri": {"yourapp://done"},
	}))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "yourapp://done?access_token=tok", rr.Header().Get("Location"))
	assert.Nil(t, sessionCookie(rr))
}

func TestVerifyOTP_FailureShowsGenericMessage(t *testing.T) {
	for _, err := range []error{domain.ErrOTPMismatch, domain.ErrOTPExpired, domain.ErrOTPNotFound} {
		svc := &mockAuthService{}
		svc.On("VerifyOTP", mock.Anything, "a@x.com", "000000", "/").Return(nil, err)
		h := newAuthHandler(t, svc)

		rr := httptest.NewRecorder()
		h.VerifyOTP(rr, postForm("/verify-otp", url.Values{"email": {"a@x.com"}, "otp": {"000000"}}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid or expired OTP")
		assert.Contains(t, rr.Body.String(), `action="/verify-otp"`)
	}
}

func TestVerifyOTP_NewUserGetsNameStep(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "new@x.com", "123456", "/").Return(&auth.Result{
		Step:   auth.StepAwaitingName,
		Email:  "new@x.com",
		Ticket: "ticket-1",
	}, nil)
	h := newAuthHandler(t, svc)

	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, postForm("/verify-otp", url.Values{"email": {"new@x.com"}, "otp": {"123456"}}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/complete-registration"`)
	assert.Contains(t, rr.Body.String(), `value="ticket-1"`)
	assert.Nil(t, sessionCookie(rr))
}

func TestVerifyOTP_DisabledAccount(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@x.com", "123456", "/").
		Return(nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden))
	h := newAuthHandler(t, svc)

	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, postForm("/verify-otp", url.Values{"email": {"a@x.com"}, "otp": {"123456"}}))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCompleteRegistration(t *testing.T) {
	tests := []struct {
		name     string
		result   *auth.Result
		err      error
		wantCode int
		wantBody []string
	}{
		{"registered", &auth.Result{Step: auth.StepAuthenticated, Token: "tok", Redirect: auth.Redirect{URL: "/", SetCookie: true}}, nil, http.StatusSeeOther, nil},
		{"expired ticket", nil, fmt.Errorf("registration ticket: %w", domain.ErrUnauthorized), http.StatusUnauthorized, nil},
		{"short name", nil, fmt.Errorf("field 'FullName' failed 'min': %w", domain.ErrBadRequest), http.StatusBadRequest, []string{`action="/complete-registration"`}},
		{"duplicate", nil, domain.ErrDuplicateEmail, http.StatusConflict, []string{`action="/complete-registration"`, "already registered", `value="ticket-1"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			svc.On("CompleteRegistration", mock.Anything, "ticket-1", "new@x.com", "Ada", "/").Return(tt.result, tt.err)
			h := newAuthHandler(t, svc)

			rr := httptest.NewRecorder()
			h.CompleteRegistration(rr, postForm("/complete-registration", url.Values{
				"email": {"new@x.com"}, "ticket": {"ticket-1"}, "full_name": {"Ada"},
			}))

			assert.Equal(t, tt.wantCode, rr.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rr.Body.String(), want)
			}
			if tt.err == nil {
				require.NotNil(t, sessionCookie(rr))
			}
		})
	}
}

func TestLogout(t *testing.T) {
	h := newAuthHandler(t, &mockAuthService{})
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestHome_RendersUser(t *testing.T) {
	h := newAuthHandler(t, &mockAuthService{})
	u := &domain.User{UserID: "u1", Email: "a@x.com", FullName: "Ada Lovelace"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), u))
	rr := httptest.NewRecorder()
	h.Home(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hello, Ada Lovelace")
}
