package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/documentor-api/internal/application/dashboard"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDashboard struct{ mock.Mock }

func (m *mockDashboard) Counts(ctx context.Context) (*dashboard.Counts, error) {
	args := m.Called(ctx)
	if c, _ := args.Get(0).(*dashboard.Counts); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func adminRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	admin := &domain.User{UserID: "a1", Email: "root@x.com", Role: domain.RoleAdmin}
	return req.WithContext(middleware.WithUser(req.Context(), admin))
}

func TestDashboardHandler_Counts(t *testing.T) {
	svc := &mockDashboard{}
	svc.On("Counts", mock.Anything).Return(&dashboard.Counts{Users: 4, ActiveUsers: 3, Conversions: 9}, nil)
	pages, err := NewPages()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	NewDashboardHandler(svc, pages).Counts(rr, adminRequest("/admin/api/dashboard"))

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.EqualValues(t, 4, data["users"])
	assert.EqualValues(t, 9, data["conversions"])
}

func TestDashboardHandler_PageDegradesWithoutCounts(t *testing.T) {
	svc := &mockDashboard{}
	svc.On("Counts", mock.Anything).Return(nil, errors.New("dynamo down"))
	pages, err := NewPages()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	NewDashboardHandler(svc, pages).Page(rr, adminRequest("/admin"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "root@x.com")
	assert.Contains(t, rr.Body.String(), "Statistics are unavailable")
}

func TestHealthHandler_Ping(t *testing.T) {
	r := chiRouterFor("/health-check/{action}", NewHealthHandler().Ping)

	rr := serve(r, http.MethodGet, "/health-check/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decodeBody(t, rr)["message"])

	rr = serve(r, http.MethodGet, "/health-check/other", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
