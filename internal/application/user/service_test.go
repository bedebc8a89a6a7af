package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error) {
	args := m.Called(ctx, userID, updates)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) ChangeEmail(ctx context.Context, userID, oldEmail, newEmail string) error {
	return m.Called(ctx, userID, oldEmail, newEmail).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

// --- helpers ---

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(us *mockUserStore) Service {
	return NewService(ServiceDeps{UserRepo: us, Clock: func() time.Time { return fixedNow }})
}

func strPtr(s string) *string { return &s }

// --- Create ---

func TestCreate_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && u.Role == domain.RoleEndUser && u.IsActive && u.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	u, err := newService(us).Create(context.Background(), domain.CreateUserRequest{
		Email:    " Alice@Example.com ",
		FullName: "Alice Smith",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	us.AssertExpectations(t)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := newService(us).Create(context.Background(), domain.CreateUserRequest{Email: "a@x.com", FullName: "Alice"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreate_Invalid(t *testing.T) {
	us := &mockUserStore{}
	svc := newService(us)

	_, err := svc.Create(context.Background(), domain.CreateUserRequest{Email: "bad", FullName: "Alice"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.Create(context.Background(), domain.CreateUserRequest{Email: "a@x.com", FullName: "A"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.Create(context.Background(), domain.CreateUserRequest{Email: "a@x.com", FullName: "Alice", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Update ---

func TestUpdate_ChangesEmailThenFields(t *testing.T) {
	us := &mockUserStore{}
	current := &domain.User{UserID: "u1", Email: "old@x.com", FullName: "Old"}
	updated := &domain.User{UserID: "u1", Email: "new@x.com", FullName: "New Name"}
	us.On("Get", mock.Anything, "u1").Return(current, nil)
	us.On("ChangeEmail", mock.Anything, "u1", "old@x.com", "new@x.com").Return(nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldFullName: "New Name"}).Return(updated, nil)

	u, err := newService(us).Update(context.Background(), "u1", domain.UpdateUserRequest{
		Email:    strPtr("NEW@x.com"),
		FullName: strPtr("New Name"),
	})
	require.NoError(t, err)
	assert.Equal(t, updated, u)
	us.AssertExpectations(t)
}

func TestUpdate_SameEmailSkipsChange(t *testing.T) {
	us := &mockUserStore{}
	current := &domain.User{UserID: "u1", Email: "a@x.com"}
	us.On("Get", mock.Anything, "u1").Return(current, nil)

	u, err := newService(us).Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, current, u)
	us.AssertNotCalled(t, "ChangeEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_EmailTaken(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@x.com"}, nil)
	us.On("ChangeEmail", mock.Anything, "u1", "a@x.com", "b@x.com").Return(domain.ErrDuplicateEmail)

	_, err := newService(us).Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("b@x.com")})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUpdate_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "nope").Return(nil, domain.ErrUserNotFound)

	_, err := newService(us).Update(context.Background(), "nope", domain.UpdateUserRequest{FullName: strPtr("Name")})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

// --- Status ---

func TestToggle_FlipsActive(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", IsActive: true}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldIsActive: false}).
		Return(&domain.User{UserID: "u1", IsActive: false}, nil)

	u, err := newService(us).Toggle(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

// --- List / Delete ---

func TestList_NormalizesQuery(t *testing.T) {
	us := &mockUserStore{}
	want := domain.ListQuery{Page: 2, Limit: 100, Sort: "-created_at"}
	us.On("List", mock.Anything, want).Return([]domain.User{{UserID: "u1"}}, 150, nil)

	users, p, err := newService(us).List(context.Background(), domain.ListQuery{Page: 2, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, p.TotalPages)
	assert.Nil(t, p.NextPage)
	assert.Equal(t, 150, p.TotalItems)
}

func TestDelete(t *testing.T) {
	us := &mockUserStore{}
	u := &domain.User{UserID: "u1", Email: "a@x.com"}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	us.On("Delete", mock.Anything, u).Return(nil)

	require.NoError(t, newService(us).Delete(context.Background(), "u1"))
	us.AssertExpectations(t)
}
