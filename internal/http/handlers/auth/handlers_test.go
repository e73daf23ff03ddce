package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"baseserver/internal/dto"
	"baseserver/internal/models"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, project, email, password string) (models.Document, error) {
	args := m.Called(ctx, project, email, password)
	user, _ := args.Get(0).(models.Document)
	return user, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, project, email, password string, remember bool) (string, error) {
	args := m.Called(ctx, project, email, password, remember)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func projectCtx(project string) context.Context {
	return context.WithValue(context.Background(), models.ProjectContextKey, project)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	user := models.Document{"_id": "u1", "email": "a@x.com", "role": models.RoleAdmin}

	svc := new(mockAuthService)
	svc.On("Register", mock.Anything, "p1", "a@x.com", "secret1").Return(user, nil)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"secret1"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Register(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "a@x.com", got["email"])
	assert.NotContains(t, got, models.UserFieldPassword)

	svc.AssertExpectations(t)
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)
	svc.On("Register", mock.Anything, "p1", "a@x.com", "secret1").Return(nil, models.ErrUserExists)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"secret1"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Register(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)
	svc.On("Register", mock.Anything, "p1", "bad", "x").
		Return(nil, models.NewValidationError("email", "is malformed"))

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/register",
		strings.NewReader(`{"email":"bad","password":"x"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Register(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestRegister_MalformedBody(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/register", strings.NewReader("{oops")).WithContext(ctx)
	w := httptest.NewRecorder()

	Register(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "p1", "a@x.com", "secret1", false).Return("signed.jwt.token", nil)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"secret1"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Login(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusOK, w.Code)

	var got dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "signed.jwt.token", got.Token)

	svc.AssertExpectations(t)
}

func TestLogin_Remember(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "p1", "a@x.com", "secret1", true).Return("long.lived.token", nil)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"secret1","remember":true}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Login(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "p1", "a@x.com", "wrong", false).Return("", models.ErrInvalidCredentials)

	ctx := projectCtx("p1")
	r := httptest.NewRequest(http.MethodPost, "/rest/v1/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"wrong"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	Login(ctx, discardLogger(), w, r, svc)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertExpectations(t)
}
