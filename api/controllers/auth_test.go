package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springzlabs/springz-backend/api/middleware"
	authsvc "github.com/springzlabs/springz-backend/internal/auth"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
)

type stubAuthService struct {
	registerResult *authsvc.AuthResult
	registerErr    error
	loginErr       error
	loggedOut      []string
}

func (s *stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.AuthResult, error) {
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.AuthResult, error) {
	return s.registerResult, s.loginErr
}

func (s *stubAuthService) AdminLogin(ctx context.Context, input authsvc.LoginInput) (*authsvc.AuthResult, error) {
	return s.registerResult, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, input authsvc.RefreshInput) (*authsvc.TokenPair, error) {
	return &authsvc.TokenPair{AccessToken: "new"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return nil
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{registerResult: &authsvc.AuthResult{}}
	handler := AuthRegister(svc, nil)

	body := `{"email":"new@springz.in","password":"s3cret-pass","name":"New Customer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthRegisterRejectsInvalidPayload(t *testing.T) {
	svc := &stubAuthService{registerResult: &authsvc.AuthResult{}}
	handler := AuthRegister(svc, nil)

	body := `{"email":"not-an-email","password":"short","name":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLoginMapsUnauthorized(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := AuthLogin(svc, nil)

	body := `{"email":"user@springz.in","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogoutUsesSessionFromContext(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "session-42"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"session-42"}, svc.loggedOut)
}

func TestControllersGuardNilService(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	AuthLogin(nil, nil)(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
