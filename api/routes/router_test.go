package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/springzlabs/springz-backend/pkg/auth"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
)

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	jwt := config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "springz-test",
		ExpirationMinutes: 15,
	}
	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: jwt,
	}
	logg := logger.New(logger.Options{Output: io.Discard})
	return NewRouter(Dependencies{Config: cfg, Logger: logg}), jwt
}

func mintToken(t *testing.T, jwt config.JWTConfig, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(jwt, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    "session-1",
	})
	require.NoError(t, err)
	return token
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterServesLiveness(t *testing.T) {
	router, _ := testRouter(t)
	rec := serve(router, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

// The profile surface lives at /api/v1/me with GET and PATCH. A routed
// request reaches the handler (500 here, since no service is wired); an
// unknown path 404s before any handler.
func TestRouterExposesMeEndpoints(t *testing.T) {
	router, jwt := testRouter(t)
	token := mintToken(t, jwt, enums.UserRoleCustomer)

	require.Equal(t, http.StatusInternalServerError, serve(router, http.MethodGet, "/api/v1/me", token).Code)
	require.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPatch, "/api/v1/me", token).Code)
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/profile", token).Code)
}

func TestRouterGuardsMeBehindAuth(t *testing.T) {
	router, _ := testRouter(t)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/me", "").Code)
}

func TestRouterExposesAdminCategoryRoutes(t *testing.T) {
	router, jwt := testRouter(t)
	admin := mintToken(t, jwt, enums.UserRoleAdmin)

	require.Equal(t, http.StatusInternalServerError,
		serve(router, http.MethodGet, "/api/v1/admin/categories", admin).Code)
	require.Equal(t, http.StatusInternalServerError,
		serve(router, http.MethodPatch, "/api/v1/admin/categories/"+uuid.NewString(), admin).Code)
}

func TestRouterRejectsCustomerOnAdminCategoryRoutes(t *testing.T) {
	router, jwt := testRouter(t)
	customer := mintToken(t, jwt, enums.UserRoleCustomer)

	require.Equal(t, http.StatusForbidden,
		serve(router, http.MethodGet, "/api/v1/admin/categories", customer).Code)
}
