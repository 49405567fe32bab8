package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/springzlabs/springz-backend/pkg/auth/session"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created []*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	s.created = append(s.created, user)
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *stubUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type stubSessions struct {
	revoked   []string
	rotateErr error
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return session.NewAccessID(), "rotated-refresh", nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "springz-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(repo, sessions, jwtConfig(), config.PasswordConfig{}, nil)
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role enums.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
		IsActive:     active,
	}
	repo.add(user)
	return user
}

func TestRegisterIssuesTokensForNewCustomer(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  New@Springz.in ",
		Password: "s3cret-pass",
		Name:     "New Customer",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, "new@springz.in", repo.created[0].Email)
	require.Equal(t, enums.UserRoleCustomer, repo.created[0].Role)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)
	require.Equal(t, 15*60, result.Tokens.ExpiresIn)
	require.Equal(t, "new@springz.in", result.User.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "taken@springz.in", "whatever1", enums.UserRoleCustomer, true)
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@springz.in",
		Password: "another-pass",
		Name:     "Dup",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "user@springz.in", "correct-pass", enums.UserRoleCustomer, true)
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@springz.in",
		Password: "wrong-pass",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsUnknownEmailWithSameError(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@springz.in",
		Password: "whatever1",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	require.Equal(t, "invalid email or password", typed.Message())
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "gone@springz.in", "correct-pass", enums.UserRoleCustomer, false)
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "gone@springz.in",
		Password: "correct-pass",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestAdminLoginRejectsCustomerWithoutLeakingRole(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "customer@springz.in", "correct-pass", enums.UserRoleCustomer, true)
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.AdminLogin(context.Background(), LoginInput{
		Email:    "customer@springz.in",
		Password: "correct-pass",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	require.Equal(t, "invalid email or password", typed.Message())
}

func TestAdminLoginAcceptsAdmin(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@springz.in", "correct-pass", enums.UserRoleAdmin, true)
	svc := newTestService(t, repo, &stubSessions{})

	result, err := svc.AdminLogin(context.Background(), LoginInput{
		Email:    "admin@springz.in",
		Password: "correct-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "admin", string(result.User.Role))
}

func TestRefreshRejectsInvalidRefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "user@springz.in", "correct-pass", enums.UserRoleCustomer, true)
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)

	login, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@springz.in",
		Password: "correct-pass",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, login.User.ID)

	sessions.rotateErr = session.ErrInvalidRefreshToken
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  login.Tokens.AccessToken,
		RefreshToken: "stolen-token",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestRefreshMintsNewPair(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "user@springz.in", "correct-pass", enums.UserRoleCustomer, true)
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)

	login, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@springz.in",
		Password: "correct-pass",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  login.Tokens.AccessToken,
		RefreshToken: login.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Equal(t, "rotated-refresh", pair.RefreshToken)
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)

	require.NoError(t, svc.Logout(context.Background(), "access-id"))
	require.Equal(t, []string{"access-id"}, sessions.revoked)

	err := svc.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}
