package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.byID[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(f.byID))
	for _, user := range f.byID {
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	stored, ok := f.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = user.Name
	stored.Phone = user.Phone
	stored.Address = user.Address
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	stored.Role = role
	clone := *stored
	return &clone, nil
}

func (f *fakeUserRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	stored, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	stored, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.ResetTokenHash = &tokenHash
	stored.ResetTokenExpires = &expires
	return nil
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	for _, user := range f.byID {
		if user.ResetTokenHash != nil && *user.ResetTokenHash == tokenHash &&
			user.ResetTokenExpires != nil && user.ResetTokenExpires.After(time.Now()) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	stored, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	stored.ResetTokenHash = nil
	stored.ResetTokenExpires = nil
	return nil
}

type recordingMailer struct {
	lastTo    string
	lastToken string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, toEmail, rawToken string) error {
	m.lastTo = toEmail
	m.lastToken = rawToken
	return nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenTTLDays:   7,
		ResetTokenTTLHours:   2,
		BcryptCost:           4,
		AdminDefaultPassword: "1234abcd",
	}
}

func newTestAuth(t *testing.T) (*AuthService, *fakeUserRepo, *recordingMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo: repo,
		Mailer:   mailer,
		Logger:   zap.NewNop(),
	})
	return svc, repo, mailer
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	user, token, exp, err := svc.Register(context.Background(), "Ana", "Ana@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	logged, _, _, err := svc.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, _, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "Other", "ANA@example.com", "different")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginDoesNotRevealAccountExistence(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, _, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	_, _, _, unknownErr := svc.Login(context.Background(), "ghost@example.com", "whatever")
	_, _, _, wrongErr := svc.Login(context.Background(), "ana@example.com", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t,
		apperrors.ToDomainError(unknownErr).Code,
		apperrors.ToDomainError(wrongErr).Code,
	)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	user, _, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	require.Error(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "secret123", "short")
	require.Error(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "ana@example.com", "newsecret")
	require.NoError(t, err)
}

func TestAssignRoleBlocksSelfChange(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	admin, _, _, err := svc.Register(context.Background(), "Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	repo.byID[admin.ID].Role = domain.RoleAdmin
	admin.Role = domain.RoleAdmin

	_, err = svc.AssignRole(context.Background(), admin, admin.ID, domain.RoleUser)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAssignRoleDeveloperGrantRequiresDeveloper(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	admin, _, _, err := svc.Register(context.Background(), "Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	repo.byID[admin.ID].Role = domain.RoleAdmin
	admin.Role = domain.RoleAdmin

	target, _, _, err := svc.Register(context.Background(), "Target", "target@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.AssignRole(context.Background(), admin, target.ID, domain.RoleDeveloper)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// An admin can still grant admin.
	updated, err := svc.AssignRole(context.Background(), admin, target.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	// A developer can grant developer.
	dev, _, _, err := svc.Register(context.Background(), "Dev", "dev@example.com", "secret123")
	require.NoError(t, err)
	repo.byID[dev.ID].Role = domain.RoleDeveloper
	dev.Role = domain.RoleDeveloper

	updated, err = svc.AssignRole(context.Background(), dev, target.ID, domain.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, updated.Role)
}

func TestAssignRoleRejectsUnknownRole(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	admin, _, _, err := svc.Register(context.Background(), "Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	repo.byID[admin.ID].Role = domain.RoleAdmin
	admin.Role = domain.RoleAdmin

	_, err = svc.AssignRole(context.Background(), admin, uuid.NewString(), domain.Role("superuser"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestResetPasswordByAdminSetsDefault(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	admin, _, _, err := svc.Register(context.Background(), "Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	repo.byID[admin.ID].Role = domain.RoleAdmin
	admin.Role = domain.RoleAdmin

	target, _, _, err := svc.Register(context.Background(), "Target", "target@example.com", "secret123")
	require.NoError(t, err)

	_, password, err := svc.ResetPasswordByAdmin(context.Background(), admin, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234abcd", password)

	_, _, _, err = svc.Login(context.Background(), "target@example.com", "1234abcd")
	require.NoError(t, err)
}

func TestEmailedResetTokenFlow(t *testing.T) {
	svc, repo, mailer := newTestAuth(t)

	user, _, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	// Unknown email succeeds silently and sends nothing.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, mailer.lastToken)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	require.NotEmpty(t, mailer.lastToken)
	assert.Equal(t, "ana@example.com", mailer.lastTo)

	// Only the hash is stored.
	stored := repo.byID[user.ID]
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, mailer.lastToken, *stored.ResetTokenHash)
	assert.Equal(t, auth.HashResetToken(mailer.lastToken), *stored.ResetTokenHash)

	require.NoError(t, svc.ConsumePasswordReset(context.Background(), mailer.lastToken, "brandnew1"))

	_, _, _, err = svc.Login(context.Background(), "ana@example.com", "brandnew1")
	require.NoError(t, err)

	// Single use.
	err = svc.ConsumePasswordReset(context.Background(), mailer.lastToken, "another99")
	require.Error(t, err)
}
