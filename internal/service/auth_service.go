package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

const minPasswordLength = 6

// AuthService coordinates registration, login, profile and role management.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	mailer   Mailer
	logger   *zap.Logger

	bcryptCost      int
	resetTTL        time.Duration
	defaultPassword string
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Mailer   Mailer
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:           deps.UserRepo,
		tokenMgr:        auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		mailer:          deps.Mailer,
		logger:          deps.Logger,
		bcryptCost:      cfg.BcryptCost,
		resetTTL:        cfg.ResetTokenTTL(),
		defaultPassword: cfg.AdminDefaultPassword,
	}
}

// Register creates a new account with the default role and returns a signed
// credential alongside the user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a user. Unknown email and wrong password produce the
// same error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// UpdateProfile applies the provided profile fields to the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, name, phone *string, address *domain.Address) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if name != nil {
		user.Name = *name
	}
	if phone != nil {
		user.Phone = *phone
	}
	if address != nil {
		user.Address = address
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength), nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, user.ID, hash)
}

// ResetPasswordByAdmin sets the target's password to the well-known default
// and returns that plaintext once for the admin to relay out-of-band.
func (s *AuthService) ResetPasswordByAdmin(ctx context.Context, actor *domain.User, targetID string) (*domain.User, string, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewNotFound("user", nil)
		}
		return nil, "", err
	}

	hash, err := auth.HashPassword(s.defaultPassword, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}
	if err := s.users.SetPassword(ctx, target.ID, hash); err != nil {
		return nil, "", err
	}

	s.logger.Info("password reset by admin",
		zap.String("actor_email", actor.Email),
		zap.String("target_email", target.Email),
	)
	return target, s.defaultPassword, nil
}

// RequestPasswordReset stores a hashed single-use token and emails the raw
// token. The caller always gets the same response whether or not the email
// exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	raw, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, hash, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, raw); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

// ConsumePasswordReset validates a raw reset token and replaces the password.
// The token is cleared on success and cannot be replayed.
func (s *AuthService) ConsumePasswordReset(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return apperrors.NewValidationError("token and new password are required", nil)
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}

	user, err := s.users.GetByResetToken(ctx, auth.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid or expired token", nil)
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, user.ID, hash)
}

// ListUsers returns every account for the admin panel.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// GetUser fetches a single account.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// AssignRole overwrites the target's role. Users may not change their own
// role, and only developers may grant the developer role.
func (s *AuthService) AssignRole(ctx context.Context, actor *domain.User, targetID string, newRole domain.Role) (*domain.User, error) {
	if !domain.ValidRole(newRole) {
		return nil, apperrors.NewValidationError("invalid role: must be user, admin or developer", nil)
	}
	if targetID == actor.ID {
		return nil, apperrors.NewForbidden("you cannot change your own role")
	}
	if newRole == domain.RoleDeveloper && !auth.Can(actor.Role, auth.ActionAssignDeveloperRole) {
		return nil, apperrors.NewForbidden("only developers can assign the developer role")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	previous := target.Role

	updated, err := s.users.UpdateRole(ctx, targetID, newRole)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role changed",
		zap.String("actor_email", actor.Email),
		zap.String("target_email", updated.Email),
		zap.String("previous_role", string(previous)),
		zap.String("new_role", string(newRole)),
	)
	return updated, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
