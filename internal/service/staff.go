package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ugur-Atakan/mckaycpa/internal/auth"
	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

const minPasswordLength = 8

// StaffService implements staff authentication and account management.
type StaffService struct {
	repo   repository.StaffRepository
	jwt    *auth.JWTManager
	logger *slog.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(repo repository.StaffRepository, jwt *auth.JWTManager, logger *slog.Logger) *StaffService {
	return &StaffService{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
	}
}

// invalidCredentials is deliberately identical for unknown emails and
// wrong passwords to avoid account enumeration.
func invalidCredentials() *apperrors.AppError {
	return apperrors.Unauthorized("invalid email or password")
}

// Login checks credentials and returns a signed access token.
func (s *StaffService) Login(ctx context.Context, email, password string) (string, *domain.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, invalidCredentials()
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, invalidCredentials()
		}
		return "", nil, fmt.Errorf("get staff by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, invalidCredentials()
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "staff login",
		slog.String("staff_id", user.ID),
	)

	return token, user, nil
}

// CreateStaff registers a new staff account.
func (s *StaffService) CreateStaff(ctx context.Context, email, password, name string) (*domain.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.StaffUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create staff user: %w", err)
	}

	s.logger.InfoContext(ctx, "staff account created",
		slog.String("staff_id", user.ID),
	)

	return user, nil
}

// EnsureBootstrapAdmin creates the initial admin account at startup so a
// fresh deployment has a login. Idempotent: an account with the same email
// already existing is not an error.
func (s *StaffService) EnsureBootstrapAdmin(ctx context.Context, email, password, name string) error {
	user, err := s.CreateStaff(ctx, email, password, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.InfoContext(ctx, "bootstrap admin already exists",
				slog.String("email", strings.ToLower(strings.TrimSpace(email))),
			)
			return nil
		}
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	}

	s.logger.InfoContext(ctx, "bootstrap admin created",
		slog.String("staff_id", user.ID),
	)
	return nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *StaffService) ChangePassword(ctx context.Context, staffID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.repo.GetByID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("get staff by id: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, staffID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "staff password changed",
		slog.String("staff_id", staffID),
	)

	return nil
}
