package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/pkg/database"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// StaffRepository implements repository.StaffRepository using PostgreSQL.
type StaffRepository struct {
	pool database.DBTX
}

// NewStaffRepository creates a new PostgreSQL-backed staff repository.
func NewStaffRepository(pool database.DBTX) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// Create inserts a new staff account.
func (r *StaffRepository) Create(ctx context.Context, u *domain.StaffUser) error {
	query := `
		INSERT INTO staff_users (id, email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("staff user", "email", u.Email)
		}
		return fmt.Errorf("insert staff user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a staff account by email address.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM staff_users
		WHERE email = $1`

	return r.scanStaff(ctx, query, email)
}

// GetByID retrieves a staff account by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM staff_users
		WHERE id = $1`

	return r.scanStaff(ctx, query, id)
}

// UpdatePassword replaces the stored password hash.
func (r *StaffRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `
		UPDATE staff_users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update staff password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("staff user", id)
	}

	return nil
}

func (r *StaffRepository) scanStaff(ctx context.Context, query string, arg any) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan staff user: %w", err)
	}

	return &u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
