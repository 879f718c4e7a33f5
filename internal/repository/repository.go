package repository

import (
	"context"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
)

// SubmissionFilter defines filter criteria for listing submissions.
type SubmissionFilter struct {
	// Search matches company names case-insensitively as a substring.
	Search string
	// SortDir orders by submission date: "asc" or "desc" (default).
	SortDir string
	Page    int
	PerPage int
}

// SubmissionRepository defines the interface for submission persistence.
type SubmissionRepository interface {
	// Create inserts a new submission. The caller assigns the ID.
	Create(ctx context.Context, sub *domain.Submission) error

	// GetByID retrieves a submission by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Submission, error)

	// List returns submissions matching the filter along with the total count.
	List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, int, error)

	// UpdateFields applies independent dotted-path field updates
	// (e.g. "address.city", "officers.2.title") and bumps lastModified.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error

	// Delete permanently removes a submission.
	Delete(ctx context.Context, id string) error

	// CountByStatus returns the number of submissions per status.
	CountByStatus(ctx context.Context) (map[string]int, error)

	// Recent returns the most recently submitted records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Submission, error)
}

// StaffRepository defines the interface for staff account persistence.
type StaffRepository interface {
	Create(ctx context.Context, user *domain.StaffUser) error
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	GetByID(ctx context.Context, id string) (*domain.StaffUser, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// DraftRepository defines the interface for wizard draft session storage.
// Drafts live only until the terminal submit or TTL eviction.
type DraftRepository interface {
	Get(ctx context.Context, id string) (*wizard.Draft, error)
	Save(ctx context.Context, draft *wizard.Draft) error
	Delete(ctx context.Context, id string) error
}
