package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/event"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// SubmissionService implements the business logic for staff-facing
// submission operations.
type SubmissionService struct {
	repo     repository.SubmissionRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(repo repository.SubmissionRepository, producer *event.Producer, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateSubmissionInput holds the parameters for the single-page admin
// create form. Unlike the wizard, everything arrives at once.
type CreateSubmissionInput struct {
	CompanyName string             `json:"companyName"`
	Shares      domain.Shares      `json:"shares"`
	TotalAssets domain.TotalAssets `json:"totalAssets"`
	Address     domain.Address     `json:"address"`
	Officers    []domain.Officer   `json:"officers"`
	Directors   []domain.Director  `json:"directors"`
	Submitter   string             `json:"submitter"`
}

// CreateSubmission validates the full form and persists it with status
// pending, mirroring what a completed wizard run produces.
func (s *SubmissionService) CreateSubmission(ctx context.Context, input CreateSubmissionInput) (*domain.Submission, error) {
	var errs []string
	if strings.TrimSpace(input.CompanyName) == "" {
		errs = append(errs, "Company name is required")
	}
	if res := input.Shares.Validate(); !res.IsValid {
		errs = append(errs, res.Errors...)
	}
	errs = append(errs, input.TotalAssets.Validate()...)
	errs = append(errs, input.Address.Validate()...)
	if len(input.Officers) == 0 {
		errs = append(errs, "At least one officer is required")
	}
	for _, o := range input.Officers {
		errs = append(errs, o.Validate()...)
	}
	if len(input.Directors) == 0 {
		errs = append(errs, "At least one director is required")
	}
	for _, d := range input.Directors {
		errs = append(errs, d.Validate()...)
	}
	if len(errs) > 0 {
		return nil, apperrors.StepBlocked(errs)
	}

	now := time.Now().UTC()
	sub := &domain.Submission{
		ID:           uuid.New().String(),
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Shares:       input.Shares,
		TotalAssets:  input.TotalAssets,
		Address:      input.Address,
		Officers:     input.Officers,
		Directors:    input.Directors,
		Submitter:    strings.TrimSpace(input.Submitter),
		Status:       domain.StatusPending,
		SubmittedAt:  now,
		LastModified: now,
	}

	if _, _, ok := sub.ResolveSubmitter(sub.Submitter); !ok {
		return nil, apperrors.InvalidInput("submitter must be one of the listed officers or directors")
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := s.producer.PublishSubmissionCreated(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish submission.created event",
			slog.String("submission_id", sub.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "submission created",
		slog.String("submission_id", sub.ID),
		slog.String("company_name", sub.CompanyName),
	)

	return sub, nil
}

// GetSubmission retrieves a submission by its ID.
func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission by id: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns submissions matching the filter with the total count.
func (s *SubmissionService) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, int, error) {
	subs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return subs, total, nil
}

// DashboardStats aggregates the counts shown on the admin dashboard.
type DashboardStats struct {
	Total    int                 `json:"total"`
	ByStatus map[string]int      `json:"by_status"`
	Recent   []domain.Submission `json:"recent"`
}

// Dashboard returns aggregate counts plus the most recent submissions.
func (s *SubmissionService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	total := 0
	for _, status := range domain.ValidStatuses() {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	for _, n := range counts {
		total += n
	}

	recent, err := s.repo.Recent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("dashboard recent: %w", err)
	}

	return &DashboardStats{Total: total, ByStatus: counts, Recent: recent}, nil
}

// editableRoots are the top-level document fields staff may patch through
// the field editor. Status changes go through ToggleStatus, and the
// verification sub-record is owned by the verification lifecycle.
var editableRoots = map[string]struct{}{
	"companyName": {},
	"shares":      {},
	"totalAssets": {},
	"address":     {},
	"officers":    {},
	"directors":   {},
	"submitter":   {},
}

// validateFieldPath rejects paths outside the editable document surface.
func validateFieldPath(path string) error {
	root := path
	if i := strings.IndexByte(path, '.'); i >= 0 {
		root = path[:i]
	}
	if _, ok := editableRoots[root]; !ok {
		return apperrors.InvalidInput(fmt.Sprintf("field %q is not editable", path))
	}
	return nil
}

// UpdateField patches a single dotted field path and bumps lastModified.
func (s *SubmissionService) UpdateField(ctx context.Context, id, path string, value any) error {
	if err := validateFieldPath(path); err != nil {
		return err
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{path: value}); err != nil {
		return fmt.Errorf("update field %q: %w", path, err)
	}

	s.logger.InfoContext(ctx, "submission field updated",
		slog.String("submission_id", id),
		slog.String("path", path),
	)

	return nil
}

// UpdateFields patches several field paths in one call. Used by the
// officer/director editors, which commit the whole sub-list on save.
func (s *SubmissionService) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	for path := range fields {
		if err := validateFieldPath(path); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return fmt.Errorf("update fields: %w", err)
	}

	return nil
}

// DeleteSubmission permanently removes a submission.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, id string) error {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get submission for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}

	if err := s.producer.PublishSubmissionDeleted(ctx, id, sub.CompanyName); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish submission.deleted event",
			slog.String("submission_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "submission deleted",
		slog.String("submission_id", id),
		slog.String("company_name", sub.CompanyName),
	)

	return nil
}

// ToggleStatus flips the submission between completed and pending:
// completed goes back to pending, anything else becomes completed.
func (s *SubmissionService) ToggleStatus(ctx context.Context, id string) (string, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get submission for toggle: %w", err)
	}

	oldStatus := sub.Status
	target := domain.StatusCompleted
	if oldStatus == domain.StatusCompleted {
		target = domain.StatusPending
	}
	if !sub.CanTransitionTo(target) {
		return "", apperrors.Conflict(fmt.Sprintf("submission in status %q cannot move to %q", oldStatus, target))
	}
	newStatus := sub.ToggleStatus()

	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": newStatus}); err != nil {
		return "", fmt.Errorf("toggle status: %w", err)
	}

	if err := s.producer.PublishStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish submission.status_changed event",
			slog.String("submission_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "submission status toggled",
		slog.String("submission_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return newStatus, nil
}
