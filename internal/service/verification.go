package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/event"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// VerificationService implements the client verification-link lifecycle:
// staff generate a tokenized link, the client opens it, amends fields,
// and confirms, which flips the submission to client_reviewed.
type VerificationService struct {
	repo     repository.SubmissionRepository
	producer *event.Producer
	logger   *slog.Logger
	baseURL  string
	ttl      time.Duration

	nowFunc func() time.Time
}

// NewVerificationService creates a new verification service. Links are
// built against baseURL and expire ttl after issuance.
func NewVerificationService(repo repository.SubmissionRepository, producer *event.Producer, logger *slog.Logger, baseURL string, ttl time.Duration) *VerificationService {
	return &VerificationService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

// Link builds the client-facing verification URL for a submission.
func (s *VerificationService) Link(submissionID, token string) string {
	return fmt.Sprintf("%s/verify/%s/%s", s.baseURL, submissionID, token)
}

// GenerateLink mints a fresh verification token for the submission, sets
// its status to awaiting_client, and returns the client-facing link.
// Any previously issued link stops validating: the token is overwritten,
// so exactly one live link exists per submission.
func (s *VerificationService) GenerateLink(ctx context.Context, submissionID string) (string, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return "", fmt.Errorf("get submission for verification: %w", err)
	}

	if !sub.CanTransitionTo(domain.StatusAwaitingClient) {
		return "", apperrors.Conflict(fmt.Sprintf("submission in status %q cannot be sent for client verification", sub.Status))
	}

	now := s.nowFunc().UTC()
	verification := domain.NewVerification(now)

	err = s.repo.UpdateFields(ctx, submissionID, map[string]any{
		"verification": verification,
		"status":       domain.StatusAwaitingClient,
	})
	if err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	link := s.Link(submissionID, verification.Token)

	if sub.Status != domain.StatusAwaitingClient {
		if err := s.producer.PublishStatusChanged(ctx, submissionID, sub.Status, domain.StatusAwaitingClient); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish submission.status_changed event",
				slog.String("submission_id", submissionID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := s.producer.PublishVerificationRequested(ctx, submissionID, sub.CompanyName, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish verification.requested event",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "verification link generated",
		slog.String("submission_id", submissionID),
	)

	return link, nil
}

// Validate checks a presented link and returns the submission when the
// link is live. Every link failure collapses to the same generic error so
// the caller cannot distinguish unknown submissions from expired or spent
// tokens; repository outages surface as internal errors instead.
// A link is live only when all of these hold: the submission
// exists, it carries a verification record, the token matches exactly,
// the record is not yet verified, and it is within the expiry window.
func (s *VerificationService) Validate(ctx context.Context, submissionID, token string) (*domain.Submission, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		// Only an unknown submission collapses into the generic error;
		// a persistence outage must not masquerade as a dead link.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.TokenInvalid()
		}
		s.logger.ErrorContext(ctx, "failed to load submission for verification",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("load submission for verification: %w", err)
	}

	v := sub.Verification
	switch {
	case v == nil:
		return nil, apperrors.TokenInvalid()
	case !v.Matches(token):
		return nil, apperrors.TokenInvalid()
	case v.Status == domain.VerificationVerified:
		return nil, apperrors.TokenInvalid()
	case v.IsExpired(s.nowFunc().UTC(), s.ttl):
		return nil, apperrors.TokenInvalid()
	}

	return sub, nil
}

// UpdateClientFields lets the client amend form fields through a live
// link. Paths are restricted to the same editable surface staff use.
func (s *VerificationService) UpdateClientFields(ctx context.Context, submissionID, token string, fields map[string]any) error {
	if _, err := s.Validate(ctx, submissionID, token); err != nil {
		return err
	}

	for path := range fields {
		if err := validateFieldPath(path); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateFields(ctx, submissionID, fields); err != nil {
		return fmt.Errorf("update client fields: %w", err)
	}

	return nil
}

// MarkVerified confirms the client review: it stamps the verification
// record, records who confirmed, and moves the submission to
// client_reviewed. A second confirmation attempt fails at the gate, and
// the record itself guards against re-stamping.
func (s *VerificationService) MarkVerified(ctx context.Context, submissionID, token, submitterName string) error {
	sub, err := s.Validate(ctx, submissionID, token)
	if err != nil {
		return err
	}

	if sub.Verification.Status == domain.VerificationVerified {
		return apperrors.Conflict("submission already verified")
	}

	submitterName = strings.TrimSpace(submitterName)
	if submitterName == "" {
		return apperrors.InvalidInput("submitter name is required")
	}
	if _, _, ok := sub.ResolveSubmitter(submitterName); !ok {
		return apperrors.InvalidInput("submitter must be one of the listed officers or directors")
	}

	now := s.nowFunc().UTC()
	err = s.repo.UpdateFields(ctx, submissionID, map[string]any{
		"verification.status":     domain.VerificationVerified,
		"verification.submitter":  submitterName,
		"verification.verifiedAt": now,
		"status":                  domain.StatusClientReviewed,
	})
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if err := s.producer.PublishClientVerified(ctx, submissionID, submitterName); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish verification.completed event",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishStatusChanged(ctx, submissionID, sub.Status, domain.StatusClientReviewed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish submission.status_changed event",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "client verification completed",
		slog.String("submission_id", submissionID),
		slog.String("submitter", submitterName),
	)

	return nil
}
