package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/event"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
)

// WizardService drives the client intake flow: drafts live in session
// storage while the user walks the steps; the terminal submit persists
// the draft as a pending submission.
type WizardService struct {
	drafts   repository.DraftRepository
	subs     repository.SubmissionRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewWizardService creates a new wizard service.
func NewWizardService(drafts repository.DraftRepository, subs repository.SubmissionRepository, producer *event.Producer, logger *slog.Logger) *WizardService {
	return &WizardService{
		drafts:   drafts,
		subs:     subs,
		producer: producer,
		logger:   logger,
	}
}

// DraftInput carries partial draft updates from the client. Nil fields
// are left untouched; officer and director lists always replace the
// whole sub-list.
type DraftInput struct {
	CompanyName *string             `json:"companyName,omitempty"`
	Shares      *domain.Shares      `json:"shares,omitempty"`
	TotalAssets *domain.TotalAssets `json:"totalAssets,omitempty"`
	Address     *domain.Address     `json:"address,omitempty"`
	Officers    *[]domain.Officer   `json:"officers,omitempty"`
	Directors   *[]domain.Director  `json:"directors,omitempty"`
	Submitter   *string             `json:"submitter,omitempty"`
}

func applyInput(d *wizard.Draft, input DraftInput) {
	if input.CompanyName != nil {
		d.CompanyName = *input.CompanyName
	}
	if input.Shares != nil {
		d.Shares = *input.Shares
	}
	if input.TotalAssets != nil {
		d.TotalAssets = *input.TotalAssets
	}
	if input.Address != nil {
		d.Address = *input.Address
	}
	if input.Officers != nil {
		d.Officers = *input.Officers
	}
	if input.Directors != nil {
		d.Directors = *input.Directors
	}
	if input.Submitter != nil {
		d.Submitter = *input.Submitter
	}
}

// Start opens a new wizard session at the welcome step.
func (s *WizardService) Start(ctx context.Context) (*wizard.Draft, error) {
	draft := wizard.NewDraft(uuid.New().String(), time.Now().UTC())

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save new draft: %w", err)
	}

	s.logger.InfoContext(ctx, "wizard session started",
		slog.String("session_id", draft.ID),
	)

	return draft, nil
}

// Get retrieves a wizard session by ID.
func (s *WizardService) Get(ctx context.Context, id string) (*wizard.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

// Next applies the step's input to the draft and advances when the
// step's guard passes. On a guard failure the draft is saved anyway so
// partially entered data survives, and the error carries the inline
// messages.
func (s *WizardService) Next(ctx context.Context, id string, input DraftInput) (*wizard.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	applyInput(draft, input)
	draft.UpdatedAt = time.Now().UTC()

	stepErr := draft.Next()

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	if stepErr != nil {
		return draft, stepErr
	}

	return draft, nil
}

// Prev steps the draft back one screen.
func (s *WizardService) Prev(ctx context.Context, id string) (*wizard.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := draft.Prev(); err != nil {
		return draft, err
	}

	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	return draft, nil
}

// Submit performs the one irreversible side effect of the flow: it
// persists the draft as a pending submission and advances the session to
// the thank-you step. On persistence failure the draft stays at the
// review step so the client can retry.
func (s *WizardService) Submit(ctx context.Context, id string) (*domain.Submission, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := draft.CanSubmit(); err != nil {
		return nil, err
	}

	sub := draft.ToSubmission(time.Now().UTC())
	sub.ID = uuid.New().String()

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	draft.MarkSubmitted()
	if err := s.drafts.Save(ctx, draft); err != nil {
		// The submission is already persisted; a stale draft only costs
		// the client a duplicate if they resubmit manually.
		s.logger.ErrorContext(ctx, "failed to mark draft submitted",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishSubmissionCreated(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish submission.created event",
			slog.String("submission_id", sub.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wizard submission completed",
		slog.String("session_id", id),
		slog.String("submission_id", sub.ID),
		slog.String("company_name", sub.CompanyName),
	)

	return sub, nil
}
