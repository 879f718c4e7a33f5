// Package wizard implements the multi-step intake flow: an ordered
// sequence of screens accumulating a draft submission, with per-step
// guards on forward navigation and a single irreversible submit at the
// review step.
package wizard

import (
	"strings"
	"time"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// Step indices, in canonical order.
const (
	StepWelcome = iota
	StepCompanyName
	StepShares
	StepTotalAssets
	StepAddress
	StepOfficers
	StepDirectors
	StepSubmitter
	StepReview
	StepThankYou
)

// StepCount is the total number of wizard positions.
const StepCount = 10

// stepNames maps step indices to their client-facing identifiers.
var stepNames = [StepCount]string{
	"welcome", "company_name", "shares", "total_assets", "address",
	"officers", "directors", "submitter", "review", "thank_you",
}

// StepName returns the identifier for a step index, or "" when out of range.
func StepName(step int) string {
	if step < 0 || step >= StepCount {
		return ""
	}
	return stepNames[step]
}

// Draft is the in-progress intake form, held in session storage until
// the terminal submit persists it as a Submission.
type Draft struct {
	ID          string             `json:"id"`
	Step        int                `json:"step"`
	CompanyName string             `json:"companyName"`
	Shares      domain.Shares      `json:"shares"`
	TotalAssets domain.TotalAssets `json:"totalAssets"`
	Address     domain.Address     `json:"address"`
	Officers    []domain.Officer   `json:"officers"`
	Directors   []domain.Director  `json:"directors"`
	Submitter   string             `json:"submitter"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewDraft starts a fresh wizard session at the welcome step. The
// country is preselected so the state selector starts in US mode.
func NewDraft(id string, now time.Time) *Draft {
	return &Draft{
		ID:        id,
		Step:      StepWelcome,
		Address:   domain.Address{Country: domain.DefaultCountry},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// guardErrors returns the inline validation messages blocking forward
// navigation from the current step. Empty means the step may advance.
func (d *Draft) guardErrors() []string {
	switch d.Step {
	case StepCompanyName:
		if strings.TrimSpace(d.CompanyName) == "" {
			return []string{"Company name is required"}
		}
	case StepShares:
		if res := d.Shares.Validate(); !res.IsValid {
			return res.Errors
		}
	case StepTotalAssets:
		return d.TotalAssets.Validate()
	case StepAddress:
		return d.Address.Validate()
	case StepOfficers:
		if len(d.Officers) == 0 {
			return []string{"At least one officer is required"}
		}
		for _, o := range d.Officers {
			if errs := o.Validate(); len(errs) > 0 {
				return errs
			}
		}
	case StepDirectors:
		if len(d.Directors) == 0 {
			return []string{"At least one director is required"}
		}
		for _, dir := range d.Directors {
			if errs := dir.Validate(); len(errs) > 0 {
				return errs
			}
		}
	case StepSubmitter:
		name := strings.TrimSpace(d.Submitter)
		if name == "" {
			return []string{"Submitter must be selected"}
		}
		for _, candidate := range d.submitterCandidates() {
			if candidate == name {
				return nil
			}
		}
		return []string{"Submitter must be one of the listed officers or directors"}
	}
	return nil
}

func (d *Draft) submitterCandidates() []string {
	s := domain.Submission{Officers: d.Officers, Directors: d.Directors}
	return s.SubmitterCandidates()
}

// Next advances to the following step. The current step's guard blocks
// advancement with inline validation messages; the review step advances
// only through Submit, and the thank-you step is terminal.
func (d *Draft) Next() error {
	if d.Step >= StepReview {
		return apperrors.SessionClosed("no further steps")
	}
	if errs := d.guardErrors(); len(errs) > 0 {
		return apperrors.StepBlocked(errs)
	}
	d.Step++
	return nil
}

// Prev steps back one screen. Backward navigation is always allowed
// except from the welcome step and after submission.
func (d *Draft) Prev() error {
	if d.Step <= StepWelcome {
		return apperrors.InvalidInput("already at the first step")
	}
	if d.Step >= StepThankYou {
		return apperrors.SessionClosed("submission already completed")
	}
	d.Step--
	return nil
}

// CanSubmit reports whether the draft sits at the review step with every
// guard satisfied.
func (d *Draft) CanSubmit() error {
	if d.Step != StepReview {
		return apperrors.InvalidInput("submission is only allowed from the review step")
	}
	// Re-run every guard: edits made while navigating back could have
	// invalidated an earlier step.
	saved := d.Step
	defer func() { d.Step = saved }()
	for step := StepCompanyName; step <= StepSubmitter; step++ {
		d.Step = step
		if errs := d.guardErrors(); len(errs) > 0 {
			return apperrors.StepBlocked(errs)
		}
	}
	return nil
}

// ToSubmission packages the draft as a new pending submission, trimming
// all client-entered strings. Call only after CanSubmit returns nil.
func (d *Draft) ToSubmission(now time.Time) *domain.Submission {
	sub := &domain.Submission{
		CompanyName: strings.TrimSpace(d.CompanyName),
		Shares: domain.Shares{
			AuthorizedCommon:    strings.TrimSpace(d.Shares.AuthorizedCommon),
			AuthorizedPreferred: strings.TrimSpace(d.Shares.AuthorizedPreferred),
			IssuedCommon:        strings.TrimSpace(d.Shares.IssuedCommon),
			IssuedPreferred:     strings.TrimSpace(d.Shares.IssuedPreferred),
		},
		TotalAssets: domain.TotalAssets{
			Value:      strings.TrimSpace(d.TotalAssets.Value),
			Preference: d.TotalAssets.Preference,
		},
		Address:      trimAddress(d.Address),
		Officers:     make([]domain.Officer, len(d.Officers)),
		Directors:    make([]domain.Director, len(d.Directors)),
		Submitter:    strings.TrimSpace(d.Submitter),
		Status:       domain.StatusPending,
		SubmittedAt:  now,
		LastModified: now,
	}
	for i, o := range d.Officers {
		sub.Officers[i] = domain.Officer{
			Name:    strings.TrimSpace(o.Name),
			Title:   strings.TrimSpace(o.Title),
			Address: trimAddress(o.Address),
		}
	}
	for i, dir := range d.Directors {
		sub.Directors[i] = domain.Director{
			Name:    strings.TrimSpace(dir.Name),
			Address: trimAddress(dir.Address),
		}
	}
	return sub
}

func trimAddress(a domain.Address) domain.Address {
	return domain.Address{
		Street1: strings.TrimSpace(a.Street1),
		Street2: strings.TrimSpace(a.Street2),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

// MarkSubmitted advances the draft to the thank-you step.
func (d *Draft) MarkSubmitted() {
	d.Step = StepThankYou
}
