package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	pkgkafka "github.com/Ugur-Atakan/mckaycpa/pkg/kafka"
)

// Kafka topic constants for intake domain events.
const (
	TopicSubmissionCreated       = "intake.submission.created"
	TopicSubmissionStatusChanged = "intake.submission.status_changed"
	TopicSubmissionDeleted       = "intake.submission.deleted"
	TopicVerificationRequested   = "intake.verification.requested"
	TopicClientVerified          = "intake.verification.completed"
)

// Aggregate type constant.
const AggregateTypeSubmission = "submission"

// Source identifier for events originating from the intake service.
const SourceIntakeService = "intake-service"

// SubmissionCreatedData is the payload for a submission.created event.
type SubmissionCreatedData struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Submitter   string `json:"submitter"`
	Status      string `json:"status"`
	Officers    int    `json:"officer_count"`
	Directors   int    `json:"director_count"`
}

// SubmissionStatusChangedData is the payload for a status_changed event.
type SubmissionStatusChangedData struct {
	SubmissionID string `json:"submission_id"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
}

// SubmissionDeletedData is the payload for a submission.deleted event.
type SubmissionDeletedData struct {
	SubmissionID string `json:"submission_id"`
	CompanyName  string `json:"company_name"`
}

// VerificationRequestedData is the payload for a verification.requested
// event. The token itself never leaves the service; downstream consumers
// get the full link for client notification.
type VerificationRequestedData struct {
	SubmissionID string `json:"submission_id"`
	CompanyName  string `json:"company_name"`
	Link         string `json:"link"`
}

// ClientVerifiedData is the payload for a verification.completed event.
type ClientVerifiedData struct {
	SubmissionID string `json:"submission_id"`
	Submitter    string `json:"submitter"`
}

// Producer publishes intake domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the intake service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSubmissionCreated publishes a submission.created event.
func (p *Producer) PublishSubmissionCreated(ctx context.Context, sub *domain.Submission) error {
	data := SubmissionCreatedData{
		ID:          sub.ID,
		CompanyName: sub.CompanyName,
		Submitter:   sub.Submitter,
		Status:      sub.Status,
		Officers:    len(sub.Officers),
		Directors:   len(sub.Directors),
	}

	event, err := pkgkafka.NewEvent(TopicSubmissionCreated, sub.ID, AggregateTypeSubmission, SourceIntakeService, data)
	if err != nil {
		return fmt.Errorf("create submission.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSubmissionCreated, event); err != nil {
		return fmt.Errorf("publish submission.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published submission.created event",
		slog.String("submission_id", sub.ID),
		slog.String("company_name", sub.CompanyName),
	)

	return nil
}

// PublishStatusChanged publishes a submission.status_changed event.
func (p *Producer) PublishStatusChanged(ctx context.Context, submissionID, oldStatus, newStatus string) error {
	data := SubmissionStatusChangedData{
		SubmissionID: submissionID,
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicSubmissionStatusChanged, submissionID, AggregateTypeSubmission, SourceIntakeService, data)
	if err != nil {
		return fmt.Errorf("create submission.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSubmissionStatusChanged, event); err != nil {
		return fmt.Errorf("publish submission.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published submission.status_changed event",
		slog.String("submission_id", submissionID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishSubmissionDeleted publishes a submission.deleted event.
func (p *Producer) PublishSubmissionDeleted(ctx context.Context, submissionID, companyName string) error {
	data := SubmissionDeletedData{
		SubmissionID: submissionID,
		CompanyName:  companyName,
	}

	event, err := pkgkafka.NewEvent(TopicSubmissionDeleted, submissionID, AggregateTypeSubmission, SourceIntakeService, data)
	if err != nil {
		return fmt.Errorf("create submission.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSubmissionDeleted, event); err != nil {
		return fmt.Errorf("publish submission.deleted event: %w", err)
	}

	return nil
}

// PublishVerificationRequested publishes a verification.requested event.
func (p *Producer) PublishVerificationRequested(ctx context.Context, submissionID, companyName, link string) error {
	data := VerificationRequestedData{
		SubmissionID: submissionID,
		CompanyName:  companyName,
		Link:         link,
	}

	event, err := pkgkafka.NewEvent(TopicVerificationRequested, submissionID, AggregateTypeSubmission, SourceIntakeService, data)
	if err != nil {
		return fmt.Errorf("create verification.requested event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicVerificationRequested, event); err != nil {
		return fmt.Errorf("publish verification.requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published verification.requested event",
		slog.String("submission_id", submissionID),
	)

	return nil
}

// PublishClientVerified publishes a verification.completed event.
func (p *Producer) PublishClientVerified(ctx context.Context, submissionID, submitter string) error {
	data := ClientVerifiedData{
		SubmissionID: submissionID,
		Submitter:    submitter,
	}

	event, err := pkgkafka.NewEvent(TopicClientVerified, submissionID, AggregateTypeSubmission, SourceIntakeService, data)
	if err != nil {
		return fmt.Errorf("create verification.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicClientVerified, event); err != nil {
		return fmt.Errorf("publish verification.completed event: %w", err)
	}

	return nil
}
