package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	"github.com/Ugur-Atakan/mckaycpa/pkg/database"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// SubmissionRepository implements repository.SubmissionRepository using
// PostgreSQL. The full form is stored as a JSONB document; company name,
// status and submitter are denormalized into columns for search, sort
// and dashboard aggregation.
type SubmissionRepository struct {
	pool database.DBTX
}

// NewSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewSubmissionRepository(pool database.DBTX) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// columnSynced maps top-level document fields to their denormalized columns.
var columnSynced = map[string]string{
	"companyName": "company_name",
	"status":      "status",
	"submitter":   "submitter",
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	query := `
		INSERT INTO submissions (id, company_name, status, submitter, data, submitted_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		sub.ID,
		sub.CompanyName,
		sub.Status,
		sub.Submitter,
		data,
		sub.SubmittedAt,
		sub.LastModified,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `
		SELECT id, company_name, status, submitter, data, submitted_at, last_modified
		FROM submissions
		WHERE id = $1`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("submission", id)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return sub, nil
}

// List returns submissions matching the filter with the total count.
func (r *SubmissionRepository) List(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("company_name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortDir, "asc") {
		direction = "ASC"
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 25
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	// count(*) OVER() yields the unpaginated total in the same query.
	query := fmt.Sprintf(`
		SELECT id, company_name, status, submitter, data, submitted_at, last_modified,
			   count(*) OVER() AS total_count
		FROM submissions
		%s
		ORDER BY submitted_at %s
		LIMIT $%d OFFSET $%d`,
		whereClause, direction, argIndex, argIndex+1,
	)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var totalCount int
	subs := make([]domain.Submission, 0)

	for rows.Next() {
		var (
			sub  domain.Submission
			data []byte
		)
		if err := rows.Scan(
			&sub.ID,
			&sub.CompanyName,
			&sub.Status,
			&sub.Submitter,
			&data,
			&sub.SubmittedAt,
			&sub.LastModified,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan submission row: %w", err)
		}
		if err := hydrateSubmission(&sub, data); err != nil {
			return nil, 0, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submission rows: %w", err)
	}

	return subs, totalCount, nil
}

// UpdateFields applies independent dotted-path updates to the JSONB
// document, keeps the denormalized columns in sync, and bumps
// last_modified. All paths in one call commit atomically.
func (r *SubmissionRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return apperrors.InvalidInput("no fields to update")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	for path, value := range fields {
		jsonPath, err := jsonbPath(path)
		if err != nil {
			return err
		}

		valJSON, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal field %q: %w", path, err)
		}

		ct, err := tx.Exec(ctx, `
			UPDATE submissions
			SET data = jsonb_set(data, $1, $2::jsonb, true), last_modified = $3
			WHERE id = $4`,
			jsonPath, valJSON, now, id,
		)
		if err != nil {
			return fmt.Errorf("update field %q: %w", path, err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("submission", id)
		}

		if col, ok := columnSynced[path]; ok {
			str, ok := value.(string)
			if !ok {
				return apperrors.InvalidInput(fmt.Sprintf("field %q must be a string", path))
			}
			query := fmt.Sprintf("UPDATE submissions SET %s = $1 WHERE id = $2", col)
			if _, err := tx.Exec(ctx, query, str, id); err != nil {
				return fmt.Errorf("sync column %q: %w", col, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete permanently removes a submission.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("submission", id)
	}
	return nil
}

// CountByStatus returns the number of submissions per status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

// Recent returns the most recently submitted records, newest first.
func (r *SubmissionRepository) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT id, company_name, status, submitter, data, submitted_at, last_modified
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]domain.Submission, 0, limit)
	for rows.Next() {
		var (
			sub  domain.Submission
			data []byte
		)
		if err := rows.Scan(
			&sub.ID,
			&sub.CompanyName,
			&sub.Status,
			&sub.Submitter,
			&data,
			&sub.SubmittedAt,
			&sub.LastModified,
		); err != nil {
			return nil, fmt.Errorf("scan recent submission: %w", err)
		}
		if err := hydrateSubmission(&sub, data); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent submissions: %w", err)
	}

	return subs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var (
		sub  domain.Submission
		data []byte
	)
	if err := row.Scan(
		&sub.ID,
		&sub.CompanyName,
		&sub.Status,
		&sub.Submitter,
		&data,
		&sub.SubmittedAt,
		&sub.LastModified,
	); err != nil {
		return nil, err
	}
	if err := hydrateSubmission(&sub, data); err != nil {
		return nil, err
	}
	return &sub, nil
}

// hydrateSubmission fills the nested document fields from the JSONB
// column while keeping the scanned column values authoritative.
func hydrateSubmission(sub *domain.Submission, data []byte) error {
	var doc domain.Submission
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal submission document: %w", err)
	}
	sub.Shares = doc.Shares
	sub.TotalAssets = doc.TotalAssets
	sub.Address = doc.Address
	sub.Officers = doc.Officers
	sub.Directors = doc.Directors
	sub.Verification = doc.Verification
	if sub.Officers == nil {
		sub.Officers = []domain.Officer{}
	}
	if sub.Directors == nil {
		sub.Directors = []domain.Director{}
	}
	return nil
}

// jsonbPath converts a dotted field path like "officers.2.title" into a
// text[] path for jsonb_set. Path segments must be non-empty and free of
// quoting characters.
func jsonbPath(path string) ([]string, error) {
	if path == "" {
		return nil, apperrors.InvalidInput("field path is required")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid field path %q", path))
		}
		if strings.ContainsAny(seg, `"'{}`) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid field path %q", path))
		}
	}
	return segments, nil
}
