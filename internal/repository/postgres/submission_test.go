package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	"github.com/Ugur-Atakan/mckaycpa/pkg/database"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

// --- Test Helpers ---

func newTestRepo(t *testing.T) (*SubmissionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewSubmissionRepository(mock)
	return repo, mock
}

func sampleSubmission() *domain.Submission {
	now := time.Now().UTC().Truncate(time.Microsecond)
	addr := domain.Address{
		Street1: "1209 Orange St",
		City:    "Wilmington",
		State:   "DE",
		ZipCode: "19801",
		Country: domain.DefaultCountry,
	}
	return &domain.Submission{
		ID:          "sub-001",
		CompanyName: "Acme Inc",
		Shares: domain.Shares{
			AuthorizedCommon:    "1000",
			AuthorizedPreferred: "0",
			IssuedCommon:        "500",
			IssuedPreferred:     "0",
		},
		TotalAssets: domain.TotalAssets{Preference: domain.AssetsPreferenceHelp},
		Address:     addr,
		Officers: []domain.Officer{
			{Name: "Jane Doe", Title: "President", Address: addr},
		},
		Directors: []domain.Director{
			{Name: "Jane Doe", Address: addr},
		},
		Submitter:    "Jane Doe",
		Status:       domain.StatusPending,
		SubmittedAt:  now,
		LastModified: now,
	}
}

func submissionRows(t *testing.T, subs ...*domain.Submission) *pgxmock.Rows {
	t.Helper()
	rows := pgxmock.NewRows([]string{
		"id", "company_name", "status", "submitter", "data", "submitted_at", "last_modified",
	})
	for _, sub := range subs {
		data, err := json.Marshal(sub)
		require.NoError(t, err)
		rows.AddRow(sub.ID, sub.CompanyName, sub.Status, sub.Submitter, data, sub.SubmittedAt, sub.LastModified)
	}
	return rows
}

// --- Create Tests ---

func TestSubmissionRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(
			sub.ID, sub.CompanyName, sub.Status, sub.Submitter,
			pgxmock.AnyArg(), // document JSON
			sub.SubmittedAt, sub.LastModified,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), sub)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_Create_InsertError(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(
			sub.ID, sub.CompanyName, sub.Status, sub.Submitter,
			pgxmock.AnyArg(), sub.SubmittedAt, sub.LastModified,
		).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sub)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert submission")
}

// --- GetByID Tests ---

func TestSubmissionRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(sub.ID).
		WillReturnRows(submissionRows(t, sub))

	got, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "Acme Inc", got.CompanyName)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.Len(t, got.Officers, 1)
	assert.Equal(t, "President", got.Officers[0].Title)
	assert.Equal(t, "DE", got.Address.State)
	assert.Nil(t, got.Verification)
}

func TestSubmissionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "company_name", "status", "submitter", "data", "submitted_at", "last_modified",
		}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSubmissionRepository_GetByID_HydratesVerification(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()
	sub.Status = domain.StatusAwaitingClient
	sub.Verification = domain.NewVerification(time.Now().UTC().Truncate(time.Microsecond))

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(sub.ID).
		WillReturnRows(submissionRows(t, sub))

	got, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Verification)
	assert.Equal(t, sub.Verification.Token, got.Verification.Token)
	assert.Equal(t, domain.VerificationPending, got.Verification.Status)
}

// --- List Tests ---

func TestSubmissionRepository_List_WithSearchAndCount(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()

	data, err := json.Marshal(sub)
	require.NoError(t, err)
	rows := pgxmock.NewRows([]string{
		"id", "company_name", "status", "submitter", "data", "submitted_at", "last_modified", "total_count",
	}).AddRow(sub.ID, sub.CompanyName, sub.Status, sub.Submitter, data, sub.SubmittedAt, sub.LastModified, 42)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs("%acme%", 25, 0).
		WillReturnRows(rows)

	subs, total, err := repo.List(context.Background(), repository.SubmissionFilter{Search: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, subs, 1)
	assert.Equal(t, "Acme Inc", subs[0].CompanyName)
}

func TestSubmissionRepository_List_Pagination(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(10, 20).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "company_name", "status", "submitter", "data", "submitted_at", "last_modified", "total_count",
		}))

	subs, total, err := repo.List(context.Background(), repository.SubmissionFilter{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, subs)
}

// --- UpdateFields Tests ---

func TestSubmissionRepository_UpdateFields_NestedPath(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE submissions").
		WithArgs([]string{"address", "city"}, []byte(`"Dover"`), pgxmock.AnyArg(), "sub-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.UpdateFields(context.Background(), "sub-001", map[string]any{
		"address.city": "Dover",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_UpdateFields_SyncsStatusColumn(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE submissions").
		WithArgs([]string{"status"}, []byte(`"completed"`), pgxmock.AnyArg(), "sub-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE submissions SET status").
		WithArgs("completed", "sub-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.UpdateFields(context.Background(), "sub-001", map[string]any{
		"status": "completed",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_UpdateFields_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE submissions").
		WithArgs([]string{"address", "city"}, []byte(`"Dover"`), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.UpdateFields(context.Background(), "missing", map[string]any{
		"address.city": "Dover",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSubmissionRepository_UpdateFields_EmptyFields(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.UpdateFields(context.Background(), "sub-001", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSubmissionRepository_UpdateFields_RejectsMalformedPath(t *testing.T) {
	for _, path := range []string{"", "address..city", `officers.0."name`} {
		repo, mock := newTestRepo(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := repo.UpdateFields(context.Background(), "sub-001", map[string]any{path: "x"})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "path %q", path)
	}
}

// --- Delete Tests ---

func TestSubmissionRepository_Delete_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM submissions").
		WithArgs("sub-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.Delete(context.Background(), "sub-001"))
}

func TestSubmissionRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM submissions").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// --- Dashboard Tests ---

func TestSubmissionRepository_CountByStatus(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := pgxmock.NewRows([]string{"status", "count"}).
		AddRow(domain.StatusPending, 7).
		AddRow(domain.StatusCompleted, 3)

	mock.ExpectQuery("SELECT status, count").WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts[domain.StatusPending])
	assert.Equal(t, 3, counts[domain.StatusCompleted])
}

func TestSubmissionRepository_Recent(t *testing.T) {
	repo, mock := newTestRepo(t)
	sub := sampleSubmission()

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(5).
		WillReturnRows(submissionRows(t, sub))

	subs, err := repo.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)
}

// --- jsonbPath Tests ---

func TestJsonbPath(t *testing.T) {
	path, err := jsonbPath("officers.2.title")
	require.NoError(t, err)
	assert.Equal(t, []string{"officers", "2", "title"}, path)

	_, err = jsonbPath("")
	assert.Error(t, err)
}
