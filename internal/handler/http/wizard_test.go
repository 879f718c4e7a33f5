package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/event"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
	"github.com/Ugur-Atakan/mckaycpa/pkg/httputil"
	pkgkafka "github.com/Ugur-Atakan/mckaycpa/pkg/kafka"
)

// --- Mock repositories ---

type mockSubmissionRepository struct {
	mock.Mock
}

func (m *mockSubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepository) List(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *mockSubmissionRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockSubmissionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSubmissionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockSubmissionRepository) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

type mockDraftRepository struct {
	mock.Mock
}

func (m *mockDraftRepository) Get(ctx context.Context, id string) (*wizard.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wizard.Draft), args.Error(1)
}

func (m *mockDraftRepository) Save(ctx context.Context, draft *wizard.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *mockDraftRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockStaffRepository struct {
	mock.Mock
}

func (m *mockStaffRepository) Create(ctx context.Context, user *domain.StaffUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockStaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}

func (m *mockStaffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}

func (m *mockStaffRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// --- Test helpers ---

const (
	testSubmissionID = "550e8400-e29b-41d4-a716-446655440001"
	testSessionID    = "550e8400-e29b-41d4-a716-446655440002"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testWizardHandler(drafts *mockDraftRepository, subs *mockSubmissionRepository) *WizardHandler {
	svc := service.NewWizardService(drafts, subs, testEventProducer(), testLogger())
	return NewWizardHandler(svc, testLogger())
}

// setupWizardRouter creates a chi router matching the production route layout.
func setupWizardRouter(handler *WizardHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/wizard", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", handler.Start)
		r.Get("/{sessionID}", handler.Get)
		r.Post("/{sessionID}/next", handler.Next)
		r.Post("/{sessionID}/prev", handler.Prev)
		r.Post("/{sessionID}/submit", handler.Submit)
	})
	return r
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// reviewReadyDraft returns a draft parked at the review step with every
// guard satisfied.
func reviewReadyDraft(id string) *wizard.Draft {
	d := wizard.NewDraft(id, time.Now().UTC())
	d.Step = wizard.StepReview
	d.CompanyName = "Acme Inc"
	d.Shares = domain.Shares{
		AuthorizedCommon:    "1000",
		AuthorizedPreferred: "0",
		IssuedCommon:        "500",
		IssuedPreferred:     "0",
	}
	d.TotalAssets = domain.TotalAssets{Preference: domain.AssetsPreferenceHelp}
	d.Address = domain.Address{
		Street1: "1209 Orange St",
		City:    "Wilmington",
		State:   "DE",
		ZipCode: "19801",
		Country: domain.DefaultCountry,
	}
	d.Officers = []domain.Officer{
		{Name: "Jane Doe", Title: "President", Address: d.Address},
	}
	d.Directors = []domain.Director{
		{Name: "Jane Doe", Address: d.Address},
	}
	d.Submitter = "Jane Doe"
	return d
}

// --- Wizard handler tests ---

func TestWizardStart_CreatesSession(t *testing.T) {
	drafts := new(mockDraftRepository)
	drafts.On("Save", mock.Anything, mock.AnythingOfType("*wizard.Draft")).Return(nil)

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, float64(wizard.StepWelcome), data["step"])
	assert.Equal(t, "welcome", data["stepName"])
	drafts.AssertExpectations(t)
}

func TestWizardGet_UnknownSessionReturns404(t *testing.T) {
	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(nil, apperrors.NotFound("draft", testSessionID))

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wizard/"+testSessionID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardGet_InvalidSessionIDReturns400(t *testing.T) {
	router := setupWizardRouter(testWizardHandler(new(mockDraftRepository), new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wizard/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardNext_AdvancesPastWelcome(t *testing.T) {
	draft := wizard.NewDraft(testSessionID, time.Now().UTC())

	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(draft, nil)
	drafts.On("Save", mock.Anything, mock.AnythingOfType("*wizard.Draft")).Return(nil)

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/"+testSessionID+"/next", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(wizard.StepCompanyName), data["step"])
	assert.Equal(t, "company_name", data["stepName"])
}

func TestWizardNext_GuardFailureReturns400WithDetails(t *testing.T) {
	draft := wizard.NewDraft(testSessionID, time.Now().UTC())
	draft.Step = wizard.StepCompanyName

	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(draft, nil)
	// The blocked step still persists the draft.
	drafts.On("Save", mock.Anything, mock.AnythingOfType("*wizard.Draft")).Return(nil)

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	body := jsonBody(t, map[string]string{"companyName": "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/"+testSessionID+"/next", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Details)
	drafts.AssertExpectations(t)
}

func TestWizardPrev_AtWelcomeReturns400(t *testing.T) {
	draft := wizard.NewDraft(testSessionID, time.Now().UTC())

	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(draft, nil)

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/"+testSessionID+"/prev", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardSubmit_AtReviewCreatesSubmission(t *testing.T) {
	draft := reviewReadyDraft(testSessionID)

	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(draft, nil)
	drafts.On("Save", mock.Anything, mock.AnythingOfType("*wizard.Draft")).Return(nil)

	subs := new(mockSubmissionRepository)
	subs.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Submission) bool {
		return s.CompanyName == "Acme Inc" && s.Status == domain.StatusPending
	})).Return(nil)

	router := setupWizardRouter(testWizardHandler(drafts, subs))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/"+testSessionID+"/submit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	subs.AssertExpectations(t)
}

func TestWizardSubmit_BeforeReviewReturns400(t *testing.T) {
	draft := wizard.NewDraft(testSessionID, time.Now().UTC())
	draft.Step = wizard.StepCompanyName

	drafts := new(mockDraftRepository)
	drafts.On("Get", mock.Anything, testSessionID).Return(draft, nil)

	router := setupWizardRouter(testWizardHandler(drafts, new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/"+testSessionID+"/submit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- ContentTypeJSON middleware tests ---

func TestContentTypeJSON_RejectsXML(t *testing.T) {
	router := setupWizardRouter(testWizardHandler(new(mockDraftRepository), new(mockSubmissionRepository)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard", bytes.NewReader([]byte("<xml/>")))
	req.Header.Set("Content-Type", "application/xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
