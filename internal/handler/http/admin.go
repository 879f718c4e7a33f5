package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository"
	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/pkg/httputil"
	"github.com/Ugur-Atakan/mckaycpa/pkg/pagination"
	"github.com/Ugur-Atakan/mckaycpa/pkg/validator"
)

// AdminHandler handles the staff console endpoints for managing
// submissions and verification links.
type AdminHandler struct {
	submissions  *service.SubmissionService
	verification *service.VerificationService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(subs *service.SubmissionService, verif *service.VerificationService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		submissions:  subs,
		verification: verif,
		logger:       logger,
	}
}

// --- Request DTOs ---

// CreateSubmissionRequest is the JSON request body for a staff-entered
// submission. It carries the same shape a completed wizard run produces.
type CreateSubmissionRequest struct {
	CompanyName string             `json:"companyName" validate:"required"`
	Shares      domain.Shares      `json:"shares"`
	TotalAssets domain.TotalAssets `json:"totalAssets"`
	Address     domain.Address     `json:"address"`
	Officers    []domain.Officer   `json:"officers" validate:"required,min=1"`
	Directors   []domain.Director  `json:"directors" validate:"required,min=1"`
	Submitter   string             `json:"submitter" validate:"required"`
}

// UpdateFieldRequest is the JSON request body for editing a single
// submission field by its dotted path.
type UpdateFieldRequest struct {
	Path  string          `json:"path" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

// --- Handlers ---

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.submissions.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// List handles GET /api/v1/admin/submissions
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.SubmissionFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		SortDir: "desc",
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if sort := r.URL.Query().Get("sort"); sort == "asc" {
		filter.SortDir = "asc"
	}

	subs, total, err := h.submissions.ListSubmissions(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(subs, total, params))
}

// Create handles POST /api/v1/admin/submissions
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sub, err := h.submissions.CreateSubmission(r.Context(), service.CreateSubmissionInput{
		CompanyName: req.CompanyName,
		Shares:      req.Shares,
		TotalAssets: req.TotalAssets,
		Address:     req.Address,
		Officers:    req.Officers,
		Directors:   req.Directors,
		Submitter:   req.Submitter,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sub})
}

// Get handles GET /api/v1/admin/submissions/{id}
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sub, err := h.submissions.GetSubmission(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}

// UpdateField handles PATCH /api/v1/admin/submissions/{id}/fields
func (h *AdminHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	var value any
	if err := json.Unmarshal(req.Value, &value); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "field value must be valid JSON"},
		})
		return
	}

	if err := h.submissions.UpdateField(r.Context(), id.String(), req.Path, value); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "updated"}})
}

// Delete handles DELETE /api/v1/admin/submissions/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.submissions.DeleteSubmission(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleStatus handles POST /api/v1/admin/submissions/{id}/status/toggle
func (h *AdminHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	status, err := h.submissions.ToggleStatus(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"status":      status,
		"statusLabel": domain.StatusLabel(status),
	}})
}

// GenerateVerificationLink handles POST /api/v1/admin/submissions/{id}/verification-link
func (h *AdminHandler) GenerateVerificationLink(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	link, err := h.verification.GenerateLink(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"verificationLink": link}})
}
