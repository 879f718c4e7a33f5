package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/pkg/httputil"
	"github.com/Ugur-Atakan/mckaycpa/pkg/validator"
)

// VerifyHandler handles the tokenized client review endpoints. All
// routes require both the submission ID and the token from the
// verification link; any mismatch surfaces as a generic not-found.
type VerifyHandler struct {
	service *service.VerificationService
	logger  *slog.Logger
}

// NewVerifyHandler creates a new verification HTTP handler.
func NewVerifyHandler(svc *service.VerificationService, logger *slog.Logger) *VerifyHandler {
	return &VerifyHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PatchFieldsRequest is the JSON request body for client corrections.
type PatchFieldsRequest struct {
	Fields map[string]any `json:"fields" validate:"required,min=1"`
}

// ConfirmRequest is the JSON request body for confirming a submission.
type ConfirmRequest struct {
	Submitter string `json:"submitter" validate:"required"`
}

// --- Handlers ---

// Get handles GET /api/v1/verify/{submissionID}/{token}
func (h *VerifyHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Validate(r.Context(), chi.URLParam(r, "submissionID"), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}

// PatchFields handles PATCH /api/v1/verify/{submissionID}/{token}/fields
func (h *VerifyHandler) PatchFields(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PatchFieldsRequest
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

	err := h.service.UpdateClientFields(r.Context(), chi.URLParam(r, "submissionID"), chi.URLParam(r, "token"), req.Fields)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "updated"}})
}

// Confirm handles POST /api/v1/verify/{submissionID}/{token}/confirm
func (h *VerifyHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ConfirmRequest
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

	err := h.service.MarkVerified(r.Context(), chi.URLParam(r, "submissionID"), chi.URLParam(r, "token"), req.Submitter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "verified"}})
}
