package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
	"github.com/Ugur-Atakan/mckaycpa/pkg/httputil"
)

// WizardHandler handles HTTP requests for the client intake wizard.
type WizardHandler struct {
	service *service.WizardService
	logger  *slog.Logger
}

// NewWizardHandler creates a new wizard HTTP handler.
func NewWizardHandler(svc *service.WizardService, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		service: svc,
		logger:  logger,
	}
}

// draftResponse decorates a draft with the human-readable name of its
// current step so the front end does not hard-code the step order.
type draftResponse struct {
	*wizard.Draft
	StepName string `json:"stepName"`
}

func newDraftResponse(d *wizard.Draft) draftResponse {
	return draftResponse{Draft: d, StepName: wizard.StepName(d.Step)}
}

// Start handles POST /api/v1/wizard
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Start(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: newDraftResponse(draft)})
}

// Get handles GET /api/v1/wizard/{sessionID}
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	draft, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newDraftResponse(draft)})
}

// Next handles POST /api/v1/wizard/{sessionID}/next
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input service.DraftInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	draft, err := h.service.Next(r.Context(), id.String(), input)
	if err != nil {
		// A blocked step still saved the input; the caller keeps the
		// inline messages and retries the same step.
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newDraftResponse(draft)})
}

// Prev handles POST /api/v1/wizard/{sessionID}/prev
func (h *WizardHandler) Prev(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	draft, err := h.service.Prev(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newDraftResponse(draft)})
}

// Submit handles POST /api/v1/wizard/{sessionID}/submit
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	sub, err := h.service.Submit(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sub})
}
