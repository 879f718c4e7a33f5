package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
	"github.com/Ugur-Atakan/mckaycpa/pkg/httputil"
	"github.com/Ugur-Atakan/mckaycpa/pkg/middleware"
	"github.com/Ugur-Atakan/mckaycpa/pkg/validator"
)

// AuthHandler handles HTTP requests for staff authentication.
type AuthHandler struct {
	service *service.StaffService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.StaffService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for staff login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the JSON request body for changing the
// authenticated staff user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// --- Response types ---

// LoginResponse wraps the staff profile with its access token.
type LoginResponse struct {
	Token string            `json:"token"`
	Staff *domain.StaffUser `json:"staff"`
}

// --- Handlers ---

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		// A malformed email must be indistinguishable from a wrong one.
		httputil.WriteError(w, r, apperrors.Unauthorized("invalid email or password"), h.logger)
		return
	}

	token, staff, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: LoginResponse{Token: token, Staff: staff}})
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.StaffIDFromContext(r.Context())
	if staffID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ChangePasswordRequest
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

	if err := h.service.ChangePassword(r.Context(), staffID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "password changed"}})
}
