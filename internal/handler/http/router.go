package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ugur-Atakan/mckaycpa/internal/auth"
	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/pkg/health"
	"github.com/Ugur-Atakan/mckaycpa/pkg/middleware"
)

// RouterConfig carries the knobs the router needs beyond its handlers.
type RouterConfig struct {
	CORS            middleware.CORSConfig
	VerifyRateRPS   int
	VerifyRateBurst int
}

// NewRouter creates a chi router with all intake service routes registered.
func NewRouter(
	wizardService *service.WizardService,
	submissionService *service.SubmissionService,
	verificationService *service.VerificationService,
	staffService *service.StaffService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("intake"))
	r.Use(middleware.Tracing("intake"))
	// Context logger with correlation and trace IDs for public routes.
	// Authenticated groups mount RequestLogger again after Auth so the
	// staff ID is included.
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Wizard endpoints (public, anonymous sessions)
	wizardHandler := NewWizardHandler(wizardService, logger)
	r.Route("/api/v1/wizard", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", wizardHandler.Start)
		r.Get("/{sessionID}", wizardHandler.Get)
		r.Post("/{sessionID}/next", wizardHandler.Next)
		r.Post("/{sessionID}/prev", wizardHandler.Prev)
		r.Post("/{sessionID}/submit", wizardHandler.Submit)
	})

	// Client verification endpoints (public, token-gated). Rate limited
	// to blunt token guessing.
	verifyHandler := NewVerifyHandler(verificationService, logger)
	r.Route("/api/v1/verify/{submissionID}/{token}", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.RateLimit(cfg.VerifyRateRPS, cfg.VerifyRateBurst, logger))

		r.Get("/", verifyHandler.Get)
		r.Patch("/fields", verifyHandler.PatchFields)
		r.Post("/confirm", verifyHandler.Confirm)
	})

	// Staff auth endpoints
	authHandler := NewAuthHandler(staffService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator(jwtManager)))
			r.Use(middleware.RequestLogger(logger))
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// Admin console endpoints (auth required)
	adminHandler := NewAdminHandler(submissionService, verificationService, logger)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator(jwtManager)))
		r.Use(middleware.RequestLogger(logger))

		r.Get("/dashboard", adminHandler.Dashboard)

		r.Get("/submissions", adminHandler.List)
		r.Post("/submissions", adminHandler.Create)
		r.Get("/submissions/{id}", adminHandler.Get)
		r.Delete("/submissions/{id}", adminHandler.Delete)
		r.Patch("/submissions/{id}/fields", adminHandler.UpdateField)
		r.Post("/submissions/{id}/status/toggle", adminHandler.ToggleStatus)
		r.Post("/submissions/{id}/verification-link", adminHandler.GenerateVerificationLink)
	})

	return r
}

// tokenValidator bridges the JWT manager to the auth middleware.
func tokenValidator(jwtManager *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			StaffID: claims.StaffID,
			Email:   claims.Email,
		}, nil
	}
}
