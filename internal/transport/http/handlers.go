package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/form"
	"github.com/formtrust/formtrust/internal/result"
	"github.com/formtrust/formtrust/internal/sharing"
	"github.com/formtrust/formtrust/internal/submission"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	sharingService   *sharing.Service
	submissions      submission.Repository
	submissionAccess *submission.AccessStrategy
	forms            form.Repository
	formAccess       *form.AccessStrategy
	auditLogger      audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sharingService *sharing.Service,
	submissions submission.Repository,
	submissionAccess *submission.AccessStrategy,
	forms form.Repository,
	formAccess *form.AccessStrategy,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		sharingService:   sharingService,
		submissions:      submissions,
		submissionAccess: submissionAccess,
		forms:            forms,
		formAccess:       formAccess,
		auditLogger:      auditLogger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrincipalMiddleware)

		// Token path: the bearer token is the sole credential.
		r.Get("/shared/submission", h.GetSubmissionByAccessToken)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)

			r.Post("/submissions/{id}/access-tokens", h.CreateAccessToken)
			r.Get("/submissions/{id}", h.GetSubmission)
			r.Get("/forms/{id}", h.GetForm)
		})
	})

	return r
}

// Health responds to liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusCode maps a result status to its HTTP status family.
func statusCode(s result.Status) int {
	switch s {
	case result.StatusOk:
		return http.StatusOK
	case result.StatusCreated:
		return http.StatusCreated
	case result.StatusNotFound:
		return http.StatusNotFound
	case result.StatusInvalid:
		return http.StatusBadRequest
	case result.StatusForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorEnvelope is the serialized form of a failed result.
type errorEnvelope struct {
	Error            string              `json:"error"`
	ValidationErrors []result.FieldError `json:"validation_errors,omitempty"`
	CorrelationID    string              `json:"correlation_id,omitempty"`
}

// respondResult writes a result to the response, mapping its status to an
// HTTP code and serializing either the value or the error envelope.
func respondResult[T any](w http.ResponseWriter, res result.Result[T]) {
	code := statusCode(res.Status)

	if res.IsSuccess() {
		respondJSON(w, code, res.Value)
		return
	}

	env := errorEnvelope{
		Error:            res.FirstError(),
		ValidationErrors: res.FieldErrors,
		CorrelationID:    res.CorrelationID,
	}
	if env.Error == "" {
		env.Error = "request failed"
	}
	respondJSON(w, code, env)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorEnvelope{Error: message})
}
