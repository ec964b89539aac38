package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/form"
	"github.com/formtrust/formtrust/internal/result"
	"github.com/formtrust/formtrust/internal/submission"
)

// Denials on the resource endpoints use one generic message; which rule
// failed is never disclosed.
const forbiddenMessage = "insufficient permissions"

type submissionResponse struct {
	ID        int64          `json:"id"`
	FormID    int64          `json:"form_id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GetSubmission returns a submission if the ambient principal may view it.
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "malformed submission id")
		return
	}

	p, _ := authz.PrincipalFromContext(r.Context())

	res := h.submissionAccess.GetAccessData(r.Context(), submission.AccessContext{
		SubmissionID: id,
		TenantID:     p.TenantID,
		Principal:    p,
	})
	if res.IsFailure() {
		respondResult(w, result.Propagate[submissionResponse](res))
		return
	}
	if !res.Value.Data.CanView {
		respondResult(w, result.Forbidden[submissionResponse](forbiddenMessage))
		return
	}

	sub, err := h.submissions.GetByID(r.Context(), p.TenantID, id)
	if err != nil {
		if errors.Is(err, submission.ErrSubmissionNotFound) {
			respondResult(w, result.NotFound[submissionResponse]("submission not found"))
			return
		}
		respondResult(w, result.Err[submissionResponse]("failed to load submission"))
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:     audit.TypeResourceViewed,
		TenantID: p.TenantID,
		ActorID:  p.UserID,
		Resource: "submission",
		Metadata: map[string]any{"submission_id": sub.ID},
	})

	respondResult(w, result.Ok(submissionResponse{
		ID:        sub.ID,
		FormID:    sub.FormID,
		Data:      sub.Data,
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}))
}

type formResponse struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Schema    map[string]any `json:"schema"`
	Published bool           `json:"published"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GetForm returns a form if the ambient principal may view it.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "malformed form id")
		return
	}

	p, _ := authz.PrincipalFromContext(r.Context())

	res := h.formAccess.GetAccessData(r.Context(), form.AccessContext{
		FormID:    id,
		TenantID:  p.TenantID,
		Principal: p,
	})
	if res.IsFailure() {
		respondResult(w, result.Propagate[formResponse](res))
		return
	}
	if !res.Value.Data.CanView {
		respondResult(w, result.Forbidden[formResponse](forbiddenMessage))
		return
	}

	f, err := h.forms.GetByID(r.Context(), p.TenantID, id)
	if err != nil {
		if errors.Is(err, form.ErrFormNotFound) {
			respondResult(w, result.NotFound[formResponse]("form not found"))
			return
		}
		respondResult(w, result.Err[formResponse]("failed to load form"))
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:     audit.TypeResourceViewed,
		TenantID: p.TenantID,
		ActorID:  p.UserID,
		Resource: "form",
		Metadata: map[string]any{"form_id": f.ID},
	})

	respondResult(w, result.Ok(formResponse{
		ID:        f.ID,
		Name:      f.Name,
		Schema:    f.Schema,
		Published: f.Published,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}))
}
