package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/formtrust/formtrust/internal/sharing"
)

// createAccessTokenRequest is the JSON body for minting a sharing token.
// The submission id comes from the route, never from the body.
type createAccessTokenRequest struct {
	ExpiryMinutes int      `json:"expiry_minutes"`
	Permissions   []string `json:"permissions"`
}

// CreateAccessToken mints a permission-scoped sharing token for one
// submission. The caller must hold every requested permission.
func (h *Handler) CreateAccessToken(w http.ResponseWriter, r *http.Request) {
	submissionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || submissionID <= 0 {
		respondError(w, http.StatusBadRequest, "malformed submission id")
		return
	}

	var body createAccessTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res := h.sharingService.CreateAccessToken(r.Context(), sharing.CreateAccessTokenRequest{
		SubmissionID:  submissionID,
		ExpiryMinutes: body.ExpiryMinutes,
		Permissions:   body.Permissions,
	})

	respondResult(w, res)
}

// GetSubmissionByAccessToken resolves a submission from a presented sharing
// token. The token arrives as a query parameter on the sharing link.
func (h *Handler) GetSubmissionByAccessToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing token")
		return
	}

	res := h.sharingService.GetSubmissionByAccessToken(r.Context(), token)
	respondResult(w, res)
}
