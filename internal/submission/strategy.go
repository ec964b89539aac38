package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/cache"
	"github.com/formtrust/formtrust/internal/result"
)

// AccessContext keys the submission access strategy: which submission, in
// which tenant, for which principal.
type AccessContext struct {
	SubmissionID int64
	TenantID     int64
	Principal    authz.Principal
}

// AccessData is the computed answer for one AccessContext.
type AccessData struct {
	SubmissionID int64 `json:"submission_id"`
	IsOwner      bool  `json:"is_owner"`
	CanView      bool  `json:"can_view"`
	CanEdit      bool  `json:"can_edit"`
	CanExport    bool  `json:"can_export"`
}

// AccessStrategy computes and caches per-principal access answers for
// submissions. A nonexistent submission always yields NotFound and is never
// cached, so attacker-supplied ids cannot pin negative entries.
type AccessStrategy struct {
	repo  Repository
	store cache.Store[AccessData]
	ttl   time.Duration
}

// NewAccessStrategy creates a strategy caching answers for ttl.
func NewAccessStrategy(repo Repository, store cache.Store[AccessData], ttl time.Duration) *AccessStrategy {
	return &AccessStrategy{
		repo:  repo,
		store: store,
		ttl:   ttl,
	}
}

var _ authz.AccessStrategy[AccessContext, AccessData] = (*AccessStrategy)(nil)

// GetAccessData returns the cached access answer for access, recomputing
// from ownership and role rules on miss or expiry.
func (s *AccessStrategy) GetAccessData(ctx context.Context, access AccessContext) result.Result[cache.Entry[AccessData]] {
	key := s.cacheKey(access)

	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return result.Err[cache.Entry[AccessData]]("submission access cache unavailable")
	}
	if ok {
		return result.Ok(entry)
	}

	sub, err := s.repo.GetByID(ctx, access.TenantID, access.SubmissionID)
	if err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
			return result.NotFound[cache.Entry[AccessData]]("submission not found")
		}
		return result.Err[cache.Entry[AccessData]]("failed to load submission")
	}

	data := s.compute(access, sub)

	entry = cache.NewEntry(data, s.ttl, "")
	if err := s.store.Set(ctx, key, entry); err != nil {
		return result.Err[cache.Entry[AccessData]]("submission access cache unavailable")
	}

	return result.Ok(entry)
}

func (s *AccessStrategy) compute(access AccessContext, sub *Submission) AccessData {
	p := access.Principal

	var snapshot authz.AuthorizationData
	if p.IsAnonymous() {
		snapshot = authz.ForAnonymousUser(access.TenantID)
	} else {
		snapshot = authz.ForAuthenticatedUser(p.UserID, access.TenantID, p.Roles, p.Permissions)
	}

	isOwner := !p.IsAnonymous() && sub.OwnerID == p.UserID

	return AccessData{
		SubmissionID: sub.ID,
		IsOwner:      isOwner,
		CanView:      snapshot.IsAdmin || isOwner || snapshot.HasPermission(authz.PermSubmissionsView),
		CanEdit:      snapshot.IsAdmin || isOwner || snapshot.HasPermission(authz.PermSubmissionsEdit),
		CanExport:    snapshot.IsAdmin || isOwner || snapshot.HasPermission(authz.PermSubmissionsExport),
	}
}

// cacheKey is deterministic and always embeds the tenant id.
func (s *AccessStrategy) cacheKey(access AccessContext) string {
	userID := access.Principal.UserID
	if userID == "" {
		userID = authz.AnonymousUserID
	}
	return fmt.Sprintf("submission:%d:%d:%s", access.TenantID, access.SubmissionID, userID)
}
