package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/cache"
	"github.com/formtrust/formtrust/internal/result"
)

// AccessContext keys the form access strategy.
type AccessContext struct {
	FormID    int64
	TenantID  int64
	Principal authz.Principal
}

// AccessData is the computed answer for one AccessContext. Unpublished forms
// are visible only to their owner and admins.
type AccessData struct {
	FormID    int64 `json:"form_id"`
	IsOwner   bool  `json:"is_owner"`
	CanView   bool  `json:"can_view"`
	CanEdit   bool  `json:"can_edit"`
	CanDelete bool  `json:"can_delete"`
}

// AccessStrategy computes and caches per-principal access answers for forms.
// It mirrors the submission strategy; resource kinds are dispatched by the
// caller picking a strategy, not through a type hierarchy.
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

// GetAccessData returns the cached access answer for access, recomputing on
// miss or expiry. Nonexistent forms yield NotFound and are never cached.
func (s *AccessStrategy) GetAccessData(ctx context.Context, access AccessContext) result.Result[cache.Entry[AccessData]] {
	key := s.cacheKey(access)

	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return result.Err[cache.Entry[AccessData]]("form access cache unavailable")
	}
	if ok {
		return result.Ok(entry)
	}

	f, err := s.repo.GetByID(ctx, access.TenantID, access.FormID)
	if err != nil {
		if errors.Is(err, ErrFormNotFound) {
			return result.NotFound[cache.Entry[AccessData]]("form not found")
		}
		return result.Err[cache.Entry[AccessData]]("failed to load form")
	}

	data := s.compute(access, f)

	entry = cache.NewEntry(data, s.ttl, "")
	if err := s.store.Set(ctx, key, entry); err != nil {
		return result.Err[cache.Entry[AccessData]]("form access cache unavailable")
	}

	return result.Ok(entry)
}

func (s *AccessStrategy) compute(access AccessContext, f *Form) AccessData {
	p := access.Principal

	var snapshot authz.AuthorizationData
	if p.IsAnonymous() {
		snapshot = authz.ForAnonymousUser(access.TenantID)
	} else {
		snapshot = authz.ForAuthenticatedUser(p.UserID, access.TenantID, p.Roles, p.Permissions)
	}

	isOwner := !p.IsAnonymous() && f.OwnerID == p.UserID
	canView := snapshot.IsAdmin || isOwner || (f.Published && snapshot.HasPermission(authz.PermFormsView))

	return AccessData{
		FormID:    f.ID,
		IsOwner:   isOwner,
		CanView:   canView,
		CanEdit:   snapshot.IsAdmin || isOwner || snapshot.HasPermission(authz.PermFormsEdit),
		CanDelete: snapshot.IsAdmin || isOwner || snapshot.HasPermission(authz.PermFormsDelete),
	}
}

// cacheKey is deterministic and always embeds the tenant id.
func (s *AccessStrategy) cacheKey(access AccessContext) string {
	userID := access.Principal.UserID
	if userID == "" {
		userID = authz.AnonymousUserID
	}
	return fmt.Sprintf("form:%d:%d:%s", access.TenantID, access.FormID, userID)
}
