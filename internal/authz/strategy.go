package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/formtrust/formtrust/internal/cache"
	"github.com/formtrust/formtrust/internal/result"
)

// AccessStrategy computes the access answer D for an access context C,
// serving it through the cache envelope. One implementation exists per
// resource kind; callers pick the strategy for the resource they hold,
// there is no polymorphic registry.
//
// Cache keys derived from C must be deterministic and always embed the
// tenant id, so entries can never leak across tenants.
type AccessStrategy[C any, D any] interface {
	GetAccessData(ctx context.Context, access C) result.Result[cache.Entry[D]]
}

// UserAccessContext keys the current-user strategy: the ambient principal
// whose roles and permissions are being snapshotted.
type UserAccessContext struct {
	Principal Principal
}

// UserAccessStrategy produces AuthorizationData snapshots for principals,
// cached per user and tenant. Concurrent misses for the same key may both
// compute and both write; last write wins and both values are equivalent
// because they derive from the same principal claims.
type UserAccessStrategy struct {
	store cache.Store[AuthorizationData]
	ttl   time.Duration
	now   func() time.Time
}

// NewUserAccessStrategy creates a strategy caching snapshots for ttl.
func NewUserAccessStrategy(store cache.Store[AuthorizationData], ttl time.Duration) *UserAccessStrategy {
	return &UserAccessStrategy{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetAccessData returns the cached snapshot for the principal, recomputing
// it on miss or expiry.
func (s *UserAccessStrategy) GetAccessData(ctx context.Context, access UserAccessContext) result.Result[cache.Entry[AuthorizationData]] {
	p := access.Principal
	key := userCacheKey(p.TenantID, p.UserID)

	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return result.Err[cache.Entry[AuthorizationData]]("authorization cache unavailable")
	}
	if ok {
		return result.Ok(entry)
	}

	var data AuthorizationData
	if p.IsAnonymous() {
		data = ForAnonymousUser(p.TenantID)
	} else {
		data = ForAuthenticatedUser(p.UserID, p.TenantID, p.Roles, p.Permissions)
	}

	entry = cache.NewEntry(data, s.ttl, "")
	entry.Data = data.WithCacheMetadata(entry.CachedAt, entry.ExpiresAt, entry.ETag)

	if err := s.store.Set(ctx, key, entry); err != nil {
		// The write must be all-or-nothing; on cancellation or store
		// failure nothing was cached and the computed value is not
		// served either.
		return result.Err[cache.Entry[AuthorizationData]]("authorization cache unavailable")
	}

	return result.Ok(entry)
}

func userCacheKey(tenantID int64, userID string) string {
	if userID == "" {
		userID = AnonymousUserID
	}
	return fmt.Sprintf("user:%d:%s", tenantID, userID)
}
