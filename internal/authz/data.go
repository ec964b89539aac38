package authz

import (
	"slices"
	"time"
)

// AuthorizationData is an immutable snapshot of a principal's roles and
// permissions within one tenant. Cache metadata is attached only through
// WithCacheMetadata, which copies; an un-cached value never carries stamps.
type AuthorizationData struct {
	UserID      string   `json:"user_id"`
	TenantID    int64    `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	IsAdmin     bool     `json:"is_admin"`

	// Cache metadata, zero until stamped.
	CachedAt  time.Time `json:"cached_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	ETag      string    `json:"etag,omitempty"`
}

// ForAnonymousUser builds the snapshot for an unauthenticated principal:
// exactly the public role with its fixed permission set.
func ForAnonymousUser(tenantID int64) AuthorizationData {
	return AuthorizationData{
		UserID:      AnonymousUserID,
		TenantID:    tenantID,
		Roles:       []string{RolePublic},
		Permissions: slices.Clone(PublicPermissions),
		IsAdmin:     false,
	}
}

// ForAuthenticatedUser builds the snapshot for an authenticated principal.
// The authenticated role and marker permission are always present; supplied
// roles and permissions are merged in with duplicates removed.
func ForAuthenticatedUser(userID string, tenantID int64, roles, permissions []string) AuthorizationData {
	mergedRoles := dedupeMerge([]string{RoleAuthenticated}, roles)
	mergedPerms := dedupeMerge(slices.Clone(AuthenticatedPermissions), permissions)

	return AuthorizationData{
		UserID:      userID,
		TenantID:    tenantID,
		Roles:       mergedRoles,
		Permissions: mergedPerms,
		IsAdmin:     slices.Contains(roles, RoleAdmin),
	}
}

// WithCacheMetadata returns a copy carrying the given cache stamps. The
// receiver is left untouched.
func (d AuthorizationData) WithCacheMetadata(cachedAt, expiresAt time.Time, etag string) AuthorizationData {
	stamped := d
	stamped.Roles = slices.Clone(d.Roles)
	stamped.Permissions = slices.Clone(d.Permissions)
	stamped.CachedAt = cachedAt
	stamped.ExpiresAt = expiresAt
	stamped.ETag = etag
	return stamped
}

// HasPermission reports whether the snapshot grants permission.
func (d AuthorizationData) HasPermission(permission string) bool {
	return slices.Contains(d.Permissions, permission)
}

// HasRole reports whether the snapshot carries role.
func (d AuthorizationData) HasRole(role string) bool {
	return slices.Contains(d.Roles, role)
}

// dedupeMerge appends extra onto base, preserving first-seen order and
// dropping duplicates.
func dedupeMerge(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, v := range base {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
