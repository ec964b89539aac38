// Copyright 2026 The Formtrust Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package authz

// -----------------------------------------------------------------------------
// System Role Names
// Role→permission mappings are static configuration, not persisted per tenant.
// -----------------------------------------------------------------------------

const (
	// RolePublic is held by every unauthenticated principal.
	RolePublic = "public"

	// RoleAuthenticated is added to every authenticated principal in
	// addition to its caller-supplied roles.
	RoleAuthenticated = "authenticated"

	// RoleAdmin short-circuits permission checks within its tenant.
	RoleAdmin = "admin"
)

// AnonymousUserID is the sentinel user id for unauthenticated principals.
const AnonymousUserID = "anonymous"

// -----------------------------------------------------------------------------
// Permission Name Constants
// Permissions follow the dotted "<resource>.<action>" convention.
// -----------------------------------------------------------------------------

const (
	PermFormsView   = "forms.view"
	PermFormsEdit   = "forms.edit"
	PermFormsDelete = "forms.delete"

	PermSubmissionsView   = "submissions.view"
	PermSubmissionsCreate = "submissions.create"
	PermSubmissionsEdit   = "submissions.edit"
	PermSubmissionsExport = "submissions.export"
	PermSubmissionsShare  = "submissions.share"

	PermThemesView = "themes.view"
	PermThemesEdit = "themes.edit"
)

// PermAuthenticated is the marker permission carried by every authenticated
// principal, independent of its caller-supplied permissions.
const PermAuthenticated = "authenticated"

// PublicPermissions defines the fixed permission set of the public role.
var PublicPermissions = []string{
	PermFormsView,
	PermSubmissionsCreate,
	PermThemesView,
}

// AuthenticatedPermissions defines the permissions every authenticated
// principal receives before its own grants are merged in.
var AuthenticatedPermissions = []string{
	PermAuthenticated,
}

// AdminPermissions documents the grants implied by the admin role. Admin
// checks short-circuit on the role itself, so this set exists for seeding
// and display, not for enforcement.
var AdminPermissions = []string{
	PermFormsView,
	PermFormsEdit,
	PermFormsDelete,
	PermSubmissionsView,
	PermSubmissionsCreate,
	PermSubmissionsEdit,
	PermSubmissionsExport,
	PermSubmissionsShare,
	PermThemesView,
	PermThemesEdit,
}
