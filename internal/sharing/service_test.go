package sharing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/formtrust/formtrust/internal/accesstoken"
	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/cache"
	"github.com/formtrust/formtrust/internal/result"
	"github.com/formtrust/formtrust/internal/submission"
)

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *submission.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, tenantID, id int64) (*submission.Submission, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) ListByForm(ctx context.Context, tenantID, formID int64, limit, offset int) ([]*submission.Submission, error) {
	args := m.Called(ctx, tenantID, formID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submission.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, tenantID, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type capturingAuditLogger struct {
	events []audit.Event
}

func (l *capturingAuditLogger) Log(_ context.Context, e audit.Event) {
	l.events = append(l.events, e)
}

func newTestSharingService(t *testing.T, repo submission.Repository) (*Service, *capturingAuditLogger) {
	t.Helper()

	store := cache.NewMemoryStore[authz.AuthorizationData]()
	auditLog := &capturingAuditLogger{}
	authorizer := authz.NewService(authz.NewUserAccessStrategy(store, 5*time.Minute), auditLog, nil)

	tokens, err := accesstoken.NewService(accesstoken.Config{
		SigningSecret: []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)

	return NewService(authorizer, tokens, repo, auditLog, nil), auditLog
}

func ownerContext(permissions ...string) context.Context {
	return authz.WithPrincipal(context.Background(), authz.Principal{
		UserID:      "123",
		TenantID:    7,
		Permissions: permissions,
	})
}

// TestPurpose: Validates the happy path for minting a sharing token: caller
// holds every requested permission and the submission exists in the tenant.
// Scope: Unit Test
// Expected: Created with a signed token; a token.issued audit event carrying
// the submission id.
// Test Case ID: SHR-01
func TestSharing_CreateAccessToken(t *testing.T) {
	repo := &mockSubmissionRepo{}
	repo.On("GetByID", mock.Anything, int64(7), int64(42)).
		Return(&submission.Submission{ID: 42, TenantID: 7, FormID: 3}, nil)

	svc, auditLog := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsView, authz.PermSubmissionsExport)

	res := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionView, accesstoken.PermissionExport},
	})

	require.Equal(t, result.StatusCreated, res.Status)
	assert.NotEmpty(t, res.Value.Token)

	var issued *audit.Event
	for i := range auditLog.events {
		if auditLog.events[i].Type == audit.TypeTokenIssued {
			issued = &auditLog.events[i]
		}
	}
	require.NotNil(t, issued, "expected a token issuance audit event")
	assert.Equal(t, "123", issued.ActorID)
	assert.Equal(t, int64(42), issued.Metadata["submission_id"])

	repo.AssertExpectations(t)
}

// TestPurpose: Validates the fail-fast permission loop: checks run in request
// order and the first missing permission aborts issuance.
// Scope: Unit Test
// Security: A caller must not delegate an action it cannot perform itself;
// no repository access or signing happens after the failed check.
// Expected: Forbidden from the second check; GetByID never called; no audit
// token.issued event.
// Test Case ID: SHR-02
func TestSharing_CreateAccessToken_FailsFastOnMissingPermission(t *testing.T) {
	repo := &mockSubmissionRepo{}

	svc, auditLog := newTestSharingService(t, repo)
	// Caller may view but not edit.
	ctx := ownerContext(authz.PermSubmissionsView)

	res := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionView, accesstoken.PermissionEdit, accesstoken.PermissionExport},
	})

	require.Equal(t, result.StatusForbidden, res.Status)
	assert.Equal(t, "insufficient permissions", res.FirstError())
	assert.Empty(t, res.Value.Token)

	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	for _, e := range auditLog.events {
		assert.NotEqual(t, audit.TypeTokenIssued, e.Type)
	}
}

// TestPurpose: Validates tenant scoping of the existence check: a submission
// id from another tenant behaves as not found and no token is minted.
// Scope: Unit Test
// Expected: NotFound; no token.issued audit event.
// Test Case ID: SHR-03
func TestSharing_CreateAccessToken_SubmissionNotInTenant(t *testing.T) {
	repo := &mockSubmissionRepo{}
	repo.On("GetByID", mock.Anything, int64(7), int64(42)).
		Return(nil, submission.ErrSubmissionNotFound)

	svc, auditLog := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsView)

	res := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionView},
	})

	require.Equal(t, result.StatusNotFound, res.Status)
	for _, e := range auditLog.events {
		assert.NotEqual(t, audit.TypeTokenIssued, e.Type)
	}
}

// TestPurpose: Validates token redemption: a valid token with view permission
// resolves its pinned submission, and the view omits owner and tenant ids.
// Scope: Unit Test
// Expected: Ok with the submission contents; a token.redeemed audit event.
// Test Case ID: SHR-04
func TestSharing_GetSubmissionByAccessToken(t *testing.T) {
	repo := &mockSubmissionRepo{}
	repo.On("GetByID", mock.Anything, int64(7), int64(42)).
		Return(&submission.Submission{
			ID:       42,
			TenantID: 7,
			FormID:   3,
			OwnerID:  "123",
			Data:     map[string]any{"answer": "yes"},
		}, nil)

	svc, auditLog := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsView)

	issued := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionView},
	})
	require.True(t, issued.IsSuccess())

	// Redemption is anonymous; only the tenant comes from the request.
	anonCtx := authz.WithPrincipal(context.Background(), authz.Principal{TenantID: 7})

	res := svc.GetSubmissionByAccessToken(anonCtx, issued.Value.Token)
	require.True(t, res.IsSuccess())
	assert.Equal(t, int64(42), res.Value.ID)
	assert.Equal(t, int64(3), res.Value.FormID)
	assert.Equal(t, "yes", res.Value.Data["answer"])

	redeemed := false
	for _, e := range auditLog.events {
		if e.Type == audit.TypeTokenRedeemed {
			redeemed = true
		}
	}
	assert.True(t, redeemed)
}

// TestPurpose: Validates that token validity alone does not grant viewing: a
// token carrying only edit/export permissions cannot read the submission.
// Scope: Unit Test
// Security: Permission subsets in the token are enforced per action.
// Expected: Forbidden; the repository is never queried.
// Test Case ID: SHR-05
func TestSharing_GetSubmissionByAccessToken_RequiresViewPermission(t *testing.T) {
	repo := &mockSubmissionRepo{}
	repo.On("GetByID", mock.Anything, int64(7), int64(42)).
		Return(&submission.Submission{ID: 42, TenantID: 7}, nil).Once()

	svc, _ := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsExport)

	issued := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionExport},
	})
	require.True(t, issued.IsSuccess())

	anonCtx := authz.WithPrincipal(context.Background(), authz.Principal{TenantID: 7})
	res := svc.GetSubmissionByAccessToken(anonCtx, issued.Value.Token)

	require.Equal(t, result.StatusForbidden, res.Status)
	assert.Equal(t, "token does not grant view access", res.FirstError())
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

// TestPurpose: Validates rejection of garbage tokens with the generic message
// and a token.rejected audit event.
// Scope: Unit Test
// Security: Signature and expiry failures must be indistinguishable.
// Expected: Invalid with "invalid or expired access token".
// Test Case ID: SHR-06
func TestSharing_GetSubmissionByAccessToken_RejectsInvalidToken(t *testing.T) {
	repo := &mockSubmissionRepo{}
	svc, auditLog := newTestSharingService(t, repo)

	anonCtx := authz.WithPrincipal(context.Background(), authz.Principal{TenantID: 7})
	res := svc.GetSubmissionByAccessToken(anonCtx, "not-a-token")

	require.Equal(t, result.StatusInvalid, res.Status)
	assert.Equal(t, "invalid or expired access token", res.FirstError())

	require.Len(t, auditLog.events, 1)
	assert.Equal(t, audit.TypeTokenRejected, auditLog.events[0].Type)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

// TestPurpose: Validates that the resolved submission id always comes from
// the token claims, not from anything the caller controls at redemption.
// Scope: Unit Test
// Security: A token pinned to one submission must not be usable to read
// another.
// Expected: Repository queried with the pinned id only.
// Test Case ID: SHR-07
func TestSharing_GetSubmissionByAccessToken_PinnedToClaims(t *testing.T) {
	repo := &mockSubmissionRepo{}
	repo.On("GetByID", mock.Anything, int64(7), int64(42)).
		Return(&submission.Submission{ID: 42, TenantID: 7}, nil)

	svc, _ := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsView)

	issued := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   []string{accesstoken.PermissionView},
	})
	require.True(t, issued.IsSuccess())

	anonCtx := authz.WithPrincipal(context.Background(), authz.Principal{TenantID: 7})
	res := svc.GetSubmissionByAccessToken(anonCtx, issued.Value.Token)

	require.True(t, res.IsSuccess())
	repo.AssertCalled(t, "GetByID", mock.Anything, int64(7), int64(42))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, int64(7), int64(99))
}

// TestPurpose: Validates that a request with no permissions is rejected
// before the repository is touched: an empty list would make the
// authorization loop vacuous.
// Scope: Unit Test
// Security: Unprivileged callers must not be able to probe submission
// existence by requesting a token with no permissions.
// Expected: Invalid with a field error on permissions; GetByID never called.
// Test Case ID: SHR-08
func TestSharing_CreateAccessToken_RejectsEmptyPermissions(t *testing.T) {
	repo := &mockSubmissionRepo{}
	svc, auditLog := newTestSharingService(t, repo)
	ctx := ownerContext(authz.PermSubmissionsView)

	res := svc.CreateAccessToken(ctx, CreateAccessTokenRequest{
		SubmissionID:  42,
		ExpiryMinutes: 15,
		Permissions:   nil,
	})

	require.Equal(t, result.StatusInvalid, res.Status)
	require.Len(t, res.FieldErrors, 1)
	assert.Equal(t, "permissions", res.FieldErrors[0].Field)

	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, auditLog.events)
}
