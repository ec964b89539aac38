package sharing

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/formtrust/formtrust/internal/accesstoken"
	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/result"
	"github.com/formtrust/formtrust/internal/submission"
)

// Service implements the sharing use cases: minting permission-scoped tokens
// for single submissions and resolving submissions from presented tokens.
type Service struct {
	authorizer   *authz.Service
	tokens       *accesstoken.Service
	submissions  submission.Repository
	auditLogger  audit.Logger
	tokensIssued metric.Int64Counter
}

// NewService creates a new sharing service. tokensIssued may be nil when
// metrics are disabled.
func NewService(
	authorizer *authz.Service,
	tokens *accesstoken.Service,
	submissions submission.Repository,
	auditLogger audit.Logger,
	tokensIssued metric.Int64Counter,
) *Service {
	return &Service{
		authorizer:   authorizer,
		tokens:       tokens,
		submissions:  submissions,
		auditLogger:  auditLogger,
		tokensIssued: tokensIssued,
	}
}

// CreateAccessTokenRequest carries the parameters for minting a token.
type CreateAccessTokenRequest struct {
	SubmissionID  int64    `json:"submission_id"`
	ExpiryMinutes int      `json:"expiry_minutes"`
	Permissions   []string `json:"permissions"`
}

// CreateAccessToken mints a sharing token for one submission. The caller
// must itself hold every requested permission; checks run in request order
// and the first failure is returned as-is, with no token issued.
func (s *Service) CreateAccessToken(ctx context.Context, req CreateAccessTokenRequest) result.Result[accesstoken.Token] {
	// An empty list would make the authorization loop vacuous and let any
	// authenticated caller probe submission existence below.
	if len(req.Permissions) == 0 {
		return result.Invalid[accesstoken.Token](result.FieldError{
			Field:   "permissions",
			Message: "at least one permission is required",
		})
	}

	for _, perm := range req.Permissions {
		res := s.authorizer.ValidateAccess(ctx, "submissions."+perm)
		if res.IsFailure() {
			return result.Propagate[accesstoken.Token](res)
		}
	}

	principal, _ := authz.PrincipalFromContext(ctx)

	// Confirm the target exists within the caller's tenant before minting.
	if _, err := s.submissions.GetByID(ctx, principal.TenantID, req.SubmissionID); err != nil {
		if errors.Is(err, submission.ErrSubmissionNotFound) {
			return result.NotFound[accesstoken.Token]("submission not found")
		}
		return result.Err[accesstoken.Token]("failed to load submission")
	}

	res := s.tokens.Generate(ctx, req.SubmissionID, req.ExpiryMinutes, req.Permissions)
	if res.IsFailure() {
		return res
	}

	if s.tokensIssued != nil {
		s.tokensIssued.Add(ctx, 1)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenIssued,
		TenantID: principal.TenantID,
		ActorID:  principal.UserID,
		Resource: "submission",
		Metadata: map[string]any{
			"submission_id":  req.SubmissionID,
			"permissions":    req.Permissions,
			"expiry_minutes": req.ExpiryMinutes,
		},
	})

	return result.Created(res.Value)
}

// SubmissionView is the submission representation returned on the token
// path. Owner and tenant identifiers are not exposed to token holders.
type SubmissionView struct {
	ID        int64          `json:"id"`
	FormID    int64          `json:"form_id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// GetSubmissionByAccessToken resolves a submission from a presented token.
// The submission id comes from the token claims, never from the caller, so
// a token cannot be replayed against a different resource. The view
// permission must be present in the claims; validity alone is not enough.
func (s *Service) GetSubmissionByAccessToken(ctx context.Context, token string) result.Result[SubmissionView] {
	principal, _ := authz.PrincipalFromContext(ctx)

	res := s.tokens.Validate(ctx, token)
	if res.IsFailure() {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeTokenRejected,
			TenantID: principal.TenantID,
			ActorID:  authz.AnonymousUserID,
			Resource: "submission",
		})
		return result.Propagate[SubmissionView](res)
	}

	claims := res.Value
	if !claims.HasPermission(accesstoken.PermissionView) {
		return result.Forbidden[SubmissionView]("token does not grant view access")
	}

	sub, err := s.submissions.GetByID(ctx, principal.TenantID, claims.SubmissionID)
	if err != nil {
		if errors.Is(err, submission.ErrSubmissionNotFound) {
			return result.NotFound[SubmissionView]("submission not found")
		}
		return result.Err[SubmissionView]("failed to load submission")
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenRedeemed,
		TenantID: sub.TenantID,
		ActorID:  authz.AnonymousUserID,
		Resource: "submission",
		Metadata: map[string]any{
			"submission_id": sub.ID,
		},
	})

	return result.Ok(SubmissionView{
		ID:        sub.ID,
		FormID:    sub.FormID,
		Data:      sub.Data,
		CreatedAt: sub.CreatedAt,
	})
}
