package authz

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/observability/logger"
	"github.com/formtrust/formtrust/internal/result"
)

// forbiddenMessage is the single message returned for every permission
// denial. Which specific check failed is never disclosed, so callers cannot
// enumerate tenant or resource structure.
const forbiddenMessage = "insufficient permissions"

// Service answers "is permission P granted in tenant T" for the ambient
// principal of the current request.
type Service struct {
	users       *UserAccessStrategy
	auditLogger audit.Logger
	decisions   metric.Int64Counter
}

// NewService creates a new current-user authorization service.
func NewService(users *UserAccessStrategy, auditLogger audit.Logger, decisions metric.Int64Counter) *Service {
	return &Service{
		users:       users,
		auditLogger: auditLogger,
		decisions:   decisions,
	}
}

// ValidateAccess checks that the ambient principal holds requiredPermission.
// An admin role short-circuits to allow. On success the resolved snapshot is
// returned so callers can reuse it without a second cache round-trip.
func (s *Service) ValidateAccess(ctx context.Context, requiredPermission string) result.Result[AuthorizationData] {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		// No principal resolution ran; treat the caller as anonymous in
		// tenant 0 rather than failing, matching the anonymous path.
		principal = Principal{UserID: AnonymousUserID}
	}

	res := s.users.GetAccessData(ctx, UserAccessContext{Principal: principal})
	if res.IsFailure() {
		return result.Propagate[AuthorizationData](res)
	}

	data := res.Value.Data
	if data.IsAdmin || data.HasPermission(requiredPermission) {
		s.record(ctx, requiredPermission, "granted")
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessGranted,
			TenantID: data.TenantID,
			ActorID:  data.UserID,
			Resource: requiredPermission,
		})
		return result.Ok(data)
	}

	s.record(ctx, requiredPermission, "denied")
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		TenantID: data.TenantID,
		ActorID:  data.UserID,
		Resource: requiredPermission,
	})
	slog.DebugContext(ctx, "permission denied",
		logger.Component("authz"),
		logger.UserID(data.UserID),
		logger.Permission(requiredPermission),
	)

	return result.Forbidden[AuthorizationData](forbiddenMessage)
}

func (s *Service) record(ctx context.Context, permission, outcome string) {
	if s.decisions == nil {
		return
	}
	s.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.String("outcome", outcome),
	))
}
