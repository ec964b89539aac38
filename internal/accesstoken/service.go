package accesstoken

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/formtrust/formtrust/internal/result"
)

// Token permission vocabulary. Tokens may only carry a non-empty subset of
// these names; anything else is rejected at issuance.
const (
	PermissionView   = "view"
	PermissionEdit   = "edit"
	PermissionExport = "export"
)

// AllPermissions lists the closed vocabulary in canonical order.
var AllPermissions = []string{PermissionView, PermissionEdit, PermissionExport}

// invalidTokenMessage deliberately does not distinguish a bad signature from
// an expired token, so the error is not an oracle for forging attempts.
const invalidTokenMessage = "invalid or expired access token"

// Claims are the self-contained contents of a sharing token: the single
// submission it is pinned to, the actions it allows, and its expiry.
type Claims struct {
	SubmissionID int64    `json:"sid"`
	Permissions  []string `json:"perms"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the token authorizes the named action.
// Token validity alone never implies a specific action is allowed.
func (c Claims) HasPermission(name string) bool {
	return slices.Contains(c.Permissions, name)
}

// Token is the issued artifact returned to the caller.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Config holds token service configuration. The signing secret is supplied
// at startup and read-only thereafter; there is no ambient static state.
type Config struct {
	SigningSecret []byte
	MaxTTL        time.Duration
}

// Service mints and validates self-contained submission sharing tokens.
// Issuance is stateless: nothing is persisted, validity is entirely the
// signature and expiry carried in the token. There is no revocation list;
// a token cannot be invalidated before its natural expiry, which is why
// expiry windows are kept short.
type Service struct {
	secret []byte
	maxTTL time.Duration
	now    func() time.Time
}

// NewService creates a token service from cfg.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.SigningSecret) < 32 {
		return nil, errors.New("accesstoken: signing secret must be at least 32 bytes")
	}
	maxTTL := cfg.MaxTTL
	if maxTTL <= 0 {
		maxTTL = 24 * time.Hour
	}
	return &Service{
		secret: cfg.SigningSecret,
		maxTTL: maxTTL,
		now:    time.Now,
	}, nil
}

// Generate mints a signed token for submissionID carrying the given
// permission subset, expiring expiryMinutes from now.
func (s *Service) Generate(ctx context.Context, submissionID int64, expiryMinutes int, permissions []string) result.Result[Token] {
	if err := ctx.Err(); err != nil {
		return result.Err[Token]("request cancelled")
	}

	var fieldErrors []result.FieldError

	if submissionID <= 0 {
		fieldErrors = append(fieldErrors, result.FieldError{
			Field:   "submission_id",
			Message: "submission id must be positive",
		})
	}

	maxMinutes := int(s.maxTTL / time.Minute)
	if expiryMinutes <= 0 || expiryMinutes > maxMinutes {
		fieldErrors = append(fieldErrors, result.FieldError{
			Field:   "expiry_minutes",
			Message: fmt.Sprintf("expiry must be between 1 and %d minutes", maxMinutes),
		})
	}

	perms := normalizePermissions(permissions)
	if len(perms) == 0 {
		fieldErrors = append(fieldErrors, result.FieldError{
			Field:   "permissions",
			Message: "at least one permission is required",
		})
	}
	for _, p := range perms {
		if !slices.Contains(AllPermissions, p) {
			fieldErrors = append(fieldErrors, result.FieldError{
				Field:   "permissions",
				Message: fmt.Sprintf("unknown permission %q", p),
			})
		}
	}

	if len(fieldErrors) > 0 {
		return result.Invalid[Token](fieldErrors...)
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(expiryMinutes) * time.Minute)

	claims := Claims{
		SubmissionID: submissionID,
		Permissions:  perms,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return result.Err[Token]("failed to sign access token")
	}

	return result.Ok(Token{Token: signed, ExpiresAt: expiresAt})
}

// Validate verifies the token's signature and expiry and returns its claims.
// All failure causes collapse to one generic validation error.
func (s *Service) Validate(ctx context.Context, tokenString string) result.Result[Claims] {
	if err := ctx.Err(); err != nil {
		return result.Err[Claims]("request cancelled")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return result.Invalid[Claims](result.FieldError{
			Field:   "token",
			Message: invalidTokenMessage,
		})
	}

	if claims.SubmissionID <= 0 || len(claims.Permissions) == 0 {
		return result.Invalid[Claims](result.FieldError{
			Field:   "token",
			Message: invalidTokenMessage,
		})
	}

	return result.Ok(*claims)
}

// normalizePermissions drops duplicates while preserving order.
func normalizePermissions(permissions []string) []string {
	seen := make(map[string]struct{}, len(permissions))
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
