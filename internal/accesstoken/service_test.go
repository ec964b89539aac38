package accesstoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formtrust/formtrust/internal/result"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{SigningSecret: testSecret})
	require.NoError(t, err)
	return svc
}

// TestPurpose: Validates service construction rules for the signing secret
// and the default expiry ceiling.
// Scope: Unit Test
// Security: Short secrets make HS256 tokens forgeable by brute force and
// must be refused at startup.
// Expected: Secrets under 32 bytes rejected; zero MaxTTL defaults to 24h.
// Test Case ID: TOK-01
func TestTokenService_NewService(t *testing.T) {
	_, err := NewService(Config{SigningSecret: []byte("too-short")})
	assert.Error(t, err)

	svc, err := NewService(Config{SigningSecret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, svc.maxTTL)

	svc, err = NewService(Config{SigningSecret: testSecret, MaxTTL: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, svc.maxTTL)
}

// TestPurpose: Validates the issue-then-validate round trip: a freshly minted
// token comes back with the same submission pin and permission subset.
// Scope: Unit Test
// Expected: Claims carry submission 42 and exactly the requested permissions.
// Test Case ID: TOK-02
func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	issued := svc.Generate(ctx, 42, 15, []string{PermissionView, PermissionExport})
	require.True(t, issued.IsSuccess())
	assert.NotEmpty(t, issued.Value.Token)

	validated := svc.Validate(ctx, issued.Value.Token)
	require.True(t, validated.IsSuccess())
	assert.Equal(t, int64(42), validated.Value.SubmissionID)
	assert.Equal(t, []string{PermissionView, PermissionExport}, validated.Value.Permissions)
	assert.True(t, validated.Value.HasPermission(PermissionView))
	assert.False(t, validated.Value.HasPermission(PermissionEdit))
}

// TestPurpose: Validates issuance input checks: submission id, expiry window
// and the closed permission vocabulary.
// Scope: Unit Test
// Expected: Each bad input yields Invalid with a field error on the
// offending field; no token is minted.
// Test Case ID: TOK-03
func TestTokenService_GenerateValidation(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		submissionID int64
		expiry       int
		permissions  []string
		wantField    string
	}{
		{"zero submission id", 0, 15, []string{PermissionView}, "submission_id"},
		{"negative submission id", -1, 15, []string{PermissionView}, "submission_id"},
		{"zero expiry", 42, 0, []string{PermissionView}, "expiry_minutes"},
		{"expiry above ceiling", 42, 24*60 + 1, []string{PermissionView}, "expiry_minutes"},
		{"no permissions", 42, 15, nil, "permissions"},
		{"unknown permission", 42, 15, []string{"delete"}, "permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Generate(ctx, tt.submissionID, tt.expiry, tt.permissions)

			require.Equal(t, result.StatusInvalid, res.Status)
			assert.Empty(t, res.Value.Token)

			found := false
			for _, fe := range res.FieldErrors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			assert.True(t, found, "expected a field error on %q, got %v", tt.wantField, res.FieldErrors)
		})
	}
}

// TestPurpose: Validates that duplicate permissions in the request are
// collapsed before signing.
// Scope: Unit Test
// Expected: Claims carry view once.
// Test Case ID: TOK-04
func TestTokenService_GenerateDeduplicatesPermissions(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	issued := svc.Generate(ctx, 42, 15, []string{PermissionView, PermissionView})
	require.True(t, issued.IsSuccess())

	validated := svc.Validate(ctx, issued.Value.Token)
	require.True(t, validated.IsSuccess())
	assert.Equal(t, []string{PermissionView}, validated.Value.Permissions)
}

// TestPurpose: Validates expiry enforcement with an injected clock: a token
// valid at issuance is rejected once the validator's clock passes ExpiresAt.
// Scope: Unit Test
// Security: Expired tokens must fail with the same generic message as forged
// ones, so the error is not an oracle.
// Expected: Invalid with "invalid or expired access token" on the token field.
// Test Case ID: TOK-05
func TestTokenService_ValidateExpired(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	issued := svc.Generate(ctx, 42, 15, []string{PermissionView})
	require.True(t, issued.IsSuccess())

	svc.now = func() time.Time { return issued.Value.ExpiresAt.Add(time.Minute) }

	res := svc.Validate(ctx, issued.Value.Token)
	require.Equal(t, result.StatusInvalid, res.Status)
	require.Len(t, res.FieldErrors, 1)
	assert.Equal(t, "token", res.FieldErrors[0].Field)
	assert.Equal(t, "invalid or expired access token", res.FieldErrors[0].Message)
}

// TestPurpose: Validates tamper rejection: any single-byte change to the
// token string fails validation cleanly.
// Scope: Unit Test
// Security: Signature verification must hold for every byte of the token;
// malformed input must not panic.
// Expected: Invalid for the tampered token, garbage and the empty string.
// Test Case ID: TOK-06
func TestTokenService_ValidateTampered(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	issued := svc.Generate(ctx, 42, 15, []string{PermissionView})
	require.True(t, issued.IsSuccess())

	tampered := []byte(issued.Value.Token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	for _, tokenString := range []string{string(tampered), "not-a-token", ""} {
		res := svc.Validate(ctx, tokenString)
		assert.Equal(t, result.StatusInvalid, res.Status, "token %q", tokenString)
		assert.Equal(t, "invalid or expired access token", res.FirstError())
	}
}

// TestPurpose: Validates that tokens signed under a different secret are
// rejected, covering secret rotation and cross-environment leakage.
// Scope: Unit Test
// Expected: A token minted by one service fails validation on another.
// Test Case ID: TOK-07
func TestTokenService_ValidateWrongSecret(t *testing.T) {
	ctx := context.Background()

	issuer, err := NewService(Config{SigningSecret: []byte("issuer-secret-issuer-secret-1234")})
	require.NoError(t, err)
	verifier := newTestTokenService(t)

	issued := issuer.Generate(ctx, 42, 15, []string{PermissionView})
	require.True(t, issued.IsSuccess())

	res := verifier.Validate(ctx, issued.Value.Token)
	assert.Equal(t, result.StatusInvalid, res.Status)
}
