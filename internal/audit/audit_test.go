package audit

import (
	"testing"
)

// TestPurpose: Validates that sensitive keys are correctly identified as secrets to prevent them from being logged in plaintext.
// Scope: Unit Test
// Security: Data Masking and Leakage Prevention (CWE-532)
// Expected: Returns true for keys containing 'secret', 'token', 'key', etc., and false for non-sensitive keys.
// Test Case ID: AUD-01
func TestAudit_IsSecret(t *testing.T) {
	tests := []struct {
		key      string
		isSecret bool
	}{
		{"token", true},
		{"access_token", true},
		{"Token", true},
		{"secret", true},
		{"signing_secret", true},
		{"api_key", true},
		{"authorization", true},
		{"credential", true},
		{"token_hash", true},
		{"user_id", false},
		{"tenant_id", false},
		{"submission_id", false},
		{"permissions", false},
		{"etag", false},
		{"status", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSecret(tt.key); got != tt.isSecret {
				t.Errorf("isSecret(%q) = %v, want %v", tt.key, got, tt.isSecret)
			}
		})
	}
}
