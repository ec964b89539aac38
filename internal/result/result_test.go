package result_test

import (
	"testing"

	"github.com/formtrust/formtrust/internal/result"
)

// TestPurpose: Validates the Result status invariants: a value is present iff
// the status is Ok or Created, and field errors appear only on Invalid.
// Scope: Unit Test
// Expected: Success variants carry the value; failure variants carry only messages.
// Test Case ID: RES-01
func TestResult_StatusInvariants(t *testing.T) {
	tests := []struct {
		name      string
		res       result.Result[string]
		status    result.Status
		success   bool
		wantValue string
	}{
		{"ok carries value", result.Ok("payload"), result.StatusOk, true, "payload"},
		{"created carries value", result.Created("fresh"), result.StatusCreated, true, "fresh"},
		{"not found has no value", result.NotFound[string]("missing"), result.StatusNotFound, false, ""},
		{"forbidden has no value", result.Forbidden[string]("denied"), result.StatusForbidden, false, ""},
		{"error has no value", result.Err[string]("boom"), result.StatusError, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.res.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.res.Status, tt.status)
			}
			if tt.res.IsSuccess() != tt.success {
				t.Errorf("IsSuccess() = %v, want %v", tt.res.IsSuccess(), tt.success)
			}
			if tt.res.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", tt.res.Value, tt.wantValue)
			}
		})
	}
}

// TestPurpose: Validates that field-level validation errors are present iff
// the status is Invalid.
// Scope: Unit Test
// Expected: Invalid carries field errors; other variants never do.
// Test Case ID: RES-02
func TestResult_InvalidCarriesFieldErrors(t *testing.T) {
	res := result.Invalid[int](
		result.FieldError{Field: "expiry_minutes", Message: "must be positive"},
		result.FieldError{Field: "permissions", Message: "required"},
	)

	if res.Status != result.StatusInvalid {
		t.Fatalf("Status = %v, want StatusInvalid", res.Status)
	}
	if len(res.FieldErrors) != 2 {
		t.Fatalf("len(FieldErrors) = %d, want 2", len(res.FieldErrors))
	}
	if res.FieldErrors[0].Field != "expiry_minutes" {
		t.Errorf("field order not preserved: got %q first", res.FieldErrors[0].Field)
	}

	if got := result.NotFound[int]("gone"); len(got.FieldErrors) != 0 {
		t.Errorf("NotFound carries field errors: %v", got.FieldErrors)
	}
}

// TestPurpose: Validates that Propagate preserves the failure variant and
// its messages while re-typing the value parameter.
// Scope: Unit Test
// Expected: Status, errors and field errors survive; the value is zero.
// Test Case ID: RES-03
func TestResult_PropagateKeepsFailure(t *testing.T) {
	src := result.Forbidden[string]("insufficient permissions").WithCorrelationID("req-1")

	dst := result.Propagate[int](src)

	if dst.Status != result.StatusForbidden {
		t.Errorf("Status = %v, want StatusForbidden", dst.Status)
	}
	if dst.FirstError() != "insufficient permissions" {
		t.Errorf("FirstError() = %q", dst.FirstError())
	}
	if dst.CorrelationID != "req-1" {
		t.Errorf("CorrelationID = %q, want req-1", dst.CorrelationID)
	}
	if dst.Value != 0 {
		t.Errorf("Value = %d, want zero", dst.Value)
	}
}

// TestPurpose: Validates FirstError fallback to field errors when no plain
// messages are present.
// Scope: Unit Test
// Expected: FirstError surfaces the first field error message.
// Test Case ID: RES-04
func TestResult_FirstErrorFallsBackToFieldErrors(t *testing.T) {
	res := result.Invalid[struct{}](result.FieldError{Field: "token", Message: "invalid or expired access token"})
	if got := res.FirstError(); got != "invalid or expired access token" {
		t.Errorf("FirstError() = %q", got)
	}
}
