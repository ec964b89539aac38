package result

import "fmt"

// Status identifies the outcome of an operation.
type Status int

const (
	StatusOk Status = iota
	StatusCreated
	StatusNotFound
	StatusInvalid
	StatusForbidden
	StatusError
)

// String returns the canonical name of the status.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusNotFound:
		return "not_found"
	case StatusInvalid:
		return "invalid"
	case StatusForbidden:
		return "forbidden"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FieldError is a validation failure attached to a specific input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of a fallible operation. Callers branch on Status;
// Value is set only for Ok and Created, FieldErrors only for Invalid.
// Failures carry messages in Errors and are never raised as panics.
type Result[T any] struct {
	Status        Status
	Value         T
	Errors        []string
	FieldErrors   []FieldError
	CorrelationID string
}

// Ok returns a successful result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{Status: StatusOk, Value: value}
}

// Created returns a successful result for a newly created value.
func Created[T any](value T) Result[T] {
	return Result[T]{Status: StatusCreated, Value: value}
}

// NotFound returns a failure for a missing resource.
func NotFound[T any](msgs ...string) Result[T] {
	return Result[T]{Status: StatusNotFound, Errors: msgs}
}

// Invalid returns a validation failure with field-level errors.
func Invalid[T any](fieldErrors ...FieldError) Result[T] {
	return Result[T]{Status: StatusInvalid, FieldErrors: fieldErrors}
}

// Forbidden returns a failure for an authorization denial.
func Forbidden[T any](msgs ...string) Result[T] {
	return Result[T]{Status: StatusForbidden, Errors: msgs}
}

// Err returns a failure for an unexpected or infrastructure error.
func Err[T any](msgs ...string) Result[T] {
	return Result[T]{Status: StatusError, Errors: msgs}
}

// IsSuccess reports whether the result carries a value.
func (r Result[T]) IsSuccess() bool {
	return r.Status == StatusOk || r.Status == StatusCreated
}

// IsFailure reports whether the result is any failure variant.
func (r Result[T]) IsFailure() bool {
	return !r.IsSuccess()
}

// WithCorrelationID returns a copy of the result stamped with a tracing id.
func (r Result[T]) WithCorrelationID(id string) Result[T] {
	r.CorrelationID = id
	return r
}

// FirstError returns the first error message, or "" if there is none.
func (r Result[T]) FirstError() string {
	if len(r.Errors) > 0 {
		return r.Errors[0]
	}
	if len(r.FieldErrors) > 0 {
		return r.FieldErrors[0].Message
	}
	return ""
}

// Propagate re-types a failed result, discarding any value type information.
// It must only be called on failures; the zero value of U is carried.
func Propagate[U, T any](r Result[T]) Result[U] {
	return Result[U]{
		Status:        r.Status,
		Errors:        r.Errors,
		FieldErrors:   r.FieldErrors,
		CorrelationID: r.CorrelationID,
	}
}
