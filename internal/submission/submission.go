package submission

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSubmissionNotFound = errors.New("submission not found")
)

// Submission represents one response to a form, scoped to a tenant.
type Submission struct {
	ID        int64
	TenantID  int64
	FormID    int64
	OwnerID   string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for submission persistence. Every lookup
// is tenant-scoped; an id from another tenant behaves as not found.
type Repository interface {
	// Create persists a new submission.
	Create(ctx context.Context, s *Submission) error

	// GetByID retrieves a submission within a tenant.
	GetByID(ctx context.Context, tenantID, id int64) (*Submission, error)

	// ListByForm retrieves submissions for a form, newest first.
	ListByForm(ctx context.Context, tenantID, formID int64, limit, offset int) ([]*Submission, error)

	// Delete removes a submission within a tenant.
	Delete(ctx context.Context, tenantID, id int64) error
}
