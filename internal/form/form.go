package form

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrFormNotFound = errors.New("form not found")
)

// Form represents a tenant-owned form definition.
type Form struct {
	ID        int64
	TenantID  int64
	OwnerID   string
	Name      string
	Schema    map[string]any
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for form persistence. Every lookup is
// tenant-scoped.
type Repository interface {
	// Create persists a new form.
	Create(ctx context.Context, f *Form) error

	// GetByID retrieves a form within a tenant.
	GetByID(ctx context.Context, tenantID, id int64) (*Form, error)

	// List retrieves forms for a tenant, newest first.
	List(ctx context.Context, tenantID int64, limit, offset int) ([]*Form, error)

	// Delete removes a form within a tenant.
	Delete(ctx context.Context, tenantID, id int64) error
}
