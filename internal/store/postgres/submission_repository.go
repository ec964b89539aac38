// Copyright 2026 The Formtrust Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/formtrust/formtrust/internal/submission"
)

// SubmissionRepository implements submission.Repository. Every query carries
// the tenant id in its WHERE clause; a cross-tenant id behaves as not found.
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create persists a new submission
func (r *SubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO submissions (tenant_id, form_id, owner_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		s.TenantID, s.FormID, s.OwnerID, s.Data, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission within a tenant
func (r *SubmissionRepository) GetByID(ctx context.Context, tenantID, id int64) (*submission.Submission, error) {
	var s submission.Submission

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, form_id, owner_id, data, created_at, updated_at
		FROM submissions
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&s.ID, &s.TenantID, &s.FormID, &s.OwnerID, &s.Data, &s.CreatedAt, &s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &s, nil
}

// ListByForm retrieves submissions for a form, newest first
func (r *SubmissionRepository) ListByForm(ctx context.Context, tenantID, formID int64, limit, offset int) ([]*submission.Submission, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, form_id, owner_id, data, created_at, updated_at
		FROM submissions
		WHERE tenant_id = $1 AND form_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, tenantID, formID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []*submission.Submission
	for rows.Next() {
		var s submission.Submission
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.FormID, &s.OwnerID, &s.Data, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return out, nil
}

// Delete removes a submission within a tenant
func (r *SubmissionRepository) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM submissions WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	if result.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}
