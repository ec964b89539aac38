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

	"github.com/formtrust/formtrust/internal/form"
)

// FormRepository implements form.Repository
type FormRepository struct {
	db *DB
}

// NewFormRepository creates a new form repository
func NewFormRepository(db *DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create persists a new form
func (r *FormRepository) Create(ctx context.Context, f *form.Form) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO forms (tenant_id, owner_id, name, schema, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		f.TenantID, f.OwnerID, f.Name, f.Schema, f.Published, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)

	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	return nil
}

// GetByID retrieves a form within a tenant
func (r *FormRepository) GetByID(ctx context.Context, tenantID, id int64) (*form.Form, error) {
	var f form.Form

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, owner_id, name, schema, published, created_at, updated_at
		FROM forms
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&f.ID, &f.TenantID, &f.OwnerID, &f.Name, &f.Schema, &f.Published, &f.CreatedAt, &f.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, form.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	return &f, nil
}

// List retrieves forms for a tenant, newest first
func (r *FormRepository) List(ctx context.Context, tenantID int64, limit, offset int) ([]*form.Form, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, owner_id, name, schema, published, created_at, updated_at
		FROM forms
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var out []*form.Form
	for rows.Next() {
		var f form.Form
		if err := rows.Scan(
			&f.ID, &f.TenantID, &f.OwnerID, &f.Name, &f.Schema, &f.Published, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		out = append(out, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	return out, nil
}

// Delete removes a form within a tenant
func (r *FormRepository) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM forms WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}

	if result.RowsAffected() == 0 {
		return form.ErrFormNotFound
	}

	return nil
}
