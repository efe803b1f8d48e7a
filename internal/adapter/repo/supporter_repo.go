package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"supporterboard/internal/domain"
	"supporterboard/internal/infra"
	"supporterboard/internal/sqlinline"
)

// SupporterRepositoryPG implements domain.SupporterRepository on PostgreSQL.
// The supporters_notify trigger broadcasts every mutation; see sqlinline.QCreateSupportersSchema.
type SupporterRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSupporterRepository creates a new supporter repo.
func NewSupporterRepository(sql infra.SQLExecutor) *SupporterRepositoryPG {
	return &SupporterRepositoryPG{sql: sql}
}

// List returns every supporter ordered by amount, highest first.
func (r *SupporterRepositoryPG) List(ctx context.Context) ([]domain.Supporter, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListSupporters)
	if err != nil {
		return nil, fmt.Errorf("list supporters: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Supporter, 0)
	for rows.Next() {
		var s domain.Supporter
		if err := rows.Scan(&s.ID, &s.Name, &s.Amount, &s.Message, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supporter: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list supporters: %w", err)
	}
	return items, nil
}

// Insert creates one supporter and returns the stored row.
func (r *SupporterRepositoryPG) Insert(ctx context.Context, in domain.SupporterInput) (*domain.Supporter, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var s domain.Supporter
	row := r.sql.QueryRow(ctx, sqlinline.QInsertSupporter, in.Name, in.Amount, in.Message)
	if err := row.Scan(&s.ID, &s.Name, &s.Amount, &s.Message, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert supporter: %w", err)
	}
	return &s, nil
}

// Update replaces name, amount and message of the supporter with the given id.
func (r *SupporterRepositoryPG) Update(ctx context.Context, id string, in domain.SupporterInput) (*domain.Supporter, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var s domain.Supporter
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateSupporter, id, in.Name, in.Amount, in.Message)
	if err := row.Scan(&s.ID, &s.Name, &s.Amount, &s.Message, &s.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update supporter: %w", err)
	}
	return &s, nil
}

// Delete removes the supporter with the given id. Deleting a missing row fails with domain.ErrNotFound.
func (r *SupporterRepositoryPG) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteSupporter, id)
	if err != nil {
		return fmt.Errorf("delete supporter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Totals returns the supporter count and the sum of all amounts.
func (r *SupporterRepositoryPG) Totals(ctx context.Context) (int, float64, error) {
	var count int
	var sum float64
	if err := r.sql.QueryRow(ctx, sqlinline.QCountSupporters).Scan(&count, &sum); err != nil {
		return 0, 0, fmt.Errorf("count supporters: %w", err)
	}
	return count, sum, nil
}

var _ domain.SupporterRepository = (*SupporterRepositoryPG)(nil)
