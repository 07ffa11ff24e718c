package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

// ProviderRepository reads provider records.
type ProviderRepository struct {
	db *sqlx.DB
}

// NewProviderRepository constructs the repository.
func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// FindByID loads a provider by its identifier.
func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*models.Provider, error) {
	const query = `SELECT id, business_id, role, active, verification_status, created_at, updated_at
FROM providers WHERE id = $1`
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		return nil, err
	}
	return &provider, nil
}

// ListByBusiness returns all providers belonging to a business.
func (r *ProviderRepository) ListByBusiness(ctx context.Context, businessID string) ([]models.Provider, error) {
	const query = `SELECT id, business_id, role, active, verification_status, created_at, updated_at
FROM providers WHERE business_id = $1 ORDER BY created_at`
	var providers []models.Provider
	if err := r.db.SelectContext(ctx, &providers, query, businessID); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}
