package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

// CatalogRepository reads the global service/add-on catalog and the
// business_services junction. It backs the eligibility fallback path.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListConfiguredServices returns active catalog services joined with the
// business's configured junction rows.
func (r *CatalogRepository) ListConfiguredServices(ctx context.Context, businessID string) ([]models.ConfiguredService, error) {
	const query = `SELECT s.id, s.name, s.category, s.floor_price, s.active, s.created_at,
       bs.price AS business_price, bs.delivery_type
FROM catalog_services s
JOIN business_services bs ON bs.service_id = s.id AND bs.active = TRUE
WHERE s.active = TRUE AND bs.business_id = $1
ORDER BY s.name`
	var services []models.ConfiguredService
	if err := r.db.SelectContext(ctx, &services, query, businessID); err != nil {
		return nil, fmt.Errorf("list configured services: %w", err)
	}
	return services, nil
}

// ListUnconfiguredServices returns active catalog services the business has
// not configured yet.
func (r *CatalogRepository) ListUnconfiguredServices(ctx context.Context, businessID string) ([]models.CatalogService, error) {
	const query = `SELECT s.id, s.name, s.category, s.floor_price, s.active, s.created_at
FROM catalog_services s
WHERE s.active = TRUE AND NOT EXISTS (
  SELECT 1 FROM business_services bs
  WHERE bs.service_id = s.id AND bs.business_id = $1 AND bs.active = TRUE)
ORDER BY s.name`
	var services []models.CatalogService
	if err := r.db.SelectContext(ctx, &services, query, businessID); err != nil {
		return nil, fmt.Errorf("list unconfigured services: %w", err)
	}
	return services, nil
}

// ListActiveAddons returns every active catalog add-on.
func (r *CatalogRepository) ListActiveAddons(ctx context.Context) ([]models.CatalogAddon, error) {
	const query = `SELECT id, name, price, active, created_at FROM catalog_addons WHERE active = TRUE ORDER BY name`
	var addons []models.CatalogAddon
	if err := r.db.SelectContext(ctx, &addons, query); err != nil {
		return nil, fmt.Errorf("list addons: %w", err)
	}
	return addons, nil
}
