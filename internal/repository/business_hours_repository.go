package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

// BusinessHoursRepository reads the business's own weekly hours, owned by the
// business-settings collaborator. The raw payload is normalized at this
// boundary, once, before any consumer sees it.
type BusinessHoursRepository struct {
	db *sqlx.DB
}

// NewBusinessHoursRepository constructs the repository.
func NewBusinessHoursRepository(db *sqlx.DB) *BusinessHoursRepository {
	return &BusinessHoursRepository{db: db}
}

// GetWeekHours loads and normalizes a business's weekly hours.
func (r *BusinessHoursRepository) GetWeekHours(ctx context.Context, businessID string) (models.WeekHours, error) {
	const query = `SELECT business_id, weekly, updated_at FROM business_hours WHERE business_id = $1`
	var stored models.BusinessHours
	if err := r.db.GetContext(ctx, &stored, query, businessID); err != nil {
		return models.WeekHours{}, err
	}
	return models.ParseWeekHours(stored.Weekly)
}
