package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// BookingRepository persists booking rows. Bookings are never deleted; the
// lifecycle lives entirely in the status column.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, business_id, provider_id, customer_id, service_id, date, start_time, end_time, status, total_amount, cancellation_reason, created_at, updated_at`

// FindByID loads a booking by its identifier.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatusGuarded moves a booking from an expected status to a new one.
// The guard and the write share one statement, so a concurrent transition that
// already moved the row makes this report sql.ErrNoRows instead of clobbering.
func (r *BookingRepository) UpdateStatusGuarded(ctx context.Context, id string, from, to models.BookingStatus, reason *string) error {
	const query = `UPDATE bookings
SET status = $1, cancellation_reason = COALESCE($2, cancellation_reason), updated_at = $3
WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, to, reason, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("booking status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAssigneeGuarded reassigns a booking while it is still pending or
// confirmed. A nil provider explicitly unassigns. With requireUnassigned set
// the write only succeeds when no provider currently holds the booking
// (provider self-claim). Zero rows affected means the booking moved or was
// claimed concurrently.
func (r *BookingRepository) UpdateAssigneeGuarded(ctx context.Context, id string, providerID *string, requireUnassigned bool) error {
	builder := psql.Update("bookings").
		Set("provider_id", providerID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []models.BookingStatus{models.BookingPending, models.BookingConfirmed}})
	if requireUnassigned {
		builder = builder.Where(squirrel.Eq{"provider_id": nil})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build assignee update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking assignee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("booking assignee rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByBusiness returns bookings for a business applying the optional
// filters, newest first.
func (r *BookingRepository) ListByBusiness(ctx context.Context, businessID string, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	base := psql.Select().From("bookings").Where(squirrel.Eq{"business_id": businessID})
	if filter.Status != nil {
		base = base.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ProviderID != nil {
		base = base.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if filter.DateFrom != nil {
		base = base.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		base = base.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countQuery, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build booking count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, nil, fmt.Errorf("count bookings: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	listQuery, listArgs, err := base.Column(bookingColumns).
		OrderBy("date DESC", "start_time DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build booking list query: %w", err)
	}

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, listQuery, listArgs...); err != nil {
		return nil, nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// CountActiveForProviderOnDate counts a provider's non-terminal bookings on a
// date, used for the daily-cap feasibility warning.
func (r *BookingRepository) CountActiveForProviderOnDate(ctx context.Context, providerID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings
WHERE provider_id = $1 AND date = $2 AND status IN ('pending', 'confirmed', 'in_progress')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, providerID, date); err != nil {
		return 0, fmt.Errorf("count provider bookings: %w", err)
	}
	return count, nil
}

// ExistsOverlap reports whether a provider already holds a live booking
// overlapping the given window on the given date.
func (r *BookingRepository) ExistsOverlap(ctx context.Context, providerID string, date time.Time, startTime, endTime string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM bookings
WHERE provider_id = $1 AND date = $2
  AND status IN ('pending', 'confirmed', 'in_progress')
  AND start_time < $4 AND end_time > $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, providerID, date, startTime, endTime); err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}
	return exists, nil
}
