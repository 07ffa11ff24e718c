package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

type bookingRepo interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatusGuarded(ctx context.Context, id string, from, to models.BookingStatus, reason *string) error
	UpdateAssigneeGuarded(ctx context.Context, id string, providerID *string, requireUnassigned bool) error
	ListByBusiness(ctx context.Context, businessID string, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	CountActiveForProviderOnDate(ctx context.Context, providerID string, date time.Time) (int, error)
	ExistsOverlap(ctx context.Context, providerID string, date time.Time, startTime, endTime string) (bool, error)
}

type preferenceReader interface {
	GetByProvider(ctx context.Context, providerID string) (*models.BookingPreferences, error)
}

type statusNotifier interface {
	PublishStatus(ctx context.Context, bookingID string, status models.BookingStatus)
}

type transitionObserver interface {
	ObserveBookingTransition(status models.BookingStatus)
}

// BookingService enforces the booking lifecycle state machine and
// role-scoped provider (re)assignment.
type BookingService struct {
	bookings        bookingRepo
	providers       providerReader
	availability    availabilityRepo
	preferences     preferenceReader
	notifier        statusNotifier
	metrics         transitionObserver
	warnOnConflicts bool
	logger          *zap.Logger
}

// NewBookingService builds the service. Notifier and metrics may be nil.
// warnOnConflicts toggles the feasibility checks run on assignment.
func NewBookingService(bookings bookingRepo, providers providerReader, availability availabilityRepo, preferences preferenceReader, notif statusNotifier, metrics transitionObserver, warnOnConflicts bool, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:        bookings,
		providers:       providers,
		availability:    availability,
		preferences:     preferences,
		notifier:        notif,
		metrics:         metrics,
		warnOnConflicts: warnOnConflicts,
		logger:          logger,
	}
}

// Transition validates and applies one status transition. The legality check
// and the write are guarded against the same snapshot: if a concurrent caller
// moved the booking first, the loser gets the conflict with the fresh state,
// never a silent overwrite.
func (s *BookingService) Transition(ctx context.Context, bookingID, target string, actor models.Actor, reason *string) (*models.Booking, error) {
	targetStatus, err := models.ParseBookingStatus(target)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	booking, err := s.requireBooking(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeTransition(booking, actor); err != nil {
		return nil, err
	}

	if !models.CanTransition(booking.Status, targetStatus) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move booking from %s to %s", booking.Status, targetStatus))
	}

	if err := s.bookings.UpdateStatusGuarded(ctx, bookingID, booking.Status, targetStatus, reason); err != nil {
		if err == sql.ErrNoRows {
			return nil, s.staleTransitionError(ctx, bookingID, targetStatus)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}

	booking.Status = targetStatus
	if reason != nil {
		booking.CancellationReason = reason
	}
	booking.UpdatedAt = time.Now().UTC()

	if s.notifier != nil {
		s.notifier.PublishStatus(ctx, booking.ID, targetStatus)
	}
	if s.metrics != nil {
		s.metrics.ObserveBookingTransition(targetStatus)
	}
	s.logger.Info("booking.transition",
		zap.String("booking_id", booking.ID),
		zap.String("status", string(targetStatus)),
		zap.String("actor_role", string(actor.Role)))

	return booking, nil
}

// AssignProvider assigns, reassigns, or (with a nil provider) unassigns a
// booking. Schedule conflicts for the target provider do not block the write;
// they come back as warnings so dispatchers can override for exceptional
// bookings.
func (s *BookingService) AssignProvider(ctx context.Context, bookingID string, providerID *string, actor models.Actor) (*models.Booking, []string, error) {
	booking, err := s.requireBooking(ctx, bookingID, actor)
	if err != nil {
		return nil, nil, err
	}

	if !booking.Status.AssignmentOpen() {
		return nil, nil, appErrors.Clone(appErrors.ErrBookingLocked,
			fmt.Sprintf("booking is %s; assignment is locked", booking.Status))
	}

	selfClaim := actor.Role == models.RoleProvider
	if selfClaim {
		if providerID == nil || *providerID != actor.ProviderID {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "providers may only claim bookings for themselves")
		}
		if booking.ProviderID != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "booking is already assigned")
		}
	}

	var warnings []string
	if providerID != nil {
		target, err := s.providers.FindByID(ctx, *providerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, appErrors.Clone(appErrors.ErrValidation, "target provider not found")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target provider")
		}
		if target.BusinessID != booking.BusinessID {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "target provider belongs to another business")
		}
		if !target.Active {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "target provider is inactive")
		}
		if s.warnOnConflicts {
			warnings = s.feasibilityWarnings(ctx, booking, *providerID)
		}
	}

	if err := s.bookings.UpdateAssigneeGuarded(ctx, bookingID, providerID, selfClaim); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, s.staleAssignmentError(ctx, bookingID, selfClaim)
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking assignment")
	}

	booking.ProviderID = providerID
	booking.UpdatedAt = time.Now().UTC()

	s.logger.Info("booking.assigned",
		zap.String("booking_id", booking.ID),
		zap.Stringp("provider_id", providerID),
		zap.Int("warnings", len(warnings)))

	return booking, warnings, nil
}

// ListBookings returns a business's bookings. Provider actors only ever see
// their own assignments regardless of the requested filter.
func (s *BookingService) ListBookings(ctx context.Context, businessID string, filter models.BookingFilter, actor models.Actor) ([]models.Booking, *models.Pagination, error) {
	if actor.BusinessID != businessID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
	}
	if actor.Role == models.RoleProvider {
		own := actor.ProviderID
		filter.ProviderID = &own
	}

	bookings, pagination, err := s.bookings.ListByBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, pagination, nil
}

func (s *BookingService) requireBooking(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.BusinessID != actor.BusinessID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	return booking, nil
}

// authorizeTransition: owners and dispatchers act on any booking of their
// business; a provider only on bookings currently assigned to them.
func (s *BookingService) authorizeTransition(booking *models.Booking, actor models.Actor) error {
	if actor.Role == models.RoleOwner || actor.Role == models.RoleDispatcher {
		return nil
	}
	if actor.Role == models.RoleProvider {
		if booking.ProviderID != nil && *booking.ProviderID == actor.ProviderID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "providers may only update their own bookings")
	}
	return appErrors.Clone(appErrors.ErrForbidden, "role may not transition bookings")
}

// staleTransitionError re-reads the booking so the conflict reports the actual
// current state for caller resync.
func (s *BookingService) staleTransitionError(ctx context.Context, bookingID string, target models.BookingStatus) error {
	current, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("booking state changed; transition to %s rejected", target))
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("booking is now %s; transition to %s rejected", current.Status, target))
}

func (s *BookingService) staleAssignmentError(ctx context.Context, bookingID string, selfClaim bool) error {
	current, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrConflict, "booking state changed; assignment rejected")
	}
	if !current.Status.AssignmentOpen() {
		return appErrors.Clone(appErrors.ErrBookingLocked,
			fmt.Sprintf("booking is %s; assignment is locked", current.Status))
	}
	if selfClaim && current.ProviderID != nil {
		return appErrors.Clone(appErrors.ErrConflict, "booking was claimed by another provider")
	}
	return appErrors.Clone(appErrors.ErrConflict, "booking state changed; assignment rejected")
}

// feasibilityWarnings surfaces non-blocking scheduling concerns for the target
// provider. Any lookup failure degrades to no warning; this path must never
// block an assignment.
func (s *BookingService) feasibilityWarnings(ctx context.Context, booking *models.Booking, providerID string) []string {
	var warnings []string

	weekly, err := s.availability.ListActiveWeekly(ctx, providerID)
	if err == nil {
		if w := scheduleWarning(weekly, booking); w != "" {
			warnings = append(warnings, w)
		}
	}

	blocked, err := s.availability.ListActiveBlocked(ctx, providerID)
	if err == nil {
		for _, interval := range blocked {
			if interval.Covers(booking.Date) {
				warnings = append(warnings, fmt.Sprintf("provider has a blocked interval on %s (%s)",
					booking.Date.Format("2006-01-02"), interval.Reason))
				break
			}
		}
	}

	if overlap, err := s.bookings.ExistsOverlap(ctx, providerID, booking.Date, booking.StartTime, booking.EndTime); err == nil && overlap {
		warnings = append(warnings, "provider already has a booking overlapping this window")
	}

	prefs, err := s.preferences.GetByProvider(ctx, providerID)
	if err == sql.ErrNoRows {
		prefs = models.DefaultBookingPreferences(providerID)
		err = nil
	}
	if err == nil {
		count, cerr := s.bookings.CountActiveForProviderOnDate(ctx, providerID, booking.Date)
		if cerr == nil && count >= prefs.MaxBookingsPerDay {
			warnings = append(warnings, fmt.Sprintf("provider already has %d bookings that day (cap %d)", count, prefs.MaxBookingsPerDay))
		}
	}

	return warnings
}

// scheduleWarning checks the provider's recurring schedule against the
// booking's day and window.
func scheduleWarning(weekly []models.WeeklyAvailability, booking *models.Booking) string {
	day := int(booking.Date.Weekday())
	for _, row := range weekly {
		if row.DayOfWeek != day {
			continue
		}
		if booking.StartTime >= row.StartTime && booking.EndTime <= row.EndTime {
			return ""
		}
		return fmt.Sprintf("booking window %s-%s falls outside the provider's %s-%s availability",
			booking.StartTime, booking.EndTime, row.StartTime, row.EndTime)
	}
	return fmt.Sprintf("provider has no availability on %s", dayNames[day])
}
