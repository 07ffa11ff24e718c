package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

// bookingRepoMock mirrors the guarded-update contract of the real repository:
// a write whose predicate no longer matches returns sql.ErrNoRows.
type bookingRepoMock struct {
	mu       sync.Mutex
	items    map[string]*models.Booking
	overlaps map[string]bool
	dayCount map[string]int
}

func newBookingRepoMock(bookings ...*models.Booking) *bookingRepoMock {
	m := &bookingRepoMock{
		items:    make(map[string]*models.Booking),
		overlaps: make(map[string]bool),
		dayCount: make(map[string]int),
	}
	for _, b := range bookings {
		m.items[b.ID] = b
	}
	return m
}

func (m *bookingRepoMock) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *booking
	return &cp, nil
}

func (m *bookingRepoMock) UpdateStatusGuarded(ctx context.Context, id string, from, to models.BookingStatus, reason *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.items[id]
	if !ok || booking.Status != from {
		return sql.ErrNoRows
	}
	booking.Status = to
	if reason != nil {
		booking.CancellationReason = reason
	}
	return nil
}

func (m *bookingRepoMock) UpdateAssigneeGuarded(ctx context.Context, id string, providerID *string, requireUnassigned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.items[id]
	if !ok || !booking.Status.AssignmentOpen() {
		return sql.ErrNoRows
	}
	if requireUnassigned && booking.ProviderID != nil {
		return sql.ErrNoRows
	}
	booking.ProviderID = providerID
	return nil
}

func (m *bookingRepoMock) ListByBusiness(ctx context.Context, businessID string, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.items {
		if b.BusinessID != businessID {
			continue
		}
		if filter.ProviderID != nil && (b.ProviderID == nil || *b.ProviderID != *filter.ProviderID) {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(out)}, nil
}

func (m *bookingRepoMock) CountActiveForProviderOnDate(ctx context.Context, providerID string, date time.Time) (int, error) {
	return m.dayCount[providerID], nil
}

func (m *bookingRepoMock) ExistsOverlap(ctx context.Context, providerID string, date time.Time, startTime, endTime string) (bool, error) {
	return m.overlaps[providerID], nil
}

type notifierSpy struct {
	published []models.BookingStatus
}

func (n *notifierSpy) PublishStatus(ctx context.Context, bookingID string, status models.BookingStatus) {
	n.published = append(n.published, status)
}

type preferenceReaderStub struct {
	prefs map[string]*models.BookingPreferences
}

func (s *preferenceReaderStub) GetByProvider(ctx context.Context, providerID string) (*models.BookingPreferences, error) {
	if p, ok := s.prefs[providerID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func pendingBooking(id string) *models.Booking {
	return &models.Booking{
		ID:         id,
		BusinessID: "biz-1",
		CustomerID: "cust-1",
		ServiceID:  "svc-1",
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), // a Monday
		StartTime:  "10:00",
		EndTime:    "11:00",
		Status:     models.BookingPending,
	}
}

func newBookingService(repo *bookingRepoMock, avail *availabilityRepoMock, notif *notifierSpy) *BookingService {
	if avail == nil {
		avail = newAvailabilityRepoMock()
	}
	prefs := &preferenceReaderStub{prefs: map[string]*models.BookingPreferences{}}
	var notifier statusNotifier
	if notif != nil {
		notifier = notif
	}
	return NewBookingService(repo, testProviders(), avail, prefs, notifier, nil, true, zap.NewNop())
}

func TestBookingServiceTransitionConfirm(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	notif := &notifierSpy{}
	svc := newBookingService(repo, nil, notif)

	booking, err := svc.Transition(context.Background(), "bk-1", "confirmed", ownerActor("biz-1"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, []models.BookingStatus{models.BookingConfirmed}, notif.published)
}

func TestBookingServiceTransitionRejectsIllegalEdge(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	svc := newBookingService(repo, nil, nil)

	_, err := svc.Transition(context.Background(), "bk-1", "completed", ownerActor("biz-1"), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "pending")

	// booking unchanged
	current, _ := repo.FindByID(context.Background(), "bk-1")
	assert.Equal(t, models.BookingPending, current.Status)
}

func TestBookingServiceTransitionRejectsUnknownStatus(t *testing.T) {
	svc := newBookingService(newBookingRepoMock(pendingBooking("bk-1")), nil, nil)

	_, err := svc.Transition(context.Background(), "bk-1", "approved", ownerActor("biz-1"), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceTransitionStaleSnapshot(t *testing.T) {
	booking := pendingBooking("bk-1")
	repo := newBookingRepoMock(booking)
	svc := newBookingService(repo, nil, nil)

	// simulate concurrent decline after the service read its snapshot
	loaded, err := repo.FindByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, models.BookingPending, loaded.Status)
	require.NoError(t, repo.UpdateStatusGuarded(context.Background(), "bk-1", models.BookingPending, models.BookingDeclined, nil))

	_, err = svc.Transition(context.Background(), "bk-1", "confirmed", ownerActor("biz-1"), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Contains(t, appErr.Message, string(models.BookingDeclined))
}

func TestBookingServiceTransitionProviderGating(t *testing.T) {
	assigned := pendingBooking("bk-1")
	prov := "prov-1"
	assigned.ProviderID = &prov
	unassigned := pendingBooking("bk-2")
	repo := newBookingRepoMock(assigned, unassigned)
	svc := newBookingService(repo, nil, nil)

	actor := models.Actor{Role: models.RoleProvider, BusinessID: "biz-1", ProviderID: "prov-1"}

	booking, err := svc.Transition(context.Background(), "bk-1", "confirmed", actor, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)

	_, err = svc.Transition(context.Background(), "bk-2", "confirmed", actor, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceTransitionForeignBusinessLooksMissing(t *testing.T) {
	svc := newBookingService(newBookingRepoMock(pendingBooking("bk-1")), nil, nil)

	_, err := svc.Transition(context.Background(), "bk-1", "confirmed", ownerActor("biz-2"), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelRecordsReason(t *testing.T) {
	booking := pendingBooking("bk-1")
	booking.Status = models.BookingConfirmed
	repo := newBookingRepoMock(booking)
	svc := newBookingService(repo, nil, nil)

	reason := "customer request"
	updated, err := svc.Transition(context.Background(), "bk-1", "cancelled", ownerActor("biz-1"), &reason)
	require.NoError(t, err)
	require.NotNil(t, updated.CancellationReason)
	assert.Equal(t, reason, *updated.CancellationReason)
}

func TestBookingServiceAssignProvider(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	avail := newAvailabilityRepoMock()
	avail.weekly["prov-1"] = []models.WeeklyAvailability{
		{ProviderID: "prov-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", Origin: models.OriginManual, Active: true},
	}
	svc := newBookingService(repo, avail, nil)

	prov := "prov-1"
	booking, warnings, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.NoError(t, err)
	require.NotNil(t, booking.ProviderID)
	assert.Equal(t, "prov-1", *booking.ProviderID)
	assert.Empty(t, warnings, "in-window assignment produces no warnings")
}

func TestBookingServiceAssignWarnsOutsideSchedule(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	avail := newAvailabilityRepoMock()
	avail.weekly["prov-1"] = []models.WeeklyAvailability{
		{ProviderID: "prov-1", DayOfWeek: 1, StartTime: "12:00", EndTime: "17:00", Origin: models.OriginManual, Active: true},
	}
	svc := newBookingService(repo, avail, nil)

	prov := "prov-1"
	_, warnings, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.NoError(t, err, "schedule conflicts warn, never block")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "outside the provider's")
}

func TestBookingServiceAssignWarningsDisabled(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	prefs := &preferenceReaderStub{prefs: map[string]*models.BookingPreferences{}}
	svc := NewBookingService(repo, testProviders(), newAvailabilityRepoMock(), prefs, nil, nil, false, zap.NewNop())

	prov := "prov-1"
	_, warnings, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestBookingServiceAssignWarnsBlockedAndOverlap(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	repo.overlaps["prov-1"] = true
	avail := newAvailabilityRepoMock()
	avail.blocked["prov-1"] = []models.BlockedInterval{{
		ProviderID: "prov-1",
		StartDate:  time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Reason:     "vacation",
		Active:     true,
	}}
	svc := newBookingService(repo, avail, nil)

	prov := "prov-1"
	_, warnings, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.NoError(t, err)
	assert.Len(t, warnings, 3) // no schedule, blocked interval, overlap
}

func TestBookingServiceAssignLockedAfterStart(t *testing.T) {
	booking := pendingBooking("bk-1")
	booking.Status = models.BookingInProgress
	svc := newBookingService(newBookingRepoMock(booking), nil, nil)

	prov := "prov-1"
	_, _, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingLocked.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceAssignRejectsForeignProvider(t *testing.T) {
	svc := newBookingService(newBookingRepoMock(pendingBooking("bk-1")), nil, nil)

	prov := "prov-unknown"
	_, _, err := svc.AssignProvider(context.Background(), "bk-1", &prov, ownerActor("biz-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceSelfClaim(t *testing.T) {
	repo := newBookingRepoMock(pendingBooking("bk-1"))
	svc := newBookingService(repo, nil, nil)
	actor := models.Actor{Role: models.RoleProvider, BusinessID: "biz-1", ProviderID: "prov-1"}

	prov := "prov-1"
	booking, _, err := svc.AssignProvider(context.Background(), "bk-1", &prov, actor)
	require.NoError(t, err)
	assert.Equal(t, "prov-1", *booking.ProviderID)

	// a second provider cannot claim it any more
	other := models.Actor{Role: models.RoleProvider, BusinessID: "biz-1", ProviderID: "prov-2"}
	prov2 := "prov-2"
	_, _, err = svc.AssignProvider(context.Background(), "bk-1", &prov2, other)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceSelfClaimOnlyForSelf(t *testing.T) {
	svc := newBookingService(newBookingRepoMock(pendingBooking("bk-1")), nil, nil)
	actor := models.Actor{Role: models.RoleProvider, BusinessID: "biz-1", ProviderID: "prov-1"}

	prov := "prov-2"
	_, _, err := svc.AssignProvider(context.Background(), "bk-1", &prov, actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceUnassign(t *testing.T) {
	booking := pendingBooking("bk-1")
	prov := "prov-1"
	booking.ProviderID = &prov
	repo := newBookingRepoMock(booking)
	svc := newBookingService(repo, nil, nil)

	updated, warnings, err := svc.AssignProvider(context.Background(), "bk-1", nil, ownerActor("biz-1"))
	require.NoError(t, err)
	assert.Nil(t, updated.ProviderID)
	assert.Empty(t, warnings)
}

func TestBookingServiceListScopesProviders(t *testing.T) {
	mine := pendingBooking("bk-1")
	prov := "prov-1"
	mine.ProviderID = &prov
	other := pendingBooking("bk-2")
	prov2 := "prov-2"
	other.ProviderID = &prov2
	repo := newBookingRepoMock(mine, other)
	svc := newBookingService(repo, nil, nil)

	actor := models.Actor{Role: models.RoleProvider, BusinessID: "biz-1", ProviderID: "prov-1"}
	bookings, _, err := svc.ListBookings(context.Background(), "biz-1", models.BookingFilter{}, actor)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bk-1", bookings[0].ID)

	// owners see everything
	bookings, _, err = svc.ListBookings(context.Background(), "biz-1", models.BookingFilter{}, ownerActor("biz-1"))
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}
