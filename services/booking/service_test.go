package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	blockedRepo "courtside/database/repository/blocked"
	bookingRepo "courtside/database/repository/booking"
	courtRepo "courtside/database/repository/court"
	"courtside/models"
	"courtside/services/availability"
	"courtside/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCourt = "court-1"
	testDate  = "2024-12-20"
)

type fixture struct {
	svc    *DefaultBookingService
	index  *availability.Index
	ledger *flakyLedger
	blocks blockedRepo.BlockedRepository
	courts courtRepo.CourtRepository
	clock  *utils.ManualClock
	cache  AvailabilityCache
}

// flakyLedger lets tests inject failures, delays and interleavings into the ledger.
type flakyLedger struct {
	bookingRepo.BookingRepository
	mu          sync.Mutex
	appendErr   error
	onAppend    func()
	afterAppend func()
	removeErr   error
	afterList   func()
}

func (f *flakyLedger) Append(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	appendErr, onAppend, afterAppend := f.appendErr, f.onAppend, f.afterAppend
	f.mu.Unlock()
	if onAppend != nil {
		onAppend()
	}
	if appendErr != nil {
		return appendErr
	}
	if err := f.BookingRepository.Append(ctx, b); err != nil {
		return err
	}
	if afterAppend != nil {
		afterAppend()
	}
	return nil
}

func (f *flakyLedger) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	removeErr := f.removeErr
	f.mu.Unlock()
	if removeErr != nil {
		return removeErr
	}
	return f.BookingRepository.Remove(ctx, id)
}

func (f *flakyLedger) ListByCourtAndDate(ctx context.Context, courtID, date string) ([]models.Booking, error) {
	rows, err := f.BookingRepository.ListByCourtAndDate(ctx, courtID, date)
	f.mu.Lock()
	afterList := f.afterList
	f.mu.Unlock()
	if afterList != nil {
		afterList()
	}
	return rows, err
}

func (f *flakyLedger) set(appendErr error, onAppend func()) {
	f.mu.Lock()
	f.appendErr, f.onAppend = appendErr, onAppend
	f.mu.Unlock()
}

func (f *flakyLedger) update(fn func(l *flakyLedger)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

// flakyBlocks fails Create on demand.
type flakyBlocks struct {
	blockedRepo.BlockedRepository
	mu        sync.Mutex
	createErr error
}

func (f *flakyBlocks) Create(ctx context.Context, b *models.Blocked) error {
	f.mu.Lock()
	createErr := f.createErr
	f.mu.Unlock()
	if createErr != nil {
		return createErr
	}
	return f.BlockedRepository.Create(ctx, b)
}

func (f *flakyBlocks) failCreate(err error) {
	f.mu.Lock()
	f.createErr = err
	f.mu.Unlock()
}

// memoryCache is an AvailabilityCache whose next Set can run a hook first.
type memoryCache struct {
	mu        sync.Mutex
	views     map[string]models.AvailabilityResponse
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: map[string]models.AvailabilityResponse{}}
}

func (c *memoryCache) Get(_ context.Context, courtID, date string) (*models.AvailabilityResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[cacheKey(courtID, date)]
	if !ok {
		return nil, false
	}
	return &v, true
}

func (c *memoryCache) Set(_ context.Context, resp *models.AvailabilityResponse) {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	c.mu.Lock()
	c.views[cacheKey(resp.CourtID, resp.Date)] = *resp
	c.mu.Unlock()
}

func (c *memoryCache) Invalidate(_ context.Context, courtID, date string) {
	c.mu.Lock()
	delete(c.views, cacheKey(courtID, date))
	c.mu.Unlock()
}

func (c *memoryCache) InvalidateCourt(_ context.Context, courtID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.views {
		if v.CourtID == courtID {
			delete(c.views, k)
		}
	}
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls map[string]time.Time
}

func (r *recordingScheduler) ScheduleCompletion(_ context.Context, b models.Booking, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[b.ID] = at
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := utils.NewManualClock(time.Date(2024, 12, 19, 8, 0, 0, 0, time.UTC))
	ix, err := availability.NewIndex(30, clock, nil)
	require.NoError(t, err)

	f := &fixture{
		index:  ix,
		ledger: &flakyLedger{BookingRepository: bookingRepo.NewMemoryBookingRepo()},
		blocks: blockedRepo.NewMemoryBlockedRepo(),
		courts: courtRepo.NewMemoryCourtRepo(),
		clock:  clock,
	}
	f.svc = f.newService(t, ix, nil)

	require.NoError(t, f.courts.Create(context.Background(), &models.Court{
		ID:             testCourt,
		FacilityID:     "fac-1",
		Name:           "Centre Court",
		SportType:      "tennis",
		PricePerHour:   models.MoneyFromCents(2500),
		OperatingHours: models.OperatingHours{Start: 6 * 60, End: 22 * 60},
		IsActive:       true,
	}))
	return f
}

func (f *fixture) newService(t *testing.T, ix *availability.Index, scheduler CompletionScheduler) *DefaultBookingService {
	t.Helper()
	svc, err := NewBookingService(Dependencies{
		Index:     ix,
		Ledger:    f.ledger,
		Blocks:    f.blocks,
		Courts:    f.courts,
		Cache:     f.cache,
		Scheduler: scheduler,
		Clock:     f.clock,
	}, Options{
		Granularity:        60,
		CancellationCutoff: 2 * time.Hour,
		HoldTTL:            10 * time.Second,
		LedgerTimeout:      time.Second,
		Location:           time.UTC,
	})
	require.NoError(t, err)
	return svc
}

func span(start, end string) models.Interval {
	s, err := models.ParseMinute(start)
	if err != nil {
		panic(err)
	}
	e, err := models.ParseMinute(end)
	if err != nil {
		panic(err)
	}
	return models.Interval{Start: s, End: e}
}

func (f *fixture) reserve(user, start, end string) (*models.Booking, error) {
	return f.svc.Reserve(context.Background(), ReserveRequest{
		UserID:   user,
		CourtID:  testCourt,
		Date:     testDate,
		Interval: span(start, end),
	})
}

func assertRejected(t *testing.T, err error, reason Reason) {
	t.Helper()
	re, ok := AsRejected(err)
	require.True(t, ok, "expected a rejection, got %v", err)
	assert.Equal(t, reason, re.Reason)
}

func TestReserve_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, a.Status)
	assert.Equal(t, models.PaymentPending, a.PaymentStatus)
	assert.True(t, a.TotalPrice.Equal(decimal.NewFromInt(25)), "got %s", a.TotalPrice)

	_, err = f.reserve("B", "10:30", "11:30")
	assertRejected(t, err, ReasonConflict)

	cancelled, err := f.svc.Cancel(ctx, a.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	b, err := f.reserve("B", "10:30", "11:30")
	require.NoError(t, err)
	assert.True(t, b.TotalPrice.Equal(decimal.NewFromInt(25)))
}

func TestReserve_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(t)

	const n = 40
	// Every pair of these 90-minute intervals overlaps.
	starts := []string{"09:30", "10:00", "10:30"}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins []*models.Booking
	var conflicts int
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start, err := models.ParseMinute(starts[i%len(starts)])
			if err != nil {
				panic(err)
			}
			iv := models.Interval{Start: start, End: start + 90}
			b, err := f.svc.Reserve(context.Background(), ReserveRequest{
				UserID: "user", CourtID: testCourt, Date: testDate, Interval: iv,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins = append(wins, b)
				return
			}
			if IsRejected(err, ReasonConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, wins, 1)
	assert.Equal(t, n-1, conflicts)

	rows, err := f.ledger.ListByCourtAndDate(context.Background(), testCourt, testDate)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReserve_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reserve("A", "05:00", "06:00")
	assertRejected(t, err, ReasonOutOfWindow)
	_, err = f.reserve("A", "21:30", "22:30")
	assertRejected(t, err, ReasonOutOfWindow)
	_, err = f.reserve("A", "10:15", "11:15")
	assertRejected(t, err, ReasonOutOfWindow)
	_, err = f.reserve("A", "11:00", "10:00")
	assertRejected(t, err, ReasonOutOfWindow)

	_, err = f.svc.Reserve(ctx, ReserveRequest{UserID: "A", CourtID: testCourt, Date: "2024-12-18", Interval: span("10:00", "11:00")})
	assertRejected(t, err, ReasonPastOrTooSoon)
	_, err = f.svc.Reserve(ctx, ReserveRequest{UserID: "A", CourtID: testCourt, Date: "20-12-2024", Interval: span("10:00", "11:00")})
	assertRejected(t, err, ReasonOutOfWindow)
	_, err = f.svc.Reserve(ctx, ReserveRequest{UserID: "A", CourtID: "nope", Date: testDate, Interval: span("10:00", "11:00")})
	assertRejected(t, err, ReasonNotFound)

	inactive := false
	_, err = f.svc.UpdateCourt(ctx, testCourt, models.CourtUpdate{IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonCourtInactive)
}

func TestReserve_LeadTime(t *testing.T) {
	f := newFixture(t)
	f.svc.opts.LeadTime = time.Hour
	f.clock.Set(time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC))

	_, err := f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonPastOrTooSoon)

	_, err = f.reserve("A", "10:30", "11:30")
	assert.NoError(t, err)
}

func TestReserve_PriceIsProRata(t *testing.T) {
	f := newFixture(t)
	b, err := f.reserve("A", "10:00", "11:30")
	require.NoError(t, err)
	assert.Equal(t, "37.50", b.TotalPrice.StringFixed(2))
	assert.Equal(t, int64(3750), b.TotalPrice.Cents())
}

func TestReserve_LedgerFailureReleasesHold(t *testing.T) {
	f := newFixture(t)
	f.ledger.set(errors.New("connection refused"), nil)

	_, err := f.reserve("A", "10:00", "11:00")
	require.ErrorIs(t, err, ErrUnavailable)
	_, isRejection := AsRejected(err)
	assert.False(t, isRejection)

	entries, err := f.index.Query(keyOf(testCourt, testDate), span("10:00", "11:00"))
	require.NoError(t, err)
	assert.Empty(t, entries, "hold must be released when the ledger fails")

	f.ledger.set(nil, nil)
	_, err = f.reserve("A", "10:00", "11:00")
	assert.NoError(t, err)
}

func TestReserve_DuplicateBackstopIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A row the index does not know about, as after a missed rebuild.
	require.NoError(t, f.ledger.BookingRepository.Append(ctx, &models.Booking{
		ID: "ghost", UserID: "X", CourtID: testCourt, FacilityID: "fac-1", Date: testDate,
		Start: 600, End: 660, Status: models.BookingConfirmed,
	}))

	_, err := f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonConflict)

	entries, err := f.index.Query(keyOf(testCourt, testDate), span("10:00", "11:00"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReserve_HoldExpiresDuringLedgerWrite(t *testing.T) {
	f := newFixture(t)

	f.ledger.set(nil, func() { f.clock.Advance(11 * time.Second) })
	_, err := f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonConflict)

	rows, err := f.ledger.ListByCourtAndDate(context.Background(), testCourt, testDate)
	require.NoError(t, err)
	assert.Empty(t, rows, "uncommitted ledger row must be rolled back")

	f.ledger.set(nil, nil)
	b, err := f.reserve("B", "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, "B", b.UserID)
}

func TestReserve_FailedRollbackKeepsIntervalBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := keyOf(testCourt, testDate)

	f.ledger.update(func(l *flakyLedger) { l.removeErr = errors.New("mongo down") })
	f.ledger.set(nil, func() { f.clock.Advance(11 * time.Second) })
	_, err := f.reserve("A", "10:00", "11:00")
	require.ErrorIs(t, err, ErrUnavailable)

	rows, err := f.ledger.ListByCourtAndDate(ctx, testCourt, testDate)
	require.NoError(t, err)
	require.Len(t, rows, 1, "the row could not be removed")
	stranded := rows[0]

	entries, err := f.index.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SlotBooked, entries[0].Status)
	assert.Equal(t, stranded.ID, entries[0].Owner)

	f.ledger.set(nil, nil)
	_, err = f.reserve("B", "10:30", "11:30")
	assertRejected(t, err, ReasonConflict)

	// The row is real; a reconcile keeps its interval booked.
	warnings, err := f.svc.Reconcile(ctx, testCourt, testDate)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	entries, err = f.index.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stranded.ID, entries[0].Owner)

	confirmed, err := f.ledger.ListConfirmedFrom(ctx, testDate)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestReserve_ReconcileDuringRollbackLeavesNoBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := keyOf(testCourt, testDate)

	// Reconcile runs between the ledger write and the rollback.
	f.ledger.update(func(l *flakyLedger) {
		l.afterAppend = func() {
			f.clock.Advance(11 * time.Second)
			_, err := f.svc.Reconcile(ctx, testCourt, testDate)
			require.NoError(t, err)
		}
	})
	_, err := f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonConflict)

	entries, err := f.index.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	f.ledger.update(func(l *flakyLedger) { l.afterAppend = nil })
	_, err = f.reserve("B", "10:00", "11:00")
	require.NoError(t, err)
}

func TestReserve_ReconcileReadingBeforeRollbackLeavesNoBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := keyOf(testCourt, testDate)

	listed := make(chan struct{})
	resume := make(chan struct{})
	done := make(chan error, 1)
	var once sync.Once

	// Reconcile reads the uncommitted row, then stalls until the rollback finished.
	f.ledger.update(func(l *flakyLedger) {
		l.afterList = func() {
			once.Do(func() {
				close(listed)
				<-resume
			})
		}
		l.afterAppend = func() {
			f.clock.Advance(11 * time.Second)
			go func() {
				_, err := f.svc.Reconcile(ctx, testCourt, testDate)
				done <- err
			}()
			<-listed
		}
	})

	_, err := f.reserve("A", "10:00", "11:00")
	assertRejected(t, err, ReasonConflict)
	close(resume)
	require.NoError(t, <-done)

	rows, err := f.ledger.ListByCourtAndDate(ctx, testCourt, testDate)
	require.NoError(t, err)
	assert.Empty(t, rows)
	entries, err := f.index.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	assert.Empty(t, entries, "a rolled back booking must not be restored")
}

func TestReserve_SchedulesCompletion(t *testing.T) {
	f := newFixture(t)
	rec := &recordingScheduler{calls: map[string]time.Time{}}
	f.svc = f.newService(t, f.index, rec)

	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 20, 11, 0, 1, 0, time.UTC), rec.calls[b.ID])
}

func TestCancel_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, b.ID, "B")
	assertRejected(t, err, ReasonNotOwner)

	_, err = f.svc.Cancel(ctx, "missing", "A")
	assertRejected(t, err, ReasonNotFound)

	// Inside the two-hour cutoff.
	f.clock.Set(time.Date(2024, 12, 20, 8, 30, 0, 0, time.UTC))
	_, err = f.svc.Cancel(ctx, b.ID, "A")
	assertRejected(t, err, ReasonTooLate)

	// Exactly at the cutoff is still allowed.
	f.clock.Set(time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC))
	_, err = f.svc.Cancel(ctx, b.ID, "A")
	assert.NoError(t, err)
}

func TestCancel_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)

	first, err := f.svc.Cancel(ctx, b.ID, "A")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.svc.Cancel(ctx, b.ID, "A")
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, second.Status)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)

	// Still idempotent after the cutoff has passed.
	f.clock.Set(time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC))
	_, err = f.svc.Cancel(ctx, b.ID, "A")
	assert.NoError(t, err)
}

func TestCancelOnBehalf_SkipsOwnerCheck(t *testing.T) {
	f := newFixture(t)
	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)

	cancelled, err := f.svc.CancelOnBehalf(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	_, err = f.reserve("B", "10:00", "11:00")
	assert.NoError(t, err)
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)
	other, err := f.reserve("A", "15:00", "16:00")
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, b.ID)
	assertRejected(t, err, ReasonInvalidTransition)

	f.clock.Set(time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC))
	n, err := f.svc.CompleteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	done, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, done.Status)

	pending, err := f.svc.GetBooking(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, pending.Status)

	again, err := f.svc.Complete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, again.Status)

	f.clock.Set(time.Date(2024, 12, 19, 8, 0, 0, 0, time.UTC))
	_, err = f.svc.Cancel(ctx, b.ID, "A")
	assertRejected(t, err, ReasonAlreadyTerminal)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)

	paid, err := f.svc.UpdatePaymentStatus(ctx, b.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)

	_, err = f.svc.UpdatePaymentStatus(ctx, b.ID, models.PaymentPending)
	assertRejected(t, err, ReasonInvalidTransition)

	_, err = f.svc.UpdatePaymentStatus(ctx, b.ID, "bogus")
	assertRejected(t, err, ReasonInvalidTransition)

	refunded, err := f.svc.UpdatePaymentStatus(ctx, b.ID, models.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.PaymentStatus)
}

func TestBlockAndUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.svc.Block(ctx, BlockRequest{CourtID: testCourt, Date: testDate, Interval: span("10:30", "12:00"), Reason: "repair"})
	assertRejected(t, err, ReasonConflict)

	block, err := f.svc.Block(ctx, BlockRequest{CourtID: testCourt, Date: testDate, Interval: span("12:00", "14:00"), Reason: "repair", CreatedBy: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "repair", block.Reason)

	_, err = f.reserve("B", "13:00", "14:00")
	assertRejected(t, err, ReasonConflict)

	slots, err := f.svc.TimeSlots(ctx, testCourt, testDate, false)
	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.False(t, slots[4].IsAvailable) // 10:00
	assert.True(t, slots[6].IsBlocked)    // 12:00
	assert.Equal(t, "repair", slots[6].BlockReason)

	open, err := f.svc.TimeSlots(ctx, testCourt, testDate, true)
	require.NoError(t, err)
	assert.Len(t, open, 13)

	n, err := f.svc.Unblock(ctx, UnblockRequest{CourtID: testCourt, Date: testDate, Interval: span("12:00", "13:00")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	persisted, err := f.blocks.ListByCourtAndDate(ctx, testCourt, testDate)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, span("13:00", "14:00"), persisted[0].Interval())

	_, err = f.reserve("B", "12:00", "13:00")
	assert.NoError(t, err)
	_, err = f.reserve("B", "13:00", "14:00")
	assertRejected(t, err, ReasonConflict)

	_, err = f.svc.Cancel(ctx, booked.ID, "A")
	require.NoError(t, err)
}

func TestUnblock_FailedSplitKeepsBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blocks := &flakyBlocks{BlockedRepository: f.blocks}
	f.blocks = blocks
	f.svc = f.newService(t, f.index, nil)

	block, err := f.svc.Block(ctx, BlockRequest{CourtID: testCourt, Date: testDate, Interval: span("12:00", "14:00"), Reason: "repair"})
	require.NoError(t, err)

	blocks.failCreate(errors.New("write concern timeout"))
	_, err = f.svc.Unblock(ctx, UnblockRequest{CourtID: testCourt, Date: testDate, Interval: span("12:00", "13:00")})
	require.ErrorIs(t, err, ErrUnavailable)

	persisted, err := f.blocks.ListByCourtAndDate(ctx, testCourt, testDate)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, block.ID, persisted[0].ID)
	assert.Equal(t, span("12:00", "14:00"), persisted[0].Interval())

	entries, err := f.index.Query(keyOf(testCourt, testDate), span("12:00", "14:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SlotBlocked, entries[0].Status)

	blocks.failCreate(nil)
	_, err = f.svc.Unblock(ctx, UnblockRequest{CourtID: testCourt, Date: testDate, Interval: span("12:00", "13:00")})
	require.NoError(t, err)
	persisted, err = f.blocks.ListByCourtAndDate(ctx, testCourt, testDate)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, span("13:00", "14:00"), persisted[0].Interval())
}

func TestAvailability_InvalidationDuringCacheWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newMemoryCache()
	f.cache = cache
	f.svc = f.newService(t, f.index, nil)

	// A reservation lands between the snapshot and the cache write.
	cache.beforeSet = func() {
		_, err := f.reserve("A", "10:00", "11:00")
		require.NoError(t, err)
	}
	stale, err := f.svc.Availability(ctx, testCourt, testDate)
	require.NoError(t, err)
	assert.Equal(t, models.SlotFree, stale.Slots[4].Status)

	_, cached := cache.Get(ctx, testCourt, testDate)
	assert.False(t, cached, "a view older than the last invalidation must not stay cached")

	fresh, err := f.svc.Availability(ctx, testCourt, testDate)
	require.NoError(t, err)
	assert.Equal(t, models.SlotBooked, fresh.Slots[4].Status)
	_, cached = cache.Get(ctx, testCourt, testDate)
	assert.True(t, cached)
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reserve("A", "10:30", "11:30")
	require.NoError(t, err)

	resp, err := f.svc.Availability(ctx, testCourt, testDate)
	require.NoError(t, err)
	require.Len(t, resp.Slots, 16)
	assert.Equal(t, models.SlotFree, resp.Slots[3].Status)
	assert.Equal(t, models.SlotBooked, resp.Slots[4].Status)
	assert.Equal(t, 30, resp.Slots[4].FreeMinutes)
	assert.Equal(t, models.SlotBooked, resp.Slots[5].Status)
	assert.Empty(t, resp.Warnings)
}

func TestRebuildAndReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)
	dropped, err := f.reserve("A", "15:00", "16:00")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, dropped.ID, "A")
	require.NoError(t, err)
	_, err = f.svc.Block(ctx, BlockRequest{CourtID: testCourt, Date: testDate, Interval: span("18:00", "19:00"), Reason: "league"})
	require.NoError(t, err)

	// A fresh process: empty index, same durable state.
	fresh, err := availability.NewIndex(30, f.clock, nil)
	require.NoError(t, err)
	svc := f.newService(t, fresh, nil)
	require.NoError(t, svc.Rebuild(ctx))

	key := keyOf(testCourt, testDate)
	entries, err := fresh.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].Owner)

	entries, err = fresh.Query(key, span("15:00", "16:00"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = fresh.Query(key, span("18:00", "19:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SlotBlocked, entries[0].Status)

	// Drift: the index lost a booking; reconcile restores it from the ledger.
	_, err = fresh.Release(key, span("10:00", "11:00"), kept.ID)
	require.NoError(t, err)
	warnings, err := svc.Reconcile(ctx, testCourt, testDate)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	entries, err = fresh.Query(key, span("10:00", "11:00"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCourtLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCourt(ctx, CourtRequest{
		FacilityID:     "fac-1",
		Name:           "Bad",
		OperatingHours: models.OperatingHours{Start: 22 * 60, End: 6 * 60},
	})
	assertRejected(t, err, ReasonInvalidWindow)

	court, err := f.svc.CreateCourt(ctx, CourtRequest{
		FacilityID:     "fac-1",
		Name:           "Court 2",
		SportType:      "padel",
		PricePerHour:   models.NewMoney(decimal.RequireFromString("30.005")),
		OperatingHours: models.OperatingHours{Start: 8 * 60, End: 20 * 60},
		IsActive:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "30.01", court.PricePerHour.StringFixed(2))

	b, err := f.svc.Reserve(ctx, ReserveRequest{UserID: "A", CourtID: court.ID, Date: testDate, Interval: span("09:00", "10:00")})
	require.NoError(t, err)

	err = f.svc.DeleteCourt(ctx, court.ID)
	assertRejected(t, err, ReasonConflict)
	still, err := f.svc.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive, "an aborted delete leaves the court active")

	_, err = f.svc.Cancel(ctx, b.ID, "A")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteCourt(ctx, court.ID))

	_, err = f.svc.GetCourt(ctx, court.ID)
	assertRejected(t, err, ReasonNotFound)
}

func TestDeleteCourt_RefusesWhileReservationInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var deleteErr error
	f.ledger.set(nil, func() { deleteErr = f.svc.DeleteCourt(ctx, testCourt) })
	b, err := f.reserve("A", "10:00", "11:00")
	require.NoError(t, err)
	assertRejected(t, deleteErr, ReasonConflict)

	court, err := f.svc.GetCourt(ctx, testCourt)
	require.NoError(t, err)
	assert.True(t, court.IsActive)

	// Once the court is gone no reservation can reach it.
	f.ledger.set(nil, nil)
	_, err = f.svc.Cancel(ctx, b.ID, "A")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteCourt(ctx, testCourt))
	_, err = f.reserve("A", "12:00", "13:00")
	assertRejected(t, err, ReasonNotFound)
}
