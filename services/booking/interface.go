package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"courtside/config"
	blockedRepo "courtside/database/repository/blocked"
	bookingRepo "courtside/database/repository/booking"
	courtRepo "courtside/database/repository/court"
	"courtside/models"
	"courtside/services/availability"
	"courtside/utils"

	"go.uber.org/zap"
)

// BookingService is the reservation coordinator exposed to the API layer.
type BookingService interface {
	Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, byUserID string) (*models.Booking, error)
	CancelOnBehalf(ctx context.Context, bookingID string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID string) (*models.Booking, error)
	CompleteDue(ctx context.Context) (int, error)
	UpdatePaymentStatus(ctx context.Context, bookingID string, status models.PaymentStatus) (*models.Booking, error)

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListFacilityBookings(ctx context.Context, facilityID string) ([]models.Booking, error)

	Availability(ctx context.Context, courtID, date string) (*models.AvailabilityResponse, error)
	TimeSlots(ctx context.Context, courtID, date string, availableOnly bool) ([]models.TimeSlot, error)
	Block(ctx context.Context, req BlockRequest) (*models.Blocked, error)
	Unblock(ctx context.Context, req UnblockRequest) (int, error)

	CreateCourt(ctx context.Context, req CourtRequest) (*models.Court, error)
	GetCourt(ctx context.Context, courtID string) (*models.Court, error)
	UpdateCourt(ctx context.Context, courtID string, upd models.CourtUpdate) (*models.Court, error)
	DeleteCourt(ctx context.Context, courtID string) error

	Rebuild(ctx context.Context) error
	Reconcile(ctx context.Context, courtID, date string) ([]string, error)
}

// ReserveRequest asks for one court interval on one date.
type ReserveRequest struct {
	UserID   string
	CourtID  string
	Date     string
	Interval models.Interval
}

type BlockRequest struct {
	CourtID   string
	Date      string
	Interval  models.Interval
	Reason    string
	CreatedBy string
}

type UnblockRequest struct {
	CourtID  string
	Date     string
	Interval models.Interval
}

type CourtRequest struct {
	FacilityID     string
	Name           string
	SportType      string
	PricePerHour   models.Money
	OperatingHours models.OperatingHours
	IsActive       bool
}

// CompletionScheduler arranges for a booking to be completed once it ends.
type CompletionScheduler interface {
	ScheduleCompletion(ctx context.Context, b models.Booking, at time.Time) error
}

type noopScheduler struct{}

func (noopScheduler) ScheduleCompletion(context.Context, models.Booking, time.Time) error { return nil }

// Options are the policy knobs of the coordinator.
type Options struct {
	Granularity        int
	LeadTime           time.Duration
	CancellationCutoff time.Duration
	HoldTTL            time.Duration
	LedgerTimeout      time.Duration
	Location           *time.Location
}

// OptionsFromConfig reads coordinator policy from the application config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Granularity:        cfg.SlotGranularityMinutes,
		LeadTime:           cfg.BookingLead(),
		CancellationCutoff: cfg.CancellationCutoff(),
		HoldTTL:            cfg.HoldTTL(),
		LedgerTimeout:      cfg.LedgerTimeout(),
		Location:           cfg.Location(),
	}
}

// Dependencies wires the coordinator. Cache, Scheduler, Clock and Logger are optional.
type Dependencies struct {
	Index     *availability.Index
	Ledger    bookingRepo.BookingRepository
	Blocks    blockedRepo.BlockedRepository
	Courts    courtRepo.CourtRepository
	Cache     AvailabilityCache
	Scheduler CompletionScheduler
	Clock     utils.Clock
	Logger    *zap.Logger
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	index     *availability.Index
	ledger    bookingRepo.BookingRepository
	blocks    blockedRepo.BlockedRepository
	courts    courtRepo.CourtRepository
	cache     AvailabilityCache
	scheduler CompletionScheduler
	clock     utils.Clock
	logger    *zap.Logger
	opts      Options

	// cacheGen counts availability invalidations; a view is only cached
	// if no invalidation happened while it was being built.
	cacheGen atomic.Uint64
}

func NewBookingService(deps Dependencies, opts Options) (*DefaultBookingService, error) {
	if deps.Index == nil || deps.Ledger == nil || deps.Blocks == nil || deps.Courts == nil {
		return nil, fmt.Errorf("booking service requires an index, ledger, block and court repository")
	}
	if opts.Granularity <= 0 {
		return nil, fmt.Errorf("slot granularity must be positive, got %d", opts.Granularity)
	}
	if opts.HoldTTL <= 0 {
		return nil, fmt.Errorf("hold ttl must be positive, got %s", opts.HoldTTL)
	}
	if opts.LedgerTimeout <= 0 {
		opts.LedgerTimeout = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	s := &DefaultBookingService{
		index:     deps.Index,
		ledger:    deps.Ledger,
		blocks:    deps.Blocks,
		courts:    deps.Courts,
		cache:     deps.Cache,
		scheduler: deps.Scheduler,
		clock:     deps.Clock,
		logger:    deps.Logger,
		opts:      opts,
	}
	if s.cache == nil {
		s.cache = NoopCache()
	}
	if s.scheduler == nil {
		s.scheduler = noopScheduler{}
	}
	if s.clock == nil {
		s.clock = utils.RealClock{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// at returns the instant of minute m on date in the configured timezone.
func (s *DefaultBookingService) at(date string, m models.Minute) (time.Time, error) {
	d, err := time.ParseInLocation(utils.DateLayout, date, s.opts.Location)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), int(m)/60, int(m)%60, 0, 0, s.opts.Location), nil
}

func (s *DefaultBookingService) today() string {
	return s.clock.Now().In(s.opts.Location).Format(utils.DateLayout)
}

func (s *DefaultBookingService) ledgerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.LedgerTimeout)
}

func (s *DefaultBookingService) invalidate(ctx context.Context, courtID, date string) {
	s.cacheGen.Add(1)
	s.cache.Invalidate(ctx, courtID, date)
}

func (s *DefaultBookingService) invalidateCourt(ctx context.Context, courtID string) {
	s.cacheGen.Add(1)
	s.cache.InvalidateCourt(ctx, courtID)
}

func keyOf(courtID, date string) availability.Key {
	return availability.Key{CourtID: courtID, Date: date}
}
