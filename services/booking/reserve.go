package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "courtside/database/repository/booking"
	courtRepo "courtside/database/repository/court"
	"courtside/models"
	"courtside/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loadCourt maps repository errors onto rejections.
func (s *DefaultBookingService) loadCourt(ctx context.Context, courtID string) (*models.Court, error) {
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()

	court, err := s.courts.GetByID(lctx, courtID)
	if errors.Is(err, courtRepo.ErrCourtNotFound) {
		return nil, reject(ReasonNotFound, "court %s does not exist", courtID)
	}
	if err != nil {
		return nil, unavailable("load court", err)
	}
	return court, nil
}

// Reserve books iv on a court for a user. The index hold is the only
// serialisation point; the ledger write happens outside any index lock.
func (s *DefaultBookingService) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	logger := s.logger.With(
		zap.String("courtID", req.CourtID),
		zap.String("date", req.Date),
		zap.Stringer("interval", req.Interval),
		zap.String("userID", req.UserID),
	)

	// 1. The interval must sit inside operating hours on step boundaries.
	court, err := s.loadCourt(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	if !court.IsActive {
		return nil, reject(ReasonCourtInactive, "court %s is not accepting bookings", court.ID)
	}
	startsAt, err := s.at(req.Date, req.Interval.Start)
	if err != nil {
		return nil, reject(ReasonOutOfWindow, "invalid date %q", req.Date)
	}
	if !req.Interval.Valid() || !court.OperatingHours.Interval().Contains(req.Interval) || !s.index.Aligned(req.Interval) {
		return nil, reject(ReasonOutOfWindow, "%s is outside %s or not on %d-minute boundaries",
			req.Interval, court.OperatingHours.Interval(), s.index.Step())
	}

	// 2. Lead time.
	now := s.clock.Now()
	if !startsAt.After(now.Add(s.opts.LeadTime)) {
		return nil, reject(ReasonPastOrTooSoon, "bookings must start more than %s from now", s.opts.LeadTime)
	}

	// 3. Hold.
	key := keyOf(court.ID, req.Date)
	token, err := s.index.Hold(key, req.Interval, req.UserID, s.opts.HoldTTL)
	if err != nil {
		if errors.Is(err, availability.ErrBusy) {
			logger.Info("Reservation conflict", zap.Error(err))
			return nil, reject(ReasonConflict, "%s on %s is no longer available", req.Interval, req.Date)
		}
		if errors.Is(err, availability.ErrClosed) {
			return nil, reject(ReasonCourtInactive, "court %s is not accepting bookings", court.ID)
		}
		return nil, reject(ReasonOutOfWindow, "%v", err)
	}

	// 4. Price.
	price := CalculatePrice(court.PricePerHour, req.Interval)

	// 5. Ledger append.
	booking := models.Booking{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		FacilityID:    court.FacilityID,
		CourtID:       court.ID,
		Date:          req.Date,
		Start:         req.Interval.Start,
		End:           req.Interval.End,
		Status:        models.BookingConfirmed,
		TotalPrice:    price,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	lctx, cancel := s.ledgerContext(ctx)
	err = s.ledger.Append(lctx, &booking)
	cancel()
	if err != nil {
		if relErr := s.index.ReleaseHold(token); relErr != nil {
			logger.Warn("Hold already gone during rollback", zap.Error(relErr))
		}
		if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
			logger.Error("Ledger rejected an interval the index allowed", zap.Error(err))
			return nil, reject(ReasonConflict, "%s on %s is no longer available", req.Interval, req.Date)
		}
		logger.Error("Ledger append failed", zap.Error(err))
		return nil, unavailable("append booking", err)
	}

	// 6. Commit.
	if err := s.index.Commit(token, booking.ID); err != nil {
		logger.Warn("Hold lapsed before commit; rolling back ledger row",
			zap.String("bookingID", booking.ID),
			zap.Duration("holdTTL", s.opts.HoldTTL),
			zap.Error(err))
		return nil, s.rollbackUncommitted(ctx, key, booking, logger)
	}

	s.invalidate(ctx, court.ID, req.Date)
	s.scheduleCompletion(ctx, booking)
	logger.Info("Booking confirmed", zap.String("bookingID", booking.ID), zap.String("totalPrice", price.StringFixed(2)))
	return &booking, nil
}

// rollbackUncommitted removes a ledger row whose hold lapsed. While the row
// exists the index must not show its interval as free: if the removal fails
// the interval is booked under the row's ID, and after a removal any copy a
// concurrent reconcile restored is released again.
func (s *DefaultBookingService) rollbackUncommitted(ctx context.Context, key availability.Key, b models.Booking, logger *zap.Logger) error {
	s.index.Retire(b.ID)

	rctx, cancel := s.ledgerContext(context.WithoutCancel(ctx))
	defer cancel()
	if rmErr := s.ledger.Remove(rctx, b.ID); rmErr != nil {
		logger.Error("Failed to roll back uncommitted booking; keeping its interval booked",
			zap.String("bookingID", b.ID), zap.Error(rmErr))
		warnings, occErr := s.index.Occupy(key, b.Interval(), b.ID)
		for _, w := range warnings {
			logger.Error("Booking overlaps after failed rollback", zap.String("detail", w))
		}
		if occErr != nil {
			logger.Error("Failed to re-book interval of unremoved booking", zap.Error(occErr))
		}
		s.invalidate(ctx, b.CourtID, b.Date)
		s.scheduleCompletion(ctx, b)
		return unavailable("roll back booking", rmErr)
	}

	if n, err := s.index.Release(key, b.Interval(), b.ID); err == nil && n > 0 {
		logger.Warn("Released cells restored for a rolled back booking", zap.String("bookingID", b.ID), zap.Int("cells", n))
		s.invalidate(ctx, b.CourtID, b.Date)
	}
	return reject(ReasonConflict, "%s on %s is no longer available", b.Interval(), b.Date)
}

func (s *DefaultBookingService) scheduleCompletion(ctx context.Context, b models.Booking) {
	endsAt, err := s.at(b.Date, b.End)
	if err != nil {
		return
	}
	if err := s.scheduler.ScheduleCompletion(ctx, b, endsAt.Add(time.Second)); err != nil {
		// The periodic sweep still completes the booking.
		s.logger.Warn("Failed to schedule booking completion", zap.String("bookingID", b.ID), zap.Error(err))
	}
}
