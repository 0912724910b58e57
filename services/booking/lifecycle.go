package booking

import (
	"context"
	"errors"

	bookingRepo "courtside/database/repository/booking"
	"courtside/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()

	b, err := s.ledger.GetByID(lctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, reject(ReasonNotFound, "booking %s does not exist", bookingID)
	}
	if err != nil {
		return nil, unavailable("load booking", err)
	}
	return b, nil
}

// Cancel cancels a booking on behalf of the user who made it.
// Cancelling an already cancelled booking succeeds without changes.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, byUserID string) (*models.Booking, error) {
	return s.cancel(ctx, bookingID, byUserID, true)
}

// CancelOnBehalf cancels without the ownership check. The caller must have
// verified the facility owner or admin capability.
func (s *DefaultBookingService) CancelOnBehalf(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.cancel(ctx, bookingID, "", false)
}

func (s *DefaultBookingService) cancel(ctx context.Context, bookingID, byUserID string, checkOwner bool) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if checkOwner && b.UserID != byUserID {
		return nil, reject(ReasonNotOwner, "booking %s belongs to another user", bookingID)
	}
	switch b.Status {
	case models.BookingCancelled:
		return b, nil
	case models.BookingCompleted:
		return nil, reject(ReasonAlreadyTerminal, "booking %s is already completed", bookingID)
	}

	startsAt, err := s.at(b.Date, b.Start)
	if err != nil {
		return nil, reject(ReasonInvalidTransition, "booking %s has an invalid date %q", bookingID, b.Date)
	}
	deadline := startsAt.Add(-s.opts.CancellationCutoff)
	if s.clock.Now().After(deadline) {
		return nil, reject(ReasonTooLate, "booking %s could only be cancelled until %s", bookingID, deadline.Format("2006-01-02 15:04"))
	}

	// Ledger first: the index must never be freer than the ledger allows.
	lctx, cancel := s.ledgerContext(ctx)
	updated, err := s.ledger.UpdateStatus(lctx, bookingID, models.BookingConfirmed, models.BookingCancelled)
	cancel()
	if errors.Is(err, bookingRepo.ErrStatusMismatch) {
		// Lost a race with another cancel or the completion job.
		current, loadErr := s.loadBooking(ctx, bookingID)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.Status == models.BookingCancelled {
			return current, nil
		}
		return nil, reject(ReasonAlreadyTerminal, "booking %s is already %s", bookingID, current.Status)
	}
	if err != nil {
		return nil, unavailable("cancel booking", err)
	}

	n, err := s.index.Release(keyOf(b.CourtID, b.Date), b.Interval(), b.ID)
	if err != nil || n*s.index.Step() != b.Interval().Duration() {
		s.logger.Warn("Index did not hold the cancelled booking; reconcile advised",
			zap.String("bookingID", b.ID),
			zap.Int("cellsReleased", n),
			zap.Error(err))
	}
	s.invalidate(ctx, b.CourtID, b.Date)
	s.logger.Info("Booking cancelled", zap.String("bookingID", b.ID), zap.Bool("onBehalf", !checkOwner))
	return updated, nil
}

// Complete marks a confirmed booking whose end time has passed as completed.
// Completing an already completed booking succeeds without changes.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case models.BookingCompleted:
		return b, nil
	case models.BookingCancelled:
		return nil, reject(ReasonInvalidTransition, "booking %s was cancelled", bookingID)
	}

	endsAt, err := s.at(b.Date, b.End)
	if err != nil {
		return nil, reject(ReasonInvalidTransition, "booking %s has an invalid date %q", bookingID, b.Date)
	}
	if s.clock.Now().Before(endsAt) {
		return nil, reject(ReasonInvalidTransition, "booking %s has not ended yet", bookingID)
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	updated, err := s.ledger.UpdateStatus(lctx, bookingID, models.BookingConfirmed, models.BookingCompleted)
	if errors.Is(err, bookingRepo.ErrStatusMismatch) {
		return nil, reject(ReasonInvalidTransition, "booking %s changed status concurrently", bookingID)
	}
	if err != nil {
		return nil, unavailable("complete booking", err)
	}
	return updated, nil
}

// CompleteDue completes every confirmed booking that has ended. It returns
// the number completed and the joined errors of those that failed.
func (s *DefaultBookingService) CompleteDue(ctx context.Context) (int, error) {
	lctx, cancel := s.ledgerContext(ctx)
	due, err := s.ledger.ListConfirmedThrough(lctx, s.today())
	cancel()
	if err != nil {
		return 0, unavailable("list due bookings", err)
	}

	now := s.clock.Now()
	completed := 0
	var errs []error
	for _, b := range due {
		endsAt, err := s.at(b.Date, b.End)
		if err != nil || now.Before(endsAt) {
			continue
		}
		if _, err := s.Complete(ctx, b.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		completed++
	}
	return completed, errors.Join(errs...)
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending: {models.PaymentPaid, models.PaymentRefunded},
	models.PaymentPaid:    {models.PaymentRefunded},
}

// UpdatePaymentStatus records settlement. Repeating the current status is a no-op.
func (s *DefaultBookingService) UpdatePaymentStatus(ctx context.Context, bookingID string, status models.PaymentStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, reject(ReasonInvalidTransition, "unknown payment status %q", status)
	}
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == status {
		return b, nil
	}
	allowed := false
	for _, next := range paymentTransitions[b.PaymentStatus] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, reject(ReasonInvalidTransition, "payment cannot move from %s to %s", b.PaymentStatus, status)
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	updated, err := s.ledger.UpdatePaymentStatus(lctx, bookingID, status)
	if err != nil {
		return nil, unavailable("update payment status", err)
	}
	s.logger.Info("Payment status updated", zap.String("bookingID", bookingID), zap.String("paymentStatus", string(status)))
	return updated, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.loadBooking(ctx, bookingID)
}

// ListUserBookings returns a user's bookings, newest first.
func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	bookings, err := s.ledger.ListByUser(lctx, userID)
	if err != nil {
		return nil, unavailable("list user bookings", err)
	}
	return bookings, nil
}

// ListFacilityBookings returns a facility's bookings ordered by date.
func (s *DefaultBookingService) ListFacilityBookings(ctx context.Context, facilityID string) ([]models.Booking, error) {
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	bookings, err := s.ledger.ListByFacility(lctx, facilityID)
	if err != nil {
		return nil, unavailable("list facility bookings", err)
	}
	return bookings, nil
}
