package booking

import (
	"context"
	"time"

	"courtside/models"
	"courtside/services/availability"

	"go.uber.org/zap"
)

// entriesFor converts blocks and confirmed bookings into index entries.
// Blocks come first so bookings win where both claim a cell.
func entriesFor(blocks []models.Blocked, bookings []models.Booking) []availability.Entry {
	entries := make([]availability.Entry, 0, len(blocks)+len(bookings))
	for _, b := range blocks {
		entries = append(entries, availability.Entry{
			Interval: b.Interval(),
			Status:   models.SlotBlocked,
			Owner:    b.ID,
			Reason:   b.Reason,
		})
	}
	for _, b := range bookings {
		if b.Status != models.BookingConfirmed {
			continue
		}
		entries = append(entries, availability.Entry{
			Interval: b.Interval(),
			Status:   models.SlotBooked,
			Owner:    b.ID,
		})
	}
	return entries
}

// Rebuild replays the ledger and block list from today onward into the index
// and drops past days. Days in memory with nothing left in the ledger are cleared.
func (s *DefaultBookingService) Rebuild(ctx context.Context) error {
	today := s.today()

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	bookings, err := s.ledger.ListConfirmedFrom(lctx, today)
	if err != nil {
		return unavailable("replay bookings", err)
	}
	blocks, err := s.blocks.ListFrom(lctx, today)
	if err != nil {
		return unavailable("replay blocks", err)
	}

	byKeyBookings := map[availability.Key][]models.Booking{}
	for _, b := range bookings {
		k := keyOf(b.CourtID, b.Date)
		byKeyBookings[k] = append(byKeyBookings[k], b)
	}
	byKeyBlocks := map[availability.Key][]models.Blocked{}
	for _, b := range blocks {
		k := keyOf(b.CourtID, b.Date)
		byKeyBlocks[k] = append(byKeyBlocks[k], b)
	}

	keys := map[availability.Key]struct{}{}
	for k := range byKeyBookings {
		keys[k] = struct{}{}
	}
	for k := range byKeyBlocks {
		keys[k] = struct{}{}
	}
	for _, k := range s.index.Keys() {
		if k.Date >= today {
			keys[k] = struct{}{}
		}
	}

	for k := range keys {
		for _, w := range s.index.Restore(k, entriesFor(byKeyBlocks[k], byKeyBookings[k])) {
			s.logger.Warn("Rebuild inconsistency", zap.String("key", k.String()), zap.String("detail", w))
		}
	}
	evicted := s.index.Evict(today)
	s.logger.Info("Availability index rebuilt",
		zap.Int("bookings", len(bookings)),
		zap.Int("blocks", len(blocks)),
		zap.Int("days", len(keys)),
		zap.Int("evicted", evicted))
	return nil
}

// Reconcile recomputes one court day from the ledger and block list and
// returns any inconsistencies found.
func (s *DefaultBookingService) Reconcile(ctx context.Context, courtID, date string) ([]string, error) {
	if _, err := s.at(date, 0); err != nil {
		return nil, reject(ReasonOutOfWindow, "invalid date %q", date)
	}
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	bookings, err := s.ledger.ListByCourtAndDate(lctx, courtID, date)
	if err != nil {
		return nil, unavailable("load bookings", err)
	}
	blocks, err := s.blocks.ListByCourtAndDate(lctx, courtID, date)
	if err != nil {
		return nil, unavailable("load blocks", err)
	}

	key := keyOf(courtID, date)
	warnings := s.index.Restore(key, entriesFor(blocks, bookings))
	for _, w := range warnings {
		s.logger.Warn("Reconcile inconsistency", zap.String("key", key.String()), zap.String("detail", w))
	}
	s.invalidate(ctx, courtID, date)
	return warnings, nil
}

// RunMaintenance completes elapsed bookings and evicts past days every
// interval until ctx is cancelled.
func (s *DefaultBookingService) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CompleteDue(ctx)
			if err != nil {
				s.logger.Error("Completion sweep failed", zap.Error(err))
			}
			if n > 0 {
				s.logger.Info("Completed elapsed bookings", zap.Int("count", n))
			}
			s.index.Evict(s.today())
		}
	}
}
