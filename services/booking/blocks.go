package booking

import (
	"context"
	"errors"
	"strings"

	"courtside/models"
	"courtside/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// validateKeyInterval checks the court exists and iv can be represented in the index.
func (s *DefaultBookingService) validateKeyInterval(ctx context.Context, courtID, date string, iv models.Interval) (*models.Court, error) {
	court, err := s.loadCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if _, err := s.at(date, 0); err != nil {
		return nil, reject(ReasonOutOfWindow, "invalid date %q", date)
	}
	if !s.index.Aligned(iv) {
		return nil, reject(ReasonOutOfWindow, "%s is not on %d-minute boundaries", iv, s.index.Step())
	}
	return court, nil
}

// Block excludes an interval from booking. Held or booked cells make the
// request fail with Conflict.
func (s *DefaultBookingService) Block(ctx context.Context, req BlockRequest) (*models.Blocked, error) {
	court, err := s.validateKeyInterval(ctx, req.CourtID, req.Date, req.Interval)
	if err != nil {
		return nil, err
	}

	block := models.Blocked{
		ID:        uuid.NewString(),
		CourtID:   court.ID,
		Date:      req.Date,
		Start:     req.Interval.Start,
		End:       req.Interval.End,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedBy: req.CreatedBy,
		CreatedAt: s.clock.Now().UTC(),
	}
	key := keyOf(court.ID, req.Date)
	if err := s.index.Block(key, req.Interval, block.Reason, block.ID); err != nil {
		if errors.Is(err, availability.ErrBusy) {
			return nil, reject(ReasonConflict, "%s on %s has bookings or pending holds", req.Interval, req.Date)
		}
		return nil, reject(ReasonOutOfWindow, "%v", err)
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	if err := s.blocks.Create(lctx, &block); err != nil {
		if _, relErr := s.index.ReleaseBlock(key, req.Interval, block.ID); relErr != nil {
			s.logger.Warn("Failed to roll back index block", zap.String("blockID", block.ID), zap.Error(relErr))
		}
		return nil, unavailable("persist block", err)
	}

	s.invalidate(ctx, court.ID, req.Date)
	s.logger.Info("Interval blocked",
		zap.String("courtID", court.ID),
		zap.String("date", req.Date),
		zap.Stringer("interval", req.Interval),
		zap.String("blockID", block.ID))
	return &block, nil
}

// Unblock removes blocks overlapping an interval. Persisted blocks that
// extend past the interval are split and their remainders kept.
func (s *DefaultBookingService) Unblock(ctx context.Context, req UnblockRequest) (int, error) {
	court, err := s.validateKeyInterval(ctx, req.CourtID, req.Date, req.Interval)
	if err != nil {
		return 0, err
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	existing, err := s.blocks.ListByCourtAndDate(lctx, court.ID, req.Date)
	if err != nil {
		return 0, unavailable("list blocks", err)
	}
	key := keyOf(court.ID, req.Date)
	for _, b := range existing {
		if !b.Interval().Overlaps(req.Interval) {
			continue
		}
		if err := s.splitBlock(lctx, b, req.Interval); err != nil {
			// Earlier blocks may already be split; bring the index in line
			// with what was persisted.
			if _, recErr := s.Reconcile(context.WithoutCancel(ctx), court.ID, req.Date); recErr != nil {
				s.logger.Error("Failed to reconcile after partial unblock", zap.String("key", key.String()), zap.Error(recErr))
			}
			return 0, err
		}
	}

	n, err := s.index.Unblock(key, req.Interval)
	if err != nil {
		return 0, reject(ReasonOutOfWindow, "%v", err)
	}
	s.invalidate(ctx, court.ID, req.Date)
	s.logger.Info("Interval unblocked",
		zap.String("courtID", court.ID),
		zap.String("date", req.Date),
		zap.Stringer("interval", req.Interval),
		zap.Int("cells", n))
	return n, nil
}

// splitBlock replaces b by the parts outside cut. The remainders are
// written before b is deleted, so a failure never loses blocked time.
func (s *DefaultBookingService) splitBlock(ctx context.Context, b models.Blocked, cut models.Interval) error {
	var created []string
	for _, rest := range remainders(b.Interval(), cut) {
		piece := b
		piece.ID = uuid.NewString()
		piece.Start, piece.End = rest.Start, rest.End
		if err := s.blocks.Create(ctx, &piece); err != nil {
			s.dropBlocks(ctx, created)
			return unavailable("split block", err)
		}
		created = append(created, piece.ID)
	}
	if err := s.blocks.Delete(ctx, b.ID); err != nil {
		s.dropBlocks(ctx, created)
		return unavailable("delete block", err)
	}
	return nil
}

// dropBlocks removes remainders written by an aborted split. Leftovers only
// duplicate time that the original block still covers.
func (s *DefaultBookingService) dropBlocks(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.blocks.Delete(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("Failed to drop remainder of aborted split", zap.String("blockID", id), zap.Error(err))
		}
	}
}

// remainders returns the parts of block not covered by cut.
func remainders(block, cut models.Interval) []models.Interval {
	var out []models.Interval
	if block.Start < cut.Start {
		out = append(out, models.Interval{Start: block.Start, End: cut.Start})
	}
	if cut.End < block.End {
		out = append(out, models.Interval{Start: cut.End, End: block.End})
	}
	return out
}
