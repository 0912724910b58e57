package booking

import (
	"context"

	"courtside/models"
	"courtside/services/availability"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) grid(court *models.Court) (availability.Grid, error) {
	grid, err := availability.GenerateGrid(court.OperatingHours.Interval(), s.opts.Granularity)
	if err != nil {
		return availability.Grid{}, reject(ReasonInvalidWindow, "court %s: %v", court.ID, err)
	}
	if grid.Warning != "" {
		s.logger.Warn("Operating hours do not divide evenly", zap.String("courtID", court.ID), zap.String("warning", grid.Warning))
	}
	return grid, nil
}

// Availability returns the court's grid for date with the status of each slot.
func (s *DefaultBookingService) Availability(ctx context.Context, courtID, date string) (*models.AvailabilityResponse, error) {
	if cached, ok := s.cache.Get(ctx, courtID, date); ok {
		return cached, nil
	}
	gen := s.cacheGen.Load()
	court, err := s.loadCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if _, err := s.at(date, 0); err != nil {
		return nil, reject(ReasonOutOfWindow, "invalid date %q", date)
	}
	grid, err := s.grid(court)
	if err != nil {
		return nil, err
	}

	resp := &models.AvailabilityResponse{
		CourtID: court.ID,
		Date:    date,
		Slots:   availability.Project(grid, s.index.Snapshot(keyOf(court.ID, date))),
	}
	if grid.Warning != "" {
		resp.Warnings = append(resp.Warnings, grid.Warning)
	}
	if s.cacheGen.Load() == gen {
		s.cache.Set(ctx, resp)
		// An invalidation that raced the write may have run before it.
		if s.cacheGen.Load() != gen {
			s.cache.Invalidate(ctx, court.ID, date)
		}
	}
	return resp, nil
}

// TimeSlots materialises the time_slots view; availableOnly keeps bookable rows.
func (s *DefaultBookingService) TimeSlots(ctx context.Context, courtID, date string, availableOnly bool) ([]models.TimeSlot, error) {
	court, err := s.loadCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if _, err := s.at(date, 0); err != nil {
		return nil, reject(ReasonOutOfWindow, "invalid date %q", date)
	}
	grid, err := s.grid(court)
	if err != nil {
		return nil, err
	}
	key := keyOf(court.ID, date)
	return availability.TimeSlots(key, grid, s.index.Snapshot(key), availableOnly), nil
}
