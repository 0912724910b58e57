package booking

import (
	"context"
	"errors"
	"strings"

	courtRepo "courtside/database/repository/court"
	"courtside/models"
	"courtside/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) validateCourtTerms(price *models.Money, hours *models.OperatingHours) error {
	if price != nil && price.IsNegative() {
		return reject(ReasonInvalidWindow, "price per hour cannot be negative")
	}
	if hours != nil {
		if _, err := availability.GenerateGrid(hours.Interval(), s.opts.Granularity); err != nil {
			return reject(ReasonInvalidWindow, "operating hours %s: %v", hours.Interval(), err)
		}
	}
	return nil
}

func (s *DefaultBookingService) CreateCourt(ctx context.Context, req CourtRequest) (*models.Court, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, reject(ReasonInvalidWindow, "court name is required")
	}
	if err := s.validateCourtTerms(&req.PricePerHour, &req.OperatingHours); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	court := models.Court{
		ID:             uuid.NewString(),
		FacilityID:     req.FacilityID,
		Name:           strings.TrimSpace(req.Name),
		SportType:      req.SportType,
		PricePerHour:   models.NewMoney(req.PricePerHour.Decimal),
		OperatingHours: req.OperatingHours,
		IsActive:       req.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	if err := s.courts.Create(lctx, &court); err != nil {
		return nil, unavailable("create court", err)
	}
	s.logger.Info("Court created", zap.String("courtID", court.ID), zap.String("facilityID", court.FacilityID))
	return &court, nil
}

func (s *DefaultBookingService) GetCourt(ctx context.Context, courtID string) (*models.Court, error) {
	return s.loadCourt(ctx, courtID)
}

// UpdateCourt edits price, hours or the active flag. Existing bookings are kept.
func (s *DefaultBookingService) UpdateCourt(ctx context.Context, courtID string, upd models.CourtUpdate) (*models.Court, error) {
	if err := s.validateCourtTerms(upd.PricePerHour, upd.OperatingHours); err != nil {
		return nil, err
	}
	if upd.PricePerHour != nil {
		rounded := models.NewMoney(upd.PricePerHour.Decimal)
		upd.PricePerHour = &rounded
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	court, err := s.courts.Update(lctx, courtID, upd)
	if errors.Is(err, courtRepo.ErrCourtNotFound) {
		return nil, reject(ReasonNotFound, "court %s does not exist", courtID)
	}
	if err != nil {
		return nil, unavailable("update court", err)
	}
	s.invalidateCourt(ctx, courtID)
	return court, nil
}

// DeleteCourt removes a court that has no confirmed bookings from today on.
// The court stops taking holds and is deactivated before the check, so no
// reservation can land between the check and the delete.
func (s *DefaultBookingService) DeleteCourt(ctx context.Context, courtID string) error {
	court, err := s.loadCourt(ctx, courtID)
	if err != nil {
		return err
	}

	if live := s.index.Close(courtID); live > 0 {
		s.index.Reopen(courtID)
		return reject(ReasonConflict, "court %s has %d reservations in progress", courtID, live)
	}

	lctx, cancel := s.ledgerContext(ctx)
	defer cancel()
	undo := func() {
		if court.IsActive {
			active := true
			rctx, rcancel := s.ledgerContext(context.WithoutCancel(ctx))
			defer rcancel()
			if _, err := s.courts.Update(rctx, courtID, models.CourtUpdate{IsActive: &active}); err != nil {
				s.logger.Error("Failed to reactivate court after aborted delete", zap.String("courtID", courtID), zap.Error(err))
			}
		}
		s.index.Reopen(courtID)
	}

	if court.IsActive {
		inactive := false
		if _, err := s.courts.Update(lctx, courtID, models.CourtUpdate{IsActive: &inactive}); err != nil {
			s.index.Reopen(courtID)
			if errors.Is(err, courtRepo.ErrCourtNotFound) {
				return reject(ReasonNotFound, "court %s does not exist", courtID)
			}
			return unavailable("deactivate court", err)
		}
	}

	future, err := s.ledger.HasFutureConfirmed(lctx, courtID, s.today())
	if err != nil {
		undo()
		return unavailable("check future bookings", err)
	}
	if future {
		undo()
		return reject(ReasonConflict, "court %s still has upcoming bookings", courtID)
	}
	if err := s.courts.Delete(lctx, courtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.index.Reopen(courtID)
			return reject(ReasonNotFound, "court %s does not exist", courtID)
		}
		undo()
		return unavailable("delete court", err)
	}
	s.invalidateCourt(ctx, courtID)
	s.logger.Info("Court deleted", zap.String("courtID", courtID))
	return nil
}
