package handlers

import (
	"context"
	"errors"
	"net/http"

	courtRepo "courtside/database/repository/court"
	"courtside/middleware"
	"courtside/models"
	"courtside/services/booking"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Access answers capability questions that depend on facility ownership.
type Access struct {
	Facilities courtRepo.FacilityRepository
	Service    booking.BookingService
}

// ManagesFacility reports whether p may act for the facility: admins always,
// facility owners only for their own facilities.
func (a *Access) ManagesFacility(ctx context.Context, p models.Principal, facilityID string) (bool, error) {
	switch p.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleFacilityOwner:
	default:
		return false, nil
	}
	f, err := a.Facilities.GetByID(ctx, facilityID)
	if errors.Is(err, courtRepo.ErrFacilityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return f.OwnerID == p.UserID, nil
}

// managedCourt loads the court and checks the caller manages its facility.
// It writes the error response and returns nil when the request must stop.
func (a *Access) managedCourt(c *gin.Context, p models.Principal) *models.Court {
	court, err := a.Service.GetCourt(c.Request.Context(), c.Param("courtID"))
	if err != nil {
		respondError(c, err)
		return nil
	}
	if !a.guard(c, p, court.FacilityID) {
		return nil
	}
	return court
}

func accessUnavailable(c *gin.Context, err error) {
	zap.L().Error("Facility lookup failed", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusServiceUnavailable, "Unavailable", "Could not verify facility ownership")
}

// guard writes 403 or 503 and returns false unless p manages facilityID.
func (a *Access) guard(c *gin.Context, p models.Principal, facilityID string) bool {
	ok, err := a.ManagesFacility(c.Request.Context(), p, facilityID)
	if err != nil {
		accessUnavailable(c, err)
		return false
	}
	if !ok {
		forbidden(c)
		return false
	}
	return true
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
	}
	return p, ok
}
