package handlers

import (
	"net/http"

	"courtside/models"
	"courtside/services/booking"

	"github.com/gin-gonic/gin"
)

// CourtHandler serves court management and blocking for facility owners.
type CourtHandler struct {
	Service booking.BookingService
	Access  *Access
}

func NewCourtHandler(svc booking.BookingService, access *Access) *CourtHandler {
	return &CourtHandler{Service: svc, Access: access}
}

type createCourtInput struct {
	Name           string                `json:"name" binding:"required"`
	SportType      string                `json:"sportType"`
	PricePerHour   models.Money          `json:"pricePerHour"`
	OperatingHours models.OperatingHours `json:"operatingHours"`
	IsActive       *bool                 `json:"isActive"`
}

// CreateCourtHandler handles POST /api/facilities/:facilityID/courts.
func (h *CourtHandler) CreateCourtHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	facilityID := c.Param("facilityID")
	if !h.Access.guard(c, p, facilityID) {
		return
	}
	var input createCourtInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	court, err := h.Service.CreateCourt(c.Request.Context(), booking.CourtRequest{
		FacilityID:     facilityID,
		Name:           input.Name,
		SportType:      input.SportType,
		PricePerHour:   input.PricePerHour,
		OperatingHours: input.OperatingHours,
		IsActive:       active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, court)
}

// GetCourtHandler handles GET /api/courts/:courtID.
func (h *CourtHandler) GetCourtHandler(c *gin.Context) {
	court, err := h.Service.GetCourt(c.Request.Context(), c.Param("courtID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, court)
}

// UpdateCourtHandler handles PATCH /api/courts/:courtID.
func (h *CourtHandler) UpdateCourtHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	court := h.Access.managedCourt(c, p)
	if court == nil {
		return
	}
	var upd models.CourtUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.Service.UpdateCourt(c.Request.Context(), court.ID, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteCourtHandler handles DELETE /api/courts/:courtID.
func (h *CourtHandler) DeleteCourtHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	court := h.Access.managedCourt(c, p)
	if court == nil {
		return
	}
	if err := h.Service.DeleteCourt(c.Request.Context(), court.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Court deleted"})
}

type blockInput struct {
	Date   string        `json:"date" binding:"required"`
	Start  models.Minute `json:"start"`
	End    models.Minute `json:"end"`
	Reason string        `json:"reason"`
}

// BlockHandler handles POST /api/courts/:courtID/blocks.
func (h *CourtHandler) BlockHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	court := h.Access.managedCourt(c, p)
	if court == nil {
		return
	}
	var input blockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	blocked, err := h.Service.Block(c.Request.Context(), booking.BlockRequest{
		CourtID:   court.ID,
		Date:      input.Date,
		Interval:  models.Interval{Start: input.Start, End: input.End},
		Reason:    input.Reason,
		CreatedBy: p.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blocked)
}

// UnblockHandler handles DELETE /api/courts/:courtID/blocks.
func (h *CourtHandler) UnblockHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	court := h.Access.managedCourt(c, p)
	if court == nil {
		return
	}
	var input blockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	released, err := h.Service.Unblock(c.Request.Context(), booking.UnblockRequest{
		CourtID:  court.ID,
		Date:     input.Date,
		Interval: models.Interval{Start: input.Start, End: input.End},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}
