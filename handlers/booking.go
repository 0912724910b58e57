package handlers

import (
	"net/http"

	"courtside/models"
	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Service booking.BookingService
	Access  *Access
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, access *Access, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Access: access, Logger: logger}
}

type reserveInput struct {
	CourtID string        `json:"courtId" binding:"required"`
	Date    string        `json:"date" binding:"required"`
	Start   models.Minute `json:"start"`
	End     models.Minute `json:"end"`
}

// ReserveHandler handles POST /api/bookings.
func (h *BookingHandler) ReserveHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input reserveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.Service.Reserve(c.Request.Context(), booking.ReserveRequest{
		UserID:   p.UserID,
		CourtID:  input.CourtID,
		Date:     input.Date,
		Interval: models.Interval{Start: input.Start, End: input.End},
	})
	if err != nil {
		h.Logger.Debug("Reservation refused",
			zap.String("userID", p.UserID),
			zap.String("courtID", input.CourtID),
			zap.String("date", input.Date),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// CancelHandler handles POST /api/bookings/:bookingID/cancel. The booking's
// user cancels as owner; a facility owner or admin cancels on their behalf.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("bookingID")

	existing, err := h.Service.GetBooking(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	var b *models.Booking
	if existing.UserID == p.UserID {
		b, err = h.Service.Cancel(ctx, id, p.UserID)
	} else {
		manages, aerr := h.Access.ManagesFacility(ctx, p, existing.FacilityID)
		switch {
		case aerr != nil:
			accessUnavailable(c, aerr)
			return
		case manages:
			b, err = h.Service.CancelOnBehalf(ctx, id)
		default:
			// Falls through to the owner check, which refuses with NotOwner.
			b, err = h.Service.Cancel(ctx, id, p.UserID)
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetBookingHandler handles GET /api/bookings/:bookingID.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if b.UserID != p.UserID && !h.Access.guard(c, p, b.FacilityID) {
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMyBookingsHandler handles GET /api/users/me/bookings.
func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	bookings, err := h.Service.ListUserBookings(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListFacilityBookingsHandler handles GET /api/facilities/:facilityID/bookings.
func (h *BookingHandler) ListFacilityBookingsHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	facilityID := c.Param("facilityID")
	if !h.Access.guard(c, p, facilityID) {
		return
	}
	bookings, err := h.Service.ListFacilityBookings(c.Request.Context(), facilityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpdatePaymentStatusHandler handles PATCH /api/bookings/:bookingID/payment.
func (h *BookingHandler) UpdatePaymentStatusHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		Status models.PaymentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("bookingID")
	existing, err := h.Service.GetBooking(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.Access.guard(c, p, existing.FacilityID) {
		return
	}

	b, err := h.Service.UpdatePaymentStatus(ctx, id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
